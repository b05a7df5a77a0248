package gateway

import (
	"bytes"
	"encoding/json"
	"strings"
)

// TrimStrings walks a decoded JSON value and trims whitespace from every
// string leaf. Maps and slices are rebuilt; the input is not modified.
func TrimStrings(v interface{}) interface{} {
	switch typed := v.(type) {
	case string:
		return strings.TrimSpace(typed)
	case map[string]interface{}:
		out := make(map[string]interface{}, len(typed))
		for k, val := range typed {
			out[k] = TrimStrings(val)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(typed))
		for i, val := range typed {
			out[i] = TrimStrings(val)
		}
		return out
	default:
		return v
	}
}

// encodeTrimmed marshals body and trims every string leaf. Numbers keep
// their original text.
func encodeTrimmed(body interface{}) ([]byte, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var generic interface{}
	if err := dec.Decode(&generic); err != nil {
		return nil, err
	}
	return json.Marshal(TrimStrings(generic))
}
