package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FlexibleID accepts identifiers the backend emits either as numbers or strings.
type FlexibleID string

// UnmarshalJSON implements json.Unmarshaler.
func (id *FlexibleID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = FlexibleID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("identifier: %w", err)
	}
	*id = FlexibleID(n.String())
	return nil
}

// String returns the identifier text.
func (id FlexibleID) String() string { return string(id) }

// Price is a decimal the backend sends as a number, a numeric string or a
// blank string. Blank strings decode as an absent price (Valid false).
type Price struct {
	Value float64
	Valid bool
}

// NewPrice returns a present price.
func NewPrice(v float64) *Price {
	return &Price{Value: v, Valid: true}
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *Price) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*p = Price{}
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(strings.ReplaceAll(strings.TrimPrefix(strings.TrimSpace(s), "$"), ",", ""))
		if s == "" {
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("price %q: %w", s, err)
		}
		*p = Price{Value: v, Valid: true}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("price: %w", err)
	}
	*p = Price{Value: v, Valid: true}
	return nil
}

// MarshalJSON renders the number, or null when absent.
func (p Price) MarshalJSON() ([]byte, error) {
	if !p.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(p.Value)
}

// Float returns the value, or nil when p is nil or absent.
func (p *Price) Float() *float64 {
	if p == nil || !p.Valid {
		return nil
	}
	v := p.Value
	return &v
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999-0700",
	"2006-01-02 15:04:05.999999999-0700",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Timestamp parses the handful of layouts the backend uses, plus epoch
// seconds or milliseconds. Values without a zone are interpreted as UTC.
// A value that cannot be parsed decodes as the zero time with the raw text
// kept in Unparsed, so one bad record never fails a whole list.
type Timestamp struct {
	time.Time
	Unparsed string
}

// ParseTimestamp parses raw using the accepted layouts.
func ParseTimestamp(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", raw)
}

// epochMillisThreshold separates epoch seconds from epoch milliseconds.
const epochMillisThreshold = 1e11

func parseEpoch(n json.Number) (time.Time, bool) {
	v, err := n.Float64()
	if err != nil || v <= 0 {
		return time.Time{}, false
	}
	if v >= epochMillisThreshold {
		return time.UnixMilli(int64(v)).UTC(), true
	}
	sec := int64(v)
	return time.Unix(sec, int64((v-float64(sec))*1e9)).UTC(), true
}

// UnmarshalJSON implements json.Unmarshaler. It never fails.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*t = Timestamp{}
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] != '"' {
		var n json.Number
		if err := json.Unmarshal(data, &n); err == nil {
			if parsed, ok := parseEpoch(n); ok {
				t.Time = parsed
				return nil
			}
		}
		t.Unparsed = string(data)
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Unparsed = string(data)
		return nil
	}
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parsed, err := ParseTimestamp(raw)
	if err != nil {
		t.Unparsed = raw
		return nil
	}
	t.Time = parsed
	return nil
}

// MarshalJSON renders RFC3339 or null for the zero value.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format(time.RFC3339))
}
