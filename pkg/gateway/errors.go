package gateway

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Fixed messages for failures that carry no usable server text.
const (
	NetworkErrorMessage = "Unable to reach the server. Please check your connection and try again."
	GenericErrorMessage = "An unexpected error occurred. Please try again."
	SessionErrorMessage = "Your session has expired. Please sign in again."
)

// Error is the single failure shape returned by the gateway. Status is 0
// when no response was received.
type Error struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *Error) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("gateway: %s", e.Message)
	}
	return fmt.Sprintf("gateway: %d %s", e.Status, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Network reports whether the request never got a response.
func (e *Error) Network() bool { return e.Status == 0 }

func networkError(err error) *Error {
	return &Error{Status: 0, Message: NetworkErrorMessage, Err: err}
}

// errorBody covers the error payloads the backend emits: {"detail": "..."},
// {"detail": [{"msg": "..."}]} and {"message": "..."}.
type errorBody struct {
	Detail  json.RawMessage `json:"detail"`
	Message string          `json:"message"`
}

func httpError(status int, body []byte) *Error {
	return &Error{Status: status, Message: extractMessage(body)}
}

func extractMessage(body []byte) string {
	var parsed errorBody
	if len(body) == 0 || json.Unmarshal(body, &parsed) != nil {
		return GenericErrorMessage
	}
	if msg := detailMessage(parsed.Detail); msg != "" {
		return msg
	}
	if msg := strings.TrimSpace(parsed.Message); msg != "" {
		return msg
	}
	return GenericErrorMessage
}

func detailMessage(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var text string
	if json.Unmarshal(raw, &text) == nil {
		return strings.TrimSpace(text)
	}
	var items []struct {
		Msg string `json:"msg"`
	}
	if json.Unmarshal(raw, &items) == nil {
		msgs := make([]string, 0, len(items))
		for _, item := range items {
			if m := strings.TrimSpace(item.Msg); m != "" {
				msgs = append(msgs, m)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}
