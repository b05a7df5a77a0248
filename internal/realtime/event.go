// Package realtime pushes job events to dashboard clients over websockets
// and serves debounced searches on the same connection.
package realtime

import "time"

// Event types sent to clients.
const (
	EventJobStatus     = "job_status"
	EventJobCreated    = "job_created"
	EventSearchResults = "search_results"
	EventError         = "error"
)

// Envelope is every message written to a client.
type Envelope struct {
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

// JobStatusPayload announces a completed approve/reject.
type JobStatusPayload struct {
	JobID   string `json:"job_id"`
	Status  string `json:"status"`
	Actor   string `json:"actor,omitempty"`
	Message string `json:"message,omitempty"`
}

// JobCreatedPayload announces a job produced by a pricelist upload.
type JobCreatedPayload struct {
	JobID    string `json:"job_id"`
	ClientID string `json:"client_id"`
}

// ErrorPayload reports a failed client request.
type ErrorPayload struct {
	Message string `json:"message"`
}

// inbound is a message read from a client.
type inbound struct {
	Type     string `json:"type"`
	Query    string `json:"query"`
	Client   string `json:"client"`
	Status   string `json:"status"`
	DateFrom string `json:"date_from"`
	DateTo   string `json:"date_to"`
	Page     int    `json:"page"`
	SortKey  string `json:"sort_key"`
	SortDir  string `json:"sort_dir"`
}
