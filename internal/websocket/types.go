package websocket

import (
	"time"

	"github.com/gorilla/websocket"
)

// EventType represents the type of WebSocket event
type EventType string

const (
	// EventTypeJobProgress reports a cleaning job milestone
	EventTypeJobProgress EventType = "job_progress"
	// EventTypeJobCompleted reports a finished cleaning job
	EventTypeJobCompleted EventType = "job_completed"
	// EventTypeJobFailed reports a cleaning job that stopped with an error
	EventTypeJobFailed EventType = "job_failed"
	// EventTypeConnection represents connection events
	EventTypeConnection EventType = "connection"
	// EventTypePong answers a client ping
	EventTypePong EventType = "pong"
)

// Event represents a WebSocket event sent to clients
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
	JobID     string    `json:"job_id,omitempty"`
}

// ProgressEvent carries one progress milestone of a job
type ProgressEvent struct {
	JobID    string `json:"jobId"`
	Progress int    `json:"progress"`
	Message  string `json:"message"`
}

// JobEvent summarizes a finished job
type JobEvent struct {
	JobID        string `json:"jobId"`
	Source       string `json:"source"`
	Rows         int    `json:"rows"`
	ChangedCells int    `json:"changedCells"`
	QualityScore int    `json:"qualityScore"`
	DurationMS   int64  `json:"durationMs"`
	Error        string `json:"error,omitempty"`
}

// ConnectionEvent represents WebSocket connection events
type ConnectionEvent struct {
	Action   string `json:"action"` // "connected", "disconnected"
	ClientID string `json:"client_id"`
	Message  string `json:"message,omitempty"`
}

// ClientMessage represents messages sent from clients to server
type ClientMessage struct {
	Type string               `json:"type"`
	Data *SubscriptionRequest `json:"data,omitempty"`
}

// SubscriptionRequest narrows the events a client receives. Empty lists
// match everything.
type SubscriptionRequest struct {
	Events []EventType `json:"events"`
	JobIDs []string    `json:"job_ids,omitempty"`
}

// Client represents a WebSocket client connection
type Client struct {
	ID           string
	Conn         *websocket.Conn
	Send         chan Event
	Subscription *SubscriptionRequest
	ConnectedAt  time.Time
	LastPing     time.Time
	IP           string
	UserAgent    string
}
