// Package events fans pipeline progress out to SSE subscribers.
package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	TypeState = "run.state"
	TypeDone  = "run.done"
	TypeError = "run.error"
)

type Event struct {
	Type    string          `json:"type"`
	Version int             `json:"v"`
	At      time.Time       `json:"at"`
	RunID   string          `json:"run_id,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// NewRunID returns a fresh identifier for one pipeline run.
func NewRunID() string { return uuid.NewString() }

func New(runID, typ string, data any) Event {
	var raw json.RawMessage
	if data != nil {
		b, _ := json.Marshal(data)
		raw = b
	}
	return Event{
		Type:    typ,
		Version: 1,
		At:      time.Now().UTC(),
		RunID:   runID,
		Data:    raw,
	}
}

// String is the JSON form written to the wire.
func (e Event) String() string {
	b, _ := json.Marshal(e)
	return string(b)
}
