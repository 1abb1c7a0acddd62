package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType names a change to the ledger.
type EventType string

const (
	EventEntryCreated    EventType = "entry.created"
	EventEntryDeleted    EventType = "entry.deleted"
	EventSettingsUpdated EventType = "settings.updated"
)

// LedgerEvent tells consumers that the ledger changed. It carries no figures:
// consumers reproject from the database, so a lost or reordered event can
// never leave a stale balance behind.
type LedgerEvent struct {
	Type      EventType `json:"type"`
	EntryID   int64     `json:"entry_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewLedgerEvent stamps an event with the current time.
func NewLedgerEvent(t EventType, entryID int64) *LedgerEvent {
	return &LedgerEvent{
		Type:      t,
		EntryID:   entryID,
		Timestamp: time.Now().UTC(),
	}
}

// Validate rejects events with an unknown type.
func (e *LedgerEvent) Validate() error {
	switch e.Type {
	case EventEntryCreated, EventEntryDeleted, EventSettingsUpdated:
		return nil
	default:
		return fmt.Errorf("unknown ledger event type %q", e.Type)
	}
}

// ToJSON converts the event to JSON bytes
func (e *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// LedgerEventFromJSON decodes and validates an event body.
func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var e LedgerEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return &e, nil
}
