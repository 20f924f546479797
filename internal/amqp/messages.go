package amqp

import (
	"encoding/json"
	"errors"
	"time"
)

// EventKind names a ledger change.
type EventKind string

const (
	TransactionCreated EventKind = "transaction.created"
	TransactionDeleted EventKind = "transaction.deleted"
	BudgetCreated      EventKind = "budget.created"
	BudgetDeleted      EventKind = "budget.deleted"
)

// LedgerEvent is published after a ledger write commits. It carries enough
// to route the change; consumers re-read current state from the store.
type LedgerEvent struct {
	Kind        EventKind `json:"kind"`
	UserID      string    `json:"userId"`
	EntityID    string    `json:"entityId"`
	Type        string    `json:"type,omitempty"`
	Category    string    `json:"category,omitempty"`
	AmountCents int64     `json:"amountCents,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewLedgerEvent stamps an event with the current time.
func NewLedgerEvent(kind EventKind, userID, entityID string) *LedgerEvent {
	return &LedgerEvent{
		Kind:      kind,
		UserID:    userID,
		EntityID:  entityID,
		Timestamp: time.Now().UTC(),
	}
}

func (m *LedgerEvent) Validate() error {
	switch m.Kind {
	case TransactionCreated, TransactionDeleted, BudgetCreated, BudgetDeleted:
	default:
		return errors.New("unknown event kind")
	}
	if m.UserID == "" {
		return errors.New("missing user id")
	}
	if m.EntityID == "" {
		return errors.New("missing entity id")
	}
	return nil
}

func (m *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerEventFromJSON decodes and validates an event.
func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var msg LedgerEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return &msg, nil
}
