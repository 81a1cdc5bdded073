package amqp

import (
	"encoding/json"
	"time"
)

// Event kinds carried on the ledger event stream.
const (
	EventTransactionAdded   = "transaction_added"
	EventTransactionDeleted = "transaction_deleted"
	EventLedgerReset        = "ledger_reset"
)

// LedgerEvent describes one ledger mutation. Added events carry the full
// transaction facts; delete and reset events only identify what changed.
type LedgerEvent struct {
	Kind          string    `json:"kind"`
	UserID        string    `json:"user_id"`
	TransactionID string    `json:"transaction_id,omitempty"`
	Category      string    `json:"category,omitempty"`
	Label         string    `json:"label,omitempty"`
	AmountCents   int64     `json:"amount_cents,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// ToJSON converts the event to JSON bytes
func (e *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// LedgerEventFromJSON creates an event from JSON bytes
func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var ev LedgerEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}
