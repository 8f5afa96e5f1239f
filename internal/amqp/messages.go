package amqp

import (
	"encoding/json"
	"time"

	"cassa/internal/core"
)

// Event operations.
const (
	OpCreated = "created"
	OpDeleted = "deleted"
)

// TransactionEvent announces a ledger mutation. Deleted events carry only
// the id.
type TransactionEvent struct {
	Op        string     `json:"op"`
	ID        int64      `json:"id"`
	Type      string     `json:"type,omitempty"`
	Mode      string     `json:"mode,omitempty"`
	Amount    string     `json:"amount,omitempty"`
	Date      *time.Time `json:"date,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
}

func NewCreatedEvent(tx core.Transaction) *TransactionEvent {
	date := tx.Date
	return &TransactionEvent{
		Op:        OpCreated,
		ID:        tx.ID,
		Type:      string(tx.Type),
		Mode:      string(tx.Mode),
		Amount:    tx.Amount.String(),
		Date:      &date,
		Timestamp: time.Now().UTC(),
	}
}

func NewDeletedEvent(id int64) *TransactionEvent {
	return &TransactionEvent{
		Op:        OpDeleted,
		ID:        id,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the event to JSON bytes
func (m *TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func TransactionEventFromJSON(data []byte) (*TransactionEvent, error) {
	var msg TransactionEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
