package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	In  Type = "in"
	Out Type = "out"

	Cash Mode = "Cash"
	UPI  Mode = "UPI"
	Card Mode = "Card"
)

// DefaultDescription replaces an empty description at creation time.
const DefaultDescription = "No description"

type (
	// Type is the direction of a cash movement.
	Type string

	// Mode is the payment channel of an incoming movement.
	Mode string

	Transaction struct {
		ID          int64
		Date        time.Time // creation instant, UTC
		Description string
		Amount      decimal.Decimal
		Type        Type
		Mode        Mode // always Cash for Out
	}

	// Input is what the user submits; ID and Date are assigned by the ledger.
	Input struct {
		Description string
		Amount      string
		Type        Type
		Mode        Mode
	}
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidType   = errors.New("invalid transaction type")
	ErrInvalidMode   = errors.New("invalid payment mode")
	ErrInvalidID     = errors.New("invalid transaction id")
	ErrZeroDate      = errors.New("date cannot be zero")
)

// Modes lists the payment modes in display order.
func Modes() []Mode {
	return []Mode{Cash, UPI, Card}
}

func (t Type) Validate() error {
	switch t {
	case In, Out:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidType, string(t))
	}
}

// Label returns the human label used in listings and exports.
func (t Type) Label() string {
	if t == In {
		return "Cash In"
	}
	return "Cash Out"
}

func (m Mode) Validate() error {
	switch m {
	case Cash, UPI, Card:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidMode, string(m))
	}
}

// ParseType accepts the persisted values as well as the display labels.
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "in", "cash in":
		return In, nil
	case "out", "cash out":
		return Out, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidType, s)
	}
}

// ParseMode is case-insensitive; an empty value means Cash.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "cash":
		return Cash, nil
	case "upi":
		return UPI, nil
	case "card":
		return Card, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
}

// Validate checks the stored-record invariants.
func (t Transaction) Validate() error {
	if t.ID <= 0 {
		return ErrInvalidID
	}
	if t.Date.IsZero() {
		return ErrZeroDate
	}
	if !t.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if err := t.Type.Validate(); err != nil {
		return err
	}
	if err := t.Mode.Validate(); err != nil {
		return err
	}
	if t.Type == Out && t.Mode != Cash {
		return fmt.Errorf("%w: expenses are always %s", ErrInvalidMode, Cash)
	}
	return nil
}

// IsIn reports whether the transaction is an incoming movement.
func (t Transaction) IsIn() bool {
	return t.Type == In
}

// NewTransaction validates the input and builds the record. The mode is
// forced to Cash for outgoing movements.
func NewTransaction(in Input, id int64, at time.Time) (Transaction, error) {
	amount, err := ParseAmount(in.Amount)
	if err != nil {
		return Transaction{}, err
	}
	if err := in.Type.Validate(); err != nil {
		return Transaction{}, err
	}
	mode := in.Mode
	if in.Type == Out {
		mode = Cash
	} else if mode == "" {
		mode = Cash
	}
	if err := mode.Validate(); err != nil {
		return Transaction{}, err
	}

	desc := strings.TrimSpace(in.Description)
	if desc == "" {
		desc = DefaultDescription
	}

	tx := Transaction{
		ID:          id,
		Date:        at.UTC(),
		Description: desc,
		Amount:      amount,
		Type:        in.Type,
		Mode:        mode,
	}
	if err := tx.Validate(); err != nil {
		return Transaction{}, err
	}
	return tx, nil
}
