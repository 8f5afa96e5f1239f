package ledger

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vmihailenco/msgpack/v5"

	"cassa/internal/blob"
	"cassa/internal/core"
)

const (
	CodecJSON    = "json"
	CodecMsgpack = "msgpack"
)

var ErrUnknownCodec = errors.New("unknown codec")

// Codec turns the whole collection into a blob and back. Decode fails only
// when the blob is not a list at all; elements that cannot be decoded are
// counted in skipped.
type Codec interface {
	Name() string
	Format() blob.Format
	Encode(txs []core.Transaction) ([]byte, error)
	Decode(data []byte) (recs []record, skipped int, err error)
}

// record is the persisted shape of a transaction. Amount is kept as text so
// both "500" and 500 decode without losing scale.
type record struct {
	ID          int64  `json:"id" msgpack:"id"`
	Date        string `json:"date" msgpack:"date"`
	Description string `json:"description" msgpack:"description"`
	Amount      amount `json:"amount" msgpack:"amount"`
	Type        string `json:"type" msgpack:"type"`
	Mode        string `json:"mode,omitempty" msgpack:"mode,omitempty"`
}

type amount string

func (a amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(a))
}

func (a *amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = amount(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("amount must be a number or string: %w", err)
	}
	*a = amount(n.String())
	return nil
}

func toRecord(tx core.Transaction) record {
	return record{
		ID:          tx.ID,
		Date:        tx.Date.UTC().Format(time.RFC3339Nano),
		Description: tx.Description,
		Amount:      amount(amountText(tx.Amount)),
		Type:        string(tx.Type),
		Mode:        string(tx.Mode),
	}
}

// amountText renders d with the scale it was entered with ("12.50" stays
// "12.50").
func amountText(d decimal.Decimal) string {
	if exp := d.Exponent(); exp < 0 {
		return d.StringFixed(-exp)
	}
	return d.String()
}

// toTransaction validates a decoded record. Records from older blobs without
// a mode are treated as Cash.
func (r record) toTransaction() (core.Transaction, error) {
	date, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(r.Date))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse date %q: %w", r.Date, err)
	}
	amt, err := decimal.NewFromString(strings.TrimSpace(string(r.Amount)))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("%w: %q", core.ErrInvalidAmount, string(r.Amount))
	}
	typ, err := core.ParseType(r.Type)
	if err != nil {
		return core.Transaction{}, err
	}
	mode, err := core.ParseMode(r.Mode)
	if err != nil {
		return core.Transaction{}, err
	}

	tx := core.Transaction{
		ID:          r.ID,
		Date:        date.UTC(),
		Description: r.Description,
		Amount:      amt,
		Type:        typ,
		Mode:        mode,
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	return tx, nil
}

func toRecords(txs []core.Transaction) []record {
	out := make([]record, len(txs))
	for i, tx := range txs {
		out[i] = toRecord(tx)
	}
	return out
}

type jsonCodec struct{}

func (jsonCodec) Name() string { return CodecJSON }

func (jsonCodec) Format() blob.Format { return blob.FormatJSON }

func (jsonCodec) Encode(txs []core.Transaction) ([]byte, error) {
	return json.Marshal(toRecords(txs))
}

func (jsonCodec) Decode(data []byte) ([]record, int, error) {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, 0, err
	}
	recs := make([]record, 0, len(raws))
	skipped := 0
	for _, raw := range raws {
		var r record
		if err := json.Unmarshal(raw, &r); err != nil {
			skipped++
			continue
		}
		recs = append(recs, r)
	}
	return recs, skipped, nil
}

type msgpackCodec struct{}

func (msgpackCodec) Name() string { return CodecMsgpack }

func (msgpackCodec) Format() blob.Format { return blob.FormatMsgpack }

func (msgpackCodec) Encode(txs []core.Transaction) ([]byte, error) {
	return msgpack.Marshal(toRecords(txs))
}

func (msgpackCodec) Decode(data []byte) ([]record, int, error) {
	var raws []msgpack.RawMessage
	if err := msgpack.Unmarshal(data, &raws); err != nil {
		return nil, 0, err
	}
	recs := make([]record, 0, len(raws))
	skipped := 0
	for _, raw := range raws {
		var r record
		if err := msgpack.Unmarshal(raw, &r); err != nil {
			skipped++
			continue
		}
		recs = append(recs, r)
	}
	return recs, skipped, nil
}

// NewCodec returns the codec registered under name; empty means JSON.
func NewCodec(name string) (Codec, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", CodecJSON:
		return jsonCodec{}, nil
	case CodecMsgpack:
		return msgpackCodec{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, name)
	}
}
