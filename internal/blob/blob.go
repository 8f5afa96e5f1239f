// Package blob defines the persistence port used by the ledger: a durable
// key-value store holding one opaque blob per key.
package blob

import (
	"context"
	"errors"
	"strings"
)

// ErrEmptyKey is returned by implementations when asked for an empty key.
var ErrEmptyKey = errors.New("blob key cannot be empty")

// Store reads and writes whole blobs. Get reports found=false for a missing
// key; that is not an error.
type Store interface {
	Get(ctx context.Context, key string) (data []byte, found bool, err error)
	Put(ctx context.Context, key string, data []byte) error
}

// Format tells stores that name or tag objects how the blobs are encoded.
// The zero Format adds no extension and no content type.
type Format struct {
	Extension   string // with the leading dot
	ContentType string
}

var (
	FormatJSON    = Format{Extension: ".json", ContentType: "application/json"}
	FormatMsgpack = Format{Extension: ".msgpack", ContentType: "application/x-msgpack"}
)

// ValidateKey rejects empty or blank keys.
func ValidateKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return ErrEmptyKey
	}
	return nil
}
