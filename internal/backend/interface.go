// Package backend builds the blob store selected by configuration.
package backend

import (
	"context"

	"cassa/internal/blob"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the store and an optional cleanup function
type BackendResult struct {
	Store   blob.Store
	Cleanup CleanupFunc
}

// Factory creates blob stores based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// Format names and tags objects in the file and s3 backends.
	Format blob.Format

	// file
	DataDirectory string

	// sqlite
	SQLiteDBPath string

	// redis
	RedisURL       string
	RedisKeyPrefix string

	// s3
	S3Bucket   string
	S3Region   string
	S3Endpoint string
	S3Prefix   string
}

// BackendType represents the type of backend
type BackendType string

const (
	MemoryBackend BackendType = "memory"
	FileBackend   BackendType = "file"
	SQLiteBackend BackendType = "sqlite"
	RedisBackend  BackendType = "redis"
	S3Backend     BackendType = "s3"
)

func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case MemoryBackend, FileBackend, SQLiteBackend, RedisBackend, S3Backend:
		return true
	default:
		return false
	}
}
