package backend

import (
	"context"
	"fmt"

	"cassa/internal/blob/file"
	"cassa/internal/blob/memory"
	redisblob "cassa/internal/blob/redis"
	s3blob "cassa/internal/blob/s3"
	"cassa/internal/log"
	"cassa/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.Nop()
	}
	return &DefaultFactory{logger: logger.WithComponent(log.ComponentBackend)}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case MemoryBackend:
		f.logger.Warn("Using in-memory backend, transactions will not survive a restart")
		return &BackendResult{Store: memory.New()}, nil
	case FileBackend:
		return f.createFileBackend(config)
	case SQLiteBackend:
		return f.createSQLiteBackend(config)
	case RedisBackend:
		return f.createRedisBackend(ctx, config)
	case S3Backend:
		return f.createS3Backend(ctx, config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createFileBackend(config Config) (*BackendResult, error) {
	store, err := file.New(config.DataDirectory, config.Format)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize file backend: %w", err)
	}
	f.logger.Info("Initialized file backend", "data_directory", config.DataDirectory)
	return &BackendResult{Store: store}, nil
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*BackendResult, error) {
	store, err := storage.NewSQLiteStore(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite store: %w", err)
	}
	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)
	return &BackendResult{Store: store, Cleanup: store.Close}, nil
}

func (f *DefaultFactory) createRedisBackend(ctx context.Context, config Config) (*BackendResult, error) {
	client, err := redisblob.Dial(ctx, config.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Redis backend: %w", err)
	}
	f.logger.Info("Initialized Redis backend", "prefix", config.RedisKeyPrefix)
	return &BackendResult{
		Store:   redisblob.New(client, config.RedisKeyPrefix),
		Cleanup: client.Close,
	}, nil
}

func (f *DefaultFactory) createS3Backend(ctx context.Context, config Config) (*BackendResult, error) {
	client, err := s3blob.NewClient(ctx, s3blob.Options{Region: config.S3Region, Endpoint: config.S3Endpoint})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize S3 backend: %w", err)
	}
	f.logger.Info("Initialized S3 backend",
		"bucket", config.S3Bucket,
		"prefix", config.S3Prefix,
		"custom_endpoint", config.S3Endpoint != "")
	return &BackendResult{Store: s3blob.New(client, config.S3Bucket, config.S3Prefix, config.Format)}, nil
}
