// Package cli provides common start-up helpers for the cassa binary.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"cassa/internal/backend"
	"cassa/internal/config"
	"cassa/internal/ledger"
	"cassa/internal/log"
)

// SetupLogger builds the structured logger from LOG_LEVEL and LOG_FORMAT and
// sets it as the default logger.
func SetupLogger(cfg *config.Config) *log.Logger {
	lc := log.DefaultConfig()
	if cfg != nil {
		if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
			lc.Level = level
		}
		if cfg.LogFormat != "" {
			lc.Format = cfg.LogFormat
		}
	}
	logger := log.New(lc)
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development. A missing file is
// not an error.
func LoadEnvFile(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	existing := make([]string, 0, len(paths))
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("load env file: %w", err)
	}
	return nil
}

// LoadAndValidateConfig loads configuration and validates it.
func LoadAndValidateConfig() (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// OpenLedgerStore builds the configured blob backend and wraps it in a
// ledger store. The store is not loaded. The returned cleanup is never nil.
func OpenLedgerStore(ctx context.Context, cfg *config.Config, logger *log.Logger) (*ledger.Store, func(), error) {
	codec, err := ledger.NewCodec(cfg.LedgerCodec)
	if err != nil {
		return nil, nil, err
	}
	bc, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, nil, err
	}
	bc.Format = codec.Format()
	result, err := backend.NewFactory(logger).CreateBackend(ctx, bc)
	if err != nil {
		return nil, nil, fmt.Errorf("create %s backend: %w", bc.Type, err)
	}
	cleanup := func() {
		if result.Cleanup == nil {
			return
		}
		if err := result.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", log.FieldError, err.Error())
		}
	}

	store := ledger.NewStore(result.Store,
		ledger.WithKey(cfg.LedgerKey),
		ledger.WithCodec(codec),
		ledger.WithLogger(logger),
	)
	logger.Info("Ledger store ready", "backend", bc.Type.String(), log.FieldKey, cfg.LedgerKey, "codec", codec.Name())
	return store, cleanup, nil
}
