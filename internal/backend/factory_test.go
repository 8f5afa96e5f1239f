package backend

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cassa/internal/config"
)

func roundTrip(t *testing.T, res *BackendResult) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, res.Store.Put(ctx, "nsm_transactions", []byte("[]")))
	got, found, err := res.Store.Get(ctx, "nsm_transactions")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "[]", string(got))
}

func TestCreateBackend(t *testing.T) {
	mr := miniredis.RunT(t)

	tests := []struct {
		name string
		cfg  Config
	}{
		{"memory", Config{Type: MemoryBackend}},
		{"file", Config{Type: FileBackend, DataDirectory: filepath.Join(t.TempDir(), "ledger")}},
		{"sqlite", Config{Type: SQLiteBackend, SQLiteDBPath: filepath.Join(t.TempDir(), "cassa.db")}},
		{"redis", Config{Type: RedisBackend, RedisURL: "redis://" + mr.Addr(), RedisKeyPrefix: "test:"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := NewFactory(nil).CreateBackend(context.Background(), tt.cfg)
			require.NoError(t, err)
			if res.Cleanup != nil {
				t.Cleanup(func() { res.Cleanup() })
			}
			roundTrip(t, res)
		})
	}
}

func TestCreateS3BackendDoesNotDial(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")
	res, err := NewFactory(nil).CreateBackend(context.Background(), Config{
		Type:       S3Backend,
		S3Bucket:   "ledger",
		S3Region:   "eu-west-1",
		S3Endpoint: "http://127.0.0.1:9",
	})
	require.NoError(t, err)
	assert.NotNil(t, res.Store)
}

func TestCreateBackendRejectsInvalidConfig(t *testing.T) {
	tests := []Config{
		{Type: "sheets"},
		{Type: FileBackend},
		{Type: SQLiteBackend},
		{Type: RedisBackend},
		{Type: S3Backend},
	}
	for _, cfg := range tests {
		_, err := NewFactory(nil).CreateBackend(context.Background(), cfg)
		assert.Error(t, err, cfg.Type)
	}
}

func TestFromAppConfig(t *testing.T) {
	_, err := FromAppConfig(nil)
	assert.Error(t, err)

	_, err = FromAppConfig(&config.Config{DataBackend: "postgres"})
	assert.Error(t, err)

	cfg, err := FromAppConfig(&config.Config{DataBackend: "redis", RedisURL: "redis://x", RedisKeyPrefix: "p:"})
	require.NoError(t, err)
	assert.Equal(t, RedisBackend, cfg.Type)
	assert.Equal(t, "p:", cfg.RedisKeyPrefix)
	assert.Len(t, GetBackendTypes(), 5)
}
