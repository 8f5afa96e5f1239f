package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cassa/internal/config"
	"cassa/internal/core"
	"cassa/internal/log"
)

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("CASSA_TEST_VALUE=from-file\n"), 0o600))
	t.Setenv("CASSA_TEST_VALUE", "")
	os.Unsetenv("CASSA_TEST_VALUE")

	require.NoError(t, LoadEnvFile(path))
	assert.Equal(t, "from-file", os.Getenv("CASSA_TEST_VALUE"))
}

func TestLoadEnvFileMissingIsIgnored(t *testing.T) {
	assert.NoError(t, LoadEnvFile(filepath.Join(t.TempDir(), "absent.env")))
}

func TestLoadEnvFileDoesNotOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("CASSA_TEST_KEEP=file\n"), 0o600))
	t.Setenv("CASSA_TEST_KEEP", "env")

	require.NoError(t, LoadEnvFile(path))
	assert.Equal(t, "env", os.Getenv("CASSA_TEST_KEEP"))
}

func TestLoadAndValidateConfig(t *testing.T) {
	t.Setenv("DATA_BACKEND", "memory")
	t.Setenv("PORT", "8081")
	cfg, err := LoadAndValidateConfig()
	require.NoError(t, err)
	assert.Equal(t, config.BackendMemory, cfg.DataBackend)

	t.Setenv("PORT", "nope")
	_, err = LoadAndValidateConfig()
	assert.ErrorContains(t, err, "invalid port")
}

func TestSetupLogger(t *testing.T) {
	logger := SetupLogger(&config.Config{LogLevel: "debug", LogFormat: "json"})
	assert.Equal(t, log.ComponentApp, logger.Component())
	assert.NotNil(t, SetupLogger(nil))
}

func TestOpenLedgerStoreFileBackend(t *testing.T) {
	cfg := &config.Config{
		DataBackend: config.BackendFile,
		DataDir:     t.TempDir(),
		LedgerKey:   "ledger",
		LedgerCodec: "msgpack",
	}
	ctx := context.Background()

	store, cleanup, err := OpenLedgerStore(ctx, cfg, log.Nop())
	require.NoError(t, err)
	defer cleanup()
	assert.Equal(t, "ledger", store.Key())

	tx, err := core.NewTransaction(core.Input{Amount: "10", Type: core.In}, 1, time.Now())
	require.NoError(t, err)
	require.NoError(t, store.Append(ctx, tx))

	_, err = os.Stat(filepath.Join(cfg.DataDir, "ledger.msgpack"))
	assert.NoError(t, err)

	reopened, cleanup2, err := OpenLedgerStore(ctx, cfg, log.Nop())
	require.NoError(t, err)
	defer cleanup2()
	assert.Len(t, reopened.Load(ctx), 1)
}

func TestOpenLedgerStoreRejectsUnknownCodec(t *testing.T) {
	cfg := &config.Config{DataBackend: config.BackendMemory, LedgerKey: "ledger", LedgerCodec: "xml"}
	_, _, err := OpenLedgerStore(context.Background(), cfg, log.Nop())
	assert.Error(t, err)
}
