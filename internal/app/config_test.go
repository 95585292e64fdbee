package app_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chaindrive/internal/app"
	"chaindrive/internal/domain"
)

func writeFile(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600))
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := app.LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, app.DefaultChainEndpoint, cfg.ChainEndpoint)
	assert.Equal(t, domain.Address(app.DefaultRecipient), cfg.Recipient)
	assert.Equal(t, "1000000000", cfg.Amount.String())
	assert.Equal(t, uint16(42), cfg.SS58Network)
	assert.Equal(t, 2*time.Minute, cfg.TxTimeout)
	assert.True(t, cfg.AllowLegacyKeystore)
	assert.Empty(t, cfg.KeystorePassphrase)
}

func TestLoadConfig_Precedence(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".env", "CHAINDRIVE_CHAIN_ENDPOINT=ws://base\nCHAINDRIVE_AMOUNT=5\nCHAINDRIVE_TX_TIMEOUT=30s\n")
	writeFile(t, dir, ".env.staging", "CHAINDRIVE_CHAIN_ENDPOINT=ws://staging\nCHAINDRIVE_ALLOW_LEGACY_KEYSTORE=false\n")
	t.Setenv("CHAINDRIVE_ENV", "staging")
	t.Setenv("CHAINDRIVE_AMOUNT", "7")

	cfg, err := app.LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "staging", cfg.Env)
	assert.Equal(t, "ws://staging", cfg.ChainEndpoint)
	assert.Equal(t, "7", cfg.Amount.String())
	assert.Equal(t, 30*time.Second, cfg.TxTimeout)
	assert.False(t, cfg.AllowLegacyKeystore)
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Setenv("CHAINDRIVE_AMOUNT", "-1")
	t.Setenv("CHAINDRIVE_SESSION_KEY", "abcd")
	t.Setenv("CHAINDRIVE_SECURE_COOKIE", "maybe")

	_, err := app.LoadConfig(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AMOUNT")
	assert.Contains(t, err.Error(), "SESSION_KEY")
	assert.Contains(t, err.Error(), "SECURE_COOKIE")
}

func TestNewWire(t *testing.T) {
	cfg, err := app.LoadConfig(t.TempDir())
	require.NoError(t, err)
	cfg.AccessToken = "tok"

	w, err := app.NewWire(cfg, nil)
	require.NoError(t, err)
	assert.Nil(t, w.Login)

	_, err = w.NewServer(cfg, nil)
	assert.Error(t, err)

	sess := w.CLISession(cfg)
	tok, ok := sess.Token()
	require.True(t, ok)
	assert.Equal(t, "tok", tok)

	cfg.GoogleClientID = "client"
	w, err = app.NewWire(cfg, nil)
	require.NoError(t, err)
	srv, err := w.NewServer(cfg, nil)
	require.NoError(t, err)
	assert.NotNil(t, srv)
}
