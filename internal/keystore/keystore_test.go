package keystore_test

import (
	"encoding/base64"
	"encoding/json"
	"testing"
	"time"

	"github.com/centrifuge/go-substrate-rpc-client/v4/signature"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chaindrive/internal/crypto"
	"chaindrive/internal/domain"
	"chaindrive/internal/keystore"
)

const (
	devPhrase  = "bottom drive obey lake curtain smoke basket hold race lonely fit walk"
	devAddress = "5DfhGyQdFobKM8NsWvEeAKk5EQQgYe9AydgJ7rMB6E1EqRzV"
	devPubKey  = "0x46ebddef8cd9bb167dc30878d7113b7e168e6f0646beffd77d69d39bad76b47a"
	pass       = "Correct-Horse-9"
)

func newKeystore() *keystore.Keystore {
	clock := func() time.Time { return time.UnixMilli(1_700_000_000_000) }
	return keystore.New(
		keystore.WithScryptParams(crypto.ScryptParams{N: 1 << 10, R: 8, P: 1}),
		keystore.WithClock(clock),
	)
}

func TestFromPhrase_DevAccount(t *testing.T) {
	ks := newKeystore()

	acc, err := ks.FromPhrase(devPhrase, "dev", pass)
	require.NoError(t, err)

	assert.Equal(t, domain.Address(devAddress), acc.Address)
	assert.Equal(t, devPubKey, acc.PublicKey)
	assert.Equal(t, devPhrase, acc.RecoveryPhrase)
	assert.Equal(t, "dev", acc.Keystore.Meta.Name)
	assert.Equal(t, int64(1_700_000_000_000), acc.Keystore.Meta.WhenCreated)
	assert.Equal(t, []string{"seed", "sr25519"}, acc.Keystore.Encoding.Content)
	assert.Equal(t, domain.KeystoreVersion, acc.Keystore.Encoding.Version)
}

func TestGenerate_RoundTrip(t *testing.T) {
	ks := newKeystore()

	acc, err := ks.Generate("label", pass)
	require.NoError(t, err)
	require.NotEmpty(t, acc.RecoveryPhrase)
	require.True(t, acc.HasKeystore())

	signer, err := ks.DecryptDocument(acc.Keystore, pass)
	require.NoError(t, err)
	assert.Equal(t, acc.Address, signer.Address())

	msg := []byte("payload")
	sig, err := signer.Sign(msg)
	require.NoError(t, err)
	uri := signer.(*keystore.Signer).KeyringPair().URI
	ok, err := signature.Verify(msg, sig, uri)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestDocumentNeverContainsPhrase(t *testing.T) {
	ks := newKeystore()
	acc, err := ks.FromPhrase(devPhrase, "dev", pass)
	require.NoError(t, err)

	raw, err := json.Marshal(acc.Keystore)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "bottom drive")

	sealed, err := base64.StdEncoding.DecodeString(acc.Keystore.Encoded)
	require.NoError(t, err)
	assert.NotContains(t, string(sealed), "bottom drive")
}

func TestDecryptDocument_Errors(t *testing.T) {
	ks := newKeystore()
	acc, err := ks.FromPhrase(devPhrase, "dev", pass)
	require.NoError(t, err)

	_, err = ks.DecryptDocument(acc.Keystore, "wrong")
	assert.ErrorIs(t, err, domain.ErrWrongPassphrase)

	_, err = ks.DecryptDocument(domain.KeystoreDocument{}, pass)
	assert.ErrorIs(t, err, domain.ErrNoKeystore)

	bad := acc.Keystore
	bad.Encoded = "%%%not-base64"
	_, err = ks.DecryptDocument(bad, pass)
	assert.ErrorIs(t, err, domain.ErrMalformedKeystore)

	bad = acc.Keystore
	bad.Encoding.Version = "7"
	_, err = ks.DecryptDocument(bad, pass)
	assert.ErrorIs(t, err, domain.ErrMalformedKeystore)

	other, err := ks.Generate("other", pass)
	require.NoError(t, err)
	bad = acc.Keystore
	bad.Address = other.Address
	_, err = ks.DecryptDocument(bad, pass)
	assert.ErrorIs(t, err, domain.ErrMalformedKeystore)
}

func TestSigner_Wipe(t *testing.T) {
	ks := newKeystore()
	acc, err := ks.Generate("w", pass)
	require.NoError(t, err)
	signer, err := ks.DecryptDocument(acc.Keystore, pass)
	require.NoError(t, err)

	signer.Wipe()
	_, err = signer.Sign([]byte("x"))
	assert.Error(t, err)
}
