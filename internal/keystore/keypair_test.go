package keystore

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chaindrive/internal/crypto"
)

func TestKeyPair_WipingSeedClearsPair(t *testing.T) {
	seed := bytes.Repeat([]byte{7}, crypto.MiniSecretSize)

	pair, err := New().keyPair(seed)
	require.NoError(t, err)
	require.NotEmpty(t, pair.Address)

	crypto.Wipe(seed)

	assert.Equal(t, make([]byte, crypto.MiniSecretSize), pair.Seed)
}
