package crypto

import (
	"crypto/sha512"
	"errors"

	"github.com/tyler-smith/go-bip39"
	"golang.org/x/crypto/pbkdf2"
)

// MiniSecretSize is the length of an sr25519 mini-secret.
const MiniSecretSize = 32

// ErrInvalidMnemonic is returned for phrases that fail the BIP-39 checksum.
var ErrInvalidMnemonic = errors.New("invalid recovery phrase")

// NewMnemonic returns a fresh 12-word BIP-39 phrase.
func NewMnemonic() (string, error) {
	entropy, err := bip39.NewEntropy(128)
	if err != nil {
		return "", err
	}
	defer Wipe(entropy)
	return bip39.NewMnemonic(entropy)
}

// MiniSecretFromMnemonic derives the sr25519 mini-secret the way Substrate
// tooling does: PBKDF2-HMAC-SHA512 over the mnemonic entropy (not the phrase)
// with salt "mnemonic"+password, truncated to 32 bytes.
func MiniSecretFromMnemonic(phrase, password string) ([]byte, error) {
	entropy, err := bip39.EntropyFromMnemonic(phrase)
	if err != nil {
		return nil, ErrInvalidMnemonic
	}
	defer Wipe(entropy)

	seed := pbkdf2.Key(entropy, []byte("mnemonic"+password), 2048, 64, sha512.New)
	out := make([]byte, MiniSecretSize)
	copy(out, seed[:MiniSecretSize])
	Wipe(seed)
	return out, nil
}
