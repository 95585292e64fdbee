package types

import "time"

// Account is a generated or retrieved keypair.
//
// RecoveryPhrase is only set right after generation or when the account was
// read from the legacy plaintext format. Only Keystore is ever persisted.
type Account struct {
	RecoveryPhrase string           `json:"-"`
	Address        Address          `json:"address"`
	PublicKey      string           `json:"public_key,omitempty"`
	Keystore       KeystoreDocument `json:"-"`
	Meta           AccountMeta      `json:"meta"`
}

// HasKeystore reports whether the account carries an encrypted keystore document.
func (a Account) HasKeystore() bool { return a.Keystore.Encoded != "" }

// AccountMeta is the descriptive part of an account.
type AccountMeta struct {
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// KeyPair is the raw secret material of an account: the 32-byte sr25519
// mini-secret seed plus its public parts.
type KeyPair struct {
	Address   Address `json:"address"`
	PublicKey []byte  `json:"public_key"`
	Seed      []byte  `json:"-"`
}
