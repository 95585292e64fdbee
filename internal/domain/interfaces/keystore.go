package interfaces

import domaintypes "chaindrive/internal/domain/types"

// Signer is a decrypted keypair able to produce signatures.
type Signer interface {
	Address() domaintypes.Address
	PublicKey() []byte
	Sign(msg []byte) ([]byte, error)
	// Wipe drops the secret material; the signer is unusable afterwards.
	Wipe()
}

// AccountKeystore generates accounts and converts them to and from keystore documents.
type AccountKeystore interface {
	// Generate creates a fresh mnemonic, derives the keypair and encrypts it
	// under passphrase. The returned account carries the recovery phrase.
	Generate(label, passphrase string) (domaintypes.Account, error)
	// FromPhrase rebuilds an account from a recovery phrase.
	FromPhrase(phrase, label, passphrase string) (domaintypes.Account, error)
	EncryptToDocument(pair domaintypes.KeyPair, label, passphrase string) (domaintypes.KeystoreDocument, error)
	// DecryptDocument fails with ErrWrongPassphrase or ErrMalformedKeystore.
	DecryptDocument(doc domaintypes.KeystoreDocument, passphrase string) (Signer, error)
	// ParseDocument tries every known document format in order.
	ParseDocument(raw []byte) (domaintypes.ParsedDocument, error)
}
