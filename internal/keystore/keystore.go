package keystore

import (
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/centrifuge/go-substrate-rpc-client/v4/signature"
	"github.com/vedhavyas/go-subkey/v2"

	"chaindrive/internal/crypto"
	"chaindrive/internal/domain"
)

// DefaultNetwork is the SS58 prefix of the generic Substrate test networks.
const DefaultNetwork uint16 = 42

var (
	keystoreContent = []string{"seed", "sr25519"}
	keystoreType    = []string{"scrypt", "chacha20-poly1305"}
)

// Keystore generates sr25519 accounts and seals them into keystore documents.
type Keystore struct {
	network uint16
	params  crypto.ScryptParams
	parsers []DocumentParser
	now     func() time.Time
}

// Option customises a Keystore.
type Option func(*Keystore)

// WithNetwork sets the SS58 prefix used for addresses.
func WithNetwork(n uint16) Option { return func(k *Keystore) { k.network = n } }

// WithScryptParams overrides the key-derivation cost.
func WithScryptParams(p crypto.ScryptParams) Option { return func(k *Keystore) { k.params = p } }

// WithClock overrides the time source for document metadata.
func WithClock(now func() time.Time) Option { return func(k *Keystore) { k.now = now } }

// New returns a Keystore using the default parsers.
func New(opts ...Option) *Keystore {
	k := &Keystore{
		network: DefaultNetwork,
		params:  crypto.DefaultScryptParams(),
		parsers: Parsers(),
		now:     time.Now,
	}
	for _, o := range opts {
		o(k)
	}
	return k
}

// Generate creates a fresh recovery phrase and the account derived from it.
func (k *Keystore) Generate(label, passphrase string) (domain.Account, error) {
	phrase, err := crypto.NewMnemonic()
	if err != nil {
		return domain.Account{}, fmt.Errorf("generate mnemonic: %w", err)
	}
	return k.FromPhrase(phrase, label, passphrase)
}

// FromPhrase derives the account for phrase and seals its secret under passphrase.
func (k *Keystore) FromPhrase(phrase, label, passphrase string) (domain.Account, error) {
	seed, err := crypto.MiniSecretFromMnemonic(phrase, "")
	if err != nil {
		return domain.Account{}, err
	}
	defer crypto.Wipe(seed)

	pair, err := k.keyPair(seed)
	if err != nil {
		return domain.Account{}, err
	}
	doc, err := k.EncryptToDocument(pair, label, passphrase)
	if err != nil {
		return domain.Account{}, err
	}

	return domain.Account{
		RecoveryPhrase: phrase,
		Address:        pair.Address,
		PublicKey:      "0x" + hex.EncodeToString(pair.PublicKey),
		Keystore:       doc,
		Meta: domain.AccountMeta{
			Name:      label,
			CreatedAt: time.UnixMilli(doc.Meta.WhenCreated).UTC(),
		},
	}, nil
}

// EncryptToDocument seals pair.Seed under passphrase.
func (k *Keystore) EncryptToDocument(
	pair domain.KeyPair,
	label, passphrase string,
) (domain.KeystoreDocument, error) {
	if len(pair.Seed) != crypto.MiniSecretSize {
		return domain.KeystoreDocument{}, fmt.Errorf("seed must be %d bytes", crypto.MiniSecretSize)
	}
	sealed, err := crypto.Seal(passphrase, pair.Seed, k.params)
	if err != nil {
		return domain.KeystoreDocument{}, fmt.Errorf("seal keystore: %w", err)
	}
	return domain.KeystoreDocument{
		Address: pair.Address,
		Encoded: base64.StdEncoding.EncodeToString(sealed),
		Encoding: domain.KeystoreEncoding{
			Content: append([]string(nil), keystoreContent...),
			Type:    append([]string(nil), keystoreType...),
			Version: domain.KeystoreVersion,
		},
		Meta: domain.KeystoreMeta{
			Name:        label,
			WhenCreated: k.now().UnixMilli(),
		},
	}, nil
}

// DecryptDocument opens doc and returns a signer for the sealed keypair.
func (k *Keystore) DecryptDocument(doc domain.KeystoreDocument, passphrase string) (domain.Signer, error) {
	if doc.Encoded == "" {
		return nil, domain.ErrNoKeystore
	}
	if doc.Encoding.Version != domain.KeystoreVersion {
		return nil, fmt.Errorf("%w: unsupported version %q", domain.ErrMalformedKeystore, doc.Encoding.Version)
	}
	sealed, err := base64.StdEncoding.DecodeString(doc.Encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedKeystore, err)
	}

	seed, err := crypto.Open(passphrase, sealed)
	switch {
	case errors.Is(err, crypto.ErrWrongPassphrase):
		return nil, domain.ErrWrongPassphrase
	case err != nil:
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedKeystore, err)
	}
	defer crypto.Wipe(seed)
	if len(seed) != crypto.MiniSecretSize {
		return nil, fmt.Errorf("%w: sealed seed has %d bytes", domain.ErrMalformedKeystore, len(seed))
	}

	kp, err := signature.KeyringPairFromSecret(seedURI(seed), k.network)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedKeystore, err)
	}
	if err := matchAddress(doc.Address, kp.PublicKey); err != nil {
		return nil, err
	}
	return &Signer{pair: kp}, nil
}

// ParseDocument runs the parsers in order and returns the first match.
func (k *Keystore) ParseDocument(raw []byte) (domain.ParsedDocument, error) {
	for _, p := range k.parsers {
		acc, ok := p.Parse(raw)
		if !ok {
			continue
		}
		return domain.ParsedDocument{Format: p.Format(), Account: acc, Populated: p.Fields()}, nil
	}
	return domain.ParsedDocument{}, domain.ErrUnrecognizedKeystore
}

// keyPair derives the keypair for seed. The pair shares seed's buffer, so
// wiping seed also clears pair.Seed.
func (k *Keystore) keyPair(seed []byte) (domain.KeyPair, error) {
	kp, err := signature.KeyringPairFromSecret(seedURI(seed), k.network)
	if err != nil {
		return domain.KeyPair{}, fmt.Errorf("derive keypair: %w", err)
	}
	return domain.KeyPair{
		Address:   domain.Address(kp.Address),
		PublicKey: kp.PublicKey,
		Seed:      seed,
	}, nil
}

func seedURI(seed []byte) string { return "0x" + hex.EncodeToString(seed) }

// matchAddress checks that the document's address encodes pub, whatever its SS58 prefix.
func matchAddress(addr domain.Address, pub []byte) error {
	if addr == "" {
		return nil
	}
	_, decoded, err := subkey.SS58Decode(addr.String())
	if err != nil {
		return fmt.Errorf("%w: address: %v", domain.ErrMalformedKeystore, err)
	}
	if hex.EncodeToString(decoded) != hex.EncodeToString(pub) {
		return fmt.Errorf("%w: address does not match sealed key", domain.ErrMalformedKeystore)
	}
	return nil
}

// Compile-time assertion that Keystore implements domain.AccountKeystore.
var _ domain.AccountKeystore = (*Keystore)(nil)
