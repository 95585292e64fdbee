package keystore

import (
	"errors"

	"github.com/centrifuge/go-substrate-rpc-client/v4/signature"

	"chaindrive/internal/domain"
)

var errWiped = errors.New("signer has been wiped")

// Signer is a decrypted sr25519 keypair.
type Signer struct {
	pair signature.KeyringPair
}

func (s *Signer) Address() domain.Address { return domain.Address(s.pair.Address) }

func (s *Signer) PublicKey() []byte { return append([]byte(nil), s.pair.PublicKey...) }

// Sign returns an sr25519 signature over msg.
func (s *Signer) Sign(msg []byte) ([]byte, error) {
	if s.pair.URI == "" {
		return nil, errWiped
	}
	return signature.Sign(msg, s.pair.URI)
}

// KeyringPair exposes the keypair to the chain adapter for extrinsic signing.
func (s *Signer) KeyringPair() signature.KeyringPair { return s.pair }

// Wipe drops the secret URI. Go strings are immutable, so this only releases the reference.
func (s *Signer) Wipe() { s.pair.URI = "" }

var _ domain.Signer = (*Signer)(nil)
