package keystore

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"chaindrive/internal/domain"
)

// DocumentParser recognises one persisted account format.
type DocumentParser interface {
	Format() domain.DocumentFormat
	// Fields lists the Account fields Parse fills in.
	Fields() []domain.Field
	// Parse reports false when raw is not in this parser's format.
	Parse(raw []byte) (domain.Account, bool)
}

// Parsers returns the parsers in the order they are tried: current encrypted
// keystore first, then the legacy plaintext export.
func Parsers() []DocumentParser {
	return []DocumentParser{keystoreParser{}, legacyParser{}}
}

type keystoreParser struct{}

func (keystoreParser) Format() domain.DocumentFormat { return domain.FormatKeystore }

func (keystoreParser) Fields() []domain.Field {
	return []domain.Field{domain.FieldAddress, domain.FieldKeystore, domain.FieldMeta}
}

func (keystoreParser) Parse(raw []byte) (domain.Account, bool) {
	var doc domain.KeystoreDocument
	if err := json.Unmarshal(bytes.TrimSpace(raw), &doc); err != nil {
		return domain.Account{}, false
	}
	if doc.Address == "" || doc.Encoded == "" || doc.Encoding.Version == "" {
		return domain.Account{}, false
	}
	return domain.Account{
		Address:  doc.Address,
		Keystore: doc,
		Meta: domain.AccountMeta{
			Name:      doc.Meta.Name,
			CreatedAt: time.UnixMilli(doc.Meta.WhenCreated).UTC(),
		},
	}, true
}

type legacyParser struct{}

func (legacyParser) Format() domain.DocumentFormat { return domain.FormatLegacyPlaintext }

func (legacyParser) Fields() []domain.Field {
	return []domain.Field{domain.FieldAddress, domain.FieldPublicKey, domain.FieldRecoveryPhrase, domain.FieldMeta}
}

func (legacyParser) Parse(raw []byte) (domain.Account, bool) {
	var f domain.LegacyAccountFile
	if err := json.Unmarshal(bytes.TrimSpace(raw), &f); err != nil {
		return domain.Account{}, false
	}
	phrase := strings.Join(strings.Fields(f.Mnemonic), " ")
	if phrase == "" || f.Address == "" {
		return domain.Account{}, false
	}
	created, _ := time.Parse(time.RFC3339, f.CreatedAt)
	return domain.Account{
		RecoveryPhrase: phrase,
		Address:        domain.Address(f.Address),
		PublicKey:      f.PublicKey,
		Meta:           domain.AccountMeta{Name: f.Name, CreatedAt: created.UTC()},
	}, true
}
