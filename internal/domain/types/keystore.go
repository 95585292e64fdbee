package types

// KeystoreVersion is the current encrypted keystore document version.
const KeystoreVersion = "1"

// KeystoreDocument is the encrypted keystore persisted to remote storage.
type KeystoreDocument struct {
	Address  Address          `json:"address"`
	Encoded  string           `json:"encoded"`
	Encoding KeystoreEncoding `json:"encoding"`
	Meta     KeystoreMeta     `json:"meta"`
}

// KeystoreEncoding describes the payload and the cipher suite of Encoded.
type KeystoreEncoding struct {
	Content []string `json:"content"`
	Type    []string `json:"type"`
	Version string   `json:"version"`
}

// KeystoreMeta carries the account name and creation time (unix millis).
type KeystoreMeta struct {
	Name        string `json:"name"`
	WhenCreated int64  `json:"whenCreated"`
}

// LegacyAccountFile is the deprecated plaintext account export. It carries the
// recovery phrase in the clear and is only ever read.
type LegacyAccountFile struct {
	Mnemonic  string `json:"mnemonic"`
	Address   string `json:"address"`
	PublicKey string `json:"publicKey"`
	Name      string `json:"name"`
	CreatedAt string `json:"createdAt"`
}

// DocumentFormat tags which parser recognised a persisted account file.
type DocumentFormat int

const (
	FormatUnknown DocumentFormat = iota
	FormatKeystore
	FormatLegacyPlaintext
)

func (f DocumentFormat) String() string {
	switch f {
	case FormatKeystore:
		return "keystore"
	case FormatLegacyPlaintext:
		return "legacy-plaintext"
	default:
		return "unknown"
	}
}

// Field names an Account field a document parser can populate.
type Field string

const (
	FieldAddress        Field = "address"
	FieldPublicKey      Field = "public_key"
	FieldKeystore       Field = "keystore"
	FieldRecoveryPhrase Field = "recovery_phrase"
	FieldMeta           Field = "meta"
)

// ParsedDocument is the tagged result of parsing a persisted account file.
type ParsedDocument struct {
	Format  DocumentFormat
	Account Account
	// Populated lists the fields the parser filled in.
	Populated []Field
}

// Has reports whether the parser populated f.
func (p ParsedDocument) Has(f Field) bool {
	for _, x := range p.Populated {
		if x == f {
			return true
		}
	}
	return false
}
