package account

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"chaindrive/internal/domain"
	"chaindrive/internal/session"
)

const (
	// KeystorePrefix names encrypted keystore files.
	KeystorePrefix = "substrate-keystore-"
	// LegacyPrefix names deprecated plaintext account exports.
	LegacyPrefix = "substrate-account-"

	searchPageSize = 10
)

// Queries used by Retrieve, current convention first.
var (
	CurrentQuery = fmt.Sprintf("name contains '%s' and trashed = false", KeystorePrefix)
	LegacyQuery  = fmt.Sprintf("name contains '%s' and trashed = false", LegacyPrefix)
)

// Config holds the account controller settings.
type Config struct {
	// Passphrase seals and opens keystore documents.
	Passphrase string
	// FolderID is the Drive folder keystores are uploaded to; empty means root.
	FolderID string
	// AllowLegacy enables reading plaintext account exports.
	AllowLegacy bool
}

// Service is the keystore lifecycle controller.
type Service struct {
	keystore domain.AccountKeystore
	storage  domain.FileStorage
	cfg      Config
	log      *zap.Logger
	now      func() time.Time
}

// New returns an account controller.
func New(ks domain.AccountKeystore, st domain.FileStorage, cfg Config, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{keystore: ks, storage: st, cfg: cfg, log: log, now: time.Now}
}

// FileName returns the Drive file name for a keystore of addr created at t.
func FileName(addr domain.Address, t time.Time) string {
	return fmt.Sprintf("%s%s-%d.json", KeystorePrefix, addr.Prefix(8), t.UnixMilli())
}

// Generate creates a new account and makes it the session's account.
func (s *Service) Generate(ctx context.Context, sess *session.Session, label string) (domain.Account, error) {
	if _, ok := sess.Identity(); !ok {
		return domain.Account{}, domain.ErrNotAuthenticated
	}
	release, err := sess.BeginAccount(session.AccountGenerating)
	if err != nil {
		return domain.Account{}, err
	}
	defer release()

	if err := checkPassphrase(s.cfg.Passphrase); err != nil {
		sess.Notify(domain.LevelError, "generate", "", err.Error())
		return domain.Account{}, domain.Wrap(domain.KindPrecondition, "generate", "", err)
	}
	if err := ctx.Err(); err != nil {
		return domain.Account{}, err
	}

	acc, err := s.keystore.Generate(label, s.cfg.Passphrase)
	if err != nil {
		s.log.Error("account generation failed", zap.Error(err))
		sess.Notify(domain.LevelError, "generate", "", "Account generation failed")
		return domain.Account{}, domain.Wrap(domain.KindKeystore, "generate", "", err)
	}

	sess.SetAccount(acc)
	s.log.Info("account generated", zap.String("address", acc.Address.Short()))
	sess.Notify(domain.LevelInfo, "generate", "", "Account generated: "+acc.Address.Short())
	return acc, nil
}

// Persist uploads the session account's keystore document.
func (s *Service) Persist(ctx context.Context, sess *session.Session) (domain.File, error) {
	token, ok := sess.Token()
	if !ok {
		return domain.File{}, domain.ErrNotAuthenticated
	}
	acc, ok := sess.Account()
	if !ok {
		return domain.File{}, domain.ErrNoAccount
	}
	if !acc.HasKeystore() {
		return domain.File{}, domain.ErrNoKeystore
	}
	release, err := sess.BeginAccount(session.AccountPersisting)
	if err != nil {
		return domain.File{}, err
	}
	defer release()

	name := FileName(acc.Address, s.now())
	raw, err := json.MarshalIndent(acc.Keystore, "", "  ")
	if err != nil {
		return domain.File{}, domain.Wrap(domain.KindKeystore, "persist", name, err)
	}

	f, err := s.storage.Upload(ctx, token, raw, name, s.cfg.FolderID, nil)
	if err != nil {
		s.log.Warn("keystore upload failed", zap.String("file", name), zap.Error(err))
		sess.Notify(domain.LevelError, "persist", name, "Saving keystore failed: "+err.Error())
		return domain.File{}, domain.Wrap(domain.KindStorage, "persist", name, err)
	}

	s.log.Info("keystore persisted", zap.String("file", name), zap.String("id", f.ID))
	sess.Notify(domain.LevelInfo, "persist", name, "Keystore saved to Drive as "+name)
	s.refresh(ctx, sess, token)
	return f, nil
}

// Retrieve loads the newest persisted account into the session.
func (s *Service) Retrieve(ctx context.Context, sess *session.Session) (domain.Account, error) {
	token, ok := sess.Token()
	if !ok {
		return domain.Account{}, domain.ErrNotAuthenticated
	}
	release, err := sess.BeginAccount(session.AccountRetrieving)
	if err != nil {
		return domain.Account{}, err
	}
	defer release()

	f, err := s.find(ctx, token)
	if err != nil {
		s.log.Warn("keystore search failed", zap.Error(err))
		sess.Notify(domain.LevelError, "retrieve", "", "Searching Drive failed: "+err.Error())
		return domain.Account{}, domain.Wrap(domain.KindStorage, "retrieve", "", err)
	}
	if f == nil {
		sess.Notify(domain.LevelWarning, "retrieve", "", "No keystore file found in Drive")
		return domain.Account{}, domain.Wrap(domain.KindKeystore, "retrieve", "", domain.ErrKeystoreNotFound)
	}

	raw, err := s.storage.Download(ctx, token, f.ID)
	if err != nil {
		sess.Notify(domain.LevelError, "retrieve", f.Name, "Downloading keystore failed: "+err.Error())
		return domain.Account{}, domain.Wrap(domain.KindStorage, "retrieve", f.Name, err)
	}

	acc, err := s.decode(sess, f.Name, raw)
	if err != nil {
		sess.Notify(domain.LevelError, "retrieve", f.Name, "Reading keystore failed: "+err.Error())
		return domain.Account{}, domain.Wrap(domain.KindKeystore, "retrieve", f.Name, err)
	}

	sess.SetAccount(acc)
	s.log.Info("account retrieved", zap.String("file", f.Name), zap.String("address", acc.Address.Short()))
	sess.Notify(domain.LevelInfo, "retrieve", f.Name, "Account loaded: "+acc.Address.Short())
	return acc, nil
}

// LoadSigner decrypts acc's keystore document with passphrase.
func (s *Service) LoadSigner(_ context.Context, acc domain.Account, passphrase string) (domain.Signer, error) {
	if !acc.HasKeystore() {
		return nil, domain.ErrNoKeystore
	}
	signer, err := s.keystore.DecryptDocument(acc.Keystore, passphrase)
	if err != nil {
		return nil, domain.Wrap(domain.KindKeystore, "load signer", "", err)
	}
	return signer, nil
}

// Passphrase returns the configured keystore passphrase.
func (s *Service) Passphrase() string { return s.cfg.Passphrase }

// find returns the first file under the current naming, else under the
// legacy naming, else nil. The legacy search runs only when the first is empty.
func (s *Service) find(ctx context.Context, token string) (*domain.File, error) {
	queries := []string{CurrentQuery}
	if s.cfg.AllowLegacy {
		queries = append(queries, LegacyQuery)
	}
	for _, q := range queries {
		res, err := s.storage.List(ctx, token, domain.ListQuery{PageSize: searchPageSize, Query: q})
		if err != nil {
			return nil, err
		}
		if len(res.Files) > 0 {
			f := res.Files[0]
			return &f, nil
		}
	}
	return nil, nil
}

// decode parses raw and, for legacy plaintext files, rebuilds an encrypted
// keystore from the phrase so a later persist writes only the sealed form.
func (s *Service) decode(sess *session.Session, name string, raw []byte) (domain.Account, error) {
	parsed, err := s.keystore.ParseDocument(raw)
	if err != nil {
		return domain.Account{}, err
	}

	switch parsed.Format {
	case domain.FormatKeystore:
		return parsed.Account, nil
	case domain.FormatLegacyPlaintext:
		if !s.cfg.AllowLegacy {
			return domain.Account{}, domain.ErrLegacyDisabled
		}
		s.log.Warn("legacy plaintext account file loaded", zap.String("file", name))
		sess.Notify(domain.LevelWarning, "retrieve", name,
			"This account file stores the recovery phrase in plaintext. Persist the account again and delete "+name+".")
		if err := checkPassphrase(s.cfg.Passphrase); err != nil {
			return domain.Account{}, err
		}
		legacy := parsed.Account
		acc, err := s.keystore.FromPhrase(legacy.RecoveryPhrase, legacy.Meta.Name, s.cfg.Passphrase)
		if err != nil {
			return domain.Account{}, err
		}
		if acc.Address != legacy.Address {
			s.log.Warn("legacy address differs from derived address",
				zap.String("stored", legacy.Address.Short()),
				zap.String("derived", acc.Address.Short()),
			)
		}
		if !legacy.Meta.CreatedAt.IsZero() {
			acc.Meta.CreatedAt = legacy.Meta.CreatedAt
		}
		return acc, nil
	}
	return domain.Account{}, domain.ErrUnrecognizedKeystore
}

// refresh re-lists the root of Drive into the session cache. Failures are logged only.
func (s *Service) refresh(ctx context.Context, sess *session.Session, token string) {
	res, err := s.storage.List(ctx, token, domain.ListQuery{Query: "trashed = false"})
	if err != nil {
		s.log.Debug("file list refresh failed", zap.Error(err))
		return
	}
	sess.SetFiles(res)
}
