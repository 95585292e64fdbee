package app

import (
	"fmt"
	"net/http"

	"github.com/gorilla/securecookie"
	"go.uber.org/zap"

	"chaindrive/internal/chain"
	"chaindrive/internal/domain"
	"chaindrive/internal/drive"
	"chaindrive/internal/keystore"
	"chaindrive/internal/oauth"
	"chaindrive/internal/server"
	accountsvc "chaindrive/internal/services/account"
	filesvc "chaindrive/internal/services/files"
	identitysvc "chaindrive/internal/services/identity"
	txsvc "chaindrive/internal/services/transaction"
	"chaindrive/internal/session"
)

// Wire bundles the controllers and the session registry.
type Wire struct {
	Accounts     *accountsvc.Service
	Transactions *txsvc.Service
	Files        *filesvc.Service
	Login        *identitysvc.Service

	Sessions *session.Registry
}

// NewWire constructs the dependency graph from cfg.
func NewWire(cfg Config, log *zap.Logger) (*Wire, error) {
	if log == nil {
		log = zap.NewNop()
	}
	httpClient := http.DefaultClient

	// Adapters
	ks := keystore.New(keystore.WithNetwork(cfg.SS58Network))
	storage := drive.New()
	chainClient := chain.NewClient(cfg.TransferCall, log.Named("chain"))

	var provider domain.IdentityProvider
	if cfg.GoogleClientID != "" {
		g, err := oauth.New(oauth.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.OAuthRedirectURL,
			HTTP:         httpClient,
		})
		if err != nil {
			return nil, err
		}
		provider = g
	}

	// Controllers
	accounts := accountsvc.New(ks, storage, accountsvc.Config{
		Passphrase:  cfg.KeystorePassphrase,
		FolderID:    cfg.DriveFolderID,
		AllowLegacy: cfg.AllowLegacyKeystore,
	}, log.Named("account"))
	txs := txsvc.New(chainClient, accounts, txsvc.Config{
		Endpoint:   cfg.ChainEndpoint,
		Recipient:  cfg.Recipient,
		Amount:     cfg.Amount,
		Passphrase: cfg.KeystorePassphrase,
		Timeout:    cfg.TxTimeout,
	}, log.Named("transaction"))
	files := filesvc.New(storage, log.Named("files"))

	w := &Wire{
		Accounts:     accounts,
		Transactions: txs,
		Files:        files,
		Sessions:     session.NewRegistry(session.DefaultIdleTimeout),
	}
	if provider != nil {
		w.Login = identitysvc.New(provider, log.Named("identity"))
	}
	return w, nil
}

// NewServer builds the HTTP server. It requires an OAuth client.
func (w *Wire) NewServer(cfg Config, log *zap.Logger) (*server.Server, error) {
	if w.Login == nil {
		return nil, fmt.Errorf("serve: %w", oauth.ErrNoClientID)
	}
	if log == nil {
		log = zap.NewNop()
	}
	key := cfg.SessionKey
	if key == nil {
		// Sessions will not survive a restart.
		key = securecookie.GenerateRandomKey(32)
		log.Warn("no session key configured; using an ephemeral one")
	}
	return server.New(server.Config{
		SessionKeys:  [][]byte{key},
		SecureCookie: cfg.SecureCookie,
		AppURL:       cfg.AppURL,
	}, w.Sessions, w.Accounts, w.Transactions, w.Files, w.Login, log.Named("http")), nil
}

// CLISession returns a session signed in with the configured access token.
func (w *Wire) CLISession(cfg Config) *session.Session {
	s := w.Sessions.Create()
	if cfg.AccessToken != "" {
		s.SetAuth(domain.Identity{DisplayName: "cli"}, domain.Token{AccessToken: cfg.AccessToken})
	}
	return s
}
