package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"

	"chaindrive/internal/session"
)

const (
	cookieName = "chaindrive"
	keySession = "sid"
	keyState   = "oauth_state"

	// DefaultMaxUpload caps multipart uploads.
	DefaultMaxUpload = 32 << 20
)

type ctxKey struct{}

// binding is what withSession attaches to the request context.
type binding struct {
	sess   *session.Session
	cookie *sessions.Session
}

// Config holds the HTTP layer settings.
type Config struct {
	// SessionKeys are the gorilla/sessions hash and (optional) block keys.
	SessionKeys  [][]byte
	SecureCookie bool
	MaxUpload    int64
	// AppURL is where the browser is sent after login and logout.
	AppURL string
}

// Server routes HTTP requests to the controllers.
type Server struct {
	cfg      Config
	registry *session.Registry
	cookies  sessions.Store
	accounts Accounts
	txs      Transactions
	files    Files
	identity Identity
	log      *zap.Logger
}

// New returns a Server.
func New(
	cfg Config,
	reg *session.Registry,
	accounts Accounts,
	txs Transactions,
	files Files,
	identity Identity,
	log *zap.Logger,
) *Server {
	if cfg.MaxUpload <= 0 {
		cfg.MaxUpload = DefaultMaxUpload
	}
	if cfg.AppURL == "" {
		cfg.AppURL = "/"
	}
	if log == nil {
		log = zap.NewNop()
	}
	store := sessions.NewCookieStore(cfg.SessionKeys...)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(session.DefaultIdleTimeout / time.Second),
		HttpOnly: true,
		Secure:   cfg.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	}
	return &Server{
		cfg:      cfg,
		registry: reg,
		cookies:  store,
		accounts: accounts,
		txs:      txs,
		files:    files,
		identity: identity,
		log:      log,
	}
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	s.RegisterRoutes(r)
	return r
}

// RegisterRoutes mounts every route on r.
func (s *Server) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", s.health).Methods(http.MethodGet)

	auth := r.PathPrefix("/auth").Subrouter()
	auth.Use(s.withSession)
	auth.HandleFunc("/login", s.login).Methods(http.MethodGet)
	auth.HandleFunc("/callback", s.callback).Methods(http.MethodGet)
	auth.HandleFunc("/logout", s.logout).Methods(http.MethodPost)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(s.withSession)
	api.HandleFunc("/session", s.getSession).Methods(http.MethodGet)
	api.HandleFunc("/files", s.listFiles).Methods(http.MethodGet)
	api.HandleFunc("/files", s.uploadFile).Methods(http.MethodPost)
	api.HandleFunc("/files/{id}/content", s.downloadFile).Methods(http.MethodGet)
	api.HandleFunc("/files/{id}", s.deleteFile).Methods(http.MethodDelete)
	api.HandleFunc("/folders", s.createFolder).Methods(http.MethodPost)
	api.HandleFunc("/account/generate", s.generateAccount).Methods(http.MethodPost)
	api.HandleFunc("/account/persist", s.persistAccount).Methods(http.MethodPost)
	api.HandleFunc("/account/retrieve", s.retrieveAccount).Methods(http.MethodPost)
	api.HandleFunc("/transactions", s.submitTransaction).Methods(http.MethodPost)
	api.HandleFunc("/transactions/stream", s.stream).Methods(http.MethodGet)
}

// Serve runs the HTTP server on addr until ctx is done, then shuts it down.
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go s.registry.Run(ctx, time.Minute)

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.log.Info("http server listening", zap.String("addr", addr))

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// withSession binds the request to a session, creating one on first contact.
func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cs, _ := s.cookies.Get(r, cookieName) // a stale or tampered cookie yields a fresh one
		id, _ := cs.Values[keySession].(string)
		sess, ok := s.registry.Get(id)
		if !ok {
			sess = s.registry.Create()
			cs.Values[keySession] = sess.ID()
			if err := cs.Save(r, w); err != nil {
				s.log.Error("saving session cookie", zap.Error(err))
				ErrorResponse(w, err)
				return
			}
		}
		b := &binding{sess: sess, cookie: cs}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, b)))
	})
}

func bound(r *http.Request) *binding {
	b, _ := r.Context().Value(ctxKey{}).(*binding)
	return b
}

func current(r *http.Request) *session.Session { return bound(r).sess }

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	JSONResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}
