package identity

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"chaindrive/internal/domain"
	"chaindrive/internal/session"
)

// Service manages the OAuth login flow for sessions.
type Service struct {
	provider domain.IdentityProvider
	log      *zap.Logger
}

// New returns an identity controller backed by provider.
func New(p domain.IdentityProvider, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{provider: p, log: log}
}

// NewState returns a fresh anti-forgery value for the OAuth round trip.
func NewState() string { return uuid.NewString() }

// LoginURL returns the consent page URL for state.
func (s *Service) LoginURL(state string) string { return s.provider.AuthCodeURL(state) }

// Complete exchanges code for a token, resolves the profile and signs sess in.
func (s *Service) Complete(ctx context.Context, sess *session.Session, code string) (domain.Identity, error) {
	tok, err := s.provider.Exchange(ctx, code)
	if err != nil {
		s.log.Warn("oauth exchange failed", zap.String("session", sess.ID()), zap.Error(err))
		return domain.Identity{}, domain.Wrap(domain.KindAuth, "login", "", err)
	}
	id, err := s.provider.UserInfo(ctx, tok.AccessToken)
	if err != nil {
		s.log.Warn("userinfo lookup failed", zap.String("session", sess.ID()), zap.Error(err))
		return domain.Identity{}, domain.Wrap(domain.KindAuth, "login", "", err)
	}

	sess.SetAuth(id, tok)
	s.log.Info("signed in", zap.String("session", sess.ID()), zap.String("subject", id.SubjectID))
	return id, nil
}

// Logout clears the session's identity and token.
func (s *Service) Logout(sess *session.Session) {
	sess.ClearAuth()
	s.log.Info("signed out", zap.String("session", sess.ID()))
}
