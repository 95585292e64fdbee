package interfaces

import (
	"context"

	domaintypes "chaindrive/internal/domain/types"
)

// IdentityProvider runs the OAuth authorization-code flow and resolves
// access tokens to user identities.
type IdentityProvider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (domaintypes.Token, error)
	UserInfo(ctx context.Context, accessToken string) (domaintypes.Identity, error)
}
