package oauth

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	oauth2v2 "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"

	"chaindrive/internal/domain"
)

// Scopes requested at login: full Drive access plus the basic profile.
var Scopes = []string{
	drive.DriveScope,
	oauth2v2.UserinfoProfileScope,
	oauth2v2.UserinfoEmailScope,
	oauth2v2.OpenIDScope,
}

// ErrNoClientID is returned by New when the OAuth client is not configured.
var ErrNoClientID = errors.New("oauth client id is not configured")

// Config configures the Google provider.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	// Endpoint defaults to Google's; APIEndpoint overrides the userinfo API base URL.
	Endpoint    oauth2.Endpoint
	APIEndpoint string
	HTTP        *http.Client
}

// Google is the identity provider backed by Google accounts.
type Google struct {
	cfg         *oauth2.Config
	apiEndpoint string
	http        *http.Client
}

// New returns a Google provider.
func New(c Config) (*Google, error) {
	if c.ClientID == "" {
		return nil, ErrNoClientID
	}
	if c.Endpoint.AuthURL == "" {
		c.Endpoint = google.Endpoint
	}
	if c.HTTP == nil {
		c.HTTP = http.DefaultClient
	}
	return &Google{
		cfg: &oauth2.Config{
			ClientID:     c.ClientID,
			ClientSecret: c.ClientSecret,
			RedirectURL:  c.RedirectURL,
			Scopes:       Scopes,
			Endpoint:     c.Endpoint,
		},
		apiEndpoint: c.APIEndpoint,
		http:        c.HTTP,
	}, nil
}

// AuthCodeURL returns the consent page URL carrying state.
func (g *Google) AuthCodeURL(state string) string {
	return g.cfg.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Exchange trades an authorization code for an access token.
func (g *Google) Exchange(ctx context.Context, code string) (domain.Token, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, g.http)
	tok, err := g.cfg.Exchange(ctx, code)
	if err != nil {
		return domain.Token{}, fmt.Errorf("%w: exchange code: %v", domain.ErrNotAuthenticated, err)
	}
	return domain.Token{AccessToken: tok.AccessToken, Expiry: tok.Expiry}, nil
}

// UserInfo resolves accessToken to the user's profile.
func (g *Google) UserInfo(ctx context.Context, accessToken string) (domain.Identity, error) {
	if accessToken == "" {
		return domain.Identity{}, domain.ErrNotAuthenticated
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"})
	client := oauth2.NewClient(context.WithValue(ctx, oauth2.HTTPClient, g.http), ts)
	opts := []option.ClientOption{option.WithHTTPClient(client)}
	if g.apiEndpoint != "" {
		opts = append(opts, option.WithEndpoint(g.apiEndpoint))
	}
	svc, err := oauth2v2.NewService(ctx, opts...)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("userinfo client: %w", err)
	}

	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return domain.Identity{}, classify(err)
	}
	if info.Id == "" {
		return domain.Identity{}, fmt.Errorf("%w: userinfo without subject", domain.ErrNotAuthenticated)
	}
	return domain.Identity{
		DisplayName: info.Name,
		Email:       info.Email,
		AvatarURL:   info.Picture,
		SubjectID:   info.Id,
	}, nil
}

func classify(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && (gerr.Code == http.StatusUnauthorized || gerr.Code == http.StatusForbidden) {
		return fmt.Errorf("%w: userinfo: %v", domain.ErrNotAuthenticated, err)
	}
	return fmt.Errorf("userinfo: %w", err)
}

var _ domain.IdentityProvider = (*Google)(nil)
