// Package oauth implements domain.IdentityProvider for Google accounts.
//
// It drives the OAuth 2.0 authorization-code flow with golang.org/x/oauth2 and
// resolves access tokens to profiles through the OpenID userinfo endpoint.
package oauth
