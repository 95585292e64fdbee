// Package identity signs users in with Google and out again.
//
// Login failures are logged only; the user simply remains signed out and
// may retry.
package identity
