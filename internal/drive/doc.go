// Package drive implements domain.FileStorage on top of the Google Drive v3 API.
//
// The adapter is stateless: every call builds a Drive client for the bearer
// token it is given, so one Storage serves every session.
package drive
