// Package commands defines the chaindrive CLI and wires dependencies for subcommands.
//
// Commands
//
//   - serve              Run the web server (Google sign-in, REST API, event stream)
//   - account generate   Create an account and save its keystore to Drive
//   - account retrieve   Find the newest keystore on Drive and print its address
//   - tx submit          Send the configured test transfer from the stored account
//   - files list         List Drive files
//   - files upload       Upload a local file
//   - files download     Download a Drive file into a local directory
//   - files delete       Delete a Drive file
//   - files mkdir        Create a Drive folder
//
// # Implementation
//
// The root command loads configuration from .env files and CHAINDRIVE_*
// variables, applies flag overrides and builds the dependency graph before any
// subcommand runs. Commands other than serve act on a single in-process
// session signed in with --token (a Google OAuth access token carrying the
// Drive scope).
package commands
