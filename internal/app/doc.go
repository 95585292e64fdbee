// Package app wires application dependencies for the server and the CLI.
//
// LoadConfig resolves Config from dotenv files and CHAINDRIVE_* environment
// variables; NewWire builds the adapters, controllers and HTTP server from it
// and exposes them via the Wire struct for commands to use.
package app
