// Package domain defines core data models and interfaces shared across the app.
// It contains plain types (accounts, keystore documents, files, transactions) and
// the contracts of the external adapters (file storage, keystore, chain, identity).
package domain
