// Package account sequences the account keystore lifecycle for a session.
//
// Generate creates a fresh sr25519 account sealed under the configured
// passphrase. Persist uploads only the encrypted keystore document to Drive,
// Retrieve finds the newest keystore file (falling back to the deprecated
// plaintext naming) and LoadSigner decrypts a document for signing.
package account
