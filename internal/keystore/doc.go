// Package keystore implements domain.AccountKeystore.
//
// Accounts are sr25519 keypairs derived from a BIP-39 recovery phrase. The
// persisted form is a KeystoreDocument holding the 32-byte mini-secret sealed
// under a passphrase; the phrase itself is never written. Persisted files are
// recognised by an ordered list of DocumentParsers so that the deprecated
// plaintext export can still be read.
package keystore
