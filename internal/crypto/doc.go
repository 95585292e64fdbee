// Package crypto exposes the primitives behind account keystores.
//
// Contents
//
//   - Passphrase-sealed envelopes using scrypt and ChaCha20-Poly1305
//     (Seal, Open)
//   - BIP-39 mnemonic generation and sr25519 mini-secret derivation
//     (NewMnemonic, MiniSecretFromMnemonic)
//   - Blake2b-256 hashing for extrinsic hashes (Hash256)
//   - Best-effort memory wiping for sensitive byte slices (Wipe)
//
// # Notes
//
// Callers should treat returned secrets as sensitive and rely on Wipe when
// practical to reduce their lifetime in memory.
package crypto
