package crypto

import "golang.org/x/crypto/blake2b"

// Hash256 returns the blake2b-256 digest of b.
func Hash256(b []byte) [32]byte { return blake2b.Sum256(b) }
