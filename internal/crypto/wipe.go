package crypto

import "runtime"

// Wipe zeroes each buffer in place. Callers wipe seeds and derived keys as
// soon as they are no longer needed.
//
//go:noinline
func Wipe(bufs ...[]byte) {
	for _, b := range bufs {
		clear(b)
	}
	runtime.KeepAlive(bufs)
}
