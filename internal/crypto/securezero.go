package crypto

import "runtime"

// SecureZero overwrites buf with zeros and forces the write to not be
// optimized away by making the compiler observe a subsequent read via
// runtime.KeepAlive. Go has no volatile-write primitive; this is the
// idiomatic approximation used when a byte slice must not be elided by
// dead-store analysis before the backing array is released to the GC.
func SecureZero(buf []byte) {
	for i := range buf {
		buf[i] = 0
	}
	runtime.KeepAlive(buf)
}
