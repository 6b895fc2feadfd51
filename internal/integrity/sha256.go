package integrity

import "crypto/sha256"

// SHA256 returns the SHA-256 digest of data, used for the whole-file
// integrity check recorded alongside a roundtrip result.
func SHA256(data []byte) [32]byte {
	return sha256.Sum256(data)
}
