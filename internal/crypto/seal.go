package crypto

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/kenchrcum/yts3/internal/errs"
)

// nonceForChunk derives a per-chunk XChaCha20-Poly1305 nonce from the
// file ID and chunk index: file_id(16) ‖ chunk_index little-endian(4)
// ‖ zero(4), per spec.md §4.2. The trailing 4 bytes are reserved and
// always zero.
func nonceForChunk(fileID FileID, chunkIndex uint32) []byte {
	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	copy(nonce[:16], fileID[:])
	binary.LittleEndian.PutUint32(nonce[16:20], chunkIndex)
	return nonce
}

// SealChunk encrypts plaintext for chunkIndex under key. Per spec.md
// §3's SealedChunk layout, the result is a 4-byte little-endian
// plaintext length followed by the ciphertext with its Poly1305 tag
// appended; chunkIndex is used as associated data so a ciphertext
// cannot be replayed at another position in the file.
func SealChunk(key []byte, fileID FileID, chunkIndex uint32, plaintext []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("init aead: %w", err)
	}
	nonce := nonceForChunk(fileID, chunkIndex)
	var aad [4]byte
	binary.BigEndian.PutUint32(aad[:], chunkIndex)

	out := make([]byte, 4, 4+len(plaintext)+chacha20poly1305.Overhead)
	binary.LittleEndian.PutUint32(out, uint32(len(plaintext)))
	return aead.Seal(out, nonce, plaintext, aad[:]), nil
}

// OpenChunk decrypts and authenticates a sealed chunk produced by
// SealChunk. Fails if sealed is shorter than the 4-byte length prefix
// plus the 16-byte Poly1305 tag, or on tag mismatch/tampering.
func OpenChunk(key []byte, fileID FileID, chunkIndex uint32, sealed []byte) ([]byte, error) {
	if len(sealed) < 4+chacha20poly1305.Overhead {
		return nil, fmt.Errorf("open chunk %d: sealed payload too short (%d bytes)", chunkIndex, len(sealed))
	}
	plaintextLen := binary.LittleEndian.Uint32(sealed[:4])

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("init aead: %w", err)
	}
	nonce := nonceForChunk(fileID, chunkIndex)
	var aad [4]byte
	binary.BigEndian.PutUint32(aad[:], chunkIndex)
	plaintext, err := aead.Open(nil, nonce, sealed[4:], aad[:])
	if err != nil {
		return nil, fmt.Errorf("open chunk %d: %w: %w", chunkIndex, errs.ErrAuthFailed, err)
	}
	if uint32(len(plaintext)) != plaintextLen {
		return nil, fmt.Errorf("open chunk %d: length prefix %d does not match decrypted length %d", chunkIndex, plaintextLen, len(plaintext))
	}
	return plaintext, nil
}
