package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSealOpenRoundtrip(t *testing.T) {
	fileID, err := NewFileID()
	require.NoError(t, err)

	key := DeriveKey("correct horse battery staple", fileID)
	require.Len(t, key, 32)

	plaintext := []byte("lossless video steganography payload chunk")
	ciphertext, err := SealChunk(key, fileID, 7, plaintext)
	require.NoError(t, err)
	assert.NotEqual(t, plaintext, ciphertext)

	got, err := OpenChunk(key, fileID, 7, ciphertext)
	require.NoError(t, err)
	assert.Equal(t, plaintext, got)
}

func TestOpenRejectsWrongChunkIndex(t *testing.T) {
	fileID, err := NewFileID()
	require.NoError(t, err)
	key := DeriveKey("password", fileID)

	ciphertext, err := SealChunk(key, fileID, 0, []byte("hello"))
	require.NoError(t, err)

	_, err = OpenChunk(key, fileID, 1, ciphertext)
	assert.Error(t, err)
}

func TestOpenRejectsTamperedCiphertext(t *testing.T) {
	fileID, err := NewFileID()
	require.NoError(t, err)
	key := DeriveKey("password", fileID)

	ciphertext, err := SealChunk(key, fileID, 0, []byte("hello world"))
	require.NoError(t, err)
	ciphertext[4] ^= 0xFF // first byte after the 4-byte length prefix

	_, err = OpenChunk(key, fileID, 0, ciphertext)
	assert.Error(t, err)
}

func TestDeriveKeyDeterministic(t *testing.T) {
	fileID, err := NewFileID()
	require.NoError(t, err)

	k1 := DeriveKey("pw", fileID)
	k2 := DeriveKey("pw", fileID)
	assert.Equal(t, k1, k2)

	var otherID FileID
	copy(otherID[:], fileID[:])
	otherID[0] ^= 0x01
	k3 := DeriveKey("pw", otherID)
	assert.NotEqual(t, k1, k3)
}
