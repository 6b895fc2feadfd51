// Package chunker splits a file's bytes into fixed-size chunks ahead
// of sealing and fountain coding, per spec.md §4.1.
package chunker

import (
	"fmt"
	"io"
)

// sealOverhead is the number of bytes crypto.SealChunk adds to a
// chunk's plaintext: a 4-byte little-endian length prefix plus the
// 16-byte Poly1305 tag, per spec.md §4.1/§8.
const sealOverhead = 4 + 16

// EffectiveChunkSize returns the plaintext size that, once sealed,
// fits exactly within chunkSize bytes on the wire. When encryption is
// disabled the chunk carries no AEAD overhead and chunkSize is
// returned unchanged.
func EffectiveChunkSize(chunkSize int, encrypted bool) int {
	if !encrypted {
		return chunkSize
	}
	return chunkSize - sealOverhead
}

// Chunk is one fixed-size (except possibly the last) slice of the
// source file, with enough positional metadata to reassemble it.
type Chunk struct {
	Index        uint32
	Data         []byte
	Last         bool
	OriginalSize uint32 // length of Data before any padding
}

// Split reads all of r and partitions it into chunks of size chunkSize.
// The final chunk may be shorter than chunkSize; it is never padded
// here — padding, if any, is the fountain layer's concern when packing
// into fixed-size symbols.
func Split(r io.Reader, chunkSize int) ([]Chunk, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("chunker: chunkSize must be positive, got %d", chunkSize)
	}

	var chunks []Chunk
	buf := make([]byte, chunkSize)
	index := uint32(0)

	for {
		n, err := io.ReadFull(r, buf)
		if n > 0 {
			data := make([]byte, n)
			copy(data, buf[:n])
			chunks = append(chunks, Chunk{
				Index:        index,
				Data:         data,
				OriginalSize: uint32(n),
			})
			index++
		}
		if err == io.EOF {
			break
		}
		if err == io.ErrUnexpectedEOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("chunker: read: %w", err)
		}
	}

	if len(chunks) == 0 {
		chunks = append(chunks, Chunk{Index: 0, Data: nil, OriginalSize: 0})
	}
	chunks[len(chunks)-1].Last = true
	return chunks, nil
}

// TotalSize returns the sum of all chunks' original sizes, i.e. the
// reconstructed file size.
func TotalSize(chunks []Chunk) int64 {
	var total int64
	for _, c := range chunks {
		total += int64(c.OriginalSize)
	}
	return total
}
