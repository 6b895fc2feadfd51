// Package pipeline orchestrates the full file->video and video->file
// round trip: chunking, sealing, fountain coding, packet framing, DCT
// embedding, and the external video codec, per spec.md §4.8 and §5.
// Chunk-level work fans out across a bounded worker pool sized to
// runtime.NumCPU() — Go's nearest equivalent to the original system's
// global rayon thread pool — while packet concatenation and frame
// writes preserve strict ascending order, exactly as specified.
package pipeline

import (
	"github.com/kenchrcum/yts3/internal/crypto"
)

// EncodeResult summarizes one completed encode run.
type EncodeResult struct {
	FileID       crypto.FileID
	ChunkCount   int
	PacketCount  int
	OriginalSize int64
	OriginalSHA  [32]byte
	VideoPath    string
}

// DecodeResult summarizes one completed decode run.
type DecodeResult struct {
	FileID       crypto.FileID
	ChunkCount   int
	RecoveredSHA [32]byte
	Data         []byte
}

// RoundtripResult pairs an encode and decode result with whether the
// recovered bytes matched the original, for the self-check scenarios
// in spec.md §8.
type RoundtripResult struct {
	Encode  EncodeResult
	Decode  DecodeResult
	Matched bool
}
