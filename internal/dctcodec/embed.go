package dctcodec

import (
	"math"

	"github.com/kenchrcum/yts3/internal/config"
)

// BlockSize is the pixel width/height of one embedding unit.
const BlockSize = n

// Tables holds one coefficient_strength's embedding blocks and
// extraction projection vector, per spec.md §4.5. Build once per
// encode/decode run via NewTables and reuse across every block.
type Tables struct {
	embedBlocks [2][n][n]byte
	projection  [n][n]float64
}

// NewTables sums the DCT-II basis functions at config.EmbedPositions
// into one embed pattern, bakes strength into the two baseline
// 128±strength*pattern block images (B0, B1), and L2-normalizes the
// pattern into the extraction projection vector.
func NewTables(strength float64) *Tables {
	var pattern [n][n]float64
	for _, pos := range config.EmbedPositions {
		basis := dctBasis(pos[0], pos[1])
		for row := 0; row < n; row++ {
			for col := 0; col < n; col++ {
				pattern[row][col] += basis[row][col]
			}
		}
	}

	var sumSq float64
	for row := 0; row < n; row++ {
		for col := 0; col < n; col++ {
			sumSq += pattern[row][col] * pattern[row][col]
		}
	}
	norm := math.Sqrt(sumSq)

	t := &Tables{}
	for row := 0; row < n; row++ {
		for col := 0; col < n; col++ {
			t.projection[row][col] = pattern[row][col] / norm
			t.embedBlocks[0][row][col] = clampByte(128 - strength*pattern[row][col])
			t.embedBlocks[1][row][col] = clampByte(128 + strength*pattern[row][col])
		}
	}
	return t
}

func clampByte(v float64) byte {
	r := math.Round(v)
	switch {
	case r < 0:
		return 0
	case r > 255:
		return 255
	default:
		return byte(r)
	}
}

// EmbedBit returns the fixed 8x8 pattern (B0 or B1) for bit.
func (t *Tables) EmbedBit(bit byte) [n][n]byte {
	return t.embedBlocks[bit&1]
}

// ExtractBit recovers the payload bit from block via a matched
// filter: the dot product of (pixel-128) against the normalized
// projection vector. A positive sum means bit 1, per spec.md §8
// scenario 5 (extract(B1) == 1, extract(all-zero) == 0).
func (t *Tables) ExtractBit(block [n][n]byte) byte {
	var sum float64
	for row := 0; row < n; row++ {
		for col := 0; col < n; col++ {
			sum += (float64(block[row][col]) - 128) * t.projection[row][col]
		}
	}
	if sum > 0 {
		return 1
	}
	return 0
}
