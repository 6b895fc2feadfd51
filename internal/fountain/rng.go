package fountain

import (
	"math/rand/v2"

	"github.com/kenchrcum/yts3/internal/config"
)

// repairSubset deterministically selects the set of source-symbol
// indices (in [0, k)) combined to produce the repair symbol at esi
// (esi >= k). Both encoder and decoder call this with the same
// (esi, k) and must agree bit-for-bit.
func repairSubset(esi, k uint32) []uint32 {
	if k == 0 {
		return nil
	}
	src := rand.NewPCG(uint64(config.Magic^esi), uint64(k))
	rng := rand.New(src)

	subsetSize := 1
	if k > 1 {
		subsetSize = 1 + int(rng.Uint64()%uint64(k-1))
	}

	indices := make([]uint32, k)
	for i := range indices {
		indices[i] = uint32(i)
	}

	// Fisher-Yates partial shuffle: only the first subsetSize slots
	// need to end up randomized, so stop early.
	n := len(indices)
	for i := 0; i < subsetSize; i++ {
		j := i + int(rng.Uint64()%uint64(n-i))
		indices[i], indices[j] = indices[j], indices[i]
	}

	return append([]uint32(nil), indices[:subsetSize]...)
}
