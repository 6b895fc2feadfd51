// Package fountain implements the systematic GF(2) fountain code used
// to spread each chunk's bytes across source and repair symbols, per
// spec.md §4.3. The repair-symbol subset-selection rule (an Open
// Question in the original spec) is pinned down in SPEC_FULL.md §4.3:
// a math/rand/v2 PCG source seeded from (config.Magic XOR esi, k)
// selects each repair symbol's source subset via a Fisher-Yates
// partial shuffle, versioned by config.PacketVersion.
package fountain

// Symbol is one fixed-size slice of coded data: a source symbol (a
// direct slice of the chunk, zero-padded if needed) or a repair
// symbol (the GF(2) XOR of a pseudo-randomly selected source subset).
type Symbol = []byte

// padToSymbols splits data into symbols of size symbolSize, zero-padding
// the final symbol if data's length is not a multiple of symbolSize.
// Empty data yields zero symbols (k=0), per spec.md §4.3's edge case —
// callers must not force a phantom all-zero source symbol for L=0.
func padToSymbols(data []byte, symbolSize int) []Symbol {
	if len(data) == 0 {
		return nil
	}
	k := (len(data) + symbolSize - 1) / symbolSize
	symbols := make([]Symbol, k)
	for i := 0; i < k; i++ {
		sym := make([]byte, symbolSize)
		start := i * symbolSize
		end := start + symbolSize
		if end > len(data) {
			end = len(data)
		}
		copy(sym, data[start:end])
		symbols[i] = sym
	}
	return symbols
}

func xorInto(dst, src []byte) {
	for i := range dst {
		dst[i] ^= src[i]
	}
}
