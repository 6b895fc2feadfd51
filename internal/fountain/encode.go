package fountain

import "math"

// Encoded holds the full set of coded symbols for one chunk: the
// first K are systematic (a direct copy of the source data), the
// remaining are repair symbols.
type Encoded struct {
	K          uint32
	SymbolSize int
	Symbols    []Symbol // length K + repair count; index == ESI
}

// Encode splits data into K source symbols of symbolSize bytes
// (zero-padding the last if needed) and appends
// ceil(K * repairOverhead) repair symbols, each the GF(2) XOR of a
// deterministically selected source subset (see repairSubset).
func Encode(data []byte, symbolSize int, repairOverhead float64) Encoded {
	sourceSymbols := padToSymbols(data, symbolSize)
	k := uint32(len(sourceSymbols))

	repairCount := uint32(math.Ceil(float64(k) * repairOverhead))

	symbols := make([]Symbol, 0, int(k)+int(repairCount))
	symbols = append(symbols, sourceSymbols...)

	for r := uint32(0); r < repairCount; r++ {
		esi := k + r
		subset := repairSubset(esi, k)
		repair := make([]byte, symbolSize)
		for _, idx := range subset {
			xorInto(repair, sourceSymbols[idx])
		}
		symbols = append(symbols, repair)
	}

	return Encoded{K: k, SymbolSize: symbolSize, Symbols: symbols}
}
