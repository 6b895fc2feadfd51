package fountain

import (
	"math/bits"

	"github.com/kenchrcum/yts3/internal/errs"
)

// ReceivedSymbol is one symbol recovered from the video stream, tagged
// with the ESI it was encoded at.
type ReceivedSymbol struct {
	ESI  uint32
	Data []byte
}

// bitset is a fixed-width row of the GF(2) coefficient matrix: bit i
// set means source symbol i participates in this row's equation.
type bitset []uint64

func newBitset(k uint32) bitset {
	return make(bitset, (k+63)/64)
}

func (b bitset) set(i uint32) { b[i/64] |= 1 << (i % 64) }

func (b bitset) get(i uint32) bool { return b[i/64]&(1<<(i%64)) != 0 }

func (b bitset) xor(other bitset) {
	for i := range b {
		b[i] ^= other[i]
	}
}

func (b bitset) leading(k uint32) (int, bool) {
	for w := 0; w < len(b); w++ {
		if b[w] == 0 {
			continue
		}
		bit := w*64 + bits.TrailingZeros64(b[w])
		if uint32(bit) >= k {
			continue
		}
		return bit, true
	}
	return 0, false
}

func (b bitset) isZero() bool {
	for _, w := range b {
		if w != 0 {
			return false
		}
	}
	return true
}

type row struct {
	mask bitset
	data []byte
}

// Decode recovers the K systematic source symbols from a set of
// received symbols (source and/or repair, in any order, with
// duplicates or excess symbols allowed) via online Gaussian
// elimination over GF(2), matching the teacher's pattern of
// propagating a typed error instead of panicking on rank deficiency.
func Decode(k uint32, symbolSize int, received []ReceivedSymbol) ([]Symbol, error) {
	pivots := make([]*row, k)
	filled := uint32(0)

	for _, sym := range received {
		if filled == k {
			break
		}
		m := newBitset(k)
		var data []byte

		if sym.ESI < k {
			m.set(sym.ESI)
			data = append([]byte(nil), sym.Data...)
		} else {
			subset := repairSubset(sym.ESI, k)
			for _, idx := range subset {
				m.set(idx)
			}
			data = append([]byte(nil), sym.Data...)
		}

		for {
			lead, ok := m.leading(k)
			if !ok {
				break // zero row: redundant symbol
			}
			if pivots[lead] == nil {
				pivots[lead] = &row{mask: m, data: data}
				filled++
				break
			}
			m = append(bitset(nil), m...)
			m.xor(pivots[lead].mask)
			newData := append([]byte(nil), data...)
			xorInto(newData, pivots[lead].data)
			data = newData
		}
	}

	if filled != k {
		return nil, errs.ErrRankDeficient
	}

	// Back-substitute: clear every pivot's non-leading bits against
	// the other pivots so each row reduces to a single unit vector.
	for col := int(k) - 1; col >= 0; col-- {
		pr := pivots[col]
		for other := 0; other < int(k); other++ {
			if other == col {
				continue
			}
			or := pivots[other]
			if or.mask.get(uint32(col)) {
				or.mask = append(bitset(nil), or.mask...)
				or.mask.xor(pr.mask)
				newData := append([]byte(nil), or.data...)
				xorInto(newData, pr.data)
				or.data = newData
			}
		}
	}

	out := make([]Symbol, k)
	for i := uint32(0); i < k; i++ {
		out[i] = pivots[i].data
	}
	return out, nil
}
