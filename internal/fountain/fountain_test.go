package fountain

import (
	"bytes"
	"math/rand/v2"
	"testing"

	"github.com/kenchrcum/yts3/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chunkData(n int, seed uint64) []byte {
	r := rand.New(rand.NewPCG(seed, seed^0xdeadbeef))
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = byte(r.Uint64())
	}
	return buf
}

func TestRepairSubsetDeterministic(t *testing.T) {
	a := repairSubset(10, 8)
	b := repairSubset(10, 8)
	assert.Equal(t, a, b)
	assert.NotEmpty(t, a)
	for _, idx := range a {
		assert.Less(t, idx, uint32(8))
	}
}

func TestEncodeDecodeFullReceipt(t *testing.T) {
	data := chunkData(1000, 1)
	enc := Encode(data, 256, 0.3)

	var received []ReceivedSymbol
	for esi, sym := range enc.Symbols {
		received = append(received, ReceivedSymbol{ESI: uint32(esi), Data: sym})
	}

	out, err := Decode(enc.K, enc.SymbolSize, received)
	require.NoError(t, err)

	var rebuilt []byte
	for _, s := range out {
		rebuilt = append(rebuilt, s...)
	}
	assert.True(t, bytes.Equal(data, rebuilt[:len(data)]))
}

func TestDecodeToleratesMissingSourceSymbols(t *testing.T) {
	data := chunkData(4000, 2)
	enc := Encode(data, 256, 0.5)

	// Drop a couple of source symbols, keep all repair symbols.
	var received []ReceivedSymbol
	for esi, sym := range enc.Symbols {
		if esi == 1 || esi == 3 {
			continue
		}
		received = append(received, ReceivedSymbol{ESI: uint32(esi), Data: sym})
	}

	out, err := Decode(enc.K, enc.SymbolSize, received)
	require.NoError(t, err)

	var rebuilt []byte
	for _, s := range out {
		rebuilt = append(rebuilt, s...)
	}
	assert.True(t, bytes.Equal(data, rebuilt[:len(data)]))
}

func TestDecodeReturnsRankDeficientWhenTooFewSymbols(t *testing.T) {
	data := chunkData(4000, 3)
	enc := Encode(data, 256, 0.1)

	// Only hand over half the symbols: not enough to reach full rank.
	received := make([]ReceivedSymbol, 0, len(enc.Symbols)/2)
	for esi, sym := range enc.Symbols {
		if esi >= len(enc.Symbols)/2 {
			break
		}
		received = append(received, ReceivedSymbol{ESI: uint32(esi), Data: sym})
	}

	_, err := Decode(enc.K, enc.SymbolSize, received)
	assert.ErrorIs(t, err, errs.ErrRankDeficient)
}

func TestEncodeIsSystematic(t *testing.T) {
	data := chunkData(512, 4)
	enc := Encode(data, 256, 0.25)
	assert.Equal(t, data[:256], []byte(enc.Symbols[0]))
	assert.Equal(t, data[256:512], []byte(enc.Symbols[1]))
}
