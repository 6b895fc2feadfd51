package chunker

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitExactMultiple(t *testing.T) {
	data := bytes.Repeat([]byte{0xAB}, 16)
	chunks, err := Split(bytes.NewReader(data), 4)
	require.NoError(t, err)
	require.Len(t, chunks, 4)
	for i, c := range chunks {
		assert.Equal(t, uint32(i), c.Index)
		assert.Len(t, c.Data, 4)
	}
	assert.True(t, chunks[3].Last)
	assert.False(t, chunks[0].Last)
}

func TestSplitWithRemainder(t *testing.T) {
	data := bytes.Repeat([]byte{0x01}, 10)
	chunks, err := Split(bytes.NewReader(data), 4)
	require.NoError(t, err)
	require.Len(t, chunks, 3)
	assert.Len(t, chunks[2].Data, 2)
	assert.True(t, chunks[2].Last)
	assert.EqualValues(t, 10, TotalSize(chunks))
}

func TestSplitEmptyInput(t *testing.T) {
	chunks, err := Split(bytes.NewReader(nil), 4)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.True(t, chunks[0].Last)
	assert.Equal(t, uint32(0), chunks[0].OriginalSize)
}

func TestSplitRejectsNonPositiveChunkSize(t *testing.T) {
	_, err := Split(bytes.NewReader([]byte{1, 2, 3}), 0)
	assert.Error(t, err)
}

func TestEffectiveChunkSizeSubtractsSealOverheadWhenEncrypted(t *testing.T) {
	assert.Equal(t, 1024-20, EffectiveChunkSize(1024, true))
	assert.Equal(t, 1024, EffectiveChunkSize(1024, false))
}
