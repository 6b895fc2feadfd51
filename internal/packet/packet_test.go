package packet

import (
	"bytes"
	"testing"

	"github.com/kenchrcum/yts3/internal/config"
	"github.com/kenchrcum/yts3/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() Packet {
	var id [16]byte
	copy(id[:], []byte("0123456789abcdef"))
	return Packet{
		Version:      config.PacketVersion,
		Flags:        config.FlagEncrypted,
		FileID:       id,
		ChunkIndex:   3,
		ChunkSize:    4096,
		OriginalSize: 4096,
		SymbolSize:   256,
		K:            16,
		ESI:          5,
		Payload:      bytes.Repeat([]byte{0x42}, 256),
	}
}

func TestSerializeDeserializeRoundtrip(t *testing.T) {
	p := sample()
	wire := Serialize(p)
	assert.Len(t, wire, config.PacketHeaderSize+256)

	got, n, err := Deserialize(wire)
	require.NoError(t, err)
	assert.Equal(t, len(wire), n)
	assert.Equal(t, p, got)
}

func TestDeserializeRejectsBadMagic(t *testing.T) {
	wire := Serialize(sample())
	wire[0] ^= 0xFF
	_, _, err := Deserialize(wire)
	assert.ErrorIs(t, err, errs.ErrBadMagic)
}

func TestDeserializeRejectsCorruptCRC(t *testing.T) {
	wire := Serialize(sample())
	wire[len(wire)-1] ^= 0xFF
	_, _, err := Deserialize(wire)
	assert.ErrorIs(t, err, errs.ErrCRCMismatch)
}

func TestDeserializeRejectsCorruptHeaderField(t *testing.T) {
	// The CRC covers the header (with the CRC field itself zeroed) as
	// well as the payload, so corrupting a header field like ChunkIndex
	// must also surface as a CRC mismatch, not a silently-wrong packet.
	wire := Serialize(sample())
	wire[offChunkIndex] ^= 0xFF
	_, _, err := Deserialize(wire)
	assert.ErrorIs(t, err, errs.ErrCRCMismatch)
}

func TestDeserializeRejectsShortBuffer(t *testing.T) {
	_, _, err := Deserialize([]byte{1, 2, 3})
	assert.ErrorIs(t, err, errs.ErrShortRead)
}

func TestScanForPacketsResyncsAfterGarbage(t *testing.T) {
	p1 := sample()
	p2 := sample()
	p2.ChunkIndex = 4
	p2.ESI = 6

	var stream []byte
	stream = append(stream, []byte{0xDE, 0xAD, 0xBE, 0xEF, 0x00}...)
	stream = append(stream, Serialize(p1)...)
	stream = append(stream, []byte{0x00, 0x11, 0x22}...)
	stream = append(stream, Serialize(p2)...)

	got := ScanForPackets(stream)
	require.Len(t, got, 2)
	assert.Equal(t, p1.ChunkIndex, got[0].ChunkIndex)
	assert.Equal(t, p2.ESI, got[1].ESI)
}
