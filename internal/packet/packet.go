// Package packet implements the 50-byte little-endian packet header
// that frames each fountain-coded symbol, its CRC-32/MPEG-2 integrity
// check, and magic-scan resynchronization for finding packet
// boundaries in a byte stream whose alignment was lost (e.g. after a
// dropped frame), per spec.md §4.4 and §3.
package packet

import (
	"encoding/binary"

	"github.com/kenchrcum/yts3/internal/config"
	"github.com/kenchrcum/yts3/internal/errs"
	"github.com/kenchrcum/yts3/internal/integrity"
)

// Header offsets, little-endian, matching the wire contract exactly.
const (
	offMagic        = 0
	offVersion      = 4
	offFlags        = 5
	offFileID       = 6
	offChunkIndex   = 22
	offChunkSize    = 26
	offOriginalSize = 30
	offSymbolSize   = 34
	offK            = 36
	offESI          = 40
	offPayloadLen   = 44
	offCRC          = 46
)

// Packet is one framed fountain-coded symbol: a fixed header plus a
// variable-length payload of at most config.SymbolSize bytes.
type Packet struct {
	Version      uint8
	Flags        byte
	FileID       [16]byte
	ChunkIndex   uint32
	ChunkSize    uint32
	OriginalSize uint32
	SymbolSize   uint16
	K            uint32
	ESI          uint32
	Payload      []byte
}

// IsRepair reports whether this packet carries a repair symbol.
func (p Packet) IsRepair() bool { return p.Flags&config.FlagRepairSymbol != 0 }

// IsLastChunk reports whether this packet belongs to the file's final chunk.
func (p Packet) IsLastChunk() bool { return p.Flags&config.FlagLastChunk != 0 }

// IsEncrypted reports whether the chunk this packet carries was sealed.
func (p Packet) IsEncrypted() bool { return p.Flags&config.FlagEncrypted != 0 }

// Serialize encodes p into its wire form: header followed by payload.
func Serialize(p Packet) []byte {
	buf := make([]byte, config.PacketHeaderSize+len(p.Payload))

	binary.LittleEndian.PutUint32(buf[offMagic:], config.Magic)
	buf[offVersion] = p.Version
	buf[offFlags] = p.Flags
	copy(buf[offFileID:offFileID+16], p.FileID[:])
	binary.LittleEndian.PutUint32(buf[offChunkIndex:], p.ChunkIndex)
	binary.LittleEndian.PutUint32(buf[offChunkSize:], p.ChunkSize)
	binary.LittleEndian.PutUint32(buf[offOriginalSize:], p.OriginalSize)
	binary.LittleEndian.PutUint16(buf[offSymbolSize:], p.SymbolSize)
	binary.LittleEndian.PutUint32(buf[offK:], p.K)
	binary.LittleEndian.PutUint32(buf[offESI:], p.ESI)
	binary.LittleEndian.PutUint16(buf[offPayloadLen:], uint16(len(p.Payload)))

	copy(buf[config.PacketHeaderSize:], p.Payload)

	// CRC field itself is zeroed while computing the digest, per
	// spec.md §4.4: CRC-32/MPEG-2 of header (crc field zeroed) ‖ payload.
	binary.LittleEndian.PutUint32(buf[offCRC:], 0)
	crc := integrity.CRC32MPEG2(buf)
	binary.LittleEndian.PutUint32(buf[offCRC:], crc)

	return buf
}

// Deserialize parses one packet from the front of buf. It returns the
// packet and the number of bytes consumed.
func Deserialize(buf []byte) (Packet, int, error) {
	if len(buf) < config.PacketHeaderSize {
		return Packet{}, 0, errs.ErrShortRead
	}

	magic := binary.LittleEndian.Uint32(buf[offMagic:])
	if magic != config.Magic {
		return Packet{}, 0, errs.ErrBadMagic
	}

	version := buf[offVersion]
	if version != config.PacketVersion {
		return Packet{}, 0, errs.ErrUnsupportedVersion
	}

	payloadLen := int(binary.LittleEndian.Uint16(buf[offPayloadLen:]))
	total := config.PacketHeaderSize + payloadLen
	if len(buf) < total {
		return Packet{}, 0, errs.ErrShortRead
	}

	wantCRC := binary.LittleEndian.Uint32(buf[offCRC:])

	// Recompute over header (CRC field zeroed) ‖ payload without
	// mutating the caller's buffer.
	digestBuf := make([]byte, total)
	copy(digestBuf, buf[:total])
	binary.LittleEndian.PutUint32(digestBuf[offCRC:], 0)
	gotCRC := integrity.CRC32MPEG2(digestBuf)
	if gotCRC != wantCRC {
		return Packet{}, 0, errs.ErrCRCMismatch
	}

	var p Packet
	p.Version = version
	p.Flags = buf[offFlags]
	copy(p.FileID[:], buf[offFileID:offFileID+16])
	p.ChunkIndex = binary.LittleEndian.Uint32(buf[offChunkIndex:])
	p.ChunkSize = binary.LittleEndian.Uint32(buf[offChunkSize:])
	p.OriginalSize = binary.LittleEndian.Uint32(buf[offOriginalSize:])
	p.SymbolSize = binary.LittleEndian.Uint16(buf[offSymbolSize:])
	p.K = binary.LittleEndian.Uint32(buf[offK:])
	p.ESI = binary.LittleEndian.Uint32(buf[offESI:])
	p.Payload = append([]byte(nil), buf[config.PacketHeaderSize:total]...)

	return p, total, nil
}

// ScanForPackets recovers every well-formed packet from a byte stream
// whose alignment may have drifted (e.g. bits lost to a lossy
// resave). It slides one byte at a time looking for config.Magic,
// and on a parse failure resumes scanning from the next byte after
// the failed magic rather than aborting.
func ScanForPackets(buf []byte) []Packet {
	var packets []Packet
	i := 0
	for i+4 <= len(buf) {
		magic := binary.LittleEndian.Uint32(buf[i:])
		if magic != config.Magic {
			i++
			continue
		}
		p, n, err := Deserialize(buf[i:])
		if err != nil {
			i++
			continue
		}
		packets = append(packets, p)
		i += n
	}
	return packets
}
