package pipeline

import "github.com/kenchrcum/yts3/internal/dctcodec"

// writeBlock copies an embedded 8x8 block into frame (row-major, stride
// width) at block coordinates (bx, by).
func writeBlock(frame []byte, block [dctcodec.BlockSize][dctcodec.BlockSize]byte, bx, by, width int) {
	originX, originY := bx*dctcodec.BlockSize, by*dctcodec.BlockSize
	for row := 0; row < dctcodec.BlockSize; row++ {
		dst := (originY+row)*width + originX
		copy(frame[dst:dst+dctcodec.BlockSize], block[row][:])
	}
}

// readBlock extracts the 8x8 block at (bx, by) out of frame.
func readBlock(frame []byte, bx, by, width int) [dctcodec.BlockSize][dctcodec.BlockSize]byte {
	var block [dctcodec.BlockSize][dctcodec.BlockSize]byte
	originX, originY := bx*dctcodec.BlockSize, by*dctcodec.BlockSize
	for row := 0; row < dctcodec.BlockSize; row++ {
		src := (originY+row)*width + originX
		copy(block[row][:], frame[src:src+dctcodec.BlockSize])
	}
	return block
}

// bitAt returns bit index i (MSB-first within each byte) of stream, or
// 0 if i is past the end — used to pad the final frame's unused blocks.
func bitAt(stream []byte, i int) byte {
	if i >= len(stream)*8 {
		return 0
	}
	return (stream[i/8] >> uint(7-i%8)) & 1
}

// appendBit packs bit into acc (MSB-first), flushing a completed byte
// into out when 8 bits have accumulated. It returns the updated
// accumulator and bit count.
func appendBit(out *[]byte, acc byte, accBits int, bit byte) (byte, int) {
	acc = acc<<1 | bit
	accBits++
	if accBits == 8 {
		*out = append(*out, acc)
		return 0, 0
	}
	return acc, accBits
}
