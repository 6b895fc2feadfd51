package pipeline

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/kenchrcum/yts3/internal/config"
	"github.com/kenchrcum/yts3/internal/crypto"
	"github.com/kenchrcum/yts3/internal/dctcodec"
	"github.com/kenchrcum/yts3/internal/errs"
	"github.com/kenchrcum/yts3/internal/fountain"
	"github.com/kenchrcum/yts3/internal/integrity"
	"github.com/kenchrcum/yts3/internal/metrics"
	"github.com/kenchrcum/yts3/internal/packet"
	"github.com/kenchrcum/yts3/internal/tracing"
	"github.com/kenchrcum/yts3/internal/video"
)

// Decode reads the gray8 frames out of videoPath, recovers every
// packet via magic-scan resync, fountain-decodes each chunk, opens it
// when the packets carry the encrypted flag, and returns the reassembled file in ascending chunk order.
func Decode(ctx context.Context, cfg config.Config, logger *logrus.Logger, m *metrics.Metrics, password string, videoPath string) (DecodeResult, error) {
	ctx, span := tracing.Tracer().Start(ctx, "yts3.decode")
	defer span.End()

	if err := cfg.Validate(); err != nil {
		return DecodeResult{}, err
	}

	dec, err := video.NewDecoder(ctx, cfg, videoPath, logger)
	if err != nil {
		return DecodeResult{}, errs.Wrap("video-decode", err)
	}

	tables := dctcodec.NewTables(cfg.CoefficientStrength)
	stream, err := readStream(dec, cfg, tables, m)
	closeErr := dec.Close()
	if err != nil {
		return DecodeResult{}, errs.Wrap("video-decode", err)
	}
	if closeErr != nil {
		return DecodeResult{}, errs.Wrap("video-decode", closeErr)
	}

	packets := packet.ScanForPackets(stream)
	if m != nil {
		for range packets {
			m.RecordPacket("decode")
		}
	}
	if len(packets) == 0 {
		return DecodeResult{}, errs.Wrap("packet-scan", fmt.Errorf("no valid packets recovered from %s", videoPath))
	}

	fileID := packets[0].FileID
	encrypted := packets[0].IsEncrypted()

	// Key derivation (and the seal, on decodeChunk's side) only runs
	// when the recovered packets say the file was sealed; an
	// unencrypted file never asks the caller for a password.
	var key []byte
	if encrypted {
		if password == "" {
			return DecodeResult{}, errs.Wrap("decrypt", fmt.Errorf("file is encrypted but no password was provided"))
		}
		key = crypto.DeriveKey(password, crypto.FileID(fileID))
		defer crypto.SecureZero(key)
	}

	byChunk := make(map[uint32][]packet.Packet)
	maxChunk := uint32(0)
	for _, p := range packets {
		byChunk[p.ChunkIndex] = append(byChunk[p.ChunkIndex], p)
		if p.ChunkIndex > maxChunk {
			maxChunk = p.ChunkIndex
		}
	}

	var out []byte
	for idx := uint32(0); idx <= maxChunk; idx++ {
		chunkPackets, ok := byChunk[idx]
		if !ok {
			return DecodeResult{}, errs.Wrap("packet-scan", fmt.Errorf("chunk %d: no packets recovered", idx))
		}
		plaintext, err := decodeChunk(key, crypto.FileID(fileID), chunkPackets, encrypted, m)
		if err != nil {
			return DecodeResult{}, errs.Wrap(fmt.Sprintf("chunk %d", idx), err)
		}
		out = append(out, plaintext...)
	}

	return DecodeResult{
		FileID:       crypto.FileID(fileID),
		ChunkCount:   int(maxChunk) + 1,
		RecoveredSHA: integrity.SHA256(out),
		Data:         out,
	}, nil
}

// decodeChunk fountain-decodes one chunk's received symbols (deduping
// by ESI, tolerating any order or excess) and, when encrypted is set,
// opens the AEAD seal; otherwise the fountain-recovered bytes are the
// plaintext as-is.
func decodeChunk(key []byte, fileID crypto.FileID, chunkPackets []packet.Packet, encrypted bool, m *metrics.Metrics) ([]byte, error) {
	sort.Slice(chunkPackets, func(i, j int) bool { return chunkPackets[i].ESI < chunkPackets[j].ESI })

	first := chunkPackets[0]
	seen := make(map[uint32]bool)
	var received []fountain.ReceivedSymbol
	for _, p := range chunkPackets {
		if seen[p.ESI] {
			continue
		}
		seen[p.ESI] = true
		received = append(received, fountain.ReceivedSymbol{ESI: p.ESI, Data: p.Payload})
	}

	symbols, err := fountain.Decode(first.K, int(first.SymbolSize), received)
	if err != nil {
		if m != nil {
			m.RecordFountainFailure()
		}
		return nil, errs.Wrap("fountain-decode", err)
	}

	var chunkData []byte
	for _, s := range symbols {
		chunkData = append(chunkData, s...)
	}
	if uint32(len(chunkData)) > first.ChunkSize {
		chunkData = chunkData[:first.ChunkSize]
	}

	plaintext := chunkData
	if encrypted {
		start := time.Now()
		opened, err := crypto.OpenChunk(key, fileID, first.ChunkIndex, chunkData)
		if m != nil {
			m.RecordEncryption(context.Background(), "open", time.Since(start), err)
		}
		if err != nil {
			return nil, errs.Wrap("open", err)
		}
		plaintext = opened
	}
	if uint32(len(plaintext)) > first.OriginalSize {
		plaintext = plaintext[:first.OriginalSize]
	}

	if m != nil {
		m.RecordChunk("decode")
	}
	return plaintext, nil
}

// readStream demuxes every frame from dec and extracts one bit per
// 8x8 block, reassembling the raw packet byte stream.
func readStream(dec *video.Decoder, cfg config.Config, tables *dctcodec.Tables, m *metrics.Metrics) ([]byte, error) {
	blocksPerRow := cfg.FrameWidth / config.BlockSize
	blocksPerCol := cfg.FrameHeight / config.BlockSize

	var stream []byte
	var acc byte
	var accBits int

	for {
		frame, err := dec.ReadFrame()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if m != nil {
			m.RecordFrame("decode")
		}

		for by := 0; by < blocksPerCol; by++ {
			for bx := 0; bx < blocksPerRow; bx++ {
				block := readBlock(frame, bx, by, cfg.FrameWidth)
				bit := tables.ExtractBit(block)
				acc, accBits = appendBit(&stream, acc, accBits, bit)
			}
		}
	}
	return stream, nil
}
