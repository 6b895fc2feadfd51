package pipeline

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/kenchrcum/yts3/internal/chunker"
	"github.com/kenchrcum/yts3/internal/config"
	"github.com/kenchrcum/yts3/internal/crypto"
	"github.com/kenchrcum/yts3/internal/dctcodec"
	"github.com/kenchrcum/yts3/internal/errs"
	"github.com/kenchrcum/yts3/internal/fountain"
	"github.com/kenchrcum/yts3/internal/hook"
	"github.com/kenchrcum/yts3/internal/integrity"
	"github.com/kenchrcum/yts3/internal/metrics"
	"github.com/kenchrcum/yts3/internal/packet"
	"github.com/kenchrcum/yts3/internal/tracing"
	"github.com/kenchrcum/yts3/internal/video"
)

// Encode reads all of r, seals it (only when cfg.Password is set) and
// fountain-codes it chunk by chunk,
// embeds the resulting packet stream into a lossless grayscale video
// written to outputPath, and (if h is non-nil) runs h.AfterEncode
// before returning. Chunk-level sealing and fountain coding fan out
// across a worker pool sized to runtime.NumCPU(); packet concatenation
// and frame writes happen afterward in strict ascending order.
func Encode(ctx context.Context, cfg config.Config, logger *logrus.Logger, m *metrics.Metrics, h hook.PipelineHook, r io.Reader, outputPath string) (EncodeResult, error) {
	ctx, span := tracing.Tracer().Start(ctx, "yts3.encode")
	defer span.End()

	if err := cfg.Validate(); err != nil {
		return EncodeResult{}, err
	}

	fileID, err := crypto.NewFileID()
	if err != nil {
		return EncodeResult{}, errs.Wrap("keygen", err)
	}

	encrypted := cfg.Password != ""
	effectiveChunkSize := chunker.EffectiveChunkSize(cfg.ChunkSize, encrypted)
	chunks, err := chunker.Split(r, effectiveChunkSize)
	if err != nil {
		return EncodeResult{}, errs.Wrap("chunk", err)
	}

	var originalData []byte
	for _, c := range chunks {
		originalData = append(originalData, c.Data...)
	}
	originalSHA := integrity.SHA256(originalData)

	// Sealing (per spec.md's `(Crypto seal per chunk)?` notation) only
	// runs when a password was supplied; an empty password leaves
	// chunks in the clear and FlagEncrypted unset.
	var key []byte
	if encrypted {
		key = crypto.DeriveKey(cfg.Password, fileID)
		defer crypto.SecureZero(key)
	}

	packetLists := make([][][]byte, len(chunks))
	firstErr := make(chan error, len(chunks))
	sem := make(chan struct{}, runtime.NumCPU())
	var wg sync.WaitGroup

	for i, c := range chunks {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, c chunker.Chunk) {
			defer wg.Done()
			defer func() { <-sem }()
			packets, err := sealAndEncodeChunk(key, fileID, c, cfg, encrypted, m)
			if err != nil {
				firstErr <- errs.Wrap(fmt.Sprintf("chunk %d", c.Index), err)
				return
			}
			packetLists[i] = packets
		}(i, c)
	}
	wg.Wait()
	close(firstErr)
	for err := range firstErr {
		if err != nil {
			return EncodeResult{}, err
		}
	}

	var stream []byte
	packetCount := 0
	for _, packets := range packetLists {
		for _, pb := range packets {
			stream = append(stream, pb...)
			packetCount++
		}
	}

	enc, err := video.NewEncoder(ctx, cfg, outputPath, logger)
	if err != nil {
		return EncodeResult{}, errs.Wrap("video-encode", err)
	}
	tables := dctcodec.NewTables(cfg.CoefficientStrength)
	if err := writeFrames(enc, cfg, tables, stream, m); err != nil {
		_ = enc.Close()
		return EncodeResult{}, errs.Wrap("video-encode", err)
	}
	if err := enc.Close(); err != nil {
		return EncodeResult{}, errs.Wrap("video-encode", err)
	}

	finalPath := outputPath
	if h != nil {
		hookCtx, hookSpan := tracing.Tracer().Start(ctx, "yts3.hook.after_encode")
		start := time.Now()
		finalPath, err = h.AfterEncode(hookCtx, outputPath)
		hookSpan.End()
		if m != nil {
			m.RecordHookDuration(fmt.Sprintf("%T", h), time.Since(start))
		}
		if err != nil {
			return EncodeResult{}, errs.Wrap("hook", err)
		}
	}

	return EncodeResult{
		FileID:       fileID,
		ChunkCount:   len(chunks),
		PacketCount:  packetCount,
		OriginalSize: chunker.TotalSize(chunks),
		OriginalSHA:  originalSHA,
		VideoPath:    finalPath,
	}, nil
}

// sealAndEncodeChunk seals one chunk (when encrypted is set),
// fountain-codes the resulting bytes, and frames every symbol into a
// serialized packet.
func sealAndEncodeChunk(key []byte, fileID crypto.FileID, c chunker.Chunk, cfg config.Config, encrypted bool, m *metrics.Metrics) ([][]byte, error) {
	chunkData := c.Data
	if encrypted {
		start := time.Now()
		sealed, err := crypto.SealChunk(key, fileID, c.Index, c.Data)
		if m != nil {
			m.RecordEncryption(context.Background(), "seal", time.Since(start), err)
		}
		if err != nil {
			return nil, errs.Wrap("seal", err)
		}
		chunkData = sealed
	}

	enc := fountain.Encode(chunkData, config.SymbolSize, cfg.RepairOverhead)
	if m != nil {
		m.RecordFountainSymbols("source", int(enc.K))
		m.RecordFountainSymbols("repair", len(enc.Symbols)-int(enc.K))
	}

	var baseFlags byte
	if encrypted {
		baseFlags |= config.FlagEncrypted
	}
	if c.Last {
		baseFlags |= config.FlagLastChunk
	}

	packets := make([][]byte, len(enc.Symbols))
	for esi, sym := range enc.Symbols {
		flags := baseFlags
		if uint32(esi) >= enc.K {
			flags |= config.FlagRepairSymbol
		}
		p := packet.Packet{
			Version:      config.PacketVersion,
			Flags:        flags,
			FileID:       fileID,
			ChunkIndex:   c.Index,
			ChunkSize:    uint32(len(chunkData)),
			OriginalSize: c.OriginalSize,
			SymbolSize:   uint16(enc.SymbolSize),
			K:            enc.K,
			ESI:          uint32(esi),
			Payload:      sym,
		}
		packets[esi] = packet.Serialize(p)
		if m != nil {
			m.RecordPacket("encode")
		}
	}
	if m != nil {
		m.RecordChunk("encode")
	}
	return packets, nil
}

// writeFrames embeds stream's bits into successive gray8 frames, one
// bit per 8x8 block, and writes each frame to enc in ascending order.
// Unused trailing blocks in the final frame carry zero bits; the
// decoder ignores them since they never align to a valid packet magic.
func writeFrames(enc *video.Encoder, cfg config.Config, tables *dctcodec.Tables, stream []byte, m *metrics.Metrics) error {
	blocksPerRow := cfg.FrameWidth / config.BlockSize
	blocksPerCol := cfg.FrameHeight / config.BlockSize
	blocksPerFrame := blocksPerRow * blocksPerCol

	totalBits := len(stream) * 8
	frameCount := (totalBits + blocksPerFrame - 1) / blocksPerFrame
	if frameCount == 0 {
		frameCount = 1
	}

	bitIdx := 0
	for f := 0; f < frameCount; f++ {
		frame := make([]byte, cfg.FrameWidth*cfg.FrameHeight)
		for by := 0; by < blocksPerCol; by++ {
			for bx := 0; bx < blocksPerRow; bx++ {
				bit := bitAt(stream, bitIdx)
				bitIdx++

				embedded := tables.EmbedBit(bit)
				writeBlock(frame, embedded, bx, by, cfg.FrameWidth)
			}
		}
		if err := enc.WriteFrame(frame); err != nil {
			return err
		}
		if m != nil {
			m.RecordFrame("encode")
		}
	}
	return nil
}
