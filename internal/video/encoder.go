// Package video drives an external ffmpeg process as the lossless
// grayscale video codec: rawvideo gray8 frames in, FFV1-in-Matroska
// out for encoding; the mirror image for decoding. Grounded on the
// subprocess-pipe pattern used by the retrieval pack's ffmpeg-driving
// mail-processing tool (probe via ffprobe, StdoutPipe/cmd.Start()),
// adapted here to a bidirectional stdin-writer / stdout-reader pair.
package video

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"runtime"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/kenchrcum/yts3/internal/config"
)

// Encoder writes successive gray8 frames to an ffmpeg subprocess that
// muxes them into a lossless FFV1/Matroska file.
type Encoder struct {
	cmd       *exec.Cmd
	stdin     io.WriteCloser
	logger    *logrus.Logger
	frameSize int
	frames    int
}

// NewEncoder starts the ffmpeg subprocess. outputPath is overwritten
// if it exists.
func NewEncoder(ctx context.Context, cfg config.Config, outputPath string, logger *logrus.Logger) (*Encoder, error) {
	args := []string{
		"-y",
		"-f", "rawvideo",
		"-pix_fmt", "gray",
		"-s", fmt.Sprintf("%dx%d", cfg.FrameWidth, cfg.FrameHeight),
		"-r", strconv.Itoa(cfg.FPS),
		"-i", "-",
		"-c:v", "ffv1",
		"-level", "3",
		"-g", "1",
		"-slicecrc", "1",
		"-slices", strconv.Itoa(runtime.NumCPU()),
		outputPath,
	}

	cmd := exec.CommandContext(ctx, cfg.FFmpegPath, args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("video encoder: stdin pipe: %w", err)
	}
	cmd.Stderr = logger.WriterLevel(logrus.DebugLevel)

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("video encoder: start ffmpeg: %w", err)
	}

	return &Encoder{
		cmd:       cmd,
		stdin:     stdin,
		logger:    logger,
		frameSize: cfg.FrameWidth * cfg.FrameHeight,
	}, nil
}

// WriteFrame writes one full gray8 frame. Frames must be written in
// strictly ascending order; the encoder owns stdin exclusively.
func (e *Encoder) WriteFrame(frame []byte) error {
	if len(frame) != e.frameSize {
		return fmt.Errorf("video encoder: frame size %d != expected %d", len(frame), e.frameSize)
	}
	if _, err := e.stdin.Write(frame); err != nil {
		return fmt.Errorf("video encoder: write frame %d: %w", e.frames, err)
	}
	e.frames++
	return nil
}

// Close finishes the stream and waits for ffmpeg to exit.
func (e *Encoder) Close() error {
	if err := e.stdin.Close(); err != nil {
		return fmt.Errorf("video encoder: close stdin: %w", err)
	}
	if err := e.cmd.Wait(); err != nil {
		return fmt.Errorf("video encoder: ffmpeg exited with error: %w", err)
	}
	e.logger.WithField("frames", e.frames).Debug("video encode complete")
	return nil
}
