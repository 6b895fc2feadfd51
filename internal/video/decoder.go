package video

import (
	"context"
	"fmt"
	"io"
	"os/exec"

	"github.com/sirupsen/logrus"

	"github.com/kenchrcum/yts3/internal/config"
)

// Decoder reads successive gray8 frames back out of an ffmpeg
// subprocess that demuxes them from an FFV1/Matroska file.
type Decoder struct {
	cmd       *exec.Cmd
	stdout    io.ReadCloser
	logger    *logrus.Logger
	frameSize int
	frames    int
}

// NewDecoder starts the ffmpeg subprocess reading inputPath.
func NewDecoder(ctx context.Context, cfg config.Config, inputPath string, logger *logrus.Logger) (*Decoder, error) {
	args := []string{
		"-i", inputPath,
		"-f", "rawvideo",
		"-pix_fmt", "gray",
		"-",
	}

	cmd := exec.CommandContext(ctx, cfg.FFmpegPath, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("video decoder: stdout pipe: %w", err)
	}
	cmd.Stderr = logger.WriterLevel(logrus.DebugLevel)

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("video decoder: start ffmpeg: %w", err)
	}

	return &Decoder{
		cmd:       cmd,
		stdout:    stdout,
		logger:    logger,
		frameSize: cfg.FrameWidth * cfg.FrameHeight,
	}, nil
}

// ReadFrame reads one full gray8 frame, or io.EOF once the stream is
// exhausted. Frames are returned in strictly ascending order; the
// decoder owns stdout exclusively.
func (d *Decoder) ReadFrame() ([]byte, error) {
	buf := make([]byte, d.frameSize)
	n, err := io.ReadFull(d.stdout, buf)
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		if n == 0 {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("video decoder: truncated final frame (%d/%d bytes)", n, d.frameSize)
	}
	if err != nil {
		return nil, fmt.Errorf("video decoder: read frame %d: %w", d.frames, err)
	}
	d.frames++
	return buf, nil
}

// Close waits for ffmpeg to exit.
func (d *Decoder) Close() error {
	_ = d.stdout.Close()
	if err := d.cmd.Wait(); err != nil {
		return fmt.Errorf("video decoder: ffmpeg exited with error: %w", err)
	}
	d.logger.WithField("frames", d.frames).Debug("video decode complete")
	return nil
}
