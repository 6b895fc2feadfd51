package video

import (
	"context"
	"os"
	"os/exec"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kenchrcum/yts3/internal/config"
)

func requireFFmpeg(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not available on PATH")
	}
}

func TestEncodeDecodeRoundtrip(t *testing.T) {
	requireFFmpeg(t)

	cfg := config.Default()
	cfg.FrameWidth = 16
	cfg.FrameHeight = 16

	logger := logrus.New()
	logger.SetOutput(os.Stderr)

	dir := t.TempDir()
	path := dir + "/out.mkv"

	enc, err := NewEncoder(context.Background(), cfg, path, logger)
	require.NoError(t, err)

	frame := make([]byte, cfg.FrameWidth*cfg.FrameHeight)
	for i := range frame {
		frame[i] = byte(i)
	}
	require.NoError(t, enc.WriteFrame(frame))
	require.NoError(t, enc.Close())

	dec, err := NewDecoder(context.Background(), cfg, path, logger)
	require.NoError(t, err)

	got, err := dec.ReadFrame()
	require.NoError(t, err)
	assert.Equal(t, frame, got)
	require.NoError(t, dec.Close())
}

func TestEncoderRejectsWrongFrameSize(t *testing.T) {
	requireFFmpeg(t)

	cfg := config.Default()
	cfg.FrameWidth = 16
	cfg.FrameHeight = 16
	logger := logrus.New()

	dir := t.TempDir()
	enc, err := NewEncoder(context.Background(), cfg, dir+"/out.mkv", logger)
	require.NoError(t, err)
	defer enc.Close()

	err = enc.WriteFrame(make([]byte, 4))
	assert.Error(t, err)
}
