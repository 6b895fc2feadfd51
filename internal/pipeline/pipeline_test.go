package pipeline

import (
	"bytes"
	"context"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kenchrcum/yts3/internal/config"
	"github.com/kenchrcum/yts3/internal/hook"
	"github.com/kenchrcum/yts3/internal/logging"
	"github.com/kenchrcum/yts3/internal/metrics"
)

func requireFFmpeg(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not found on PATH")
	}
}

func smallConfig(t *testing.T) config.Config {
	cfg := config.Default()
	cfg.FrameWidth = 64
	cfg.FrameHeight = 64
	cfg.ChunkSize = config.SymbolSize * 4
	cfg.RepairOverhead = 0.5
	cfg.Password = "correct horse battery staple"
	require.NoError(t, cfg.Validate())
	return cfg
}

func TestRoundtripSmallFile(t *testing.T) {
	requireFFmpeg(t)

	cfg := smallConfig(t)
	logger := logging.New("error")
	m := metrics.NewWithRegistry(prometheus.NewRegistry())

	outputPath := filepath.Join(t.TempDir(), "out.mkv")
	original := bytes.Repeat([]byte("the quick brown fox jumps over the lazy dog. "), 20)

	result, err := Roundtrip(context.Background(), cfg, logger, m, hook.NoopHook{}, bytes.NewReader(original), outputPath)
	require.NoError(t, err)
	assert.True(t, result.Matched)
	assert.Equal(t, original, result.Decode.Data)
	assert.Equal(t, result.Encode.FileID, result.Decode.FileID)
}

func TestRoundtripWithoutPassword(t *testing.T) {
	requireFFmpeg(t)

	cfg := smallConfig(t)
	cfg.Password = ""
	logger := logging.New("error")
	m := metrics.NewWithRegistry(prometheus.NewRegistry())

	outputPath := filepath.Join(t.TempDir(), "out.mkv")
	original := bytes.Repeat([]byte("no password, no seal, still round-trips. "), 20)

	result, err := Roundtrip(context.Background(), cfg, logger, m, hook.NoopHook{}, bytes.NewReader(original), outputPath)
	require.NoError(t, err)
	assert.True(t, result.Matched)
	assert.Equal(t, original, result.Decode.Data)
}

func TestDecodeRejectsEncryptedFileWithoutPassword(t *testing.T) {
	requireFFmpeg(t)

	cfg := smallConfig(t)
	logger := logging.New("error")
	m := metrics.NewWithRegistry(prometheus.NewRegistry())

	outputPath := filepath.Join(t.TempDir(), "out.mkv")
	original := []byte("a secret payload")

	encRes, err := Encode(context.Background(), cfg, logger, m, hook.NoopHook{}, bytes.NewReader(original), outputPath)
	require.NoError(t, err)

	_, err = Decode(context.Background(), cfg, logger, m, "", encRes.VideoPath)
	assert.Error(t, err)
}

func TestDecodeRejectsWrongPassword(t *testing.T) {
	requireFFmpeg(t)

	cfg := smallConfig(t)
	logger := logging.New("error")
	m := metrics.NewWithRegistry(prometheus.NewRegistry())

	outputPath := filepath.Join(t.TempDir(), "out.mkv")
	original := []byte("a secret payload")

	encRes, err := Encode(context.Background(), cfg, logger, m, hook.NoopHook{}, bytes.NewReader(original), outputPath)
	require.NoError(t, err)

	_, err = Decode(context.Background(), cfg, logger, m, "a completely wrong password", encRes.VideoPath)
	assert.Error(t, err)
}
