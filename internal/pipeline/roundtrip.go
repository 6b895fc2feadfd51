package pipeline

import (
	"bytes"
	"context"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/kenchrcum/yts3/internal/config"
	"github.com/kenchrcum/yts3/internal/errs"
	"github.com/kenchrcum/yts3/internal/hook"
	"github.com/kenchrcum/yts3/internal/metrics"
)

// Roundtrip encodes r into a video at outputPath, runs h.AfterEncode,
// decodes the result back, and compares the recovered bytes against
// the original — the self-check used by spec.md §8's round-trip
// correctness property and by the CLI's `verify` mode.
func Roundtrip(ctx context.Context, cfg config.Config, logger *logrus.Logger, m *metrics.Metrics, h hook.PipelineHook, r io.Reader, outputPath string) (RoundtripResult, error) {
	original, err := io.ReadAll(r)
	if err != nil {
		return RoundtripResult{}, errs.Wrap("read-input", err)
	}

	encRes, err := Encode(ctx, cfg, logger, m, h, bytes.NewReader(original), outputPath)
	if err != nil {
		return RoundtripResult{}, err
	}

	decRes, err := Decode(ctx, cfg, logger, m, cfg.Password, encRes.VideoPath)
	if err != nil {
		return RoundtripResult{Encode: encRes}, err
	}

	return RoundtripResult{
		Encode:  encRes,
		Decode:  decRes,
		Matched: bytes.Equal(original, decRes.Data) && encRes.OriginalSHA == decRes.RecoveredSHA,
	}, nil
}
