package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, c prometheus.Collector) float64 {
	t.Helper()
	ch := make(chan prometheus.Metric, 8)
	c.Collect(ch)
	close(ch)
	var total float64
	for m := range ch {
		var pb dto.Metric
		require.NoError(t, m.Write(&pb))
		if pb.Counter != nil {
			total += pb.Counter.GetValue()
		}
	}
	return total
}

func TestRecordChunkIncrementsCounter(t *testing.T) {
	m := NewWithRegistry(prometheus.NewRegistry())
	m.RecordChunk("encode")
	m.RecordChunk("encode")
	assert.Equal(t, float64(2), counterValue(t, m.chunksTotal))
}

func TestRecordEncryptionTracksErrors(t *testing.T) {
	m := NewWithRegistry(prometheus.NewRegistry())
	m.RecordEncryption(context.Background(), "seal", time.Millisecond, nil)
	m.RecordEncryption(context.Background(), "seal", time.Millisecond, assertErr{})
	assert.Equal(t, float64(2), counterValue(t, m.encryptionOps))
	assert.Equal(t, float64(1), counterValue(t, m.encryptionErrors))
}

func TestRecordFountainFailureIncrementsCounter(t *testing.T) {
	m := NewWithRegistry(prometheus.NewRegistry())
	m.RecordFountainFailure()
	assert.Equal(t, float64(1), counterValue(t, m.fountainFailures))
}

type assertErr struct{}

func (assertErr) Error() string { return "boom" }
