// Package metrics adapts the teacher's HTTP-gateway Prometheus metrics
// into per-pipeline-stage metrics for the codec: chunks, symbols,
// packets, frames, encryption operations, and the failure counters a
// production deployment would alert on.
package metrics

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/trace"
)

var defaultRegistry = prometheus.DefaultRegisterer

// Metrics holds every pipeline-stage metric recorded during an encode
// or decode run.
type Metrics struct {
	chunksTotal        *prometheus.CounterVec
	encryptionOps      *prometheus.CounterVec
	encryptionDuration *prometheus.HistogramVec
	encryptionErrors   *prometheus.CounterVec
	fountainSymbols    *prometheus.CounterVec
	fountainFailures   prometheus.Counter
	packetsTotal       *prometheus.CounterVec
	packetCRCFailures  prometheus.Counter
	framesTotal        *prometheus.CounterVec
	hookDuration       *prometheus.HistogramVec
	goroutines         prometheus.Gauge
	memoryAllocBytes   prometheus.Gauge
}

// New creates a Metrics instance registered against the default
// Prometheus registry.
func New() *Metrics {
	return NewWithRegistry(defaultRegistry)
}

// NewWithRegistry creates a Metrics instance on a custom registry,
// avoiding registration collisions across parallel tests.
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		chunksTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "yts3_chunks_total",
			Help: "Total number of chunks processed",
		}, []string{"operation"}), // "encode" or "decode"
		encryptionOps: f.NewCounterVec(prometheus.CounterOpts{
			Name: "yts3_encryption_operations_total",
			Help: "Total number of chunk seal/open operations",
		}, []string{"operation"}),
		encryptionDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "yts3_encryption_duration_seconds",
			Help:    "Chunk seal/open duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		encryptionErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "yts3_encryption_errors_total",
			Help: "Total number of seal/open failures",
		}, []string{"operation"}),
		fountainSymbols: f.NewCounterVec(prometheus.CounterOpts{
			Name: "yts3_fountain_symbols_total",
			Help: "Total number of fountain symbols produced or consumed",
		}, []string{"kind"}), // "source" or "repair"
		fountainFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "yts3_fountain_rank_deficient_total",
			Help: "Total number of chunks that failed to reach full rank on decode",
		}),
		packetsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "yts3_packets_total",
			Help: "Total number of packets framed or parsed",
		}, []string{"operation"}),
		packetCRCFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "yts3_packet_crc_failures_total",
			Help: "Total number of packets dropped for CRC mismatch during magic-scan resync",
		}),
		framesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "yts3_frames_total",
			Help: "Total number of video frames encoded or decoded",
		}, []string{"operation"}),
		hookDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "yts3_hook_duration_seconds",
			Help:    "PipelineHook.AfterEncode duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"hook"}),
		goroutines: f.NewGauge(prometheus.GaugeOpts{
			Name: "yts3_goroutines",
			Help: "Number of goroutines",
		}),
		memoryAllocBytes: f.NewGauge(prometheus.GaugeOpts{
			Name: "yts3_memory_alloc_bytes",
			Help: "Bytes allocated and not yet freed",
		}),
	}
}

func (m *Metrics) RecordChunk(operation string) {
	m.chunksTotal.WithLabelValues(operation).Inc()
}

func (m *Metrics) RecordEncryption(ctx context.Context, operation string, duration time.Duration, err error) {
	labels := prometheus.Labels{"operation": operation}
	if exemplar := getExemplar(ctx); exemplar != nil {
		if adder, ok := m.encryptionOps.With(labels).(prometheus.ExemplarAdder); ok {
			adder.AddWithExemplar(1, exemplar)
		} else {
			m.encryptionOps.With(labels).Inc()
		}
	} else {
		m.encryptionOps.With(labels).Inc()
	}
	m.encryptionDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		m.encryptionErrors.WithLabelValues(operation).Inc()
	}
}

func (m *Metrics) RecordFountainSymbols(kind string, n int) {
	m.fountainSymbols.WithLabelValues(kind).Add(float64(n))
}

func (m *Metrics) RecordFountainFailure() {
	m.fountainFailures.Inc()
}

func (m *Metrics) RecordPacket(operation string) {
	m.packetsTotal.WithLabelValues(operation).Inc()
}

func (m *Metrics) RecordPacketCRCFailure() {
	m.packetCRCFailures.Inc()
}

func (m *Metrics) RecordFrame(operation string) {
	m.framesTotal.WithLabelValues(operation).Inc()
}

func (m *Metrics) RecordHookDuration(hookName string, duration time.Duration) {
	m.hookDuration.WithLabelValues(hookName).Observe(duration.Seconds())
}

// UpdateSystemMetrics refreshes the goroutine/memory gauges.
func (m *Metrics) UpdateSystemMetrics() {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	m.goroutines.Set(float64(runtime.NumGoroutine()))
	m.memoryAllocBytes.Set(float64(memStats.Alloc))
}

// Handler returns the HTTP handler serving Prometheus text exposition.
func (m *Metrics) Handler() http.Handler {
	return promhttp.Handler()
}

func getExemplar(ctx context.Context) prometheus.Labels {
	if ctx == nil {
		return nil
	}
	sc := trace.SpanFromContext(ctx).SpanContext()
	if sc.IsValid() {
		return prometheus.Labels{"trace_id": sc.TraceID().String()}
	}
	return nil
}
