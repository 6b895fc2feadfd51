// Command yts3 encodes a file into a lossless grayscale video carrier
// and decodes it back, implementing spec.md's pipeline end to end.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/kenchrcum/yts3/internal/config"
	"github.com/kenchrcum/yts3/internal/hook"
	"github.com/kenchrcum/yts3/internal/logging"
	"github.com/kenchrcum/yts3/internal/metrics"
	"github.com/kenchrcum/yts3/internal/pipeline"
	"github.com/kenchrcum/yts3/internal/tracing"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "encode":
		runEncode(os.Args[2:])
	case "decode":
		runDecode(os.Args[2:])
	case "verify":
		runVerify(os.Args[2:])
	case "-h", "--help", "help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "yts3: unknown subcommand %q\n\n", os.Args[1])
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: yts3 <encode|decode|verify> [flags]

  encode  -in FILE -out VIDEO [flags]   seal (with -password), fountain-code, and embed a file into a video
  decode  -in VIDEO -out FILE [flags]   recover a file from a previously encoded video
  verify  -in FILE -out VIDEO [flags]   encode, decode, and confirm the round trip matches`)
}

// sharedFlags binds the config/ambient-stack flags common to every
// subcommand, mirroring the teacher's flat flag.FlagSet style.
func sharedFlags(fs *flag.FlagSet, cfg *config.Config) {
	fs.StringVar(&cfg.Password, "password", os.Getenv("YTS3_PASSWORD"), "encryption password (or set YTS3_PASSWORD)")
	fs.IntVar(&cfg.ChunkSize, "chunk-size", cfg.ChunkSize, "chunk size in bytes, must be a multiple of the symbol size")
	fs.Float64Var(&cfg.RepairOverhead, "repair-overhead", cfg.RepairOverhead, "fraction of extra repair symbols per chunk")
	fs.IntVar(&cfg.FrameWidth, "frame-width", cfg.FrameWidth, "video frame width in pixels")
	fs.IntVar(&cfg.FrameHeight, "frame-height", cfg.FrameHeight, "video frame height in pixels")
	fs.IntVar(&cfg.FPS, "fps", cfg.FPS, "video frame rate")
	fs.IntVar(&cfg.BitsPerBlock, "bits-per-block", cfg.BitsPerBlock, "payload bits embedded per 8x8 block")
	fs.Float64Var(&cfg.CoefficientStrength, "coefficient-strength", cfg.CoefficientStrength, "DCT embedding amplitude")
	fs.StringVar(&cfg.FFmpegPath, "ffmpeg", cfg.FFmpegPath, "path to the ffmpeg binary")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn, error")
	fs.StringVar(&cfg.MetricsAddr, "metrics-addr", cfg.MetricsAddr, "if set, serve Prometheus metrics on this address")
	fs.StringVar(&cfg.TraceExporter, "trace-exporter", cfg.TraceExporter, "trace exporter: none, stdout, otlp, jaeger")
	fs.StringVar(&cfg.Hook, "hook", cfg.Hook, "pipeline hook: noop or s3")
	fs.StringVar(&cfg.Hook3Cfg.Bucket, "s3-bucket", cfg.Hook3Cfg.Bucket, "S3 hook: bucket name")
	fs.StringVar(&cfg.Hook3Cfg.Endpoint, "s3-endpoint", cfg.Hook3Cfg.Endpoint, "S3 hook: endpoint URL (for non-AWS providers)")
	fs.StringVar(&cfg.Hook3Cfg.Region, "s3-region", cfg.Hook3Cfg.Region, "S3 hook: region")
	fs.StringVar(&cfg.Hook3Cfg.AccessKey, "s3-access-key", cfg.Hook3Cfg.AccessKey, "S3 hook: static access key (falls back to default credential chain)")
	fs.StringVar(&cfg.Hook3Cfg.SecretKey, "s3-secret-key", cfg.Hook3Cfg.SecretKey, "S3 hook: static secret key")
	providerDefault := cfg.Hook3Cfg.Provider
	if providerDefault == "" {
		providerDefault = "aws"
	}
	fs.StringVar(&cfg.Hook3Cfg.Provider, "s3-provider", providerDefault, "S3 hook: provider name (aws, minio, wasabi, ...)")
}

// preScanConfigPath looks for -config/--config=... ahead of the full
// flag.Parse pass, since config.LoadFile's result becomes the default
// for every other flag and a FlagSet cannot be parsed twice with the
// same Var registrations.
func preScanConfigPath(args []string) string {
	for i, a := range args {
		switch {
		case a == "-config" || a == "--config":
			if i+1 < len(args) {
				return args[i+1]
			}
		case strings.HasPrefix(a, "-config="):
			return strings.TrimPrefix(a, "-config=")
		case strings.HasPrefix(a, "--config="):
			return strings.TrimPrefix(a, "--config=")
		}
	}
	return ""
}

func loadConfig(configPath string) config.Config {
	cfg, err := config.LoadFile(configPath)
	if err != nil {
		log.Fatalf("yts3: %v", err)
	}
	return cfg
}

func resolveHook(ctx context.Context, cfg config.Config, logger *logrus.Logger) (hook.PipelineHook, error) {
	switch cfg.Hook {
	case "", "noop":
		return hook.NoopHook{}, nil
	case "s3":
		return hook.NewS3Hook(ctx, cfg.Hook3Cfg, logger)
	default:
		return nil, fmt.Errorf("unknown hook %q", cfg.Hook)
	}
}

func startMetricsServer(addr string, m *metrics.Metrics) *http.Server {
	if addr == "" {
		return nil
	}
	r := mux.NewRouter()
	r.Handle("/metrics", m.Handler())
	r.HandleFunc("/healthz", metrics.HealthHandler())
	r.HandleFunc("/readyz", metrics.ReadinessHandler(nil))
	srv := &http.Server{Addr: addr, Handler: r}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("yts3: metrics server: %v", err)
		}
	}()
	return srv
}

func withSignalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()
	return ctx, cancel
}

func runEncode(args []string) {
	cfg := loadConfig(preScanConfigPath(args))

	fs := flag.NewFlagSet("encode", flag.ExitOnError)
	sharedFlags(fs, &cfg)
	fs.String("config", "", "path to a YAML config file")
	in := fs.String("in", "", "input file path")
	out := fs.String("out", "", "output video path")
	fs.Parse(args)

	if *in == "" || *out == "" {
		log.Fatal("yts3 encode: -in and -out are required")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("yts3: %v", err)
	}

	logger := logging.New(cfg.LogLevel)
	ctx, cancel := withSignalContext()
	defer cancel()

	shutdown, err := tracing.Setup(ctx, cfg.TraceExporter)
	if err != nil {
		log.Fatalf("yts3: %v", err)
	}
	defer shutdown(ctx)

	m := metrics.New()
	if srv := startMetricsServer(cfg.MetricsAddr, m); srv != nil {
		defer srv.Close()
	}

	h, err := resolveHook(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("yts3: %v", err)
	}

	f, err := os.Open(*in)
	if err != nil {
		log.Fatalf("yts3: %v", err)
	}
	defer f.Close()

	start := time.Now()
	result, err := pipeline.Encode(ctx, cfg, logger, m, h, f, *out)
	if err != nil {
		log.Fatalf("yts3 encode: %v", err)
	}
	logger.WithField("elapsed", time.Since(start)).
		WithField("chunks", result.ChunkCount).
		WithField("packets", result.PacketCount).
		WithField("video", result.VideoPath).
		Info("encode complete")
}

func runDecode(args []string) {
	cfg := loadConfig(preScanConfigPath(args))

	fs := flag.NewFlagSet("decode", flag.ExitOnError)
	sharedFlags(fs, &cfg)
	fs.String("config", "", "path to a YAML config file")
	in := fs.String("in", "", "input video path")
	out := fs.String("out", "", "output file path")
	fs.Parse(args)

	if *in == "" || *out == "" {
		log.Fatal("yts3 decode: -in and -out are required")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("yts3: %v", err)
	}

	logger := logging.New(cfg.LogLevel)
	ctx, cancel := withSignalContext()
	defer cancel()

	shutdown, err := tracing.Setup(ctx, cfg.TraceExporter)
	if err != nil {
		log.Fatalf("yts3: %v", err)
	}
	defer shutdown(ctx)

	m := metrics.New()
	if srv := startMetricsServer(cfg.MetricsAddr, m); srv != nil {
		defer srv.Close()
	}

	start := time.Now()
	result, err := pipeline.Decode(ctx, cfg, logger, m, cfg.Password, *in)
	if err != nil {
		log.Fatalf("yts3 decode: %v", err)
	}
	if err := os.WriteFile(*out, result.Data, 0o644); err != nil {
		log.Fatalf("yts3 decode: write %s: %v", *out, err)
	}
	logger.WithField("elapsed", time.Since(start)).
		WithField("chunks", result.ChunkCount).
		WithField("bytes", len(result.Data)).
		Info("decode complete")
}

func runVerify(args []string) {
	cfg := loadConfig(preScanConfigPath(args))

	fs := flag.NewFlagSet("verify", flag.ExitOnError)
	sharedFlags(fs, &cfg)
	fs.String("config", "", "path to a YAML config file")
	in := fs.String("in", "", "input file path")
	out := fs.String("out", "", "output video path")
	fs.Parse(args)

	if *in == "" || *out == "" {
		log.Fatal("yts3 verify: -in and -out are required")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("yts3: %v", err)
	}

	logger := logging.New(cfg.LogLevel)
	ctx, cancel := withSignalContext()
	defer cancel()

	m := metrics.New()
	h, err := resolveHook(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("yts3: %v", err)
	}

	f, err := os.Open(*in)
	if err != nil {
		log.Fatalf("yts3: %v", err)
	}
	defer f.Close()

	result, err := pipeline.Roundtrip(ctx, cfg, logger, m, h, f, *out)
	if err != nil {
		log.Fatalf("yts3 verify: %v", err)
	}
	if !result.Matched {
		log.Fatal("yts3 verify: recovered file does not match the original")
	}
	logger.WithField("video", result.Encode.VideoPath).Info("verify: round trip matched")
}
