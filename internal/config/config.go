// Package config holds the wire-format constants and the tunable
// configuration for the yts3 encode/decode pipeline.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kenchrcum/yts3/internal/errs"
)

// Wire-format constants. These are part of the on-disk/on-video contract
// and must never change without bumping PacketVersion.
const (
	Magic         uint32 = 0x59545333 // "YTS3"
	PacketVersion uint8  = 2

	PacketHeaderSize = 50

	FlagRepairSymbol byte = 0x01
	FlagLastChunk    byte = 0x02
	FlagEncrypted    byte = 0x04

	DefaultFrameWidth          = 3840
	DefaultFrameHeight         = 2160
	DefaultFPS                 = 30
	DefaultCoefficientStrength = 150.0
	BlockSize                  = 8
	SymbolSize                 = 256

	Argon2MemCostKiB = 64 * 1024
	Argon2Time       = 3
	Argon2Threads    = 4
	Argon2KeyLen     = 32
)

// EmbedPositions are the (u, v) frequency pairs of the four 8x8 DCT
// coefficients carrying one payload bit per block, per spec.md §4.5.
// dctcodec's dctBasis takes u as the horizontal (column-direction)
// frequency and v as the vertical (row-direction) frequency.
var EmbedPositions = [4][2]int{{0, 1}, {1, 0}, {1, 1}, {0, 2}}

// Config is the fully resolved set of knobs for one encode or decode run.
// It is populated from defaults, then an optional YAML file, then CLI
// flags, in that order — later sources win, matching the teacher's
// viper-style precedence.
type Config struct {
	// Chunking / coding
	ChunkSize       int     `yaml:"chunk_size"`
	RepairOverhead  float64 `yaml:"repair_overhead"`
	BitsPerBlock    int     `yaml:"bits_per_block"`

	// Video geometry
	FrameWidth  int `yaml:"frame_width"`
	FrameHeight int `yaml:"frame_height"`
	FPS         int `yaml:"fps"`

	// Steganography
	CoefficientStrength float64 `yaml:"coefficient_strength"`

	// Crypto
	Password string `yaml:"-"` // never serialized; supplied via flag/env only

	// External tooling
	FFmpegPath string `yaml:"ffmpeg_path"`

	// Ambient stack
	LogLevel     string `yaml:"log_level"`
	MetricsAddr  string `yaml:"metrics_addr"`
	TraceExporter string `yaml:"trace_exporter"` // "none", "stdout", "otlp", "jaeger"

	// Pipeline hook
	Hook     string     `yaml:"hook"` // "noop" or "s3"
	Hook3Cfg S3HookConfig `yaml:"s3"`
}

// S3HookConfig configures the reference S3Hook pipeline hook.
type S3HookConfig struct {
	Bucket    string `yaml:"bucket"`
	Endpoint  string `yaml:"endpoint"`
	Region    string `yaml:"region"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Provider  string `yaml:"provider"` // aws, minio, wasabi, ...
}

// Default returns a Config populated with the spec's default values.
func Default() Config {
	return Config{
		ChunkSize:           SymbolSize * 64,
		RepairOverhead:      0.30,
		BitsPerBlock:        1,
		FrameWidth:          DefaultFrameWidth,
		FrameHeight:         DefaultFrameHeight,
		FPS:                 DefaultFPS,
		CoefficientStrength: DefaultCoefficientStrength,
		FFmpegPath:          "ffmpeg",
		LogLevel:       "info",
		TraceExporter:  "none",
		Hook:           "noop",
	}
}

// LoadFile reads a YAML config file and merges it onto the defaults.
// An empty path returns the defaults unchanged; a path that cannot be
// read or parsed is an error. Callers pass an explicit path only when
// the user set --config.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks invariants that the CLI cannot express as flag
// constraints alone.
func (c Config) Validate() error {
	if c.ChunkSize <= 0 || c.ChunkSize%SymbolSize != 0 {
		return fmt.Errorf("chunk_size must be a positive multiple of %d, got %d", SymbolSize, c.ChunkSize)
	}
	if c.RepairOverhead < 0 {
		return fmt.Errorf("repair_overhead must be >= 0, got %f", c.RepairOverhead)
	}
	if c.BitsPerBlock != 1 {
		// Supporting >1 bit per block requires a second embedding
		// pattern per extra bit and a wire-version bump; out of scope
		// for PacketVersion 2.
		return &errs.ConfigError{Field: "bits_per_block", Reason: fmt.Sprintf("must be 1 in this version, got %d", c.BitsPerBlock)}
	}
	if c.FrameWidth%BlockSize != 0 || c.FrameHeight%BlockSize != 0 {
		return fmt.Errorf("frame dimensions must be multiples of %d, got %dx%d", BlockSize, c.FrameWidth, c.FrameHeight)
	}
	if c.FPS <= 0 {
		return fmt.Errorf("fps must be positive, got %d", c.FPS)
	}
	if c.CoefficientStrength <= 0 {
		return fmt.Errorf("coefficient_strength must be positive, got %f", c.CoefficientStrength)
	}
	switch c.Hook {
	case "noop", "s3":
	default:
		return fmt.Errorf("unknown hook %q (expected noop or s3)", c.Hook)
	}
	return nil
}

// BlocksPerFrame returns how many 8x8 blocks fit in one frame.
func (c Config) BlocksPerFrame() int {
	return (c.FrameWidth / BlockSize) * (c.FrameHeight / BlockSize)
}

// BytesPerFrame returns how many payload bytes one frame carries, given
// one bit embedded per block across four coefficient positions yields
// one bit per block (BitsPerBlock is pinned to 1).
func (c Config) BytesPerFrame() int {
	return c.BlocksPerFrame() / 8
}
