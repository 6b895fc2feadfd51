// Package hook implements the pipeline's pluggable post-encode step:
// the contract that lets the encoded video be handed off to an opaque
// bulk-storage target (YouTube in the original system) and read back
// before decoding, per spec.md §4.8.
package hook

import "context"

// PipelineHook runs after video encoding and before decoding. It
// receives the path to the freshly encoded video and returns the path
// decoding should read from — letting a real implementation round-trip
// the file through external storage in between.
type PipelineHook interface {
	AfterEncode(ctx context.Context, encodedPath string) (string, error)
}

// NoopHook is the spec-required default: it returns encodedPath
// unchanged, modeling a no-op storage target.
type NoopHook struct{}

func (NoopHook) AfterEncode(_ context.Context, encodedPath string) (string, error) {
	return encodedPath, nil
}
