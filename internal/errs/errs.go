// Package errs defines the typed error taxonomy shared across the
// yts3 pipeline, matching spec.md §7's error classes so callers can
// distinguish recoverable from fatal failures with errors.Is/As.
package errs

import "errors"

// Sentinel errors for conditions with no useful payload.
var (
	// ErrShortRead is returned when a packet buffer ends before its
	// complete header and payload could be parsed.
	ErrShortRead = errors.New("yts3: short read")

	// ErrBadMagic is returned when a packet header's magic number does
	// not match config.Magic.
	ErrBadMagic = errors.New("yts3: bad packet magic")

	// ErrCRCMismatch is returned when a packet's header and payload
	// fail their CRC-32/MPEG-2 check.
	ErrCRCMismatch = errors.New("yts3: packet CRC mismatch")

	// ErrRankDeficient is returned when fountain decoding runs out of
	// symbols before the source-symbol system reaches full rank.
	ErrRankDeficient = errors.New("yts3: fountain system is rank-deficient")

	// ErrAuthFailed is returned when AEAD authentication fails on open.
	ErrAuthFailed = errors.New("yts3: chunk authentication failed")

	// ErrUnsupportedVersion is returned when a packet's version field
	// is not one this build knows how to decode.
	ErrUnsupportedVersion = errors.New("yts3: unsupported packet version")
)

// ConfigError reports an invalid configuration value. It wraps the
// field name and reason so CLI error output names what to fix.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return "yts3: invalid config field " + e.Field + ": " + e.Reason
}

// StageError wraps an error with the pipeline stage it occurred in
// (chunk, seal, fountain-encode, embed, video-encode, hook, ...), so
// logs and traces can attribute failures without string-matching.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return "yts3: " + e.Stage + ": " + e.Err.Error()
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Wrap annotates err with the stage it failed in. Returns nil if err
// is nil, so it composes at call sites as `return errs.Wrap("seal", err)`.
func Wrap(stage string, err error) error {
	if err == nil {
		return nil
	}
	return &StageError{Stage: stage, Err: err}
}
