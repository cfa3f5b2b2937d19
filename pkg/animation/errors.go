package animation

import (
	"errors"
	"fmt"

	"github.com/decker502/spriteanim/internal/frames"
)

var (
	// ErrNotInitialized is returned when an animation or sprite sheet is used
	// before its sprite sheet / texture has been resolved.
	ErrNotInitialized = errors.New("animation: not initialized")

	// ErrSheetNotFound is wrapped by ResolutionError when the provider has no
	// sprite sheet for the requested key.
	ErrSheetNotFound = errors.New("animation: sprite sheet not found")

	// ErrTextureLoad is wrapped by ResolutionError when the texture loader
	// cannot produce the sheet's texture.
	ErrTextureLoad = errors.New("animation: texture load failed")

	// ErrNegativeTimeScale is returned by Context.SetTimeScale under the
	// TimeScaleReject policy.
	ErrNegativeTimeScale = errors.New("animation: time scale must be >= 0")

	// ErrInvalidGeometry is returned for non-positive frame sizes.
	ErrInvalidGeometry = errors.New("animation: frame width and height must be > 0")

	// Builder preconditions, re-exported so callers need not import the ring package.
	ErrNoFrames        = frames.ErrNoFrames
	ErrInvalidDuration = frames.ErrInvalidDuration
)

// DecodeError reports a malformed or truncated binary stream. Decoders never
// return a partially populated value alongside it.
type DecodeError struct {
	What   string // "animation" or "sprite sheet"
	Offset int64  // bytes consumed before the failure
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s at byte %d: %v", e.What, e.Offset, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// ResolutionError reports that a sprite sheet key or texture could not be
// resolved during initialization.
type ResolutionError struct {
	Key string // sprite sheet key (or texture name for texture failures)
	Err error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolve %q: %v", e.Key, e.Err)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}
