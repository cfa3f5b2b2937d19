package animation

import (
	"fmt"
	"image"
	"math"

	"github.com/decker502/spriteanim/internal/frames"
	"github.com/hajimehoshi/ebiten/v2"
)

// TimeScalePolicy decides what SetTimeScale does with negative values.
// Reverse playback is not supported.
type TimeScalePolicy int

const (
	// TimeScaleReject refuses negative (and NaN) scales with ErrNegativeTimeScale.
	TimeScaleReject TimeScalePolicy = iota
	// TimeScaleFreeze clamps negative scales to 0.
	TimeScaleFreeze
)

// ParseTimeScalePolicy maps a config value ("reject", "freeze") to a policy.
// The empty string selects TimeScaleReject.
func ParseTimeScalePolicy(s string) (TimeScalePolicy, error) {
	switch s {
	case "", "reject":
		return TimeScaleReject, nil
	case "freeze":
		return TimeScaleFreeze, nil
	}
	return TimeScaleReject, fmt.Errorf("unknown time scale policy %q (want reject or freeze)", s)
}

func (p TimeScalePolicy) String() string {
	switch p {
	case TimeScaleFreeze:
		return "freeze"
	default:
		return "reject"
	}
}

// Transform is the 2D pose a context is drawn with.
type Transform struct {
	X, Y     float64
	Rotation float64 // radians
	Scale    float64
}

// DefaultTransform returns the identity pose.
func DefaultTransform() Transform {
	return Transform{Scale: 1}
}

// ScaleVector returns the uniform scale as an (x, y) pair.
func (t Transform) ScaleVector() (float64, float64) {
	return t.Scale, t.Scale
}

// Context is the per-instance playback cursor over an Animation's ring.
// It is owned by a single entity and must only be used from the update
// goroutine.
type Context struct {
	Transform Transform

	anim      *Animation
	current   frames.NodeID
	elapsed   float64
	timeScale float64
	policy    TimeScalePolicy
}

// ContextOption configures a new Context.
type ContextOption func(*Context) error

// WithTimeScalePolicy sets the negative time scale policy. Apply it before
// WithTimeScale if both are given.
func WithTimeScalePolicy(p TimeScalePolicy) ContextOption {
	return func(c *Context) error {
		c.policy = p
		return nil
	}
}

// WithTimeScale sets the initial time scale, subject to the policy.
func WithTimeScale(scale float64) ContextOption {
	return func(c *Context) error {
		return c.SetTimeScale(scale)
	}
}

// WithTransform sets the initial pose.
func WithTransform(t Transform) ContextOption {
	return func(c *Context) error {
		c.Transform = t
		return nil
	}
}

// Update advances playback by delta seconds scaled by the time scale.
//
// At most one frame step happens per call: if the accumulated time covers
// several frame durations, the excess stays in the elapsed counter and is
// consumed by later calls. Playback never ends.
func (c *Context) Update(delta float64) {
	c.elapsed += delta * c.timeScale

	ring := c.anim.Frames
	if d := ring.Duration(c.current); c.elapsed >= d {
		c.elapsed -= d
		c.current = ring.Next(c.current)
	}
}

// Reset returns to the entry frame with no elapsed time.
func (c *Context) Reset() {
	c.current = c.anim.Frames.Entry()
	c.elapsed = 0
}

// SetTimeScale changes the playback speed. 0 freezes playback; negative
// values follow the context's TimeScalePolicy.
func (c *Context) SetTimeScale(scale float64) error {
	if math.IsNaN(scale) || math.IsInf(scale, 0) {
		return fmt.Errorf("time scale %v: %w", scale, ErrNegativeTimeScale)
	}
	if scale < 0 {
		if c.policy == TimeScaleFreeze {
			c.timeScale = 0
			return nil
		}
		return fmt.Errorf("time scale %v: %w", scale, ErrNegativeTimeScale)
	}
	c.timeScale = scale
	return nil
}

// TimeScale returns the playback speed multiplier.
func (c *Context) TimeScale() float64 {
	return c.timeScale
}

// Policy returns the negative time scale policy.
func (c *Context) Policy() TimeScalePolicy {
	return c.policy
}

// Animation returns the shared definition the context plays.
func (c *Context) Animation() *Animation {
	return c.anim
}

// CurrentNode returns the ring node being shown.
func (c *Context) CurrentNode() frames.NodeID {
	return c.current
}

// CurrentSheetIndex returns the sprite-sheet cell being shown.
func (c *Context) CurrentSheetIndex() int {
	return c.anim.Frames.SheetIndex(c.current)
}

// Elapsed returns the time spent on the current frame, in seconds.
func (c *Context) Elapsed() float64 {
	return c.elapsed
}

// SourceRect returns the texture region of the current frame.
func (c *Context) SourceRect() image.Rectangle {
	// the animation is initialized for the whole life of the context
	rect, err := c.anim.sheet.SourceRect(c.CurrentSheetIndex())
	if err != nil {
		return image.Rectangle{}
	}
	return rect
}

// Texture returns the sprite sheet texture.
func (c *Context) Texture() *ebiten.Image {
	return c.anim.sheet.Texture()
}

// CurrentImage returns the current frame as a sub-image of the sheet texture.
func (c *Context) CurrentImage() *ebiten.Image {
	tex := c.Texture()
	if tex == nil {
		return nil
	}
	return tex.SubImage(c.SourceRect()).(*ebiten.Image)
}

// Width returns the drawn width in pixels (frame width times scale).
func (c *Context) Width() int {
	return int(math.Round(float64(c.anim.sheet.FrameWidth) * c.Transform.Scale))
}

// Height returns the drawn height in pixels (frame height times scale).
func (c *Context) Height() int {
	return int(math.Round(float64(c.anim.sheet.FrameHeight) * c.Transform.Scale))
}
