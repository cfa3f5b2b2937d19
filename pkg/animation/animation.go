// Package animation turns frame rings into playable sprite animations.
//
// An Animation is a named, immutable definition: a sprite-sheet key plus a
// frame ring. Initialize resolves the sheet once through a SheetProvider;
// afterwards any number of Contexts can be created from it, one per animated
// entity. A Context is the per-instance cursor that Update advances and the
// renderer reads.
//
// Typical use:
//
//	anim, err := animation.ReadAnimation(f)
//	if err != nil { ... }
//	if err := anim.Initialize(library); err != nil { ... }
//	ctx, err := anim.NewContext()
//	...
//	ctx.Update(dt)         // every tick
//	rect := ctx.SourceRect() // every draw
package animation

import (
	"fmt"

	"github.com/decker502/spriteanim/internal/frames"
)

// SheetProvider looks up sprite sheets by key. game.SpriteLibrary implements it.
type SheetProvider interface {
	GetSpriteSheetByKey(key string) (*SpriteSheet, bool)
}

// loaderProvider is implemented by providers that can also resolve textures
// for the sheets they hand out.
type loaderProvider interface {
	TextureLoader() TextureLoader
}

// Animation is a named frame sequence over one sprite sheet.
type Animation struct {
	Key            string
	SpriteSheetKey string
	Frames         *frames.Ring

	sheet *SpriteSheet
}

// NewAnimation builds an animation from its forward-pass frames.
//
// Returns ErrNoFrames or ErrInvalidDuration (wrapped) when the frames violate
// the ring builder's preconditions.
func NewAnimation(key, spriteSheetKey string, bounce bool, fs []frames.Frame) (*Animation, error) {
	ring, err := frames.Build(bounce, fs)
	if err != nil {
		return nil, fmt.Errorf("animation %q: %w", key, err)
	}
	return &Animation{Key: key, SpriteSheetKey: spriteSheetKey, Frames: ring}, nil
}

// Bounce reports whether the ring plays back and forth.
func (a *Animation) Bounce() bool {
	return frames.Bounces(a.Frames, a.Frames.Entry())
}

// FrameCount returns the ring length.
func (a *Animation) FrameCount() int {
	return frames.FrameCount(a.Frames, a.Frames.Entry())
}

// ForwardFrames returns the authoring frames the ring was built from.
func (a *Animation) ForwardFrames() []frames.Frame {
	return frames.ForwardPass(a.Frames, a.Frames.Entry())
}

// TotalDuration returns the time one full cycle of the ring takes at scale 1.
func (a *Animation) TotalDuration() float64 {
	total := 0.0
	id := a.Frames.Entry()
	for i := a.FrameCount(); i > 0; i-- {
		total += a.Frames.Duration(id)
		id = a.Frames.Next(id)
	}
	return total
}

// Initialize resolves the animation's sprite sheet through provider.
//
// The sheet must exist in the provider. If it is still unresolved and the
// provider also exposes a texture loader, it is resolved here; otherwise an
// unresolved sheet is an error. Failures are returned as *ResolutionError and
// leave the animation uninitialized.
func (a *Animation) Initialize(provider SheetProvider) error {
	if provider == nil {
		return &ResolutionError{Key: a.SpriteSheetKey, Err: ErrSheetNotFound}
	}

	sheet, ok := provider.GetSpriteSheetByKey(a.SpriteSheetKey)
	if !ok || sheet == nil {
		return &ResolutionError{Key: a.SpriteSheetKey, Err: ErrSheetNotFound}
	}

	if !sheet.Initialized() {
		lp, ok := provider.(loaderProvider)
		if !ok {
			return &ResolutionError{Key: a.SpriteSheetKey, Err: fmt.Errorf("%w: sheet texture not loaded", ErrTextureLoad)}
		}
		if err := sheet.Resolve(lp.TextureLoader()); err != nil {
			return err
		}
	}

	a.sheet = sheet
	return nil
}

// Initialized reports whether Initialize has succeeded.
func (a *Animation) Initialized() bool {
	return a.sheet != nil && a.sheet.Initialized()
}

// Sheet returns the resolved sprite sheet, or nil before Initialize.
func (a *Animation) Sheet() *SpriteSheet {
	return a.sheet
}

// NewContext creates a playback cursor positioned on the entry frame.
// It fails with ErrNotInitialized until Initialize has succeeded.
func (a *Animation) NewContext(opts ...ContextOption) (*Context, error) {
	if !a.Initialized() {
		return nil, fmt.Errorf("animation %q: %w", a.Key, ErrNotInitialized)
	}

	ctx := &Context{
		anim:      a,
		current:   a.Frames.Entry(),
		timeScale: 1,
		Transform: DefaultTransform(),
	}
	for _, opt := range opts {
		if err := opt(ctx); err != nil {
			return nil, err
		}
	}
	return ctx, nil
}
