package animation

import (
	"fmt"
	"image"

	"github.com/hajimehoshi/ebiten/v2"
)

// TextureLoader resolves a texture name to a drawable image.
// game.ResourceManager implements it.
type TextureLoader interface {
	LoadImage(name string) (*ebiten.Image, error)
}

// SheetResolution is the resolution state of a SpriteSheet: either
// Unresolved or Resolved. Switch on the concrete type:
//
//	switch res := sheet.Resolution().(type) {
//	case animation.Resolved:
//	    draw(res.Texture)
//	case animation.Unresolved:
//	    // fall back
//	}
type SheetResolution interface {
	sheetResolution()
}

// Unresolved means the sheet's texture has not been loaded (or failed to load).
type Unresolved struct{}

// Resolved carries the loaded texture and the number of frames per row.
type Resolved struct {
	Texture *ebiten.Image
	Stride  int
}

func (Unresolved) sheetResolution() {}
func (Resolved) sheetResolution()   {}

// SpriteSheet is a texture subdivided into a uniform grid of frames, addressed
// by linear index. The definition fields are serialized; the resolution state
// is not.
type SpriteSheet struct {
	Key         string
	TextureName string
	FrameWidth  int
	FrameHeight int
	Offset      image.Point // pixel origin of the grid within the texture

	resolution SheetResolution
}

// NewSpriteSheet creates an unresolved sprite sheet definition.
func NewSpriteSheet(key, textureName string, frameWidth, frameHeight int, offset image.Point) (*SpriteSheet, error) {
	if frameWidth <= 0 || frameHeight <= 0 {
		return nil, fmt.Errorf("sprite sheet %q (%dx%d): %w", key, frameWidth, frameHeight, ErrInvalidGeometry)
	}
	return &SpriteSheet{
		Key:         key,
		TextureName: textureName,
		FrameWidth:  frameWidth,
		FrameHeight: frameHeight,
		Offset:      offset,
		resolution:  Unresolved{},
	}, nil
}

// Resolution returns the current resolution state.
func (s *SpriteSheet) Resolution() SheetResolution {
	if s.resolution == nil {
		return Unresolved{}
	}
	return s.resolution
}

// Initialized reports whether the texture has been resolved.
func (s *SpriteSheet) Initialized() bool {
	_, ok := s.Resolution().(Resolved)
	return ok
}

// Texture returns the resolved texture, or nil while unresolved.
func (s *SpriteSheet) Texture() *ebiten.Image {
	if res, ok := s.Resolution().(Resolved); ok {
		return res.Texture
	}
	return nil
}

// Resolve loads the sheet's texture through loader. On failure the sheet stays
// Unresolved and a *ResolutionError is returned. Resolving a sheet that is
// already resolved does nothing.
func (s *SpriteSheet) Resolve(loader TextureLoader) error {
	if s.Initialized() {
		return nil
	}
	if loader == nil {
		return &ResolutionError{Key: s.TextureName, Err: fmt.Errorf("%w: no texture loader", ErrTextureLoad)}
	}

	img, err := loader.LoadImage(s.TextureName)
	if err != nil {
		return &ResolutionError{Key: s.TextureName, Err: fmt.Errorf("%w: %w", ErrTextureLoad, err)}
	}
	if img == nil {
		return &ResolutionError{Key: s.TextureName, Err: fmt.Errorf("%w: loader returned no image", ErrTextureLoad)}
	}

	return s.attach(img)
}

// SetTexture resolves the sheet with an already loaded texture.
func (s *SpriteSheet) SetTexture(img *ebiten.Image) error {
	if img == nil {
		return &ResolutionError{Key: s.TextureName, Err: fmt.Errorf("%w: nil texture", ErrTextureLoad)}
	}
	return s.attach(img)
}

func (s *SpriteSheet) attach(img *ebiten.Image) error {
	if s.FrameWidth <= 0 || s.FrameHeight <= 0 {
		return &ResolutionError{Key: s.Key, Err: ErrInvalidGeometry}
	}

	stride := img.Bounds().Dx() / s.FrameWidth
	if stride < 1 {
		return &ResolutionError{
			Key: s.TextureName,
			Err: fmt.Errorf("%w: texture width %d is narrower than frame width %d",
				ErrTextureLoad, img.Bounds().Dx(), s.FrameWidth),
		}
	}

	s.resolution = Resolved{Texture: img, Stride: stride}
	return nil
}

// SourceRect returns the texture region for a sheet index. The grid has
// texture-width / frame-width columns; index i lives at column i%stride and
// row i/stride, shifted by Offset.
func (s *SpriteSheet) SourceRect(index int) (image.Rectangle, error) {
	res, ok := s.Resolution().(Resolved)
	if !ok {
		return image.Rectangle{}, fmt.Errorf("sprite sheet %q: %w", s.Key, ErrNotInitialized)
	}
	if index < 0 {
		return image.Rectangle{}, fmt.Errorf("sprite sheet %q: negative frame index %d", s.Key, index)
	}

	col := index % res.Stride
	row := index / res.Stride
	origin := image.Pt(col*s.FrameWidth, row*s.FrameHeight).Add(s.Offset)
	return image.Rectangle{Min: origin, Max: origin.Add(image.Pt(s.FrameWidth, s.FrameHeight))}, nil
}

// Frame returns the sub-image for a sheet index.
func (s *SpriteSheet) Frame(index int) (*ebiten.Image, error) {
	rect, err := s.SourceRect(index)
	if err != nil {
		return nil, err
	}
	return s.Texture().SubImage(rect).(*ebiten.Image), nil
}
