package game

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"path"
	"strings"

	"github.com/decker502/spriteanim/pkg/animation"
	"github.com/decker502/spriteanim/pkg/embedded"
	"github.com/hajimehoshi/ebiten/v2"
)

// TextureDir is where bare texture names are looked up.
const TextureDir = "assets/textures"

// ResourceManager is responsible for centralized management of sprite-sheet
// textures. It loads each texture once and hands out the cached image
// afterwards.
//
// Texture names found in sprite-sheet definitions are resolved as follows:
//   - a name starting with "assets/" is used as a path as is;
//   - a name with an image extension is looked up under TextureDir;
//   - any other name gets ".png" appended and is looked up under TextureDir.
//
// Files are read from the embedded assets first and from disk otherwise, so
// textures added during development are picked up without a rebuild.
//
// Thread Safety Note:
// This implementation is NOT thread-safe. Load textures from the game update
// goroutine only.
//
// Usage:
//
//	rm := NewResourceManager()
//	img, err := rm.LoadImage("asteroid") // assets/textures/asteroid.png
//	if err != nil {
//	    log.Printf("Failed to load texture: %v", err)
//	}
type ResourceManager struct {
	imageCache map[string]*ebiten.Image // Cache for loaded images: resolved path -> Image
}

var _ animation.TextureLoader = (*ResourceManager)(nil)

// NewResourceManager creates a ResourceManager with an empty cache.
func NewResourceManager() *ResourceManager {
	return &ResourceManager{
		imageCache: make(map[string]*ebiten.Image),
	}
}

// TexturePath maps a texture name to the resource path it is loaded from.
func TexturePath(name string) string {
	name = strings.TrimPrefix(name, "./")
	if strings.HasPrefix(name, "assets/") {
		return name
	}
	switch strings.ToLower(path.Ext(name)) {
	case ".png", ".jpg", ".jpeg":
		return path.Join(TextureDir, name)
	}
	return path.Join(TextureDir, name+".png")
}

// LoadImage loads the texture called name and caches it for future use.
// If the texture has already been loaded, it returns the cached version.
//
// Error handling:
//   - Returns an error if the file exists neither embedded nor on disk.
//   - Returns an error if the image format is not supported or the file is corrupted.
//   - Does not panic - all errors are returned to the caller for handling.
func (rm *ResourceManager) LoadImage(name string) (*ebiten.Image, error) {
	p := TexturePath(name)

	if cachedImage, exists := rm.imageCache[p]; exists {
		return cachedImage, nil
	}

	data, err := embedded.ReadFileWithFallback(p)
	if err != nil {
		return nil, fmt.Errorf("failed to open image file %s: %w", p, err)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", p, err)
	}

	ebitenImg := ebiten.NewImageFromImage(img)
	rm.imageCache[p] = ebitenImg
	return ebitenImg, nil
}

// GetImage retrieves a previously loaded texture from the cache.
// It returns nil if the texture has not been loaded yet.
func (rm *ResourceManager) GetImage(name string) *ebiten.Image {
	return rm.imageCache[TexturePath(name)]
}

// RegisterImage stores an already decoded image under a texture name, e.g.
// a texture generated at runtime. Later LoadImage calls return it.
func (rm *ResourceManager) RegisterImage(name string, img *ebiten.Image) {
	rm.imageCache[TexturePath(name)] = img
}

// CachedCount returns the number of cached textures.
func (rm *ResourceManager) CachedCount() int {
	return len(rm.imageCache)
}
