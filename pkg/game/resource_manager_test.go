package game

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
)

// createTestImage writes a w x h PNG to path.
func createTestImage(path string, w, h int) error {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	blue := color.RGBA{R: 0, G: 0, B: 255, A: 255}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, blue)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return png.Encode(file, img)
}

// chdirWithTexture switches to a temp dir holding assets/textures/<name>.png.
func chdirWithTexture(t *testing.T, name string, w, h int) {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	if err := createTestImage(filepath.Join("assets", "textures", name+".png"), w, h); err != nil {
		t.Fatalf("Failed to create test image: %v", err)
	}
}

func TestTexturePath(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"asteroid", "assets/textures/asteroid.png"},
		{"ships/fighter", "assets/textures/ships/fighter.png"},
		{"explosion.jpg", "assets/textures/explosion.jpg"},
		{"assets/other/bg.png", "assets/other/bg.png"},
		{"./assets/other/bg.png", "assets/other/bg.png"},
	}
	for _, tt := range tests {
		if got := TexturePath(tt.name); got != tt.want {
			t.Errorf("TexturePath(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

// TestLoadImage_Success tests loading a texture from disk.
func TestLoadImage_Success(t *testing.T) {
	chdirWithTexture(t, "hero", 64, 32)

	rm := NewResourceManager()
	img, err := rm.LoadImage("hero")
	if err != nil {
		t.Fatalf("LoadImage failed: %v", err)
	}
	if img.Bounds().Dx() != 64 || img.Bounds().Dy() != 32 {
		t.Errorf("Expected 64x32 image, got %v", img.Bounds())
	}
}

// TestLoadImage_CachingMechanism tests that repeated loads return the cached image.
func TestLoadImage_CachingMechanism(t *testing.T) {
	chdirWithTexture(t, "hero", 16, 16)

	rm := NewResourceManager()
	img1, err := rm.LoadImage("hero")
	if err != nil {
		t.Fatalf("First load failed: %v", err)
	}
	img2, err := rm.LoadImage("hero.png")
	if err != nil {
		t.Fatalf("Second load failed: %v", err)
	}
	if img1 != img2 {
		t.Error("Expected the same cached image instance")
	}
	if rm.CachedCount() != 1 {
		t.Errorf("Expected 1 cached image, got %d", rm.CachedCount())
	}
	if rm.GetImage("hero") != img1 {
		t.Error("GetImage should return the cached image")
	}
}

func TestLoadImage_Errors(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	rm := NewResourceManager()
	if _, err := rm.LoadImage("missing"); err == nil {
		t.Error("Expected error for missing texture")
	}

	bad := filepath.Join("assets", "textures", "broken.png")
	os.MkdirAll(filepath.Dir(bad), 0755)
	if err := os.WriteFile(bad, []byte("not a png"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := rm.LoadImage("broken"); err == nil {
		t.Error("Expected error for corrupted texture")
	}
	if rm.GetImage("broken") != nil {
		t.Error("Failed loads must not be cached")
	}
}

func TestRegisterImage(t *testing.T) {
	rm := NewResourceManager()
	img := ebiten.NewImage(8, 8)
	rm.RegisterImage("generated", img)

	got, err := rm.LoadImage("generated")
	if err != nil || got != img {
		t.Errorf("LoadImage after RegisterImage = %v, %v", got, err)
	}
}
