package game

import (
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/decker502/spriteanim/internal/frames"
	"github.com/decker502/spriteanim/pkg/animation"
	"github.com/quasilyte/gdata/v2"
)

// openTestGdata 在临时 HOME 下打开 gdata
func openTestGdata(t *testing.T, appName string) *gdata.Manager {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, ".local", "share"))

	m, err := gdata.Open(gdata.Config{AppName: appName})
	if err != nil {
		t.Fatalf("Failed to create gdata manager: %v", err)
	}
	return m
}

// writeFile 写入相对于当前目录的文件
func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
}

func mustSheet(t *testing.T, key, texture string, fw, fh int) *animation.SpriteSheet {
	t.Helper()
	s, err := animation.NewSpriteSheet(key, texture, fw, fh, image.Point{})
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func mustAnimation(t *testing.T, key, sheet string, bounce bool, n int) *animation.Animation {
	t.Helper()
	fs := make([]frames.Frame, n)
	for i := range fs {
		fs[i] = frames.Frame{SheetIndex: i, Duration: 0.1}
	}
	a, err := animation.NewAnimation(key, sheet, bounce, fs)
	if err != nil {
		t.Fatal(err)
	}
	return a
}
