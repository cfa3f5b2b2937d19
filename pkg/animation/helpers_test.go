package animation

import (
	"errors"
	"image"
	"testing"

	"github.com/decker502/spriteanim/internal/frames"
	"github.com/hajimehoshi/ebiten/v2"
)

// fakeLoader 记录加载请求的纹理加载器
type fakeLoader struct {
	images map[string]*ebiten.Image
	calls  []string
}

func (l *fakeLoader) LoadImage(name string) (*ebiten.Image, error) {
	l.calls = append(l.calls, name)
	if img, ok := l.images[name]; ok {
		return img, nil
	}
	return nil, errors.New("no such texture: " + name)
}

// fakeProvider 基于 map 的精灵表提供者，可选携带纹理加载器
type fakeProvider struct {
	sheets map[string]*SpriteSheet
	loader TextureLoader
}

func (p *fakeProvider) GetSpriteSheetByKey(key string) (*SpriteSheet, bool) {
	s, ok := p.sheets[key]
	return s, ok
}

// plainProvider 不提供纹理加载器
type plainProvider struct {
	sheets map[string]*SpriteSheet
}

func (p *plainProvider) GetSpriteSheetByKey(key string) (*SpriteSheet, bool) {
	s, ok := p.sheets[key]
	return s, ok
}

func (p *fakeProvider) TextureLoader() TextureLoader {
	return p.loader
}

// newTestSheet 创建一个 64x32 纹理、16x16 帧的已解析精灵表（每行 4 帧）
func newTestSheet(t *testing.T, key string) *SpriteSheet {
	t.Helper()
	sheet, err := NewSpriteSheet(key, key+"_tex", 16, 16, image.Point{})
	if err != nil {
		t.Fatalf("NewSpriteSheet failed: %v", err)
	}
	if err := sheet.SetTexture(ebiten.NewImage(64, 32)); err != nil {
		t.Fatalf("SetTexture failed: %v", err)
	}
	return sheet
}

// newTestAnimation 创建并初始化一个动画
func newTestAnimation(t *testing.T, bounce bool, fs []frames.Frame) *Animation {
	t.Helper()
	anim, err := NewAnimation("test_anim", "test_sheet", bounce, fs)
	if err != nil {
		t.Fatalf("NewAnimation failed: %v", err)
	}
	provider := &plainProvider{sheets: map[string]*SpriteSheet{"test_sheet": newTestSheet(t, "test_sheet")}}
	if err := anim.Initialize(provider); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	return anim
}
