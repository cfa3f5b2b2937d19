package game

import (
	"errors"
	"fmt"
	"log"
	"sort"

	"github.com/decker502/spriteanim/pkg/animation"
	"github.com/decker502/spriteanim/pkg/authoring"
	"github.com/decker502/spriteanim/pkg/embedded"
)

// SpriteLibrary 精灵表与动画定义的注册表
//
// 实现 animation.SheetProvider，并通过 TextureLoader() 暴露纹理加载器，
// 因此 Animation.Initialize 可以直接解析尚未加载纹理的精灵表。
// 同一键重复添加时后者覆盖前者。非并发安全，只在游戏更新线程中使用。
type SpriteLibrary struct {
	loader     animation.TextureLoader
	sheets     map[string]*animation.SpriteSheet
	animations map[string]*animation.Animation
}

// NewSpriteLibrary 创建空注册表，loader 可为 nil（此时只接受已解析的精灵表）
func NewSpriteLibrary(loader animation.TextureLoader) *SpriteLibrary {
	return &SpriteLibrary{
		loader:     loader,
		sheets:     make(map[string]*animation.SpriteSheet),
		animations: make(map[string]*animation.Animation),
	}
}

// GetSpriteSheetByKey 实现 animation.SheetProvider
func (l *SpriteLibrary) GetSpriteSheetByKey(key string) (*animation.SpriteSheet, bool) {
	s, ok := l.sheets[key]
	return s, ok
}

// TextureLoader 返回用于解析精灵表纹理的加载器
func (l *SpriteLibrary) TextureLoader() animation.TextureLoader {
	return l.loader
}

// AddSpriteSheet 注册精灵表
func (l *SpriteLibrary) AddSpriteSheet(s *animation.SpriteSheet) {
	if old, ok := l.sheets[s.Key]; ok && old != s {
		log.Printf("[SpriteLibrary] Replacing sprite sheet %q", s.Key)
	}
	l.sheets[s.Key] = s
}

// AddAnimation 注册动画定义
func (l *SpriteLibrary) AddAnimation(a *animation.Animation) {
	if old, ok := l.animations[a.Key]; ok && old != a {
		log.Printf("[SpriteLibrary] Replacing animation %q", a.Key)
	}
	l.animations[a.Key] = a
}

// Animation 按键查找动画定义
func (l *SpriteLibrary) Animation(key string) (*animation.Animation, bool) {
	a, ok := l.animations[key]
	return a, ok
}

// AnimationKeys 返回所有动画键（已排序）
func (l *SpriteLibrary) AnimationKeys() []string {
	keys := make([]string, 0, len(l.animations))
	for k := range l.animations {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SpriteSheetKeys 返回所有精灵表键（已排序）
func (l *SpriteLibrary) SpriteSheetKeys() []string {
	keys := make([]string, 0, len(l.sheets))
	for k := range l.sheets {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// LoadSpriteSheetFile 读取一个 .sheet 二进制文件并注册
func (l *SpriteLibrary) LoadSpriteSheetFile(path string) (*animation.SpriteSheet, error) {
	data, err := embedded.ReadFileWithFallback(path)
	if err != nil {
		return nil, err
	}
	sheet, err := animation.UnmarshalSpriteSheet(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	l.AddSpriteSheet(sheet)
	return sheet, nil
}

// LoadAnimationFile 读取一个 .anim 二进制文件并注册
func (l *SpriteLibrary) LoadAnimationFile(path string) (*animation.Animation, error) {
	data, err := embedded.ReadFileWithFallback(path)
	if err != nil {
		return nil, err
	}
	anim, err := animation.UnmarshalAnimation(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	l.AddAnimation(anim)
	return anim, nil
}

// LoadFromGlobs 加载匹配的精灵表与动画文件
//
// 损坏的精灵表文件视为"无定义"：记录警告并跳过。
// 损坏的动画文件汇总到返回的错误中，其余文件照常加载。
func (l *SpriteLibrary) LoadFromGlobs(sheetGlob, animGlob string) error {
	var errs []error

	sheetFiles, err := embedded.GlobWithFallback(sheetGlob)
	if err != nil {
		return fmt.Errorf("glob %s: %w", sheetGlob, err)
	}
	for _, path := range sheetFiles {
		if _, err := l.LoadSpriteSheetFile(path); err != nil {
			log.Printf("[SpriteLibrary] Warning: skipping sprite sheet %s: %v", path, err)
		}
	}

	animFiles, err := embedded.GlobWithFallback(animGlob)
	if err != nil {
		return fmt.Errorf("glob %s: %w", animGlob, err)
	}
	for _, path := range animFiles {
		if _, err := l.LoadAnimationFile(path); err != nil {
			errs = append(errs, err)
		}
	}

	log.Printf("[SpriteLibrary] Loaded %d sheet files, %d animation files", len(sheetFiles), len(animFiles))
	return errors.Join(errs...)
}

// LoadAuthoring 加载匹配的 YAML 编写文件
func (l *SpriteLibrary) LoadAuthoring(glob string) error {
	files, err := embedded.GlobWithFallback(glob)
	if err != nil {
		return fmt.Errorf("glob %s: %w", glob, err)
	}

	var errs []error
	for _, path := range files {
		doc, err := authoring.LoadFile(path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		sheets, anims, err := doc.Build()
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", path, err))
		}
		for _, s := range sheets {
			l.AddSpriteSheet(s)
		}
		for _, a := range anims {
			l.AddAnimation(a)
		}
	}
	return errors.Join(errs...)
}

// InitializeAll 解析所有尚未初始化的动画
// 失败的动画保持未初始化状态，错误汇总返回
func (l *SpriteLibrary) InitializeAll() error {
	var errs []error
	for _, key := range l.AnimationKeys() {
		a := l.animations[key]
		if a.Initialized() {
			continue
		}
		if err := a.Initialize(l); err != nil {
			errs = append(errs, fmt.Errorf("animation %q: %w", key, err))
		}
	}
	if len(errs) > 0 {
		log.Printf("[SpriteLibrary] %d of %d animations failed to initialize", len(errs), len(l.animations))
	}
	return errors.Join(errs...)
}

// NewContext 为指定动画创建播放上下文，必要时先初始化动画
func (l *SpriteLibrary) NewContext(key string, opts ...animation.ContextOption) (*animation.Context, error) {
	a, ok := l.animations[key]
	if !ok {
		return nil, fmt.Errorf("animation %q not in library", key)
	}
	if !a.Initialized() {
		if err := a.Initialize(l); err != nil {
			return nil, err
		}
	}
	return a.NewContext(opts...)
}
