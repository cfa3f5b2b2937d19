package game

import (
	"errors"
	"fmt"
	"log"
	"slices"

	"github.com/decker502/spriteanim/pkg/animation"
	"github.com/quasilyte/gdata/v2"
	"gopkg.in/yaml.v3"
)

// 存储路径常量
const (
	animationsObject = "animations"
	sheetsObject     = "sheets"
	libraryObject    = "library"
	manifestProperty = "manifest"
)

// ErrNotStored 请求的定义不在存储中
var ErrNotStored = errors.New("definition not stored")

// manifest 记录已保存的键，gdata 不提供属性枚举
type manifest struct {
	Animations []string `yaml:"animations"`
	Sheets     []string `yaml:"sheets"`
}

// LibraryStore 通过 gdata 持久化打包后的动画与精灵表定义
//
// 值为二进制编码（与 .anim/.sheet 文件相同），对象为 "animations"/"sheets"，
// 属性为定义的键。gdataManager 为 nil 时进入降级模式：保存为空操作，读取总是找不到。
type LibraryStore struct {
	gdataManager *gdata.Manager
	manifest     manifest
}

// NewLibraryStore 创建存储并加载清单
func NewLibraryStore(gdataManager *gdata.Manager) *LibraryStore {
	ls := &LibraryStore{gdataManager: gdataManager}
	if err := ls.loadManifest(); err != nil {
		log.Printf("[LibraryStore] Warning: Failed to load manifest: %v (starting empty)", err)
	}
	return ls
}

// OpenLibraryStore 打开指定应用名下的存储
// gdata 打开失败时返回降级模式的存储和错误
func OpenLibraryStore(appName string) (*LibraryStore, error) {
	m, err := gdata.Open(gdata.Config{AppName: appName})
	if err != nil {
		return NewLibraryStore(nil), fmt.Errorf("open gdata %q: %w", appName, err)
	}
	return NewLibraryStore(m), nil
}

// Manager 返回底层 gdata 管理器，可能为 nil
func (ls *LibraryStore) Manager() *gdata.Manager {
	return ls.gdataManager
}

func (ls *LibraryStore) loadManifest() error {
	if ls.gdataManager == nil || !ls.gdataManager.ObjectPropExists(libraryObject, manifestProperty) {
		return nil
	}
	data, err := ls.gdataManager.LoadObjectProp(libraryObject, manifestProperty)
	if err != nil {
		return err
	}
	var m manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("failed to unmarshal manifest: %w", err)
	}
	ls.manifest = m
	return nil
}

func (ls *LibraryStore) saveManifest() error {
	data, err := yaml.Marshal(&ls.manifest)
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	return ls.gdataManager.SaveObjectProp(libraryObject, manifestProperty, data)
}

func addKey(keys []string, key string) ([]string, bool) {
	if slices.Contains(keys, key) {
		return keys, false
	}
	keys = append(keys, key)
	slices.Sort(keys)
	return keys, true
}

// SaveAnimation 保存动画定义
func (ls *LibraryStore) SaveAnimation(a *animation.Animation) error {
	if ls.gdataManager == nil {
		return nil
	}
	data, err := animation.MarshalAnimation(a)
	if err != nil {
		return err
	}
	if err := ls.gdataManager.SaveObjectProp(animationsObject, a.Key, data); err != nil {
		return fmt.Errorf("failed to save animation %q: %w", a.Key, err)
	}

	var added bool
	if ls.manifest.Animations, added = addKey(ls.manifest.Animations, a.Key); added {
		return ls.saveManifest()
	}
	return nil
}

// SaveSpriteSheet 保存精灵表定义
func (ls *LibraryStore) SaveSpriteSheet(s *animation.SpriteSheet) error {
	if ls.gdataManager == nil {
		return nil
	}
	data, err := animation.MarshalSpriteSheet(s)
	if err != nil {
		return err
	}
	if err := ls.gdataManager.SaveObjectProp(sheetsObject, s.Key, data); err != nil {
		return fmt.Errorf("failed to save sprite sheet %q: %w", s.Key, err)
	}

	var added bool
	if ls.manifest.Sheets, added = addKey(ls.manifest.Sheets, s.Key); added {
		return ls.saveManifest()
	}
	return nil
}

func (ls *LibraryStore) load(object, key string) ([]byte, error) {
	if ls.gdataManager == nil || !ls.gdataManager.ObjectPropExists(object, key) {
		return nil, fmt.Errorf("%s %q: %w", object, key, ErrNotStored)
	}
	return ls.gdataManager.LoadObjectProp(object, key)
}

// LoadAnimation 读取动画定义（未初始化）
func (ls *LibraryStore) LoadAnimation(key string) (*animation.Animation, error) {
	data, err := ls.load(animationsObject, key)
	if err != nil {
		return nil, err
	}
	return animation.UnmarshalAnimation(data)
}

// LoadSpriteSheet 读取精灵表定义（未解析）
func (ls *LibraryStore) LoadSpriteSheet(key string) (*animation.SpriteSheet, error) {
	data, err := ls.load(sheetsObject, key)
	if err != nil {
		return nil, err
	}
	return animation.UnmarshalSpriteSheet(data)
}

// Keys 返回已保存的动画键与精灵表键
func (ls *LibraryStore) Keys() (animations, sheets []string) {
	return slices.Clone(ls.manifest.Animations), slices.Clone(ls.manifest.Sheets)
}

// RestoreInto 把所有已保存定义注册到 lib
// 损坏的精灵表跳过并记录警告，损坏的动画汇总到错误中
func (ls *LibraryStore) RestoreInto(lib *SpriteLibrary) error {
	var errs []error
	for _, key := range ls.manifest.Sheets {
		s, err := ls.LoadSpriteSheet(key)
		if err != nil {
			log.Printf("[LibraryStore] Warning: skipping stored sprite sheet %q: %v", key, err)
			continue
		}
		lib.AddSpriteSheet(s)
	}
	for _, key := range ls.manifest.Animations {
		a, err := ls.LoadAnimation(key)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		lib.AddAnimation(a)
	}
	if n := len(ls.manifest.Sheets) + len(ls.manifest.Animations); n > 0 {
		log.Printf("[LibraryStore] Restored %d stored definitions", n)
	}
	return errors.Join(errs...)
}
