package game

import (
	"fmt"
	"log"

	"github.com/quasilyte/gdata/v2"
	"gopkg.in/yaml.v3"
)

// ViewerPreferences 查看器的用户偏好
type ViewerPreferences struct {
	SelectedAnimation string  `yaml:"selectedAnimation"` // 空表示显示全部
	TimeScale         float64 `yaml:"timeScale"`
}

// DefaultPreferences 返回默认偏好
func DefaultPreferences() *ViewerPreferences {
	return &ViewerPreferences{TimeScale: 1.0}
}

const (
	preferencesObject   = "preferences"
	preferencesProperty = "viewer"
)

// PreferencesManager 偏好管理器，gdataManager 为 nil 时仅保存在内存中
type PreferencesManager struct {
	gdataManager *gdata.Manager
	prefs        *ViewerPreferences
	stored       bool
}

// NewPreferencesManager 创建偏好管理器并尝试加载已保存的偏好
func NewPreferencesManager(gdataManager *gdata.Manager) *PreferencesManager {
	pm := &PreferencesManager{
		gdataManager: gdataManager,
		prefs:        DefaultPreferences(),
	}
	if err := pm.Load(); err != nil {
		log.Printf("[PreferencesManager] Warning: Failed to load preferences: %v (using defaults)", err)
	}
	return pm
}

// Load 从 gdata 加载偏好，失败时回到默认值
func (pm *PreferencesManager) Load() error {
	pm.prefs = DefaultPreferences()
	pm.stored = false
	if pm.gdataManager == nil || !pm.gdataManager.ObjectPropExists(preferencesObject, preferencesProperty) {
		return nil
	}

	data, err := pm.gdataManager.LoadObjectProp(preferencesObject, preferencesProperty)
	if err != nil {
		return fmt.Errorf("failed to load preferences: %w", err)
	}

	var loaded ViewerPreferences
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return fmt.Errorf("failed to unmarshal preferences: %w", err)
	}
	if loaded.TimeScale < 0 {
		loaded.TimeScale = 1.0
	}
	pm.prefs = &loaded
	pm.stored = true
	return nil
}

// Save 保存偏好到 gdata，降级模式下不报错
func (pm *PreferencesManager) Save() error {
	if pm.gdataManager == nil {
		return nil
	}
	data, err := yaml.Marshal(pm.prefs)
	if err != nil {
		return fmt.Errorf("failed to marshal preferences: %w", err)
	}
	if err := pm.gdataManager.SaveObjectProp(preferencesObject, preferencesProperty, data); err != nil {
		return fmt.Errorf("failed to save preferences: %w", err)
	}
	pm.stored = true
	return nil
}

// Preferences 返回当前偏好（可修改后调用 Save）
func (pm *PreferencesManager) Preferences() *ViewerPreferences {
	return pm.prefs
}

// Stored 偏好是否来自（或已写入）持久化存储，否则为默认值
func (pm *PreferencesManager) Stored() bool {
	return pm.stored
}
