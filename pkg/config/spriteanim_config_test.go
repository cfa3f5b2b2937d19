package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/decker502/spriteanim/pkg/animation"
)

func TestParseAppConfig_Defaults(t *testing.T) {
	cfg, err := ParseAppConfig([]byte("version: \"1.0\"\n"))
	if err != nil {
		t.Fatalf("ParseAppConfig failed: %v", err)
	}

	if cfg.Window.Width != 800 || cfg.Window.Height != 600 {
		t.Errorf("unexpected window size %dx%d", cfg.Window.Width, cfg.Window.Height)
	}
	if cfg.Playback.DefaultTimeScale != 1.0 {
		t.Errorf("expected default time scale 1.0, got %v", cfg.Playback.DefaultTimeScale)
	}
	if p, _ := cfg.TimeScalePolicy(); p != animation.TimeScaleReject {
		t.Errorf("expected reject policy, got %v", p)
	}
	if cfg.Library.Animations != "data/sprites/*.anim" {
		t.Errorf("unexpected animations glob %q", cfg.Library.Animations)
	}
	if cfg.Remote.Enabled {
		t.Error("remote should be disabled by default")
	}

	def := DefaultAppConfig()
	if *def != *cfg {
		t.Errorf("DefaultAppConfig differs from parsed defaults:\n%+v\n%+v", def, cfg)
	}
}

func TestParseAppConfig_Values(t *testing.T) {
	yml := `
window: { width: 1024, height: 768, title: "demo" }
playback:
  default_time_scale: 0.5
  negative_time_scale: freeze
  tween_curve: out_cubic
remote:
  enabled: true
  broker: tcp://broker:1883
  topic: studio/anims/
`
	cfg, err := ParseAppConfig([]byte(yml))
	if err != nil {
		t.Fatalf("ParseAppConfig failed: %v", err)
	}
	if cfg.Window.Title != "demo" || cfg.Window.Width != 1024 {
		t.Errorf("unexpected window %+v", cfg.Window)
	}
	if p, _ := cfg.TimeScalePolicy(); p != animation.TimeScaleFreeze {
		t.Errorf("expected freeze policy, got %v", p)
	}
	if cfg.Playback.TweenCurve != "out_cubic" || cfg.Playback.DefaultTimeScale != 0.5 {
		t.Errorf("unexpected playback %+v", cfg.Playback)
	}
	if !cfg.Remote.Enabled || cfg.Remote.Topic != "studio/anims" {
		t.Errorf("unexpected remote %+v", cfg.Remote)
	}
}

func TestParseAppConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yml  string
		want string
	}{
		{"bad yaml", "window: [", "无法解析"},
		{"negative scale", "playback: { default_time_scale: -1 }", "default_time_scale"},
		{"unknown policy", "playback: { negative_time_scale: reverse }", "reverse"},
		{"negative window", "window: { width: -5 }", "窗口尺寸"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseAppConfig([]byte(tt.yml))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

// TestLoadAppConfig_DiskFallback 验证未嵌入时从磁盘加载
func TestLoadAppConfig_DiskFallback(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	path := filepath.Join("data", "config", "spriteanim.yaml")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("window: { title: disk }\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadAppConfig(DefaultConfigPath)
	if err != nil {
		t.Fatalf("LoadAppConfig failed: %v", err)
	}
	if cfg.Window.Title != "disk" {
		t.Errorf("expected title from disk, got %q", cfg.Window.Title)
	}

	if _, err := LoadAppConfig("data/config/missing.yaml"); err == nil {
		t.Error("expected error for missing config")
	}
}
