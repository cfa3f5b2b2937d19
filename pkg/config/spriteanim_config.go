package config

import (
	"fmt"
	"strings"

	"github.com/decker502/spriteanim/pkg/animation"
	"github.com/decker502/spriteanim/pkg/embedded"
	"gopkg.in/yaml.v3"
)

// DefaultConfigPath 默认配置文件路径
const DefaultConfigPath = "data/config/spriteanim.yaml"

// AppConfig spriteanim.yaml 的顶层结构
type AppConfig struct {
	Version  string         `yaml:"version"`
	Window   WindowConfig   `yaml:"window"`
	Playback PlaybackConfig `yaml:"playback"`
	Library  LibraryConfig  `yaml:"library"`
	Remote   RemoteConfig   `yaml:"remote"`
}

// WindowConfig 查看器窗口配置
type WindowConfig struct {
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Title      string `yaml:"title"`
	Background string `yaml:"background"` // "#rrggbb"
}

// PlaybackConfig 播放配置
type PlaybackConfig struct {
	DefaultTimeScale  float64 `yaml:"default_time_scale"`
	NegativeTimeScale string  `yaml:"negative_time_scale"` // reject | freeze
	TweenCurve        string  `yaml:"tween_curve"`         // 时间缩放渐变曲线，见 utils.EasingByName
	TweenDuration     float64 `yaml:"tween_duration"`      // 秒
	Tint              string  `yaml:"tint"`                // "#rrggbb"，空为原色
}

// LibraryConfig 动画库文件位置（glob 模式）
type LibraryConfig struct {
	Sheets     string `yaml:"sheets"`
	Animations string `yaml:"animations"`
	Authoring  string `yaml:"authoring"`
}

// RemoteConfig MQTT 动画推送配置
type RemoteConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Broker   string `yaml:"broker"`
	ClientID string `yaml:"client_id"`
	Topic    string `yaml:"topic"`
}

// DefaultAppConfig 返回全部字段取默认值的配置
func DefaultAppConfig() *AppConfig {
	cfg := &AppConfig{}
	cfg.applyDefaults()
	return cfg
}

// LoadAppConfig 读取并校验配置文件
// 优先从嵌入资源读取，找不到时回退到磁盘
func LoadAppConfig(path string) (*AppConfig, error) {
	data, err := embedded.ReadFileWithFallback(path)
	if err != nil {
		return nil, fmt.Errorf("无法读取配置文件 %s: %w", path, err)
	}
	return ParseAppConfig(data)
}

// ParseAppConfig 解析 YAML 配置并补全默认值
func ParseAppConfig(data []byte) (*AppConfig, error) {
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("无法解析配置文件: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *AppConfig) applyDefaults() {
	if c.Version == "" {
		c.Version = "1.0"
	}
	if c.Window.Width == 0 {
		c.Window.Width = 800
	}
	if c.Window.Height == 0 {
		c.Window.Height = 600
	}
	if c.Window.Title == "" {
		c.Window.Title = "spriteanim viewer"
	}
	if c.Window.Background == "" {
		c.Window.Background = "#20202a"
	}
	if c.Playback.DefaultTimeScale == 0 {
		c.Playback.DefaultTimeScale = 1.0
	}
	if c.Playback.NegativeTimeScale == "" {
		c.Playback.NegativeTimeScale = "reject"
	}
	if c.Playback.TweenCurve == "" {
		c.Playback.TweenCurve = "in_out_quad"
	}
	if c.Playback.TweenDuration == 0 {
		c.Playback.TweenDuration = 0.5
	}
	if c.Library.Sheets == "" {
		c.Library.Sheets = "data/sprites/*.sheet"
	}
	if c.Library.Animations == "" {
		c.Library.Animations = "data/sprites/*.anim"
	}
	if c.Library.Authoring == "" {
		c.Library.Authoring = "data/authoring/*.yaml"
	}
	if c.Remote.Broker == "" {
		c.Remote.Broker = "tcp://127.0.0.1:1883"
	}
	if c.Remote.ClientID == "" {
		c.Remote.ClientID = "spriteanim-viewer"
	}
	if c.Remote.Topic == "" {
		c.Remote.Topic = "spriteanim/animations"
	}
	c.Remote.Topic = strings.TrimSuffix(c.Remote.Topic, "/")
}

// Validate 检查取值范围
func (c *AppConfig) Validate() error {
	if c.Window.Width < 0 || c.Window.Height < 0 {
		return fmt.Errorf("窗口尺寸无效: %dx%d", c.Window.Width, c.Window.Height)
	}
	if c.Playback.DefaultTimeScale < 0 {
		return fmt.Errorf("default_time_scale 不能为负: %v", c.Playback.DefaultTimeScale)
	}
	if c.Playback.TweenDuration < 0 {
		return fmt.Errorf("tween_duration 不能为负: %v", c.Playback.TweenDuration)
	}
	if _, err := c.TimeScalePolicy(); err != nil {
		return err
	}
	return nil
}

// TimeScalePolicy 将 negative_time_scale 转换为播放策略
func (c *AppConfig) TimeScalePolicy() (animation.TimeScalePolicy, error) {
	return animation.ParseTimeScalePolicy(c.Playback.NegativeTimeScale)
}
