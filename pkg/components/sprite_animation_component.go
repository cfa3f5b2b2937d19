package components

import (
	"github.com/decker502/spriteanim/pkg/animation"
	"github.com/lucasb-eyer/go-colorful"
)

// White 不改变颜色的着色
var White = colorful.Color{R: 1, G: 1, B: 1}

// SpriteAnimationComponent 精灵动画组件
// 持有实体独占的播放上下文，动画定义本身在多个实体间共享
type SpriteAnimationComponent struct {
	Context *animation.Context // 播放上下文（含位置、旋转、缩放）
	Tint    colorful.Color     // 着色，White 为原色
	Alpha   float64            // 不透明度 0.0 ~ 1.0
	Visible bool
}

// NewSpriteAnimationComponent 创建可见、原色的组件
func NewSpriteAnimationComponent(ctx *animation.Context) *SpriteAnimationComponent {
	return &SpriteAnimationComponent{
		Context: ctx,
		Tint:    White,
		Alpha:   1.0,
		Visible: true,
	}
}

// ParseTint 解析 "#rrggbb" 形式的着色
func ParseTint(hex string) (colorful.Color, error) {
	if hex == "" {
		return White, nil
	}
	return colorful.Hex(hex)
}
