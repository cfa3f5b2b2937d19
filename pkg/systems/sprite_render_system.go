package systems

import (
	"github.com/decker502/spriteanim/pkg/components"
	"github.com/decker502/spriteanim/pkg/ecs"
	"github.com/hajimehoshi/ebiten/v2"
)

// SpriteRenderSystem 绘制所有可见的精灵动画实体
// 只读取动画状态，不修改精灵表或上下文
type SpriteRenderSystem struct {
	entityManager *ecs.EntityManager
}

// NewSpriteRenderSystem 创建渲染系统
func NewSpriteRenderSystem(em *ecs.EntityManager) *SpriteRenderSystem {
	return &SpriteRenderSystem{entityManager: em}
}

// Draw 按实体ID顺序绘制，后创建的实体在上层
func (s *SpriteRenderSystem) Draw(screen *ebiten.Image) int {
	drawn := 0
	for _, id := range ecs.GetEntitiesWith1[*components.SpriteAnimationComponent](s.entityManager) {
		comp, _ := ecs.GetComponent[*components.SpriteAnimationComponent](s.entityManager, id)
		img, op := DrawOptions(comp)
		if img == nil {
			continue
		}
		screen.DrawImage(img, op)
		drawn++
	}
	return drawn
}

// DrawOptions 计算实体当前帧的图像与绘制参数
//
// Transform 的 X/Y 是帧中心在屏幕上的位置；缩放与旋转围绕帧中心进行。
// 不可见或没有可用帧时返回 nil。
func DrawOptions(comp *components.SpriteAnimationComponent) (*ebiten.Image, *ebiten.DrawImageOptions) {
	if comp == nil || !comp.Visible || comp.Context == nil {
		return nil, nil
	}
	img := comp.Context.CurrentImage()
	if img == nil {
		return nil, nil
	}

	ctx := comp.Context
	b := img.Bounds()
	sx, sy := ctx.Transform.ScaleVector()

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(-float64(b.Dx())/2, -float64(b.Dy())/2)
	op.GeoM.Scale(sx, sy)
	op.GeoM.Rotate(ctx.Transform.Rotation)
	op.GeoM.Translate(ctx.Transform.X, ctx.Transform.Y)

	// ColorScale 使用预乘 alpha
	a := float32(comp.Alpha)
	op.ColorScale.Scale(float32(comp.Tint.R)*a, float32(comp.Tint.G)*a, float32(comp.Tint.B)*a, a)
	op.Filter = ebiten.FilterLinear
	return img, op
}
