package systems

import (
	"log"

	"github.com/decker502/spriteanim/pkg/components"
	"github.com/decker502/spriteanim/pkg/ecs"
	"github.com/decker502/spriteanim/pkg/utils"
)

// SpriteAnimationSystem 推进所有精灵动画实体的播放
//
// 每个 tick 对每个实体：先应用时间缩放渐变（如有），再调用一次 Context.Update。
// Context.Update 每次最多前进一帧。
type SpriteAnimationSystem struct {
	entityManager *ecs.EntityManager
	paused        bool
}

// NewSpriteAnimationSystem 创建动画系统
func NewSpriteAnimationSystem(em *ecs.EntityManager) *SpriteAnimationSystem {
	return &SpriteAnimationSystem{entityManager: em}
}

// SetPaused 暂停或恢复所有实体的播放（渐变同样暂停）
func (s *SpriteAnimationSystem) SetPaused(paused bool) {
	s.paused = paused
}

// Paused 是否处于暂停状态
func (s *SpriteAnimationSystem) Paused() bool {
	return s.paused
}

// Update 更新所有动画实体
func (s *SpriteAnimationSystem) Update(deltaTime float64) {
	if s.paused {
		return
	}

	for _, id := range ecs.GetEntitiesWith1[*components.SpriteAnimationComponent](s.entityManager) {
		comp, _ := ecs.GetComponent[*components.SpriteAnimationComponent](s.entityManager, id)
		if comp.Context == nil {
			continue
		}

		if tween, ok := ecs.GetComponent[*components.TimeScaleTweenComponent](s.entityManager, id); ok {
			s.applyTween(id, comp, tween, deltaTime)
		}

		comp.Context.Update(deltaTime)
	}
}

func (s *SpriteAnimationSystem) applyTween(id ecs.EntityID, comp *components.SpriteAnimationComponent, tween *components.TimeScaleTweenComponent, deltaTime float64) {
	tween.Elapsed += deltaTime

	curve, err := utils.EasingByName(tween.Curve)
	if err != nil {
		log.Printf("[SpriteAnimationSystem] 实体 %d: %v，使用线性曲线", id, err)
		curve = utils.EaseLinear
		tween.Curve = ""
	}

	scale := utils.Lerp(tween.From, tween.To, curve(tween.Progress()))
	if tween.Done() {
		scale = tween.To
	}

	if err := comp.Context.SetTimeScale(scale); err != nil {
		log.Printf("[SpriteAnimationSystem] 实体 %d: 渐变中止: %v", id, err)
		ecs.RemoveComponent[*components.TimeScaleTweenComponent](s.entityManager, id)
		return
	}
	if tween.Done() {
		ecs.RemoveComponent[*components.TimeScaleTweenComponent](s.entityManager, id)
	}
}

// StartTimeScaleTween 从实体当前的时间缩放开始一次渐变，替换进行中的渐变
func StartTimeScaleTween(em *ecs.EntityManager, id ecs.EntityID, to, duration float64, curve string) bool {
	comp, ok := ecs.GetComponent[*components.SpriteAnimationComponent](em, id)
	if !ok || comp.Context == nil {
		return false
	}
	ecs.AddComponent(em, id, &components.TimeScaleTweenComponent{
		From:     comp.Context.TimeScale(),
		To:       to,
		Duration: duration,
		Curve:    curve,
	})
	return true
}
