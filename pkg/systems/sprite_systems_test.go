package systems

import (
	"image"
	"math"
	"testing"

	"github.com/decker502/spriteanim/internal/frames"
	"github.com/decker502/spriteanim/pkg/animation"
	"github.com/decker502/spriteanim/pkg/components"
	"github.com/decker502/spriteanim/pkg/ecs"
	"github.com/decker502/spriteanim/pkg/game"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/lucasb-eyer/go-colorful"
)

// newTestLibrary 创建含一个 64x32 精灵表（16x16 帧）的库
func newTestLibrary(t *testing.T, bounce bool, fs []frames.Frame) *game.SpriteLibrary {
	t.Helper()
	sheet, err := animation.NewSpriteSheet("sheet", "sheet", 16, 16, image.Point{})
	if err != nil {
		t.Fatal(err)
	}
	if err := sheet.SetTexture(ebiten.NewImage(64, 32)); err != nil {
		t.Fatal(err)
	}
	anim, err := animation.NewAnimation("anim", "sheet", bounce, fs)
	if err != nil {
		t.Fatal(err)
	}

	lib := game.NewSpriteLibrary(nil)
	lib.AddSpriteSheet(sheet)
	lib.AddAnimation(anim)
	return lib
}

// spawn 创建带动画组件的实体
func spawn(t *testing.T, em *ecs.EntityManager, lib *game.SpriteLibrary, opts ...animation.ContextOption) (ecs.EntityID, *components.SpriteAnimationComponent) {
	t.Helper()
	ctx, err := lib.NewContext("anim", opts...)
	if err != nil {
		t.Fatalf("NewContext failed: %v", err)
	}
	id := em.CreateEntity()
	comp := components.NewSpriteAnimationComponent(ctx)
	ecs.AddComponent(em, id, comp)
	return id, comp
}

// TestSpriteAnimationSystem_AdvancesEachEntity 验证每个实体每 tick 前进一次
func TestSpriteAnimationSystem_AdvancesEachEntity(t *testing.T) {
	em := ecs.NewEntityManager()
	lib := newTestLibrary(t, true, []frames.Frame{{0, 0.1}, {1, 0.1}, {2, 0.1}})
	system := NewSpriteAnimationSystem(em)

	_, normal := spawn(t, em, lib)
	_, frozen := spawn(t, em, lib, animation.WithTimeScale(0))

	want := []int{1, 2, 1, 0, 1}
	for i, w := range want {
		system.Update(0.1 + 1e-9)
		if got := normal.Context.CurrentSheetIndex(); got != w {
			t.Errorf("tick %d: expected frame %d, got %d", i, w, got)
		}
	}
	if frozen.Context.CurrentSheetIndex() != 0 {
		t.Errorf("frozen entity moved to frame %d", frozen.Context.CurrentSheetIndex())
	}

	// 暂停后不再推进
	system.SetPaused(true)
	before := normal.Context.CurrentNode()
	system.Update(1)
	if normal.Context.CurrentNode() != before {
		t.Error("paused system should not advance")
	}
}

// TestSpriteAnimationSystem_Tween 验证时间缩放渐变到达目标后被移除
func TestSpriteAnimationSystem_Tween(t *testing.T) {
	em := ecs.NewEntityManager()
	lib := newTestLibrary(t, false, []frames.Frame{{0, 100}, {1, 100}})
	system := NewSpriteAnimationSystem(em)

	id, comp := spawn(t, em, lib)
	if !StartTimeScaleTween(em, id, 3.0, 1.0, "in_out_quad") {
		t.Fatal("StartTimeScaleTween failed")
	}

	system.Update(0.5)
	if got := comp.Context.TimeScale(); math.Abs(got-2.0) > 1e-9 {
		t.Errorf("halfway through in_out_quad: expected 2.0, got %v", got)
	}

	system.Update(0.5)
	if got := comp.Context.TimeScale(); got != 3.0 {
		t.Errorf("expected target 3.0, got %v", got)
	}
	if ecs.HasComponent[*components.TimeScaleTweenComponent](em, id) {
		t.Error("finished tween should be removed")
	}
}

func TestSpriteAnimationSystem_TweenRejected(t *testing.T) {
	em := ecs.NewEntityManager()
	lib := newTestLibrary(t, false, []frames.Frame{{0, 1}})
	system := NewSpriteAnimationSystem(em)

	id, comp := spawn(t, em, lib)
	ecs.AddComponent(em, id, &components.TimeScaleTweenComponent{From: 1, To: -1, Duration: 0, Curve: "bogus"})

	system.Update(0.1)
	if comp.Context.TimeScale() != 1 {
		t.Errorf("rejected scale should leave 1, got %v", comp.Context.TimeScale())
	}
	if ecs.HasComponent[*components.TimeScaleTweenComponent](em, id) {
		t.Error("rejected tween should be removed")
	}

	if StartTimeScaleTween(em, 999, 1, 1, "") {
		t.Error("tween on unknown entity should fail")
	}
}

// TestDrawOptions 验证源矩形、中心对齐变换与着色
func TestDrawOptions(t *testing.T) {
	em := ecs.NewEntityManager()
	lib := newTestLibrary(t, false, []frames.Frame{{5, 1}})
	_, comp := spawn(t, em, lib, animation.WithTransform(animation.Transform{X: 100, Y: 50, Scale: 2, Rotation: math.Pi / 2}))

	comp.Tint, _ = colorful.Hex("#ff0000")
	comp.Alpha = 0.5

	img, op := DrawOptions(comp)
	if img == nil {
		t.Fatal("expected an image")
	}
	if b := img.Bounds(); b.Min.X != 16 || b.Min.Y != 16 || b.Dx() != 16 {
		t.Errorf("unexpected frame bounds %v", b)
	}

	// 帧中心映射到 Transform 位置
	cx, cy := op.GeoM.Apply(8, 8)
	if math.Abs(cx-100) > 1e-9 || math.Abs(cy-50) > 1e-9 {
		t.Errorf("centre maps to (%v, %v), want (100, 50)", cx, cy)
	}
	// 右上角 (16, 0) 相对中心 (8, -8)，放大 2 倍后旋转 90°得到 (16, 16)
	x, y := op.GeoM.Apply(16, 0)
	if math.Abs(x-116) > 1e-9 || math.Abs(y-66) > 1e-9 {
		t.Errorf("corner maps to (%v, %v), want (116, 66)", x, y)
	}

	cs := op.ColorScale
	if cs.R() != 0.5 || cs.G() != 0 || cs.B() != 0 || cs.A() != 0.5 {
		t.Errorf("unexpected color scale %v", cs)
	}

	comp.Visible = false
	if img, _ := DrawOptions(comp); img != nil {
		t.Error("invisible entity should not be drawn")
	}
}

func TestSpriteRenderSystem_Draw(t *testing.T) {
	em := ecs.NewEntityManager()
	lib := newTestLibrary(t, false, []frames.Frame{{0, 1}})
	spawn(t, em, lib)
	_, hidden := spawn(t, em, lib)
	hidden.Visible = false
	ecs.AddComponent(em, em.CreateEntity(), &components.SpriteAnimationComponent{Visible: true})

	screen := ebiten.NewImage(200, 200)
	if n := NewSpriteRenderSystem(em).Draw(screen); n != 1 {
		t.Errorf("expected 1 drawn entity, got %d", n)
	}
}
