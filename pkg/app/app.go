// Package app 提供精灵动画查看器的核心包装器
//
// 该包将启动逻辑从 main 包提取出来：加载配置与动画库，为每个动画创建一个 ECS 实体，
// 并在启用时通过 MQTT 接收新推送的定义。
// 调用 NewApp() 前必须先调用 embedded.Init() 初始化嵌入资源。
package app

import (
	"fmt"
	"image/color"
	"io"
	"log"
	"slices"
	"strings"
	"time"

	"github.com/decker502/spriteanim/pkg/animation"
	"github.com/decker502/spriteanim/pkg/components"
	"github.com/decker502/spriteanim/pkg/config"
	"github.com/decker502/spriteanim/pkg/ecs"
	"github.com/decker502/spriteanim/pkg/game"
	"github.com/decker502/spriteanim/pkg/remote"
	"github.com/decker502/spriteanim/pkg/systems"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/lucasb-eyer/go-colorful"
)

const (
	// AppName gdata 存储使用的应用名
	AppName = "spriteanim"

	deltaTime      = 1.0 / 60.0
	minTimeScale   = 1.0 / 16
	maxTimeScale   = 16.0
	connectTimeout = 5 * time.Second
)

// Config 定义应用启动配置
type Config struct {
	// Verbose 启用详细日志输出
	Verbose bool
	// ConfigPath 配置文件路径，为空则使用 config.DefaultConfigPath
	ConfigPath string
	// Remote 强制启用 MQTT 推送（忽略配置中的 remote.enabled）
	Remote bool
}

// App 查看器应用，实现 ebiten.Game 接口
type App struct {
	cfg        *config.AppConfig
	policy     animation.TimeScalePolicy
	background color.Color
	tint       colorful.Color

	library *game.SpriteLibrary
	store   *game.LibraryStore
	prefs   *game.PreferencesManager

	entityManager   *ecs.EntityManager
	animationSystem *systems.SpriteAnimationSystem
	renderSystem    *systems.SpriteRenderSystem
	entities        map[string]ecs.EntityID // 动画键 -> 实体

	timeScale float64

	feed       *remote.Subscriber
	mqttClient mqtt.Client
	received   int

	pendingWindowSizeReset   bool // 延迟设置窗口大小标志
	windowSizeResetCountdown int  // 延迟帧数
}

// NewApp 加载配置和动画库并创建查看器
func NewApp(cfg Config) (*App, error) {
	// 配置日志输出
	if !cfg.Verbose {
		log.SetOutput(io.Discard)
		log.SetFlags(0)
	}

	path := cfg.ConfigPath
	if path == "" {
		path = config.DefaultConfigPath
	}
	appCfg, err := config.LoadAppConfig(path)
	if err != nil {
		return nil, fmt.Errorf("配置加载失败: %w", err)
	}
	log.Printf("[Config] 加载配置: %s", path)

	resourceManager := game.NewResourceManager()
	library := game.NewSpriteLibrary(resourceManager)

	// 单个文件损坏不影响其他动画
	if err := library.LoadFromGlobs(appCfg.Library.Sheets, appCfg.Library.Animations); err != nil {
		log.Printf("[App] Warning: some packed definitions failed to load: %v", err)
	}
	if err := library.LoadAuthoring(appCfg.Library.Authoring); err != nil {
		log.Printf("[App] Warning: some authored definitions failed to load: %v", err)
	}

	// 已保存的推送定义覆盖同名文件
	store, err := game.OpenLibraryStore(AppName)
	if err != nil {
		log.Printf("[App] Warning: %v (stored definitions disabled)", err)
	}
	if err := store.RestoreInto(library); err != nil {
		log.Printf("[App] Warning: some stored definitions failed to load: %v", err)
	}

	a, err := newApp(appCfg, library, store, game.NewPreferencesManager(store.Manager()))
	if err != nil {
		return nil, err
	}

	if cfg.Remote || appCfg.Remote.Enabled {
		a.connectFeed()
	}
	return a, nil
}

// newApp 用已加载的动画库创建查看器并生成实体
func newApp(appCfg *config.AppConfig, library *game.SpriteLibrary, store *game.LibraryStore, prefs *game.PreferencesManager) (*App, error) {
	policy, err := appCfg.TimeScalePolicy()
	if err != nil {
		return nil, err
	}
	background, err := colorful.Hex(appCfg.Window.Background)
	if err != nil {
		return nil, fmt.Errorf("背景颜色无效 %q: %w", appCfg.Window.Background, err)
	}
	tint, err := components.ParseTint(appCfg.Playback.Tint)
	if err != nil {
		return nil, fmt.Errorf("着色无效 %q: %w", appCfg.Playback.Tint, err)
	}

	if err := library.InitializeAll(); err != nil {
		log.Printf("[App] Warning: %v", err)
	}

	em := ecs.NewEntityManager()
	a := &App{
		cfg:             appCfg,
		policy:          policy,
		background:      background,
		tint:            tint,
		library:         library,
		store:           store,
		prefs:           prefs,
		entityManager:   em,
		animationSystem: systems.NewSpriteAnimationSystem(em),
		renderSystem:    systems.NewSpriteRenderSystem(em),
		entities:        make(map[string]ecs.EntityID),
		timeScale:       appCfg.Playback.DefaultTimeScale,
	}
	if prefs.Stored() {
		a.timeScale = prefs.Preferences().TimeScale
	}

	a.spawnAll()
	return a, nil
}

// connectFeed 连接 MQTT 代理并订阅动画推送，失败时查看器照常运行
func (a *App) connectFeed() {
	feed := remote.NewSubscriber(a.cfg.Remote.Topic)
	client := remote.NewClient(remote.Config{
		Broker:   a.cfg.Remote.Broker,
		ClientID: a.cfg.Remote.ClientID,
		Topic:    a.cfg.Remote.Topic,
	}, func(c mqtt.Client) {
		// 每次（重新）连接后都要重新订阅
		if err := feed.Subscribe(c); err != nil {
			log.Printf("[App] Warning: %v", err)
		}
	})

	if err := remote.Connect(client, connectTimeout); err != nil {
		log.Printf("[App] Warning: remote feed disabled: %v", err)
		return
	}
	a.feed = feed
	a.mqttClient = client
	log.Printf("[App] Listening for animations on %s/#", a.cfg.Remote.Topic)
}

// initializedKeys 返回所有可播放的动画键（已排序）
func (a *App) initializedKeys() []string {
	var keys []string
	for _, key := range a.library.AnimationKeys() {
		if anim, ok := a.library.Animation(key); ok && anim.Initialized() {
			keys = append(keys, key)
		}
	}
	return keys
}

// visibleKeys 返回需要显示的动画键：选中的单个动画，或全部
func (a *App) visibleKeys() []string {
	keys := a.initializedKeys()
	if selected := a.prefs.Preferences().SelectedAnimation; selected != "" && slices.Contains(keys, selected) {
		return []string{selected}
	}
	return keys
}

// spawnAll 销毁现有实体，按网格为每个可见动画重新创建实体
func (a *App) spawnAll() {
	for _, id := range ecs.GetEntitiesWith1[*components.SpriteAnimationComponent](a.entityManager) {
		a.entityManager.DestroyEntity(id)
	}
	a.entityManager.RemoveMarkedEntities()
	clear(a.entities)

	keys := a.visibleKeys()
	cells := GridLayout(len(keys), float64(a.cfg.Window.Width), float64(a.cfg.Window.Height))
	for i, key := range keys {
		anim, _ := a.library.Animation(key)
		sheet := anim.Sheet()
		transform := animation.Transform{
			X:     cells[i].X,
			Y:     cells[i].Y,
			Scale: cells[i].FitScale(sheet.FrameWidth, sheet.FrameHeight),
		}

		ctx, err := anim.NewContext(
			animation.WithTimeScalePolicy(a.policy),
			animation.WithTimeScale(a.timeScale),
			animation.WithTransform(transform),
		)
		if err != nil {
			log.Printf("[App] Warning: cannot play %q: %v", key, err)
			continue
		}

		id := a.entityManager.CreateEntity()
		comp := components.NewSpriteAnimationComponent(ctx)
		comp.Tint = a.tint
		ecs.AddComponent(a.entityManager, id, comp)
		a.entities[key] = id
	}
	log.Printf("[App] Spawned %d animation entities", len(a.entities))
}

// applyRemoteUpdate 注册一条推送的定义，并保存到存储
//
// 新的精灵表会让引用它的动画重新初始化；初始化失败的动画保留旧状态。
func (a *App) applyRemoteUpdate(u remote.Update) {
	switch {
	case u.SpriteSheet != nil:
		a.library.AddSpriteSheet(u.SpriteSheet)
		for _, key := range a.library.AnimationKeys() {
			anim, _ := a.library.Animation(key)
			if anim.SpriteSheetKey != u.SpriteSheet.Key {
				continue
			}
			if err := anim.Initialize(a.library); err != nil {
				log.Printf("[App] Warning: animation %q after sheet update: %v", key, err)
			}
		}
		if err := a.store.SaveSpriteSheet(u.SpriteSheet); err != nil {
			log.Printf("[App] Warning: %v", err)
		}
		log.Printf("[App] Received sprite sheet %q", u.SpriteSheet.Key)

	case u.Animation != nil:
		a.library.AddAnimation(u.Animation)
		if err := u.Animation.Initialize(a.library); err != nil {
			log.Printf("[App] Warning: received animation %q: %v", u.Animation.Key, err)
		}
		if err := a.store.SaveAnimation(u.Animation); err != nil {
			log.Printf("[App] Warning: %v", err)
		}
		log.Printf("[App] Received animation %q (%d frames)", u.Animation.Key, u.Animation.FrameCount())
	}
}

// drainFeed 应用所有排队的推送，有更新时重新生成实体
func (a *App) drainFeed() {
	if a.feed == nil {
		return
	}
	if n := a.feed.Drain(a.applyRemoteUpdate); n > 0 {
		a.received += n
		a.spawnAll()
	}
}

// togglePause 暂停或恢复播放
func (a *App) togglePause() {
	a.animationSystem.SetPaused(!a.animationSystem.Paused())
}

// changeTimeScale 把目标时间缩放乘以 factor，并对所有实体启动渐变
// 低于 1/16 时归零（冻结），从 0 加速时回到 1/16
func (a *App) changeTimeScale(factor float64) {
	target := a.timeScale * factor
	switch {
	case target == 0 && factor > 1:
		target = minTimeScale
	case target < minTimeScale:
		target = 0
	case target > maxTimeScale:
		target = maxTimeScale
	}
	a.timeScale = target

	for _, id := range a.entities {
		systems.StartTimeScaleTween(a.entityManager, id, target, a.cfg.Playback.TweenDuration, a.cfg.Playback.TweenCurve)
	}

	a.prefs.Preferences().TimeScale = target
	a.savePreferences()
}

// resetAll 所有实体回到第一帧
func (a *App) resetAll() {
	for _, id := range a.entities {
		if comp, ok := ecs.GetComponent[*components.SpriteAnimationComponent](a.entityManager, id); ok {
			comp.Context.Reset()
		}
	}
}

// cycleSelection 在"全部"与各个动画之间循环切换
func (a *App) cycleSelection() {
	keys := a.initializedKeys()
	prefs := a.prefs.Preferences()

	// 未选中时 Index 为 -1，下一个即第一个动画
	next := slices.Index(keys, prefs.SelectedAnimation) + 1
	if next < len(keys) {
		prefs.SelectedAnimation = keys[next]
	} else {
		prefs.SelectedAnimation = ""
	}
	a.savePreferences()
	a.spawnAll()
}

func (a *App) savePreferences() {
	if err := a.prefs.Save(); err != nil {
		log.Printf("[App] Warning: %v", err)
	}
}

// handleInput 处理键盘输入
func (a *App) handleInput() {
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeySpace):
		a.togglePause()
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowUp):
		a.changeTimeScale(2)
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowDown):
		a.changeTimeScale(0.5)
	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		a.resetAll()
	case inpututil.IsKeyJustPressed(ebiten.KeyTab):
		a.cycleSelection()
	}

	// F11 切换全屏
	if inpututil.IsKeyJustPressed(ebiten.KeyF11) {
		if ebiten.IsFullscreen() {
			ebiten.SetFullscreen(false)
			if ebiten.IsWindowMaximized() || ebiten.IsWindowMinimized() {
				ebiten.RestoreWindow()
			}
			// 延迟几帧后设置窗口大小，让窗口管理器有时间处理
			a.pendingWindowSizeReset = true
			a.windowSizeResetCountdown = 3
		} else {
			ebiten.SetFullscreen(true)
		}
	}
}

// Update 更新查看器逻辑
// 每个 tick 调用一次（通常每秒 60 次）
func (a *App) Update() error {
	if a.pendingWindowSizeReset {
		a.windowSizeResetCountdown--
		if a.windowSizeResetCountdown <= 0 {
			ebiten.SetWindowSize(a.WindowSize())
			a.pendingWindowSizeReset = false
		}
	}

	a.handleInput()
	a.drainFeed()
	a.animationSystem.Update(deltaTime)
	return nil
}

// Draw 绘制所有动画实体和状态栏
func (a *App) Draw(screen *ebiten.Image) {
	screen.Fill(a.background)
	a.renderSystem.Draw(screen)
	ebitenutil.DebugPrint(screen, a.statusText())
}

// statusText 返回左上角状态栏文字
func (a *App) statusText() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d animations  x%.3g", len(a.entities), a.timeScale)
	if a.animationSystem.Paused() {
		b.WriteString("  [paused]")
	}
	if selected := a.prefs.Preferences().SelectedAnimation; selected != "" {
		fmt.Fprintf(&b, "  [%s]", selected)
	}
	if a.feed != nil {
		fmt.Fprintf(&b, "  remote: %d received, %d dropped", a.received, a.feed.Dropped())
	}
	b.WriteString("\nspace pause  up/down speed  tab select  r reset")
	return b.String()
}

// Layout 返回逻辑屏幕尺寸
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	return a.WindowSize()
}

// WindowSize 返回配置的窗口尺寸
func (a *App) WindowSize() (int, int) {
	return a.cfg.Window.Width, a.cfg.Window.Height
}

// Title 返回窗口标题
func (a *App) Title() string {
	return a.cfg.Window.Title
}

// Close 断开 MQTT 连接并保存偏好
func (a *App) Close() {
	if a.mqttClient != nil {
		a.mqttClient.Disconnect(250)
		a.mqttClient = nil
	}
	a.savePreferences()
}
