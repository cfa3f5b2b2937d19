// spriteanim 精灵动画查看器
//
// 用法：
//
//	go run . --verbose
//	go run . --config=data/config/spriteanim.yaml --remote
package main

import (
	"flag"
	"log"

	"github.com/decker502/spriteanim/pkg/app"
	"github.com/decker502/spriteanim/pkg/embedded"
	"github.com/hajimehoshi/ebiten/v2"
)

var (
	configPath = flag.String("config", "", "配置文件路径（默认 data/config/spriteanim.yaml）")
	verbose    = flag.Bool("verbose", false, "详细日志")
	remoteFeed = flag.Bool("remote", false, "启用 MQTT 动画推送")
)

func main() {
	flag.Parse()

	// 初始化嵌入资源
	embedded.Init(assetsFS, dataFS)

	viewer, err := app.NewApp(app.Config{
		Verbose:    *verbose,
		ConfigPath: *configPath,
		Remote:     *remoteFeed,
	})
	if err != nil {
		log.Fatalf("查看器初始化失败: %v", err)
	}
	defer viewer.Close()

	ebiten.SetWindowSize(viewer.WindowSize())
	ebiten.SetWindowTitle(viewer.Title())
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(viewer); err != nil {
		log.Printf("运行结束: %v", err)
	}
}
