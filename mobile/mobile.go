//go:build mobile

// Package mobile 提供 ebitenmobile 绑定入口
//
// 此包用于构建 Android (.aar) 和 iOS (.xcframework) 包，
// 使用 ebitenmobile 工具构建时会自动调用 init() 函数。
// 此文件仅在使用 -tags mobile 构建时编译。
//
//	# Android（先把 assets/ 与 data/ 复制到 mobile/ 下）
//	ebitenmobile bind -target android -tags mobile -androidapi 23 -javapkg com.decker.spriteanim -o build/android/spriteanim.aar ./mobile
//
//	# iOS (仅 macOS)
//	ebitenmobile bind -target ios -tags mobile -o build/ios/SpriteAnim.xcframework ./mobile
package mobile

import (
	"log"

	"github.com/hajimehoshi/ebiten/v2/mobile"

	"github.com/decker502/spriteanim/pkg/app"
	"github.com/decker502/spriteanim/pkg/embedded"
)

func init() {
	// assetsFS 和 dataFS 在 embed.go 中声明
	embedded.Init(assetsFS, dataFS)

	// 移动端没有命令行参数，远程推送由配置文件决定
	viewer, err := app.NewApp(app.Config{Verbose: true})
	if err != nil {
		log.Fatalf("查看器初始化失败: %v", err)
	}

	mobile.SetGame(viewer)
}

// Dummy 是一个空导出函数，确保包被 ebitenmobile 正确识别
func Dummy() {}
