// Package embedded 提供嵌入资源的统一访问接口
//
// 由于 Go embed 指令只能嵌入当前包目录及其子目录的文件，
// embed.FS 变量必须声明在项目根目录（embed.go）。
// 本包按路径前缀把请求路由到 assets/ 或 data/ 文件系统。
//
// 使用前必须调用 Init() 初始化。
package embedded

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotInitialized 在 Init 之前访问资源时返回
var ErrNotInitialized = errors.New("embedded package not initialized, call Init() first")

var (
	assetsFS    fs.FS
	dataFS      fs.FS
	initialized bool
)

// Init 设置资源文件系统
// 必须在 main() 开始时、任何资源加载之前调用
func Init(assets, data fs.FS) {
	assetsFS = assets
	dataFS = data
	initialized = true
}

// IsInitialized 返回 embedded 包是否已初始化
func IsInitialized() bool {
	return initialized
}

// route 标准化路径并选择对应的文件系统
func route(path string) (fs.FS, string, error) {
	if !initialized {
		return nil, "", ErrNotInitialized
	}

	// embed.FS 使用正斜杠
	path = strings.TrimPrefix(filepath.ToSlash(path), "./")

	switch {
	case strings.HasPrefix(path, "assets/"):
		return assetsFS, path, nil
	case strings.HasPrefix(path, "data/"):
		return dataFS, path, nil
	}
	return nil, "", fmt.Errorf("unknown resource path prefix: %s (must start with 'assets/' or 'data/')", path)
}

// Open 打开资源文件，路径必须以 "assets/" 或 "data/" 开头
func Open(path string) (fs.File, error) {
	fsys, name, err := route(path)
	if err != nil {
		return nil, err
	}
	return fsys.Open(name)
}

// ReadFile 读取资源文件内容
func ReadFile(path string) ([]byte, error) {
	fsys, name, err := route(path)
	if err != nil {
		return nil, err
	}
	return fs.ReadFile(fsys, name)
}

// ReadFileWithFallback 优先读取嵌入资源，失败时回退到磁盘上的同名文件
// 用于开发时修改数据文件后无需重新编译
func ReadFileWithFallback(path string) ([]byte, error) {
	data, embedErr := ReadFile(path)
	if embedErr == nil {
		return data, nil
	}

	data, err := os.ReadFile(filepath.FromSlash(path))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, errors.Join(embedErr, err))
	}
	log.Printf("[Embedded] %s not embedded, loaded from disk", path)
	return data, nil
}

// Exists 检查文件是否存在
func Exists(path string) bool {
	file, err := Open(path)
	if err != nil {
		return false
	}
	file.Close()
	return true
}

// Glob 匹配资源文件，模式必须以 "assets/" 或 "data/" 开头
func Glob(pattern string) ([]string, error) {
	fsys, name, err := route(pattern)
	if err != nil {
		return nil, err
	}
	return fs.Glob(fsys, name)
}

// GlobWithFallback 合并嵌入资源与磁盘上的匹配结果，去重并保持先嵌入后磁盘的顺序
func GlobWithFallback(pattern string) ([]string, error) {
	var matches []string
	seen := make(map[string]bool)

	if embeddedMatches, err := Glob(pattern); err == nil {
		for _, m := range embeddedMatches {
			seen[m] = true
			matches = append(matches, m)
		}
	} else if !errors.Is(err, ErrNotInitialized) {
		return nil, err
	}

	disk, err := filepath.Glob(filepath.FromSlash(pattern))
	if err != nil {
		return nil, fmt.Errorf("glob %s: %w", pattern, err)
	}
	for _, m := range disk {
		m = filepath.ToSlash(m)
		if !seen[m] {
			seen[m] = true
			matches = append(matches, m)
		}
	}
	return matches, nil
}

// ReadDir 读取目录内容
func ReadDir(path string) ([]fs.DirEntry, error) {
	fsys, name, err := route(path)
	if err != nil {
		return nil, err
	}
	return fs.ReadDir(fsys, name)
}

// Stat 获取文件信息
func Stat(path string) (fs.FileInfo, error) {
	fsys, name, err := route(path)
	if err != nil {
		return nil, err
	}
	return fs.Stat(fsys, name)
}
