package utils

import (
	"fmt"
	"sort"

	"github.com/fogleman/ease"
)

// Easing Functions (缓动函数)
//
// 缓动函数用于控制时间缩放渐变等过渡的速度曲线。
// 所有函数接受一个进度值 t ∈ [0, 1]，返回缓动后的值，t=0 时为 0，t=1 时为 1。
// 曲线实现来自 github.com/fogleman/ease。

// EasingFunc 缓动函数签名
type EasingFunc func(t float64) float64

// easings 配置文件中可用的曲线名称
var easings = map[string]EasingFunc{
	"linear":       ease.Linear,
	"in_quad":      ease.InQuad,
	"out_quad":     ease.OutQuad,
	"in_out_quad":  ease.InOutQuad,
	"in_cubic":     ease.InCubic,
	"out_cubic":    ease.OutCubic,
	"in_out_cubic": ease.InOutCubic,
	"in_sine":      ease.InSine,
	"out_sine":     ease.OutSine,
	"in_out_sine":  ease.InOutSine,
	"out_expo":     ease.OutExpo,
	"out_bounce":   ease.OutBounce,
}

// EasingByName 按名称查找缓动曲线，空名称返回线性曲线
func EasingByName(name string) (EasingFunc, error) {
	if name == "" {
		return ease.Linear, nil
	}
	fn, ok := easings[name]
	if !ok {
		return nil, fmt.Errorf("unknown easing curve %q", name)
	}
	return fn, nil
}

// EasingNames 返回所有可用曲线名称（已排序）
func EasingNames() []string {
	names := make([]string, 0, len(easings))
	for name := range easings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// EaseLinear 线性缓动（无缓动）
func EaseLinear(t float64) float64 {
	return ease.Linear(t)
}

// EaseInOutQuad 二次方缓入缓出
// 特点：开始慢，中间快，结束慢（时间缩放渐变的默认曲线）
func EaseInOutQuad(t float64) float64 {
	return ease.InOutQuad(t)
}

// EaseOutCubic 三次方缓出
// 特点：开始快，结束慢
// 公式：f(t) = 1 - (1-t)³
func EaseOutCubic(t float64) float64 {
	return ease.OutCubic(t)
}

// Clamp01 将进度限制在 [0, 1]
func Clamp01(t float64) float64 {
	switch {
	case t < 0:
		return 0
	case t > 1:
		return 1
	}
	return t
}

// Lerp 线性插值
// 在 a 和 b 之间根据 t 插值
// t=0 返回 a，t=1 返回 b
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
