package components

// TimeScaleTweenComponent 时间缩放渐变
// 在 Duration 秒内按 Curve 曲线把播放上下文的时间缩放从 From 过渡到 To，完成后由系统移除
type TimeScaleTweenComponent struct {
	From     float64
	To       float64
	Duration float64 // 秒，<= 0 表示立即到达
	Elapsed  float64
	Curve    string // 缓动曲线名称，见 utils.EasingByName
}

// Progress 返回线性进度 [0, 1]
func (c *TimeScaleTweenComponent) Progress() float64 {
	if c.Duration <= 0 || c.Elapsed >= c.Duration {
		return 1
	}
	if c.Elapsed <= 0 {
		return 0
	}
	return c.Elapsed / c.Duration
}

// Done 是否已到达目标
func (c *TimeScaleTweenComponent) Done() bool {
	return c.Progress() >= 1
}
