package app

import "math"

// cellFill 精灵在网格单元中最多占用的比例
const cellFill = 0.8

// maxCellScale 小精灵放大的上限
const maxCellScale = 4.0

// Cell 网格单元（屏幕坐标）
type Cell struct {
	X, Y          float64 // 中心点
	Width, Height float64
}

// GridLayout 把 n 个单元排成接近正方形的网格，铺满 width x height 的区域
// 列数为 ceil(sqrt(n))，按行优先顺序返回
func GridLayout(n int, width, height float64) []Cell {
	if n <= 0 {
		return nil
	}

	columns := int(math.Ceil(math.Sqrt(float64(n))))
	rows := (n + columns - 1) / columns
	cellWidth := width / float64(columns)
	cellHeight := height / float64(rows)

	cells := make([]Cell, n)
	for i := range cells {
		col, row := i%columns, i/columns
		cells[i] = Cell{
			X:      (float64(col) + 0.5) * cellWidth,
			Y:      (float64(row) + 0.5) * cellHeight,
			Width:  cellWidth,
			Height: cellHeight,
		}
	}
	return cells
}

// FitScale 返回把 frameWidth x frameHeight 的帧放进单元的统一缩放
func (c Cell) FitScale(frameWidth, frameHeight int) float64 {
	if frameWidth <= 0 || frameHeight <= 0 {
		return 1
	}
	scale := math.Min(c.Width*cellFill/float64(frameWidth), c.Height*cellFill/float64(frameHeight))
	return math.Min(scale, maxCellScale)
}
