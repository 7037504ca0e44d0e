package server

import (
	"math"
	"math/rand/v2"
)

// 棋盘几何：固定尺寸，不对外配置
const (
	BoardSize = 500                  // 棋盘边长（单位）
	CellSize  = 20                   // 格子边长
	GridCells = BoardSize / CellSize // 每轴 25 格
	MaxCoord  = BoardSize - CellSize // 最大合法坐标 480
)

// RandomCell 在单轴上均匀随机取一个格子坐标（x、y 分别调用）
func RandomCell(rng *rand.Rand) int {
	return rng.IntN(GridCells) * CellSize
}

// ClampToGrid 将任意数值吸附到最近的格子边界，并裁剪到 [0, MaxCoord]
// 所有写入玩家或水果的坐标都必须经过这里
func ClampToGrid(v float64) int {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > MaxCoord {
		return MaxCoord
	}
	return int(math.Floor(v/CellSize+0.5)) * CellSize
}

// SameCell 精确比较两个已对齐的坐标，无容差
func SameCell(ax, ay, bx, by int) bool {
	return ax == bx && ay == by
}

// randomPosition 随机生成一个已裁剪的格子位置
func randomPosition(rng *rand.Rand) (int, int) {
	return ClampToGrid(float64(RandomCell(rng))), ClampToGrid(float64(RandomCell(rng)))
}
