package server

import (
	"sync/atomic"
)

// Metrics 记录引擎运行期的关键指标（用于监控与调试）
type Metrics struct {
	Connections      int64 // 累计建立的连接数
	Disconnects      int64 // 实际移除玩家的断开次数
	Messages         int64 // 收到的入站消息数
	Malformed        int64 // 无法解析而丢弃的消息数
	UnknownKinds     int64 // 未识别 kind 被忽略的消息数
	Moves            int64 // 已应用的 move
	Eats             int64 // 命中水果的 eat
	EatMisses        int64 // 坐标不匹配的 eat
	FruitsSpawned    int64 // 生成水果次数（含初始）
	Deliveries       int64 // 尝试投递次数
	DeliveryFailures int64 // 投递失败次数
}

func (m *Metrics) IncConnections() { atomic.AddInt64(&m.Connections, 1) }
func (m *Metrics) IncDisconnects() { atomic.AddInt64(&m.Disconnects, 1) }
func (m *Metrics) IncMessages() { atomic.AddInt64(&m.Messages, 1) }
func (m *Metrics) IncMalformed() { atomic.AddInt64(&m.Malformed, 1) }
func (m *Metrics) IncUnknownKinds() { atomic.AddInt64(&m.UnknownKinds, 1) }
func (m *Metrics) IncMoves() { atomic.AddInt64(&m.Moves, 1) }
func (m *Metrics) IncEats() { atomic.AddInt64(&m.Eats, 1) }
func (m *Metrics) IncEatMisses() { atomic.AddInt64(&m.EatMisses, 1) }
func (m *Metrics) IncFruitsSpawned() { atomic.AddInt64(&m.FruitsSpawned, 1) }
func (m *Metrics) AddDeliveries(ds Deliveries) {
	atomic.AddInt64(&m.Deliveries, int64(len(ds)))
	atomic.AddInt64(&m.DeliveryFailures, int64(ds.Failed()))
}

// Snapshot 返回只读副本，便于 HTTP 输出
func (m *Metrics) Snapshot() map[string]any {
	return map[string]any{
		"connections":       atomic.LoadInt64(&m.Connections),
		"disconnects":       atomic.LoadInt64(&m.Disconnects),
		"messages":          atomic.LoadInt64(&m.Messages),
		"malformed":         atomic.LoadInt64(&m.Malformed),
		"unknown_kinds":     atomic.LoadInt64(&m.UnknownKinds),
		"moves":             atomic.LoadInt64(&m.Moves),
		"eats":              atomic.LoadInt64(&m.Eats),
		"eat_misses":        atomic.LoadInt64(&m.EatMisses),
		"fruits_spawned":    atomic.LoadInt64(&m.FruitsSpawned),
		"deliveries":        atomic.LoadInt64(&m.Deliveries),
		"delivery_failures": atomic.LoadInt64(&m.DeliveryFailures),
	}
}
