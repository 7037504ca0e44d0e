package server

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"
	"strings"
	"sync"
)

// Engine 同步引擎：唯一持有注册表与水果，所有变更都经过这里
// 每条入站消息的 读取 → 修改 → 广播 在同一把锁内完成
type Engine struct {
	mu       sync.Mutex
	registry *Registry
	fanout   *Fanout
	fruit    Fruit
	rng      *rand.Rand

	metrics *Metrics
}

// Option 引擎可选项
type Option func(*Engine)

// WithRand 注入随机源（测试中用固定种子复现出生点与水果位置）
func WithRand(r *rand.Rand) Option {
	return func(e *Engine) { e.rng = r }
}

// NewEngine 创建引擎并生成初始水果
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		fanout:  NewFanout(),
		metrics: &Metrics{},
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	e.registry = NewRegistry(e.rng)
	e.spawnFruit()
	Log.Infof("initial fruit at (%d, %d)", e.fruit.X, e.fruit.Y)
	return e
}

// Metrics 返回引擎指标
func (e *Engine) Metrics() *Metrics { return e.metrics }

// OnConnect 连接建立：Connecting → Active
// 通知其他玩家有新人加入，并向新人发送现有玩家快照与当前水果
func (e *Engine) OnConnect(c Conn) Player {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.metrics.IncConnections()
	p := e.registry.Register(c.ID())
	e.fanout.Add(c)
	Log.Infof("player %d connected at (%d, %d). total: %d", p.ID, p.X, p.Y, e.registry.Len())
	Log.Infof("players: %s", describePlayers(e.registry.All()))

	e.deliver(e.fanout.Broadcast(newPlayerEvent(p), c.ID()))
	for _, peer := range e.registry.All() {
		if peer.ID == p.ID {
			continue
		}
		e.deliver(e.fanout.Send(c.ID(), newPlayerEvent(peer)))
	}
	e.deliver(e.fanout.Send(c.ID(), fruitEvent(e.fruit)))
	return p
}

// OnMessage 解码并分发一条入站消息；格式错误与未知类型静默丢弃
func (e *Engine) OnMessage(id ConnID, raw []byte) {
	e.metrics.IncMessages()
	cmd, err := Decode(raw)
	if err != nil {
		if errors.Is(err, ErrUnknownKind) {
			e.metrics.IncUnknownKinds()
		} else {
			e.metrics.IncMalformed()
		}
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.registry.Get(id); !ok {
		return
	}
	switch cmd := cmd.(type) {
	case MoveCommand:
		e.applyMove(id, cmd)
	case EatCommand:
		e.applyEat(id, cmd)
	}
}

// OnDisconnect 连接终止：Active → Disconnected，重复调用为空操作
func (e *Engine) OnDisconnect(id ConnID) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.fanout.Remove(id)
	p, ok := e.registry.Remove(id)
	if !ok {
		return
	}
	e.metrics.IncDisconnects()
	Log.Infof("player %d disconnected. total: %d", p.ID, e.registry.Len())
	e.deliver(e.fanout.Broadcast(deleteEvent(p.ID), ""))
}

// applyMove 部分更新：只覆盖存在且格式正确的字段，坐标一律吸附到格子
// 结果广播给除发送者外的所有人
func (e *Engine) applyMove(id ConnID, cmd MoveCommand) {
	p, _ := e.registry.Update(id, func(p *Player) {
		if cmd.Dir != nil {
			p.Dir = *cmd.Dir
		}
		if cmd.X != nil {
			p.X = ClampToGrid(*cmd.X)
		}
		if cmd.Y != nil {
			p.Y = ClampToGrid(*cmd.Y)
		}
	})
	e.metrics.IncMoves()
	e.deliver(e.fanout.Broadcast(moveEvent(p), id))
}

// applyEat 以客户端声明的坐标（缺省为服务端记录位置）与水果精确比对
// 命中：加一分并广播给所有人（含得分者），随后生成新水果并广播
func (e *Engine) applyEat(id ConnID, cmd EatCommand) {
	self, _ := e.registry.Get(id)
	px, py := self.X, self.Y
	if cmd.X != nil {
		px = ClampToGrid(*cmd.X)
	}
	if cmd.Y != nil {
		py = ClampToGrid(*cmd.Y)
	}
	if !SameCell(px, py, e.fruit.X, e.fruit.Y) {
		e.metrics.IncEatMisses()
		return
	}

	p, _ := e.registry.Update(id, func(p *Player) { p.Score++ })
	e.metrics.IncEats()
	e.deliver(e.fanout.Broadcast(scoreEvent(p), ""))

	e.spawnFruit()
	Log.Infof("new fruit at (%d, %d)", e.fruit.X, e.fruit.Y)
	e.deliver(e.fanout.Broadcast(fruitEvent(e.fruit), ""))
}

func (e *Engine) spawnFruit() {
	x, y := randomPosition(e.rng)
	e.fruit = Fruit{X: x, Y: y}
	e.metrics.IncFruitsSpawned()
}

// deliver 投递失败按约定只计数和记录，不向上传播
func (e *Engine) deliver(ds Deliveries) {
	e.metrics.AddDeliveries(ds)
	if err := ds.Err(); err != nil {
		Log.Debugw("delivery failed", "failed", ds.Failed(), "err", err)
	}
}

// Players 当前所有玩家快照，按编号排序
func (e *Engine) Players() []Player {
	e.mu.Lock()
	defer e.mu.Unlock()
	ps := e.registry.All()
	sort.Slice(ps, func(i, j int) bool { return ps[i].ID < ps[j].ID })
	return ps
}

// Player 按连接查询玩家
func (e *Engine) Player(id ConnID) (Player, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.registry.Get(id)
}

// Fruit 当前水果位置
func (e *Engine) Fruit() Fruit {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.fruit
}

func describePlayers(ps []Player) string {
	sort.Slice(ps, func(i, j int) bool { return ps[i].ID < ps[j].ID })
	parts := make([]string, 0, len(ps))
	for _, p := range ps {
		parts = append(parts, fmt.Sprintf("ID %d -> (%d, %d)", p.ID, p.X, p.Y))
	}
	return strings.Join(parts, " | ")
}
