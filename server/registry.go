package server

import "math/rand/v2"

// Registry 连接标识 → 玩家 的权威映射
// 自身不加锁：所有访问都在 Engine 的临界区内进行
type Registry struct {
	players map[ConnID]*Player
	nextID  PlayerID
	rng     *rand.Rand
}

// NewRegistry 创建空注册表，玩家编号从 1 开始
func NewRegistry(rng *rand.Rand) *Registry {
	return &Registry{
		players: make(map[ConnID]*Player),
		nextID:  1,
		rng:     rng,
	}
}

// Register 为新连接创建玩家：随机出生点、零分、默认朝向
func (r *Registry) Register(id ConnID) Player {
	x, y := randomPosition(r.rng)
	p := &Player{ID: r.nextID, X: x, Y: y, Dir: DefaultDir}
	r.nextID++
	r.players[id] = p
	return *p
}

// Get 返回玩家副本；未知或已断开时 ok 为 false
func (r *Registry) Get(id ConnID) (Player, bool) {
	p, ok := r.players[id]
	if !ok {
		return Player{}, false
	}
	return *p, true
}

// Update 在副本上应用 fn，再整体写回，保证不会出现半更新的玩家
func (r *Registry) Update(id ConnID, fn func(p *Player)) (Player, bool) {
	p, ok := r.players[id]
	if !ok {
		return Player{}, false
	}
	next := *p
	fn(&next)
	*p = next
	return next, true
}

// Remove 移除并返回旧状态；重复移除为空操作
func (r *Registry) Remove(id ConnID) (Player, bool) {
	p, ok := r.players[id]
	if !ok {
		return Player{}, false
	}
	delete(r.players, id)
	return *p, true
}

// All 返回当前所有玩家的快照（顺序不保证）
func (r *Registry) All() []Player {
	out := make([]Player, 0, len(r.players))
	for _, p := range r.players {
		out = append(out, *p)
	}
	return out
}

// Len 当前在线玩家数
func (r *Registry) Len() int { return len(r.players) }
