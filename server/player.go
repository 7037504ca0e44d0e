package server

// ConnID 传输层连接标识（每个 WebSocket 连接一个 UUID）
type ConnID string

// PlayerID 玩家唯一标识：连接建立时单调分配，永不复用
type PlayerID uint64

// DefaultDir 新玩家的默认朝向
const DefaultDir = "0"

// Player 服务端权威的玩家状态
type Player struct {
	ID    PlayerID
	X     int
	Y     int
	Dir   string // 不透明的朝向标记，最后一次写入生效
	Score int
}

// Fruit 全局唯一的可收集物
type Fruit struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// PlayerState 为广播给客户端的完整玩家状态（"new" 事件）
type PlayerState struct {
	ID    PlayerID `json:"id"`
	X     int      `json:"x"`
	Y     int      `json:"y"`
	Dir   string   `json:"dir"`
	Score int      `json:"score"`
}

// State 导出线上格式
func (p Player) State() PlayerState {
	return PlayerState{ID: p.ID, X: p.X, Y: p.Y, Dir: p.Dir, Score: p.Score}
}
