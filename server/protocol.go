package server

import (
	"encoding/json"
	"errors"
)

// 消息类型（线上字段名固定，保持与客户端兼容）
const (
	KindMove   = "move"
	KindEat    = "eat"
	KindNew    = "new"
	KindScore  = "score"
	KindFruit  = "fruit"
	KindDelete = "delete"
)

var (
	// ErrMalformed 无法解析或缺少字符串类型的 kind
	ErrMalformed = errors.New("malformed message")
	// ErrUnknownKind kind 合法但未识别，静默忽略以保持前向兼容
	ErrUnknownKind = errors.New("unknown message kind")
)

// MoveCommand 入站移动：字段均可缺省，缺省或格式不对的字段不改动
// 示例：{"kind":"move","data":{"dir":"up","x":40,"y":20}}
type MoveCommand struct {
	Dir *string
	X   *float64
	Y   *float64
}

// EatCommand 入站吃水果：可选的声明坐标，缺省时使用服务端记录的位置
// 示例：{"kind":"eat","data":{"x":40,"y":40}}
type EatCommand struct {
	X *float64
	Y *float64
}

// Event 出站事件信封
type Event struct {
	Kind string `json:"kind"`
	Data any    `json:"data"`
}

type moveData struct {
	ID  PlayerID `json:"id"`
	X   int      `json:"x"`
	Y   int      `json:"y"`
	Dir string   `json:"dir"`
}

type scoreData struct {
	ID    PlayerID `json:"id"`
	Score int      `json:"score"`
}

func newPlayerEvent(p Player) Event { return Event{Kind: KindNew, Data: p.State()} }

func moveEvent(p Player) Event {
	return Event{Kind: KindMove, Data: moveData{ID: p.ID, X: p.X, Y: p.Y, Dir: p.Dir}}
}

func scoreEvent(p Player) Event {
	return Event{Kind: KindScore, Data: scoreData{ID: p.ID, Score: p.Score}}
}

func fruitEvent(f Fruit) Event { return Event{Kind: KindFruit, Data: f} }

// deleteEvent 的 data 直接是离开者的编号
func deleteEvent(id PlayerID) Event { return Event{Kind: KindDelete, Data: id} }

// Decode 解析一条入站消息，返回 MoveCommand 或 EatCommand
func Decode(raw []byte) (any, error) {
	var env map[string]json.RawMessage
	if err := json.Unmarshal(raw, &env); err != nil || env == nil {
		return nil, ErrMalformed
	}
	kind := stringField(env, "kind")
	if kind == nil {
		return nil, ErrMalformed
	}
	data := payloadFields(env["data"])

	switch *kind {
	case KindMove:
		return MoveCommand{
			Dir: stringField(data, "dir"),
			X:   numberField(data, "x"),
			Y:   numberField(data, "y"),
		}, nil
	case KindEat:
		return EatCommand{
			X: numberField(data, "x"),
			Y: numberField(data, "y"),
		}, nil
	default:
		return nil, ErrUnknownKind
	}
}

// payloadFields data 不是对象时视为缺省
func payloadFields(raw json.RawMessage) map[string]json.RawMessage {
	if len(raw) == 0 {
		return nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil
	}
	return fields
}

func stringField(fields map[string]json.RawMessage, key string) *string {
	raw, ok := fields[key]
	if !ok || len(raw) == 0 || raw[0] != '"' {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	return &s
}

// numberField 只接受 JSON 数字；溢出 float64 的数值按格式错误处理
func numberField(fields map[string]json.RawMessage, key string) *float64 {
	raw, ok := fields[key]
	if !ok || len(raw) == 0 || raw[0] == '"' {
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return nil
	}
	f, err := n.Float64()
	if err != nil {
		return nil
	}
	return &f
}
