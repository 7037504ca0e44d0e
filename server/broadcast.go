package server

import (
	"encoding/json"

	"go.uber.org/multierr"
)

// Conn 传输层边界：引擎只通过它发送字节，从不直接做 I/O
type Conn interface {
	ID() ConnID
	// TrySend 非阻塞投递；失败表示该对端当前不可写
	TrySend(payload []byte) error
}

// Delivery 单次投递结果
type Delivery struct {
	Conn ConnID
	Err  error
}

// Deliveries 一次广播的全部投递结果
type Deliveries []Delivery

// Err 合并所有失败（仅用于日志与统计，调用方按约定丢弃）
func (ds Deliveries) Err() error {
	var err error
	for _, d := range ds {
		err = multierr.Append(err, d.Err)
	}
	return err
}

// Failed 失败次数
func (ds Deliveries) Failed() int {
	n := 0
	for _, d := range ds {
		if d.Err != nil {
			n++
		}
	}
	return n
}

// Fanout 尽力而为的广播：单个对端失败不影响其他对端，也不向上传播
type Fanout struct {
	conns map[ConnID]Conn
}

func NewFanout() *Fanout {
	return &Fanout{conns: make(map[ConnID]Conn)}
}

func (f *Fanout) Add(c Conn) { f.conns[c.ID()] = c }
func (f *Fanout) Remove(id ConnID) { delete(f.conns, id) }

// Broadcast 序列化一次，投递给除 except 外的所有连接（except 为空表示全部）
func (f *Fanout) Broadcast(ev Event, except ConnID) Deliveries {
	b, err := json.Marshal(ev)
	if err != nil {
		return Deliveries{{Err: err}}
	}
	out := make(Deliveries, 0, len(f.conns))
	for id, c := range f.conns {
		if except != "" && id == except {
			continue
		}
		out = append(out, Delivery{Conn: id, Err: c.TrySend(b)})
	}
	return out
}

// Send 单目标投递，容错方式与 Broadcast 相同
func (f *Fanout) Send(id ConnID, ev Event) Deliveries {
	c, ok := f.conns[id]
	if !ok {
		return nil
	}
	b, err := json.Marshal(ev)
	if err != nil {
		return Deliveries{{Conn: id, Err: err}}
	}
	return Deliveries{{Conn: id, Err: c.TrySend(b)}}
}
