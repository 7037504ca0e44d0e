package server

import (
	"encoding/json"
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"
)

var errPeerDown = errors.New("peer down")

// recordingConn 记录收到的所有消息；fail 为 true 时模拟对端不可写
type recordingConn struct {
	id   ConnID
	fail bool
	msgs [][]byte
}

func newRecordingConn(id string) *recordingConn { return &recordingConn{id: ConnID(id)} }

func (c *recordingConn) ID() ConnID { return c.id }

func (c *recordingConn) TrySend(b []byte) error {
	if c.fail {
		return errPeerDown
	}
	c.msgs = append(c.msgs, b)
	return nil
}

// drain 解码并清空已收到的事件
func (c *recordingConn) drain(t *testing.T) []rawEvent {
	t.Helper()
	out := make([]rawEvent, 0, len(c.msgs))
	for _, b := range c.msgs {
		var ev rawEvent
		require.NoError(t, json.Unmarshal(b, &ev))
		out = append(out, ev)
	}
	c.msgs = nil
	return out
}

type rawEvent struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

func (ev rawEvent) state(t *testing.T) PlayerState {
	t.Helper()
	var s PlayerState
	require.NoError(t, json.Unmarshal(ev.Data, &s))
	return s
}

func (ev rawEvent) fruit(t *testing.T) Fruit {
	t.Helper()
	var f Fruit
	require.NoError(t, json.Unmarshal(ev.Data, &f))
	return f
}

func newTestEngine() *Engine {
	return NewEngine(WithRand(rand.New(rand.NewPCG(42, 1024))))
}
