package server

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func dialWS(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if resp != nil {
		resp.Body.Close()
	}
	require.NoError(t, err)
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) rawEvent {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)
	var ev rawEvent
	require.NoError(t, json.Unmarshal(payload, &ev))
	return ev
}

func TestWebSocketSession(t *testing.T) {
	e := newTestEngine()
	srv := httptest.NewServer(NewRouter(e))
	t.Cleanup(srv.Close)

	connA := dialWS(t, srv)
	defer connA.Close()
	ev := readEvent(t, connA)
	assert.Equal(t, KindFruit, ev.Kind)
	assert.Equal(t, e.Fruit(), ev.fruit(t))

	connB := dialWS(t, srv)
	defer connB.Close()

	ev = readEvent(t, connA)
	require.Equal(t, KindNew, ev.Kind)
	newB := ev.state(t)

	ev = readEvent(t, connB)
	require.Equal(t, KindNew, ev.Kind)
	newA := ev.state(t)
	assert.NotEqual(t, newA.ID, newB.ID)
	assert.Equal(t, KindFruit, readEvent(t, connB).Kind)

	// 非法消息被静默丢弃，连接保持
	require.NoError(t, connB.WriteMessage(websocket.TextMessage, []byte("{oops")))
	require.NoError(t, connB.WriteMessage(websocket.TextMessage, []byte(`{"kind":"move","data":{"x":20,"y":0}}`)))

	ev = readEvent(t, connA)
	require.Equal(t, KindMove, ev.Kind)
	var mv struct {
		ID  PlayerID `json:"id"`
		X   int      `json:"x"`
		Y   int      `json:"y"`
		Dir string   `json:"dir"`
	}
	require.NoError(t, json.Unmarshal(ev.Data, &mv))
	assert.Equal(t, newB.ID, mv.ID)
	assert.Equal(t, 20, mv.X)
	assert.Equal(t, 0, mv.Y)
	assert.Equal(t, newB.Dir, mv.Dir)

	require.NoError(t, connB.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))

	ev = readEvent(t, connA)
	require.Equal(t, KindDelete, ev.Kind)
	var gone PlayerID
	require.NoError(t, json.Unmarshal(ev.Data, &gone))
	assert.Equal(t, newB.ID, gone)

	assert.Eventually(t, func() bool { return len(e.Players()) == 1 }, time.Second, 10*time.Millisecond)
}

func TestClientConnTrySendAfterClose(t *testing.T) {
	e := newTestEngine()
	srv := httptest.NewServer(NewRouter(e))
	t.Cleanup(srv.Close)

	// 只借用一个真实的 websocket.Conn 构造客户端
	conn := dialWS(t, srv)
	c := NewClientConn(conn)
	assert.NotEmpty(t, c.ID())
	assert.NoError(t, c.TrySend([]byte("x")))

	c.Close()
	assert.ErrorIs(t, c.TrySend([]byte("x")), ErrConnClosed)
	c.Close()
}

func TestClientConnQueueFull(t *testing.T) {
	e := newTestEngine()
	srv := httptest.NewServer(NewRouter(e))
	t.Cleanup(srv.Close)

	conn := dialWS(t, srv)
	c := NewClientConn(conn)
	defer c.Close()
	for i := 0; i < sendQueueSize; i++ {
		require.NoError(t, c.TrySend([]byte("x")))
	}
	assert.ErrorIs(t, c.TrySend([]byte("x")), ErrSendQueueFull)
}
