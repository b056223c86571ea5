package net

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func startServer(t *testing.T) (*fixture, *httptest.Server) {
	fx := newFixture(t, 64, 0, 0)
	srv := httptest.NewServer(NewServer(fx.router, fx.store, fx.router.logger).Handler())
	t.Cleanup(srv.Close)
	return fx, srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func read(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var m Message
	require.NoError(t, conn.ReadJSON(&m))
	return m
}

func readUsers(t *testing.T, conn *websocket.Conn) int {
	t.Helper()
	m := read(t, conn)
	require.Equal(t, KindCurrentUsers, m.Type)
	n, err := m.Users()
	require.NoError(t, err)
	return n
}

func TestServerScenario(t *testing.T) {
	fx, srv := startServer(t)

	a := dial(t, srv)
	require.Equal(t, KindBoardState, read(t, a).Type)
	require.Equal(t, 1, readUsers(t, a))

	b := dial(t, srv)
	require.Equal(t, KindBoardState, read(t, b).Type)
	require.Equal(t, 2, readUsers(t, b))
	require.Equal(t, 2, readUsers(t, a))

	// Garbage and unknown kinds are ignored without closing the connection.
	require.NoError(t, a.WriteMessage(websocket.TextMessage, []byte("{not json")))
	require.NoError(t, a.WriteJSON(Message{Type: KindCurrentUsers}))

	require.NoError(t, a.WriteJSON(ProposeMessage(segment(), 0)))
	m := read(t, b)
	require.Equal(t, KindDraw, m.Type)
	cmd, err := m.Command()
	require.NoError(t, err)
	require.Equal(t, segment(), cmd)

	ack := read(t, a)
	require.Equal(t, KindAck, ack.Type)
	require.Equal(t, uint64(0), *ack.Seq)

	require.NoError(t, b.WriteJSON(ClearRequest()))
	for _, c := range []*websocket.Conn{a, b} {
		m := read(t, c)
		require.Equal(t, KindClear, m.Type)
		require.Equal(t, uint64(1), *m.Epoch)
	}

	require.NoError(t, a.Close())
	require.Equal(t, 1, readUsers(t, b))
	require.Eventually(t, func() bool { return fx.conns.ActiveCount() == 1 }, 5*time.Second, 10*time.Millisecond)
}

func TestServerRejectAck(t *testing.T) {
	fx, srv := startServer(t)
	a := dial(t, srv)
	read(t, a)
	read(t, a)

	require.NoError(t, a.WriteMessage(websocket.TextMessage,
		[]byte(`{"type":"draw","data":{"x0":0,"y0":0,"x1":1,"y1":1,"color":"red","size":0}}`)))
	m := read(t, a)
	require.Equal(t, KindReject, m.Type)
	require.Zero(t, fx.store.Len())
}

func TestServerHTTPRoutes(t *testing.T) {
	fx, srv := startServer(t)
	fx.store.Append(segment())
	fx.store.Clear()
	fx.store.Append(segment())
	peer := fx.router.Join()

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	var health Health
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	require.Equal(t, Health{
		Active:       1,
		Participants: []Participant{{ID: peer.ID, JoinedAtEpoch: 1}},
		Commands:     1,
		Epoch:        1,
	}, health)

	resp, err = http.Get(srv.URL + "/board.pdf")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(body), "%PDF-"))

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err = io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "syncboard_router_accepted_total")
}
