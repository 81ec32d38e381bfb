package gateway

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bingoroom/internal/identity"
	"bingoroom/internal/protocol"
	"bingoroom/internal/room"
)

func newTestServer(t *testing.T) (*httptest.Server, *room.Manager, *identity.JWTResolver) {
	t.Helper()

	resolver, err := identity.NewJWTResolver("gateway-test-secret", time.Hour)
	require.NoError(t, err)

	cfg := room.DefaultManagerConfig()
	cfg.IdleTTL = 0
	manager := room.NewManager(cfg, resolver, nil, nil, clockwork.NewRealClock())
	t.Cleanup(manager.ShutdownAll)

	mux := http.NewServeMux()
	handler := NewHandler(manager, DefaultConnectionConfig())
	handler.RegisterRoutes(mux)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, manager, resolver
}

func dial(t *testing.T, srv *httptest.Server, slug string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?slug=" + slug
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) *protocol.ServerMessage {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	msg, err := protocol.DecodeServerMessage(data)
	require.NoError(t, err)
	return msg
}

func writeAction(t *testing.T, conn *websocket.Conn, action protocol.Action) {
	t.Helper()
	data, err := json.Marshal(action)
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, data))
}

func TestConnectionRequiresSlug(t *testing.T) {
	srv, _, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/ws")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestConnectReceivesJoinNotice(t *testing.T) {
	srv, _, _ := newTestServer(t)

	conn := dial(t, srv, "race-1")

	msg := readMessage(t, conn)
	assert.Equal(t, protocol.MessageChat, msg.Kind)
	assert.Equal(t, "join", msg.Message)
}

func TestJoinActionSyncsBoard(t *testing.T) {
	srv, _, resolver := newTestServer(t)

	conn := dial(t, srv, "race-2")
	readMessage(t, conn) // connect notice

	token, err := resolver.Issue("alice", "red")
	require.NoError(t, err)
	writeAction(t, conn, protocol.Action{Kind: protocol.ActionJoin, AuthToken: token})

	sync := readMessage(t, conn)
	require.Equal(t, protocol.MessageSyncBoard, sync.Kind)
	require.NotNil(t, sync.Board)
	assert.Len(t, sync.Board.Board, 5)

	chat := readMessage(t, conn)
	assert.Equal(t, "alice has joined.", chat.Message)
}

func TestMarkIsBroadcastToAllConnections(t *testing.T) {
	srv, _, resolver := newTestServer(t)

	first := dial(t, srv, "race-3")
	readMessage(t, first) // own connect notice

	second := dial(t, srv, "race-3")
	readMessage(t, first)  // second's connect notice
	readMessage(t, second) // own connect notice

	token, err := resolver.Issue("alice", "red")
	require.NoError(t, err)
	row, col := 1, 2
	writeAction(t, first, protocol.Action{
		Kind:      protocol.ActionMark,
		AuthToken: token,
		Payload:   &protocol.Payload{Row: &row, Col: &col},
	})

	for _, conn := range []*websocket.Conn{first, second} {
		update := readMessage(t, conn)
		require.Equal(t, protocol.MessageCellUpdate, update.Kind)
		assert.Equal(t, 1, *update.Row)
		assert.Equal(t, 2, *update.Col)
		assert.True(t, update.Cell.Has("red"))

		chat := readMessage(t, conn)
		assert.Equal(t, "alice is marking (1,2)", chat.Message)
	}
}

func TestAbruptDisconnectNotifiesRemaining(t *testing.T) {
	srv, _, _ := newTestServer(t)

	stays := dial(t, srv, "race-4")
	readMessage(t, stays)

	goes := dial(t, srv, "race-4")
	readMessage(t, stays) // goes' connect notice

	goes.Close()

	msg := readMessage(t, stays)
	assert.Equal(t, protocol.MessageChat, msg.Kind)
	assert.Equal(t, "leave", msg.Message)
}

func TestStatsEndpointCountsConnections(t *testing.T) {
	srv, manager, _ := newTestServer(t)

	dial(t, srv, "race-5")
	require.Eventually(t, func() bool {
		return manager.Stats()["race-5"] == 1
	}, time.Second, 5*time.Millisecond)

	resp, err := http.Get(srv.URL + "/ws/stats")
	require.NoError(t, err)
	defer resp.Body.Close()

	var stats struct {
		TotalConnections int            `json:"total_connections"`
		ActiveRooms      int            `json:"active_rooms"`
		RoomConnections  map[string]int `json:"room_connections"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stats))
	assert.Equal(t, 1, stats.TotalConnections)
	assert.Equal(t, 1, stats.ActiveRooms)
	assert.Equal(t, 1, stats.RoomConnections["race-5"])
}
