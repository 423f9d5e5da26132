package observe

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/history"
	"github.com/lox/blackjack/internal/randutil"
)

func newTestTable(t *testing.T, subscribers ...game.EventSubscriber) *game.Table {
	t.Helper()
	bus := game.NewEventBus()
	for _, s := range subscribers {
		bus.Subscribe(s)
	}
	tbl, err := game.NewTable(randutil.New(7), []string{"Alice"}, game.WithEventBus(bus))
	require.NoError(t, err)
	return tbl
}

func dial(t *testing.T, hub *Hub) (*websocket.Conn, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(hub.Handler())
	t.Cleanup(server.Close)

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	ws, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ws.Close() })

	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 10*time.Millisecond)
	return ws, server
}

func playRound(t *testing.T, tbl *game.Table) {
	t.Helper()
	require.NoError(t, tbl.Bet(10))
	for tbl.Phase() == game.PlayerTurn {
		require.NoError(t, tbl.Stand())
	}
	require.Equal(t, game.GameOver, tbl.Phase())
}

func TestHealth(t *testing.T) {
	server := httptest.NewServer(NewHub().Handler())
	defer server.Close()

	resp, err := http.Get(server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", string(body))
}

func TestViewerReceivesEvents(t *testing.T) {
	hub := NewHub()
	tbl := newTestTable(t, hub)
	WithSnapshots(tbl.Snapshot)(hub)

	ws, _ := dial(t, hub)
	require.NoError(t, tbl.Bet(10))

	_ = ws.SetReadDeadline(time.Now().Add(2 * time.Second))

	var start Message
	require.NoError(t, ws.ReadJSON(&start))
	assert.Equal(t, game.EventTypeRoundStart, start.Type)
	assert.Equal(t, tbl.RoundID(), start.RoundID)
	assert.Equal(t, "=== Round #1: Alice ===", start.Text)
	require.NotNil(t, start.Snapshot)

	var bet Message
	require.NoError(t, ws.ReadJSON(&bet))
	assert.Equal(t, game.EventTypeBet, bet.Type)
	assert.Equal(t, "Alice: bets $10 (stack: $990)", bet.Text)
	require.NotNil(t, bet.Snapshot)
	assert.Equal(t, 990, bet.Snapshot.Players[0].Chips)
}

func TestViewerMessagesIgnored(t *testing.T) {
	hub := NewHub()
	tbl := newTestTable(t, hub)
	ws, _ := dial(t, hub)

	// Anything a viewer sends is discarded and changes nothing
	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte(`{"action":"hit"}`)))
	require.NoError(t, tbl.Bet(10))

	_ = ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg Message
	require.NoError(t, ws.ReadJSON(&msg))
	assert.Equal(t, game.EventTypeRoundStart, msg.Type)
	assert.Equal(t, 1, hub.Clients())
}

func TestHistoryEndpoint(t *testing.T) {
	t.Run("not configured", func(t *testing.T) {
		server := httptest.NewServer(NewHub().Handler())
		defer server.Close()

		resp, err := http.Get(server.URL + "/history")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("recent rounds", func(t *testing.T) {
		rec := history.NewRecorder(10)
		hub := NewHub(WithHistory(rec))
		tbl := newTestTable(t, rec, hub)
		playRound(t, tbl)

		server := httptest.NewServer(hub.Handler())
		defer server.Close()

		resp, err := http.Get(server.URL + "/history")
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var rounds []history.RoundRecord
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&rounds))
		require.Len(t, rounds, 1)
		assert.Equal(t, tbl.RoundID(), rounds[0].RoundID)

		found, err := http.Get(server.URL + "/history?round=" + tbl.RoundID())
		require.NoError(t, err)
		defer found.Body.Close()
		assert.Equal(t, http.StatusOK, found.StatusCode)

		missing, err := http.Get(server.URL + "/history?round=nope")
		require.NoError(t, err)
		defer missing.Body.Close()
		assert.Equal(t, http.StatusNotFound, missing.StatusCode)
	})
}

func TestSlowViewerDropsMessages(t *testing.T) {
	hub := NewHub()
	c := newClient(hub, nil, "slow")
	require.True(t, hub.register(c))

	// Nothing drains the queue
	for i := 0; i < sendBuffer+5; i++ {
		hub.OnEvent(game.NewShuffleEvent("r", 6, 312, time.Now()))
	}

	assert.Len(t, c.send, sendBuffer)
	assert.Equal(t, 5, hub.Dropped())
}

func TestNoViewersSkipsSnapshot(t *testing.T) {
	calls := 0
	hub := NewHub(WithSnapshots(func() game.Snapshot {
		calls++
		return game.Snapshot{}
	}))

	hub.OnEvent(game.NewShuffleEvent("r", 6, 312, time.Now()))
	assert.Equal(t, 0, calls)
}

func TestCloseDisconnectsViewers(t *testing.T) {
	hub := NewHub()
	ws, server := dial(t, hub)

	hub.Close()
	assert.Equal(t, 0, hub.Clients())

	_ = ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := ws.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "unexpected error: %v", err)

	// A closed hub turns new viewers away
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	late, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer late.Close()

	_ = late.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err = late.ReadMessage()
	assert.Error(t, err)
	assert.Equal(t, 0, hub.Clients())
}
