package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ovalhq/pavilion/internal/app"
	"github.com/ovalhq/pavilion/internal/hub"
	"github.com/ovalhq/pavilion/internal/models"
)

type wsEvent struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func newWSServer(t *testing.T, service *app.Service) *httptest.Server {
	t.Helper()

	broadcast := hub.New()
	go broadcast.Run()
	service.Events = broadcast

	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws", NewWSHandler(service, broadcast).HandleWS)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func dialWS(t *testing.T, server *httptest.Server, token string) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	if token != "" {
		url += "?token=" + token
	}
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err, "Failed to dial websocket")
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) wsEvent {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var event wsEvent
	require.NoError(t, conn.ReadJSON(&event), "Failed to read websocket event")
	return event
}

func sendQuickScore(t *testing.T, conn *websocket.Conn, payload map[string]any) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(map[string]any{
		"type":    "score:quick-update",
		"payload": payload,
	}))
}

func TestWebsocketQuickScore(t *testing.T) {
	service := newTestService(t)
	server := newWSServer(t, service)

	match, err := service.CreateMatch("Lions", "Tigers", models.StatusLive)
	require.NoError(t, err)

	conn := dialWS(t, server, "")

	t.Run("snapshot on connect", func(t *testing.T) {
		event := readEvent(t, conn)
		assert.Equal(t, "matches:init", event.Type)

		var matches []models.Match
		require.NoError(t, json.Unmarshal(event.Payload, &matches))
		require.Len(t, matches, 1)
		assert.Equal(t, match.ID, matches[0].ID)
	})

	t.Run("admin quick score broadcasts the updated match", func(t *testing.T) {
		sendQuickScore(t, conn, map[string]any{
			"matchId": match.ID,
			"team":    "team1",
			"runs":    4,
		})

		event := readEvent(t, conn)
		assert.Equal(t, "match:updated", event.Type)

		var updated models.Match
		require.NoError(t, json.Unmarshal(event.Payload, &updated))
		assert.Equal(t, 4, updated.Team1Score)
	})

	t.Run("wicket", func(t *testing.T) {
		sendQuickScore(t, conn, map[string]any{
			"matchId": match.ID,
			"team":    "team1",
			"runs":    1,
			"wicket":  true,
		})

		event := readEvent(t, conn)
		assert.Equal(t, "match:updated", event.Type)

		var updated models.Match
		require.NoError(t, json.Unmarshal(event.Payload, &updated))
		assert.Equal(t, 5, updated.Team1Score)
		assert.Equal(t, 1, updated.Team1Wickets)
	})

	t.Run("unknown team gets an error frame", func(t *testing.T) {
		sendQuickScore(t, conn, map[string]any{
			"matchId": match.ID,
			"team":    "Lions",
			"runs":    1,
		})

		event := readEvent(t, conn)
		assert.Equal(t, "error", event.Type)
	})

	t.Run("unknown match is a silent no-op", func(t *testing.T) {
		sendQuickScore(t, conn, map[string]any{
			"matchId": "no-such-id",
			"team":    "team1",
			"runs":    6,
		})
		// the next valid update must be the next frame we see
		sendQuickScore(t, conn, map[string]any{
			"matchId": match.ID,
			"team":    "team2",
			"runs":    2,
		})

		event := readEvent(t, conn)
		assert.Equal(t, "match:updated", event.Type)

		var updated models.Match
		require.NoError(t, json.Unmarshal(event.Payload, &updated))
		assert.Equal(t, 2, updated.Team2Score)
		assert.Equal(t, 5, updated.Team1Score, "no-op must not touch state")
	})

	t.Run("malformed payload gets an error frame", func(t *testing.T) {
		require.NoError(t, conn.WriteJSON(map[string]any{
			"type":    "score:quick-update",
			"payload": "not an object",
		}))

		event := readEvent(t, conn)
		assert.Equal(t, "error", event.Type)
	})
}

// Channel messages bypass the HTTP middleware, so the role check runs
// against the session captured at upgrade time. Viewers and anonymous
// connections may watch but not score.
func TestWebsocketAuthorization(t *testing.T) {
	service := newTestService(t)
	service.Config.Server.EnableAuth = true
	service.Sessions = &fakeSessions{sessions: map[string]*models.Session{
		"tok-admin":  {UserID: "u-1", Username: "scorer", Role: models.RoleAdmin},
		"tok-viewer": {UserID: "u-2", Username: "watcher", Role: models.RoleViewer},
	}}
	server := newWSServer(t, service)

	match, err := service.CreateMatch("Lions", "Tigers", models.StatusLive)
	require.NoError(t, err)

	assertRejected := func(t *testing.T, conn *websocket.Conn) {
		event := readEvent(t, conn)
		require.Equal(t, "matches:init", event.Type)

		sendQuickScore(t, conn, map[string]any{
			"matchId": match.ID,
			"team":    "team1",
			"runs":    4,
		})

		event = readEvent(t, conn)
		assert.Equal(t, "error", event.Type)
		var body map[string]string
		require.NoError(t, json.Unmarshal(event.Payload, &body))
		assert.Equal(t, "Unauthorized", body["message"])

		got, err := service.GetMatch(match.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, got.Team1Score, "rejected message must not mutate state")
	}

	t.Run("viewer session", func(t *testing.T) {
		assertRejected(t, dialWS(t, server, "tok-viewer"))
	})

	t.Run("anonymous connection", func(t *testing.T) {
		assertRejected(t, dialWS(t, server, ""))
	})

	t.Run("admin session via token query parameter", func(t *testing.T) {
		conn := dialWS(t, server, "tok-admin")
		event := readEvent(t, conn)
		require.Equal(t, "matches:init", event.Type)

		sendQuickScore(t, conn, map[string]any{
			"matchId": match.ID,
			"team":    "team1",
			"runs":    4,
		})

		event = readEvent(t, conn)
		assert.Equal(t, "match:updated", event.Type)
	})
}
