package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/websocket"
	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/ovalhq/pavilion/internal/app"
	"github.com/ovalhq/pavilion/internal/hub"
	"github.com/ovalhq/pavilion/internal/metrics"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

type WSHandler struct {
	service *app.Service
	hub     *hub.Hub
}

func NewWSHandler(service *app.Service, h *hub.Hub) *WSHandler {
	return &WSHandler{service: service, hub: h}
}

type quickScorePayload struct {
	MatchID string `json:"matchId"`
	Team    string `json:"team"`
	Runs    int    `json:"runs"`
	Wicket  bool   `json:"wicket"`
}

// HandleWS upgrades the connection, attaches whatever session the token
// resolves to (anonymous viewers are welcome), and sends the full match
// snapshot before the client joins the broadcast set.
func (h *WSHandler) HandleWS(w http.ResponseWriter, r *http.Request) {
	session, err := h.service.Identify(r)
	if err != nil && !errors.Is(err, app.ErrNoSession) {
		WriteError(w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Debug.Printf("Websocket upgrade failed: %v", err)
		return
	}

	client := hub.NewClient(h.hub, conn, session)

	matches, err := h.service.ListMatches()
	if err != nil {
		logger.Error.Printf("Failed to load snapshot for new client: %v", err)
		matches = nil
	}
	client.Send(hub.Event{Type: app.EventMatchesInit, Payload: matches})

	h.hub.Register(client)
	go client.WritePump()
	go client.ReadPump(h.dispatch)
}

func (h *WSHandler) dispatch(c *hub.Client, msg hub.InboundMessage) {
	switch msg.Type {
	case "score:quick-update":
		h.handleQuickScore(c, msg.Payload)
	default:
		logger.Debug.Printf("Ignoring unknown websocket message type %q", msg.Type)
	}
}

// handleQuickScore is the admin-only realtime mutation path. The role
// check runs against the session captured at upgrade time, since channel
// messages bypass the HTTP middleware entirely.
func (h *WSHandler) handleQuickScore(c *hub.Client, raw json.RawMessage) {
	if !c.Session.IsAdmin() {
		c.Send(hub.Event{Type: "error", Payload: map[string]string{"message": "Unauthorized"}})
		return
	}

	var payload quickScorePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		c.Send(hub.Event{Type: "error", Payload: map[string]string{"message": "Malformed quick score payload"}})
		return
	}

	match, err := h.service.QuickScore(payload.MatchID, payload.Team, payload.Runs, payload.Wicket)
	if err != nil {
		c.Send(hub.Event{Type: "error", Payload: map[string]string{"message": err.Error()}})
		return
	}
	if match == nil {
		// unknown match: deliberate silent no-op
		return
	}

	metrics.QuickScoreTotal.WithLabelValues(payload.Team, strconv.FormatBool(payload.Wicket)).Inc()
}
