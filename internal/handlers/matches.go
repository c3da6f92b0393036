package handlers

import (
	"net/http"

	"github.com/ovalhq/pavilion/internal/app"
)

type MatchHandler struct {
	service *app.Service
}

func NewMatchHandler(service *app.Service) *MatchHandler {
	return &MatchHandler{service: service}
}

type createMatchRequest struct {
	Team1Name string `json:"team1_name"`
	Team2Name string `json:"team2_name"`
	Status    string `json:"status"`
}

// Match listing and single-match reads are deliberately public.
func (h *MatchHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	matches, err := h.service.ListMatches()
	if err != nil {
		WriteError(w, err)
		return
	}
	JSONResponse(w, http.StatusOK, matches)
}

func (h *MatchHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	match, err := h.service.GetMatch(r.PathValue("id"))
	if err != nil {
		WriteError(w, err)
		return
	}
	JSONResponse(w, http.StatusOK, match)
}

func (h *MatchHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	if _, err := h.service.RequireAdmin(r); err != nil {
		WriteError(w, err)
		return
	}

	var req createMatchRequest
	if err := ParseJSONBody(r, &req); err != nil {
		ErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	match, err := h.service.CreateMatch(req.Team1Name, req.Team2Name, req.Status)
	if err != nil {
		WriteError(w, err)
		return
	}
	JSONResponse(w, http.StatusOK, match)
}

func (h *MatchHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	if _, err := h.service.RequireAdmin(r); err != nil {
		WriteError(w, err)
		return
	}

	var updates map[string]any
	if err := ParseJSONBody(r, &updates); err != nil {
		ErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	match, err := h.service.UpdateMatch(r.PathValue("id"), updates)
	if err != nil {
		WriteError(w, err)
		return
	}
	JSONResponse(w, http.StatusOK, match)
}

func (h *MatchHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if _, err := h.service.RequireAdmin(r); err != nil {
		WriteError(w, err)
		return
	}

	if err := h.service.DeleteMatch(r.PathValue("id")); err != nil {
		WriteError(w, err)
		return
	}
	JSONResponse(w, http.StatusOK, map[string]any{"success": true})
}
