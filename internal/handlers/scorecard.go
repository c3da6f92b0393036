package handlers

import (
	"net/http"

	"github.com/ovalhq/pavilion/internal/app"
	"github.com/ovalhq/pavilion/internal/models"
)

type ScorecardHandler struct {
	service *app.Service
}

func NewScorecardHandler(service *app.Service) *ScorecardHandler {
	return &ScorecardHandler{service: service}
}

// HandleGet returns the match plus both team cards, each pairing a side's
// batsmen with the opposing side's bowlers. Public read.
func (h *ScorecardHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	scorecard, err := h.service.FullScorecard(r.PathValue("id"))
	if err != nil {
		WriteError(w, err)
		return
	}
	JSONResponse(w, http.StatusOK, scorecard)
}

func (h *ScorecardHandler) HandleAddBatsman(w http.ResponseWriter, r *http.Request) {
	if _, err := h.service.RequireAdmin(r); err != nil {
		WriteError(w, err)
		return
	}

	var batsman models.Batsman
	if err := ParseJSONBody(r, &batsman); err != nil {
		ErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}
	batsman.MatchID = r.PathValue("id")

	created, err := h.service.AddBatsman(&batsman)
	if err != nil {
		WriteError(w, err)
		return
	}
	JSONResponse(w, http.StatusOK, created)
}

func (h *ScorecardHandler) HandleUpdateBatsman(w http.ResponseWriter, r *http.Request) {
	if _, err := h.service.RequireAdmin(r); err != nil {
		WriteError(w, err)
		return
	}

	var updates map[string]any
	if err := ParseJSONBody(r, &updates); err != nil {
		ErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	batsman, err := h.service.UpdateBatsman(r.PathValue("entryId"), updates)
	if err != nil {
		WriteError(w, err)
		return
	}
	JSONResponse(w, http.StatusOK, batsman)
}

func (h *ScorecardHandler) HandleDeleteBatsman(w http.ResponseWriter, r *http.Request) {
	if _, err := h.service.RequireAdmin(r); err != nil {
		WriteError(w, err)
		return
	}

	if err := h.service.DeleteBatsman(r.PathValue("entryId")); err != nil {
		WriteError(w, err)
		return
	}
	JSONResponse(w, http.StatusOK, map[string]any{"success": true})
}

func (h *ScorecardHandler) HandleAddBowler(w http.ResponseWriter, r *http.Request) {
	if _, err := h.service.RequireAdmin(r); err != nil {
		WriteError(w, err)
		return
	}

	var bowler models.Bowler
	if err := ParseJSONBody(r, &bowler); err != nil {
		ErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}
	bowler.MatchID = r.PathValue("id")

	created, err := h.service.AddBowler(&bowler)
	if err != nil {
		WriteError(w, err)
		return
	}
	JSONResponse(w, http.StatusOK, created)
}

func (h *ScorecardHandler) HandleUpdateBowler(w http.ResponseWriter, r *http.Request) {
	if _, err := h.service.RequireAdmin(r); err != nil {
		WriteError(w, err)
		return
	}

	var updates map[string]any
	if err := ParseJSONBody(r, &updates); err != nil {
		ErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	bowler, err := h.service.UpdateBowler(r.PathValue("entryId"), updates)
	if err != nil {
		WriteError(w, err)
		return
	}
	JSONResponse(w, http.StatusOK, bowler)
}

func (h *ScorecardHandler) HandleDeleteBowler(w http.ResponseWriter, r *http.Request) {
	if _, err := h.service.RequireAdmin(r); err != nil {
		WriteError(w, err)
		return
	}

	if err := h.service.DeleteBowler(r.PathValue("entryId")); err != nil {
		WriteError(w, err)
		return
	}
	JSONResponse(w, http.StatusOK, map[string]any{"success": true})
}
