package handlers

import (
	"net/http"

	"github.com/ovalhq/pavilion/internal/app"
)

type CaptureHandler struct {
	service *app.Service
}

func NewCaptureHandler(service *app.Service) *CaptureHandler {
	return &CaptureHandler{service: service}
}

type saveCaptureRequest struct {
	ImageData string `json:"image_data"`
	Source    string `json:"source"`
	Type      string `json:"type"`
}

func (h *CaptureHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	session, err := h.service.RequireAdmin(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	var req saveCaptureRequest
	if err := ParseJSONBody(r, &req); err != nil {
		ErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	capture, err := h.service.SaveCapture(session, req.ImageData, req.Source, req.Type)
	if err != nil {
		WriteError(w, err)
		return
	}

	JSONResponse(w, http.StatusOK, map[string]any{
		"success": true,
		"capture": capture,
		"url":     "/captures/" + capture.Filename,
	})
}

func (h *CaptureHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	if _, err := h.service.Identify(r); err != nil {
		WriteError(w, err)
		return
	}

	captures, err := h.service.ListCaptures()
	if err != nil {
		WriteError(w, err)
		return
	}
	JSONResponse(w, http.StatusOK, captures)
}

func (h *CaptureHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if _, err := h.service.RequireAdmin(r); err != nil {
		WriteError(w, err)
		return
	}

	if err := h.service.DeleteCapture(r.PathValue("id")); err != nil {
		WriteError(w, err)
		return
	}
	JSONResponse(w, http.StatusOK, map[string]any{"success": true})
}
