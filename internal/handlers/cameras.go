package handlers

import (
	"net/http"

	"github.com/ovalhq/pavilion/internal/app"
	"github.com/ovalhq/pavilion/internal/camera"
)

type CameraHandler struct {
	service *app.Service
}

func NewCameraHandler(service *app.Service) *CameraHandler {
	return &CameraHandler{service: service}
}

func (h *CameraHandler) HandleGetConfig(w http.ResponseWriter, r *http.Request) {
	if _, err := h.service.Identify(r); err != nil {
		WriteError(w, err)
		return
	}

	configs, err := h.service.CameraConfigs()
	if err != nil {
		WriteError(w, err)
		return
	}
	JSONResponse(w, http.StatusOK, configs)
}

func (h *CameraHandler) HandleUpdateConfig(w http.ResponseWriter, r *http.Request) {
	if _, err := h.service.RequireAdmin(r); err != nil {
		WriteError(w, err)
		return
	}

	var patches map[string]app.CameraConfigPatch
	if err := ParseJSONBody(r, &patches); err != nil {
		ErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	configs, err := h.service.UpdateCameraConfigs(patches)
	if err != nil {
		WriteError(w, err)
		return
	}
	JSONResponse(w, http.StatusOK, configs)
}

// HandleStream relays the camera's MJPEG stream. The relay runs on the
// request context, so a disconnecting viewer cancels the upstream fetch.
func (h *CameraHandler) HandleStream(w http.ResponseWriter, r *http.Request) {
	if _, err := h.service.Identify(r); err != nil {
		WriteError(w, err)
		return
	}

	url, err := h.service.CameraStreamURL(r.PathValue("camera"))
	if err != nil {
		WriteError(w, err)
		return
	}

	if err := camera.Stream(r.Context(), w, url); err != nil {
		WriteError(w, err)
	}
}

func (h *CameraHandler) HandleSnapshot(w http.ResponseWriter, r *http.Request) {
	if _, err := h.service.Identify(r); err != nil {
		WriteError(w, err)
		return
	}

	url, err := h.service.CameraSnapshotURL(r.PathValue("camera"))
	if err != nil {
		WriteError(w, err)
		return
	}

	if err := camera.Snapshot(r.Context(), w, url); err != nil {
		WriteError(w, err)
	}
}
