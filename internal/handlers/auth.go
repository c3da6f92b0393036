package handlers

import (
	"net/http"

	"github.com/ovalhq/pavilion/internal/app"
)

type AuthHandler struct {
	service *app.Service
}

func NewAuthHandler(service *app.Service) *AuthHandler {
	return &AuthHandler{service: service}
}

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := ParseJSONBody(r, &req); err != nil {
		ErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.service.Register(req.Username, req.Password, req.Role); err != nil {
		WriteError(w, err)
		return
	}

	JSONResponse(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Registration successful",
	})
}

func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := ParseJSONBody(r, &req); err != nil {
		ErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, user, err := h.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		WriteError(w, err)
		return
	}

	JSONResponse(w, http.StatusOK, map[string]any{
		"success": true,
		"token":   token,
		"user": map[string]string{
			"username": user.Username,
			"role":     user.Role,
		},
	})
}

func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Logout(r.Context(), h.service.BearerToken(r)); err != nil {
		WriteError(w, err)
		return
	}
	JSONResponse(w, http.StatusOK, map[string]any{"success": true})
}

func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	session, err := h.service.Identify(r)
	if err != nil {
		WriteError(w, err)
		return
	}
	JSONResponse(w, http.StatusOK, map[string]any{"user": session})
}
