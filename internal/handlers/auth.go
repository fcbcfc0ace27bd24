package handlers

import (
	"net/http"

	"github.com/AnshRaj112/researchhive-backend/internal/models"
	"github.com/AnshRaj112/researchhive-backend/internal/services"
)

type AuthResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	User    *models.User `json:"user,omitempty"`
	Token   string       `json:"token,omitempty"`
}

// Register creates an account. The caller logs in separately.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req services.RegisterInput
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	ctx, cancel := storageCtx(r)
	defer cancel()

	user, err := h.svc.Auth.Register(ctx, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, AuthResponse{Success: true, Message: "Account created", User: user})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req services.LoginInput
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	req.IPAddress = h.clientIP(r)
	req.UserAgent = r.UserAgent()

	ctx, cancel := storageCtx(r)
	defer cancel()

	token, user, err := h.svc.Auth.Login(ctx, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, AuthResponse{Success: true, Message: "Signed in", User: user, Token: token})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := storageCtx(r)
	defer cancel()
	if err := h.svc.Auth.Logout(ctx, principal(r)); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Signed out")
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := storageCtx(r)
	defer cancel()
	user, err := h.svc.Auth.Me(ctx, principal(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, AuthResponse{Success: true, User: user})
}
