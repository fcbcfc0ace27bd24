package handlers

import (
	"net/http"

	"github.com/AnshRaj112/researchhive-backend/internal/models"
)

type userResponse struct {
	Success bool         `json:"success"`
	User    *models.User `json:"user"`
}

type usersResponse struct {
	Success bool          `json:"success"`
	Users   []models.User `json:"users"`
}

// SearchUsers matches ?username= (or ?q=) against usernames.
func (h *Handler) SearchUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("username")
	if q == "" {
		q = r.URL.Query().Get("q")
	}
	ctx, cancel := storageCtx(r)
	defer cancel()
	users, err := h.svc.Users.Search(ctx, q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, usersResponse{Success: true, Users: users})
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := storageCtx(r)
	defer cancel()
	users, err := h.svc.Users.List(ctx, pageFrom(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, usersResponse{Success: true, Users: users})
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := storageCtx(r)
	defer cancel()
	user, err := h.svc.Users.Get(ctx, param(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, userResponse{Success: true, User: user})
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req models.ProfileUpdate
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	ctx, cancel := storageCtx(r)
	defer cancel()
	user, err := h.svc.Users.UpdateProfile(ctx, principal(r).UserID, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, userResponse{Success: true, User: user})
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := storageCtx(r)
	defer cancel()
	if err := h.svc.Users.Delete(ctx, principal(r).UserID, param(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Account deleted")
}
