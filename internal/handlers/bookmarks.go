package handlers

import (
	"net/http"

	"github.com/AnshRaj112/researchhive-backend/internal/models"
)

type bookmarkRequest struct {
	Type string `json:"type"`
	Item string `json:"item"`
}

type bookmarkResponse struct {
	Success  bool             `json:"success"`
	Message  string           `json:"message,omitempty"`
	Bookmark *models.Bookmark `json:"bookmark"`
}

type bookmarksResponse struct {
	Success   bool              `json:"success"`
	Bookmarks []models.Bookmark `json:"bookmarks"`
}

func (h *Handler) CreateBookmark(w http.ResponseWriter, r *http.Request) {
	var req bookmarkRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	ctx, cancel := storageCtx(r)
	defer cancel()
	b, err := h.svc.Bookmarks.Create(ctx, principal(r).UserID, req.Type, req.Item)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, bookmarkResponse{Success: true, Message: "Bookmarked", Bookmark: b})
}

// ListBookmarks serves both /bookmarks/{id} and /bookmarks/user/{id}/type/{type}, where id is the owner.
func (h *Handler) ListBookmarks(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := storageCtx(r)
	defer cancel()
	list, err := h.svc.Bookmarks.List(ctx, principal(r).UserID, param(r, "id"), param(r, "type"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bookmarksResponse{Success: true, Bookmarks: list})
}

func (h *Handler) DeleteBookmark(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := storageCtx(r)
	defer cancel()
	if err := h.svc.Bookmarks.Delete(ctx, principal(r).UserID, param(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Bookmark removed")
}
