package handlers

import (
	"net/http"

	"github.com/AnshRaj112/researchhive-backend/internal/models"
	"github.com/AnshRaj112/researchhive-backend/internal/services"
)

type postResponse struct {
	Success bool              `json:"success"`
	Message string            `json:"message,omitempty"`
	Post    *models.ForumPost `json:"post"`
}

type postsResponse struct {
	Success bool               `json:"success"`
	Posts   []models.ForumPost `json:"posts"`
}

type commentRequest struct {
	Text string `json:"text"`
}

func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := storageCtx(r)
	defer cancel()
	posts, err := h.svc.Forum.List(ctx, r.URL.Query().Get("type"), pageFrom(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, postsResponse{Success: true, Posts: posts})
}

func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var req services.CreatePostInput
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	ctx, cancel := storageCtx(r)
	defer cancel()
	post, err := h.svc.Forum.Create(ctx, principal(r).UserID, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, postResponse{Success: true, Message: "Post created", Post: post})
}

func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := storageCtx(r)
	defer cancel()
	post, err := h.svc.Forum.Get(ctx, param(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, postResponse{Success: true, Post: post})
}

func (h *Handler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := storageCtx(r)
	defer cancel()
	post, err := h.svc.Forum.ToggleLike(ctx, principal(r).UserID, param(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, postResponse{Success: true, Post: post})
}

func (h *Handler) AddComment(w http.ResponseWriter, r *http.Request) {
	var req commentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	ctx, cancel := storageCtx(r)
	defer cancel()
	post, err := h.svc.Forum.Comment(ctx, principal(r).UserID, param(r, "id"), req.Text)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, postResponse{Success: true, Message: "Comment added", Post: post})
}

func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := storageCtx(r)
	defer cancel()
	if err := h.svc.Forum.Delete(ctx, principal(r).UserID, param(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Post deleted")
}
