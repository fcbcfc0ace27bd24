package handlers

import (
	"net/http"
	"strconv"

	"github.com/AnshRaj112/researchhive-backend/internal/models"
)

type notificationsResponse struct {
	Success       bool                  `json:"success"`
	Notifications []models.Notification `json:"notifications"`
}

type markAllResponse struct {
	Success bool  `json:"success"`
	Updated int64 `json:"updated"`
}

func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	unread, _ := strconv.ParseBool(r.URL.Query().Get("unread"))
	ctx, cancel := storageCtx(r)
	defer cancel()
	list, err := h.svc.Notifications.List(ctx, principal(r).UserID, param(r, "id"), unread, pageFrom(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, notificationsResponse{Success: true, Notifications: list})
}

func (h *Handler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := storageCtx(r)
	defer cancel()
	if err := h.svc.Notifications.MarkRead(ctx, principal(r).UserID, param(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Notification marked as read")
}

func (h *Handler) MarkAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := storageCtx(r)
	defer cancel()
	n, err := h.svc.Notifications.MarkAllRead(ctx, principal(r).UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, markAllResponse{Success: true, Updated: n})
}
