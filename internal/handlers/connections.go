package handlers

import (
	"net/http"

	"github.com/AnshRaj112/researchhive-backend/internal/models"
)

type connectionRequest struct {
	RecipientID  string `json:"recipientId"`
	ConnectionID string `json:"connectionId"`
}

type connectionResponse struct {
	Success    bool               `json:"success"`
	Message    string             `json:"message,omitempty"`
	Connection *models.Connection `json:"connection"`
}

type connectionsResponse struct {
	Success     bool                    `json:"success"`
	Connections []models.ConnectionView `json:"connections"`
}

func (h *Handler) RequestConnection(w http.ResponseWriter, r *http.Request) {
	var req connectionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	ctx, cancel := storageCtx(r)
	defer cancel()
	conn, err := h.svc.Connections.Request(ctx, principal(r).UserID, req.RecipientID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, connectionResponse{Success: true, Message: "Connection request sent", Connection: conn})
}

func (h *Handler) AcceptConnection(w http.ResponseWriter, r *http.Request) {
	var req connectionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	ctx, cancel := storageCtx(r)
	defer cancel()
	conn, err := h.svc.Connections.Accept(ctx, principal(r).UserID, req.ConnectionID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, connectionResponse{Success: true, Message: "Connection accepted", Connection: conn})
}

func (h *Handler) RejectConnection(w http.ResponseWriter, r *http.Request) {
	var req connectionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	ctx, cancel := storageCtx(r)
	defer cancel()
	conn, err := h.svc.Connections.Reject(ctx, principal(r).UserID, req.ConnectionID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, connectionResponse{Success: true, Message: "Connection rejected", Connection: conn})
}

func (h *Handler) ListConnections(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := storageCtx(r)
	defer cancel()
	views, err := h.svc.Connections.List(ctx, principal(r).UserID, param(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, connectionsResponse{Success: true, Connections: views})
}

func (h *Handler) RemoveConnection(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := storageCtx(r)
	defer cancel()
	if err := h.svc.Connections.Remove(ctx, principal(r).UserID, param(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Connection removed")
}
