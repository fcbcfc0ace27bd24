package handlers

import (
	"net/http"

	"github.com/AnshRaj112/researchhive-backend/internal/models"
	"github.com/AnshRaj112/researchhive-backend/internal/services"
)

type inviteRequest struct {
	UserID string `json:"userId"`
}

type eventResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message,omitempty"`
	Event   *models.Event `json:"event"`
}

type eventViewResponse struct {
	Success bool              `json:"success"`
	Event   *models.EventView `json:"event"`
}

type eventsResponse struct {
	Success bool               `json:"success"`
	Events  []models.EventView `json:"events"`
}

func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req services.CreateEventInput
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	ctx, cancel := storageCtx(r)
	defer cancel()
	e, err := h.svc.Events.Create(ctx, principal(r).UserID, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, eventResponse{Success: true, Message: "Event created", Event: e})
}

func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := storageCtx(r)
	defer cancel()
	list, err := h.svc.Events.List(ctx, pageFrom(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, eventsResponse{Success: true, Events: list})
}

func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := storageCtx(r)
	defer cancel()
	e, err := h.svc.Events.Get(ctx, param(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, eventViewResponse{Success: true, Event: e})
}

func (h *Handler) UserEvents(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := storageCtx(r)
	defer cancel()
	list, err := h.svc.Events.ForUser(ctx, param(r, "userId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, eventsResponse{Success: true, Events: list})
}

func (h *Handler) EventRequests(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := storageCtx(r)
	defer cancel()
	list, err := h.svc.Events.Requests(ctx, principal(r).UserID, param(r, "userId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, eventsResponse{Success: true, Events: list})
}

func (h *Handler) JoinEvent(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := storageCtx(r)
	defer cancel()
	e, err := h.svc.Events.Join(ctx, principal(r).UserID, param(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, eventResponse{Success: true, Message: "Joined event", Event: e})
}

func (h *Handler) LeaveEvent(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := storageCtx(r)
	defer cancel()
	e, err := h.svc.Events.Leave(ctx, principal(r).UserID, param(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, eventResponse{Success: true, Message: "Left event", Event: e})
}

func (h *Handler) AcceptEvent(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := storageCtx(r)
	defer cancel()
	e, err := h.svc.Events.Accept(ctx, principal(r).UserID, param(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, eventResponse{Success: true, Message: "Invitation accepted", Event: e})
}

func (h *Handler) DeclineEvent(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := storageCtx(r)
	defer cancel()
	e, err := h.svc.Events.Decline(ctx, principal(r).UserID, param(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, eventResponse{Success: true, Message: "Invitation declined", Event: e})
}

func (h *Handler) InviteToEvent(w http.ResponseWriter, r *http.Request) {
	var req inviteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	ctx, cancel := storageCtx(r)
	defer cancel()
	e, invited, err := h.svc.Events.Invite(ctx, principal(r).UserID, param(r, "id"), req.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	msg := "User invited"
	if !invited {
		msg = "User already invited or participating"
	}
	writeJSON(w, http.StatusOK, eventResponse{Success: true, Message: msg, Event: e})
}

func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := storageCtx(r)
	defer cancel()
	if err := h.svc.Events.Delete(ctx, principal(r).UserID, param(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Event deleted")
}
