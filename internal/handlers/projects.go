package handlers

import (
	"net/http"

	"github.com/AnshRaj112/researchhive-backend/internal/models"
	"github.com/AnshRaj112/researchhive-backend/internal/services"
)

type projectResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Project *models.Project `json:"project"`
}

type projectViewResponse struct {
	Success bool                `json:"success"`
	Project *models.ProjectView `json:"project"`
}

type projectsResponse struct {
	Success  bool                 `json:"success"`
	Projects []models.ProjectView `json:"projects"`
}

func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req services.ProjectInput
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	ctx, cancel := storageCtx(r)
	defer cancel()
	p, err := h.svc.Projects.Create(ctx, principal(r).UserID, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, projectResponse{Success: true, Message: "Project created", Project: p})
}

func (h *Handler) GetProject(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := storageCtx(r)
	defer cancel()
	p, err := h.svc.Projects.Get(ctx, param(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, projectViewResponse{Success: true, Project: p})
}

func (h *Handler) UserProjects(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := storageCtx(r)
	defer cancel()
	list, err := h.svc.Projects.ForUser(ctx, param(r, "userId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, projectsResponse{Success: true, Projects: list})
}

func (h *Handler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	var req services.ProjectInput
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	ctx, cancel := storageCtx(r)
	defer cancel()
	p, err := h.svc.Projects.Update(ctx, principal(r).UserID, param(r, "id"), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, projectResponse{Success: true, Message: "Project updated", Project: p})
}

func (h *Handler) InviteToProject(w http.ResponseWriter, r *http.Request) {
	var req inviteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	ctx, cancel := storageCtx(r)
	defer cancel()
	p, invited, err := h.svc.Projects.Invite(ctx, principal(r).UserID, param(r, "id"), req.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	msg := "User invited"
	if !invited {
		msg = "User already invited or collaborating"
	}
	writeJSON(w, http.StatusOK, projectResponse{Success: true, Message: msg, Project: p})
}

func (h *Handler) AcceptProject(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := storageCtx(r)
	defer cancel()
	p, err := h.svc.Projects.Accept(ctx, principal(r).UserID, param(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, projectResponse{Success: true, Message: "Invitation accepted", Project: p})
}

func (h *Handler) DeclineProject(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := storageCtx(r)
	defer cancel()
	p, err := h.svc.Projects.Decline(ctx, principal(r).UserID, param(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, projectResponse{Success: true, Message: "Invitation declined", Project: p})
}

func (h *Handler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := storageCtx(r)
	defer cancel()
	if err := h.svc.Projects.Delete(ctx, principal(r).UserID, param(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Project deleted")
}
