package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/AnshRaj112/researchhive-backend/internal/models"
	"github.com/AnshRaj112/researchhive-backend/internal/storage"
	"github.com/AnshRaj112/researchhive-backend/pkg/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ProjectInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type ProjectService struct {
	store    storage.Projects
	users    *UserService
	notifier *NotificationService
}

func NewProjectService(store storage.Projects, users *UserService, notifier *NotificationService) *ProjectService {
	return &ProjectService{store: store, users: users, notifier: notifier}
}

// Create makes the caller owner and first collaborator.
func (s *ProjectService) Create(ctx context.Context, actor primitive.ObjectID, in ProjectInput) (*models.Project, error) {
	if err := utils.Required("title", in.Title); err != nil {
		return nil, err
	}
	p := &models.Project{
		Title:         strings.TrimSpace(in.Title),
		Description:   in.Description,
		Owner:         actor,
		Collaborators: []primitive.ObjectID{actor},
		Invited:       []primitive.ObjectID{},
	}
	if err := s.store.CreateProject(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *ProjectService) Get(ctx context.Context, id string) (*models.ProjectView, error) {
	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	views, err := s.views(ctx, []models.Project{*p})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// ForUser lists projects the user owns, collaborates on or was invited to.
func (s *ProjectService) ForUser(ctx context.Context, userID string) ([]models.ProjectView, error) {
	id, err := parseID("userId", userID)
	if err != nil {
		return nil, err
	}
	projects, err := s.store.ListProjectsForUser(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, projects)
}

func (s *ProjectService) Update(ctx context.Context, actor primitive.ObjectID, id string, in ProjectInput) (*models.Project, error) {
	p, err := s.owned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := utils.Required("title", in.Title); err != nil {
		return nil, err
	}
	return s.store.UpdateProject(ctx, p.ID, strings.TrimSpace(in.Title), in.Description)
}

// Invite adds userID to the invited list and notifies them. Owner only.
// Re-inviting an invited user or a collaborator changes nothing and sends nothing.
func (s *ProjectService) Invite(ctx context.Context, actor primitive.ObjectID, id, userID string) (*models.Project, bool, error) {
	p, err := s.owned(ctx, actor, id)
	if err != nil {
		return nil, false, err
	}
	invitee, err := parseID("userId", userID)
	if err != nil {
		return nil, false, err
	}
	if models.ContainsID(p.Invited, invitee) || models.ContainsID(p.Collaborators, invitee) {
		return p, false, nil
	}
	if _, err := s.users.Summary(ctx, invitee); err != nil {
		return nil, false, err
	}

	p, err = s.store.UpdateProjectMembership(ctx, p.ID, models.MembershipChange{UserID: invitee, AddTo: []string{models.FieldInvited}})
	if err != nil {
		return nil, false, err
	}
	s.notifier.Send(ctx, invitee, models.NotificationProject,
		fmt.Sprintf("%s invited you to collaborate on %q", s.users.displayName(ctx, actor), p.Title),
		"/projects/"+p.ID.Hex())
	return p, true, nil
}

// Accept moves the caller from invited to collaborators.
func (s *ProjectService) Accept(ctx context.Context, actor primitive.ObjectID, id string) (*models.Project, error) {
	p, err := s.invitedTo(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return s.store.UpdateProjectMembership(ctx, p.ID, models.MembershipChange{
		UserID:     actor,
		AddTo:      []string{models.FieldCollaborators},
		RemoveFrom: []string{models.FieldInvited},
	})
}

func (s *ProjectService) Decline(ctx context.Context, actor primitive.ObjectID, id string) (*models.Project, error) {
	p, err := s.invitedTo(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return s.store.UpdateProjectMembership(ctx, p.ID, models.MembershipChange{UserID: actor, RemoveFrom: []string{models.FieldInvited}})
}

func (s *ProjectService) Delete(ctx context.Context, actor primitive.ObjectID, id string) error {
	p, err := s.owned(ctx, actor, id)
	if err != nil {
		return err
	}
	return s.store.DeleteProject(ctx, p.ID)
}

func (s *ProjectService) owned(ctx context.Context, actor primitive.ObjectID, id string) (*models.Project, error) {
	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Owner != actor {
		return nil, ErrForbidden
	}
	return p, nil
}

func (s *ProjectService) invitedTo(ctx context.Context, actor primitive.ObjectID, id string) (*models.Project, error) {
	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !models.ContainsID(p.Invited, actor) {
		return nil, utils.Invalid("id", "No pending invitation for this project")
	}
	return p, nil
}

func (s *ProjectService) load(ctx context.Context, id string) (*models.Project, error) {
	oid, err := parseID("id", id)
	if err != nil {
		return nil, err
	}
	return s.store.GetProject(ctx, oid)
}

func (s *ProjectService) views(ctx context.Context, projects []models.Project) ([]models.ProjectView, error) {
	var ids []primitive.ObjectID
	for _, p := range projects {
		ids = append(ids, p.Owner)
		ids = append(ids, p.Collaborators...)
		ids = append(ids, p.Invited...)
	}
	summaries, err := s.users.Summaries(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]models.ProjectView, 0, len(projects))
	for _, p := range projects {
		out = append(out, models.ProjectView{
			Project:           p,
			OwnerUser:         summaries[p.Owner],
			CollaboratorUsers: pick(summaries, p.Collaborators),
			InvitedUsers:      pick(summaries, p.Invited),
		})
	}
	return out, nil
}
