package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/AnshRaj112/researchhive-backend/internal/models"
	"github.com/AnshRaj112/researchhive-backend/internal/storage"
	"github.com/AnshRaj112/researchhive-backend/pkg/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CreateEventInput struct {
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Location    string           `json:"location"`
	Start       time.Time        `json:"start"`
	End         time.Time        `json:"end"`
	Type        models.EventType `json:"type"`
	Invited     []string         `json:"invited"`
}

type EventService struct {
	store    storage.Events
	users    *UserService
	notifier *NotificationService
}

func NewEventService(store storage.Events, users *UserService, notifier *NotificationService) *EventService {
	return &EventService{store: store, users: users, notifier: notifier}
}

// Create stores the event with the caller as creator and notifies each initially invited user.
func (s *EventService) Create(ctx context.Context, actor primitive.ObjectID, in CreateEventInput) (*models.Event, error) {
	if err := utils.Required("title", in.Title); err != nil {
		return nil, err
	}
	if in.Start.IsZero() {
		return nil, utils.Invalid("start", "start is required")
	}
	if in.End.IsZero() {
		return nil, utils.Invalid("end", "end is required")
	}
	if in.End.Before(in.Start) {
		return nil, utils.Invalid("end", "end must not be before start")
	}
	in.Type = models.EventType(strings.ToLower(string(in.Type)))
	if in.Type == "" {
		in.Type = models.EventOther
	}
	if !in.Type.Valid() {
		return nil, utils.Invalid("type", "type must be conference, seminar, workshop, deadline or other")
	}

	invited := []primitive.ObjectID{}
	for _, raw := range in.Invited {
		id, err := parseID("invited", raw)
		if err != nil {
			return nil, err
		}
		if id != actor {
			invited = models.AddID(invited, id)
		}
	}

	e := &models.Event{
		Title:        strings.TrimSpace(in.Title),
		Description:  in.Description,
		Location:     in.Location,
		Start:        in.Start.UTC(),
		End:          in.End.UTC(),
		Type:         in.Type,
		CreatedBy:    actor,
		Participants: []primitive.ObjectID{},
		Invited:      invited,
	}
	if err := s.store.CreateEvent(ctx, e); err != nil {
		return nil, err
	}

	if len(invited) > 0 {
		inviter := s.users.displayName(ctx, actor)
		for _, id := range invited {
			s.notifyInvite(ctx, id, inviter, e)
		}
	}
	return e, nil
}

func (s *EventService) notifyInvite(ctx context.Context, userID primitive.ObjectID, inviter string, e *models.Event) {
	s.notifier.Send(ctx, userID, models.NotificationEvent,
		fmt.Sprintf("%s invited you to %q", inviter, e.Title),
		"/events/"+e.ID.Hex())
}

func (s *EventService) List(ctx context.Context, page storage.Page) ([]models.EventView, error) {
	events, err := s.store.ListEvents(ctx, page)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, events)
}

func (s *EventService) Get(ctx context.Context, id string) (*models.EventView, error) {
	e, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	views, err := s.views(ctx, []models.Event{*e})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// ForUser lists events the user created, joined or was invited to.
func (s *EventService) ForUser(ctx context.Context, userID string) ([]models.EventView, error) {
	id, err := parseID("userId", userID)
	if err != nil {
		return nil, err
	}
	events, err := s.store.ListEventsForUser(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, events)
}

// Requests lists the caller's pending invitations.
func (s *EventService) Requests(ctx context.Context, actor primitive.ObjectID, userID string) ([]models.EventView, error) {
	id, err := requireSelf(actor, userID)
	if err != nil {
		return nil, err
	}
	events, err := s.store.ListEventInvites(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, events)
}

func (s *EventService) Join(ctx context.Context, actor primitive.ObjectID, id string) (*models.Event, error) {
	return s.move(ctx, id, models.MembershipChange{
		UserID:     actor,
		AddTo:      []string{models.FieldParticipants},
		RemoveFrom: []string{models.FieldInvited},
	})
}

func (s *EventService) Leave(ctx context.Context, actor primitive.ObjectID, id string) (*models.Event, error) {
	return s.move(ctx, id, models.MembershipChange{UserID: actor, RemoveFrom: []string{models.FieldParticipants}})
}

// Invite adds userID to the invited list and notifies them. Inviting someone already
// invited or participating changes nothing and sends nothing.
func (s *EventService) Invite(ctx context.Context, actor primitive.ObjectID, id, userID string) (*models.Event, bool, error) {
	oid, err := parseID("id", id)
	if err != nil {
		return nil, false, err
	}
	invitee, err := parseID("userId", userID)
	if err != nil {
		return nil, false, err
	}
	e, err := s.store.GetEvent(ctx, oid)
	if err != nil {
		return nil, false, err
	}
	if invitee == e.CreatedBy {
		return nil, false, utils.Invalid("userId", "The event creator cannot be invited")
	}
	if models.ContainsID(e.Invited, invitee) || models.ContainsID(e.Participants, invitee) {
		return e, false, nil
	}
	if _, err := s.users.Summary(ctx, invitee); err != nil {
		return nil, false, err
	}

	e, err = s.store.UpdateEventMembership(ctx, oid, models.MembershipChange{UserID: invitee, AddTo: []string{models.FieldInvited}})
	if err != nil {
		return nil, false, err
	}
	s.notifyInvite(ctx, invitee, s.users.displayName(ctx, actor), e)
	return e, true, nil
}

// Accept moves the caller from invited to participants.
func (s *EventService) Accept(ctx context.Context, actor primitive.ObjectID, id string) (*models.Event, error) {
	if err := s.requireInvite(ctx, actor, id); err != nil {
		return nil, err
	}
	return s.Join(ctx, actor, id)
}

// Decline drops the caller's invitation.
func (s *EventService) Decline(ctx context.Context, actor primitive.ObjectID, id string) (*models.Event, error) {
	if err := s.requireInvite(ctx, actor, id); err != nil {
		return nil, err
	}
	return s.move(ctx, id, models.MembershipChange{UserID: actor, RemoveFrom: []string{models.FieldInvited}})
}

// Delete removes the event; only its creator may.
func (s *EventService) Delete(ctx context.Context, actor primitive.ObjectID, id string) error {
	oid, err := parseID("id", id)
	if err != nil {
		return err
	}
	e, err := s.store.GetEvent(ctx, oid)
	if err != nil {
		return err
	}
	if e.CreatedBy != actor {
		return ErrForbidden
	}
	return s.store.DeleteEvent(ctx, oid)
}

func (s *EventService) requireInvite(ctx context.Context, actor primitive.ObjectID, id string) error {
	e, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if !models.ContainsID(e.Invited, actor) {
		return utils.Invalid("id", "No pending invitation for this event")
	}
	return nil
}

func (s *EventService) load(ctx context.Context, id string) (*models.Event, error) {
	oid, err := parseID("id", id)
	if err != nil {
		return nil, err
	}
	return s.store.GetEvent(ctx, oid)
}

// views resolves creator, participants and invitees with one summary lookup.
func (s *EventService) views(ctx context.Context, events []models.Event) ([]models.EventView, error) {
	var ids []primitive.ObjectID
	for _, e := range events {
		ids = append(ids, e.CreatedBy)
		ids = append(ids, e.Participants...)
		ids = append(ids, e.Invited...)
	}
	summaries, err := s.users.Summaries(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]models.EventView, 0, len(events))
	for _, e := range events {
		out = append(out, models.EventView{
			Event:            e,
			CreatedByUser:    summaries[e.CreatedBy],
			ParticipantUsers: pick(summaries, e.Participants),
			InvitedUsers:     pick(summaries, e.Invited),
		})
	}
	return out, nil
}

func (s *EventService) move(ctx context.Context, id string, change models.MembershipChange) (*models.Event, error) {
	oid, err := parseID("id", id)
	if err != nil {
		return nil, err
	}
	return s.store.UpdateEventMembership(ctx, oid, change)
}
