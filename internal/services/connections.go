package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/AnshRaj112/researchhive-backend/internal/models"
	"github.com/AnshRaj112/researchhive-backend/internal/storage"
	"github.com/AnshRaj112/researchhive-backend/pkg/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ConnectionService struct {
	store    storage.Connections
	users    *UserService
	notifier *NotificationService
}

func NewConnectionService(store storage.Connections, users *UserService, notifier *NotificationService) *ConnectionService {
	return &ConnectionService{store: store, users: users, notifier: notifier}
}

// Request opens a pending connection from the caller to recipientID and notifies the recipient.
// A rejected connection between the pair is replaced by the new request.
func (s *ConnectionService) Request(ctx context.Context, actor primitive.ObjectID, recipientID string) (*models.Connection, error) {
	recipient, err := parseID("recipientId", recipientID)
	if err != nil {
		return nil, err
	}
	if recipient == actor {
		return nil, utils.Invalid("recipientId", "You cannot connect with yourself")
	}
	if _, err := s.users.Summary(ctx, recipient); err != nil {
		return nil, err
	}

	existing, err := s.store.FindConnectionBetween(ctx, actor, recipient)
	switch {
	case errors.Is(err, storage.ErrNotFound):
	case err != nil:
		return nil, err
	case existing.Status == models.ConnectionRejected:
		if err := s.store.DeleteConnection(ctx, existing.ID); err != nil && !errors.Is(err, storage.ErrNotFound) {
			return nil, err
		}
	default:
		return nil, utils.Invalid("recipientId", "A connection with this user already exists")
	}

	conn := &models.Connection{Requester: actor, Recipient: recipient, Status: models.ConnectionPending}
	if err := s.store.CreateConnection(ctx, conn); err != nil {
		return nil, err
	}

	s.notifier.Send(ctx, recipient, models.NotificationConnection,
		fmt.Sprintf("%s sent you a connection request", s.users.displayName(ctx, actor)),
		"/connections")
	return conn, nil
}

// pendingFor loads a pending connection addressed to the caller.
func (s *ConnectionService) pendingFor(ctx context.Context, actor primitive.ObjectID, connectionID string) (*models.Connection, error) {
	id, err := parseID("connectionId", connectionID)
	if err != nil {
		return nil, err
	}
	conn, err := s.store.GetConnection(ctx, id)
	if err != nil {
		return nil, err
	}
	if conn.Recipient != actor {
		return nil, ErrForbidden
	}
	if conn.Status != models.ConnectionPending {
		return nil, utils.Invalid("connectionId", "Connection request is no longer pending")
	}
	return conn, nil
}

// Accept marks the request accepted, then notifies both sides.
func (s *ConnectionService) Accept(ctx context.Context, actor primitive.ObjectID, connectionID string) (*models.Connection, error) {
	conn, err := s.pendingFor(ctx, actor, connectionID)
	if err != nil {
		return nil, err
	}
	conn, err = s.store.SetConnectionStatus(ctx, conn.ID, models.ConnectionAccepted)
	if err != nil {
		return nil, err
	}

	s.notifier.Send(ctx, conn.Requester, models.NotificationConnection,
		fmt.Sprintf("%s accepted your connection request", s.users.displayName(ctx, conn.Recipient)),
		"/connections")
	s.notifier.Send(ctx, conn.Recipient, models.NotificationConnection,
		fmt.Sprintf("You are now connected with %s", s.users.displayName(ctx, conn.Requester)),
		"/connections")
	return conn, nil
}

// Reject marks the request rejected and notifies the requester.
func (s *ConnectionService) Reject(ctx context.Context, actor primitive.ObjectID, connectionID string) (*models.Connection, error) {
	conn, err := s.pendingFor(ctx, actor, connectionID)
	if err != nil {
		return nil, err
	}
	conn, err = s.store.SetConnectionStatus(ctx, conn.ID, models.ConnectionRejected)
	if err != nil {
		return nil, err
	}

	s.notifier.Send(ctx, conn.Requester, models.NotificationConnection,
		fmt.Sprintf("%s declined your connection request", s.users.displayName(ctx, conn.Recipient)),
		"/connections")
	return conn, nil
}

// List returns every connection of the caller with both sides resolved.
func (s *ConnectionService) List(ctx context.Context, actor primitive.ObjectID, userID string) ([]models.ConnectionView, error) {
	id, err := requireSelf(actor, userID)
	if err != nil {
		return nil, err
	}
	conns, err := s.store.ListConnections(ctx, id)
	if err != nil {
		return nil, err
	}

	ids := make([]primitive.ObjectID, 0, 2*len(conns))
	for _, c := range conns {
		ids = append(ids, c.Requester, c.Recipient)
	}
	summaries, err := s.users.Summaries(ctx, ids)
	if err != nil {
		return nil, err
	}

	views := make([]models.ConnectionView, 0, len(conns))
	for _, c := range conns {
		views = append(views, models.ConnectionView{
			Connection:    c,
			RequesterUser: summaries[c.Requester],
			RecipientUser: summaries[c.Recipient],
		})
	}
	return views, nil
}

// Remove deletes a connection; either side may.
func (s *ConnectionService) Remove(ctx context.Context, actor primitive.ObjectID, connectionID string) error {
	id, err := parseID("id", connectionID)
	if err != nil {
		return err
	}
	conn, err := s.store.GetConnection(ctx, id)
	if err != nil {
		return err
	}
	if !conn.Involves(actor) {
		return ErrForbidden
	}
	return s.store.DeleteConnection(ctx, id)
}
