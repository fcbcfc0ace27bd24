package services

import (
	"context"
	"log/slog"

	"github.com/AnshRaj112/researchhive-backend/internal/metrics"
	"github.com/AnshRaj112/researchhive-backend/internal/models"
	"github.com/AnshRaj112/researchhive-backend/internal/storage"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Publisher pushes a stored notification to connected clients.
type Publisher interface {
	Publish(ctx context.Context, n *models.Notification) error
}

type NotificationService struct {
	store storage.Notifications
	pub   Publisher
}

// NewNotificationService wires persistence and realtime delivery. pub may be nil.
func NewNotificationService(store storage.Notifications, pub Publisher) *NotificationService {
	return &NotificationService{store: store, pub: pub}
}

// Create persists a notification and publishes it; a publish failure is logged, not returned.
func (s *NotificationService) Create(ctx context.Context, n *models.Notification) error {
	if n.Type == "" {
		n.Type = models.NotificationSystem
	}
	if err := s.store.CreateNotification(ctx, n); err != nil {
		return err
	}
	metrics.NotificationsCreated.WithLabelValues(string(n.Type)).Inc()

	if s.pub != nil {
		if err := s.pub.Publish(ctx, n); err != nil {
			metrics.NotificationFailures.WithLabelValues("publish").Inc()
			slog.Warn("notification publish failed", "notification_id", n.ID.Hex(), "error", err)
		}
	}
	return nil
}

// Send is the side effect of a workflow: it never fails the caller.
func (s *NotificationService) Send(ctx context.Context, userID primitive.ObjectID, typ models.NotificationType, message, link string) {
	n := &models.Notification{User: userID, Type: typ, Message: message, Link: link}
	if err := s.Create(ctx, n); err != nil {
		metrics.NotificationFailures.WithLabelValues("store").Inc()
		slog.Warn("notification dropped", "user_id", userID.Hex(), "type", typ, "error", err)
	}
}

// List returns the caller's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, actor primitive.ObjectID, userID string, unreadOnly bool, page storage.Page) ([]models.Notification, error) {
	id, err := requireSelf(actor, userID)
	if err != nil {
		return nil, err
	}
	return s.store.ListNotifications(ctx, id, unreadOnly, page)
}

func (s *NotificationService) MarkRead(ctx context.Context, actor primitive.ObjectID, notificationID string) error {
	id, err := parseID("id", notificationID)
	if err != nil {
		return err
	}
	n, err := s.store.GetNotification(ctx, id)
	if err != nil {
		return err
	}
	if n.User != actor {
		return ErrForbidden
	}
	return s.store.MarkNotificationRead(ctx, id)
}

func (s *NotificationService) MarkAllRead(ctx context.Context, actor primitive.ObjectID) (int64, error) {
	return s.store.MarkAllNotificationsRead(ctx, actor)
}
