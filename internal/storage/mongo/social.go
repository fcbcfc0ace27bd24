package mongo

import (
	"context"
	"time"

	"github.com/AnshRaj112/researchhive-backend/internal/models"
	"github.com/AnshRaj112/researchhive-backend/internal/storage"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Connections

func (s *Store) CreateConnection(ctx context.Context, conn *models.Connection) error {
	now := time.Now().UTC()
	if conn.ID.IsZero() {
		conn.ID = primitive.NewObjectID()
	}
	conn.CreatedAt, conn.UpdatedAt = now, now
	if conn.Status == "" {
		conn.Status = models.ConnectionPending
	}
	_, err := s.col(colConnections).InsertOne(ctx, conn)
	return mapErr(err)
}

func (s *Store) GetConnection(ctx context.Context, id primitive.ObjectID) (*models.Connection, error) {
	return findOne[models.Connection](ctx, s.col(colConnections), bson.M{"_id": id})
}

func (s *Store) FindConnectionBetween(ctx context.Context, a, b primitive.ObjectID) (*models.Connection, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"requester": a, "recipient": b},
		bson.M{"requester": b, "recipient": a},
	}}
	return findOne[models.Connection](ctx, s.col(colConnections), filter)
}

func (s *Store) SetConnectionStatus(ctx context.Context, id primitive.ObjectID, status models.ConnectionStatus) (*models.Connection, error) {
	update := bson.M{"$set": bson.M{"status": status, "updated_at": time.Now().UTC()}}
	return findOneAndUpdate[models.Connection](ctx, s.col(colConnections), bson.M{"_id": id}, update)
}

func (s *Store) ListConnections(ctx context.Context, userID primitive.ObjectID) ([]models.Connection, error) {
	filter := bson.M{"$or": bson.A{bson.M{"requester": userID}, bson.M{"recipient": userID}}}
	return findAll[models.Connection](ctx, s.col(colConnections), filter, options.Find().SetSort(newestFirst))
}

func (s *Store) DeleteConnection(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, s.col(colConnections), id)
}

// Notifications

func (s *Store) CreateNotification(ctx context.Context, n *models.Notification) error {
	if n.ID.IsZero() {
		n.ID = primitive.NewObjectID()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	_, err := s.col(colNotifications).InsertOne(ctx, n)
	return mapErr(err)
}

func (s *Store) GetNotification(ctx context.Context, id primitive.ObjectID) (*models.Notification, error) {
	return findOne[models.Notification](ctx, s.col(colNotifications), bson.M{"_id": id})
}

func (s *Store) ListNotifications(ctx context.Context, userID primitive.ObjectID, unreadOnly bool, page storage.Page) ([]models.Notification, error) {
	filter := bson.M{"user": userID}
	if unreadOnly {
		filter["read"] = false
	}
	return findAll[models.Notification](ctx, s.col(colNotifications), filter, findOptions(page, newestFirst))
}

func (s *Store) MarkNotificationRead(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.col(colNotifications).UpdateByID(ctx, id, bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) MarkAllNotificationsRead(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	res, err := s.col(colNotifications).UpdateMany(ctx,
		bson.M{"user": userID, "read": false},
		bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// Bookmarks

func (s *Store) CreateBookmark(ctx context.Context, b *models.Bookmark) error {
	if b.ID.IsZero() {
		b.ID = primitive.NewObjectID()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}
	_, err := s.col(colBookmarks).InsertOne(ctx, b)
	return mapErr(err)
}

func (s *Store) GetBookmark(ctx context.Context, id primitive.ObjectID) (*models.Bookmark, error) {
	return findOne[models.Bookmark](ctx, s.col(colBookmarks), bson.M{"_id": id})
}

func (s *Store) ListBookmarks(ctx context.Context, userID primitive.ObjectID, typ models.BookmarkType) ([]models.Bookmark, error) {
	filter := bson.M{"user": userID}
	if typ != "" {
		filter["type"] = typ
	}
	return findAll[models.Bookmark](ctx, s.col(colBookmarks), filter, options.Find().SetSort(newestFirst))
}

func (s *Store) DeleteBookmark(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, s.col(colBookmarks), id)
}
