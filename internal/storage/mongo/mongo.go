// Package mongo implements storage.Store on MongoDB, one collection per resource.
package mongo

import (
	"context"
	"errors"

	"github.com/AnshRaj112/researchhive-backend/internal/storage"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	colUsers         = "users"
	colForumPosts    = "forumposts"
	colConnections   = "connections"
	colNotifications = "notifications"
	colBookmarks     = "bookmarks"
	colRepository    = "repositoryitems"
	colEvents        = "events"
	colProjects      = "projects"
)

var _ storage.Store = (*Store)(nil)

type Store struct {
	db *mongo.Database
}

func New(db *mongo.Database) *Store {
	return &Store{db: db}
}

func (s *Store) col(name string) *mongo.Collection {
	return s.db.Collection(name)
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.Client().Ping(ctx, readpref.Primary())
}

func (s *Store) Close(ctx context.Context) error {
	return s.db.Client().Disconnect(ctx)
}

// EnsureIndexes creates the unique constraints and list indexes.
// Called on startup from main after Mongo has connected.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		colUsers: {
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetName("uniq_username").SetUnique(true)},
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetName("uniq_email").SetUnique(true)},
		},
		colForumPosts: {
			{Keys: bson.D{{Key: "type", Value: 1}, {Key: "created_at", Value: -1}}, Options: options.Index().SetName("idx_type_created")},
		},
		colConnections: {
			{Keys: bson.D{{Key: "requester", Value: 1}, {Key: "recipient", Value: 1}}, Options: options.Index().SetName("idx_pair")},
			{Keys: bson.D{{Key: "recipient", Value: 1}}, Options: options.Index().SetName("idx_recipient")},
		},
		colNotifications: {
			{Keys: bson.D{{Key: "user", Value: 1}, {Key: "created_at", Value: -1}}, Options: options.Index().SetName("idx_user_created")},
		},
		colBookmarks: {
			{
				Keys:    bson.D{{Key: "user", Value: 1}, {Key: "type", Value: 1}, {Key: "item", Value: 1}},
				Options: options.Index().SetName("uniq_user_type_item").SetUnique(true),
			},
		},
		colRepository: {
			{Keys: bson.D{{Key: "created_at", Value: -1}}, Options: options.Index().SetName("idx_created")},
		},
		colEvents: {
			{Keys: bson.D{{Key: "start", Value: 1}}, Options: options.Index().SetName("idx_start")},
			{Keys: bson.D{{Key: "invited", Value: 1}}, Options: options.Index().SetName("idx_invited")},
		},
		colProjects: {
			{Keys: bson.D{{Key: "collaborators", Value: 1}}, Options: options.Index().SetName("idx_collaborators")},
		},
	}

	for name, models := range indexes {
		if _, err := s.col(name).Indexes().CreateMany(ctx, models); err != nil {
			return err
		}
	}
	return nil
}

func findOptions(page storage.Page, sort bson.D) *options.FindOptions {
	opts := options.Find().SetSort(sort)
	if page.Limit > 0 {
		opts.SetLimit(page.Limit)
	}
	if page.Skip > 0 {
		opts.SetSkip(page.Skip)
	}
	return opts
}

var newestFirst = bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}

// findAll decodes every match into a non-nil slice.
func findAll[T any](ctx context.Context, col *mongo.Collection, filter any, opts *options.FindOptions) ([]T, error) {
	cur, err := col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	out := []T{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func findOne[T any](ctx context.Context, col *mongo.Collection, filter any) (*T, error) {
	var out T
	if err := col.FindOne(ctx, filter).Decode(&out); err != nil {
		return nil, mapErr(err)
	}
	return &out, nil
}

func findOneAndUpdate[T any](ctx context.Context, col *mongo.Collection, filter, update any) (*T, error) {
	var out T
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if err := col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&out); err != nil {
		return nil, mapErr(err)
	}
	return &out, nil
}

func deleteByID(ctx context.Context, col *mongo.Collection, id any) error {
	res, err := col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return storage.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return storage.ErrDuplicate
	}
	return err
}
