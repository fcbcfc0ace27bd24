package mongo

import (
	"context"
	"time"

	"github.com/AnshRaj112/researchhive-backend/internal/models"
	"github.com/AnshRaj112/researchhive-backend/internal/storage"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func (s *Store) CreatePost(ctx context.Context, post *models.ForumPost) error {
	if post.ID.IsZero() {
		post.ID = primitive.NewObjectID()
	}
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now().UTC()
	}
	if post.Likes == nil {
		post.Likes = []primitive.ObjectID{}
	}
	if post.Comments == nil {
		post.Comments = []models.Comment{}
	}
	_, err := s.col(colForumPosts).InsertOne(ctx, post)
	return mapErr(err)
}

func (s *Store) GetPost(ctx context.Context, id primitive.ObjectID) (*models.ForumPost, error) {
	return findOne[models.ForumPost](ctx, s.col(colForumPosts), bson.M{"_id": id})
}

func (s *Store) ListPosts(ctx context.Context, filter storage.ForumFilter, page storage.Page) ([]models.ForumPost, error) {
	q := bson.M{}
	if filter.Type != "" {
		q["type"] = filter.Type
	}
	if !filter.Author.IsZero() {
		q["author"] = filter.Author
	}
	return findAll[models.ForumPost](ctx, s.col(colForumPosts), q, findOptions(page, newestFirst))
}

// ToggleLike flips membership in a single pipeline update so concurrent likes never lose writes.
func (s *Store) ToggleLike(ctx context.Context, postID, userID primitive.ObjectID) (*models.ForumPost, error) {
	likes := bson.M{"$ifNull": bson.A{"$likes", bson.A{}}}
	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"likes": bson.M{"$cond": bson.A{
				bson.M{"$in": bson.A{userID, likes}},
				bson.M{"$filter": bson.M{"input": likes, "cond": bson.M{"$ne": bson.A{"$$this", userID}}}},
				bson.M{"$concatArrays": bson.A{likes, bson.A{userID}}},
			}},
		}}},
	}
	return findOneAndUpdate[models.ForumPost](ctx, s.col(colForumPosts), bson.M{"_id": postID}, update)
}

func (s *Store) AddComment(ctx context.Context, postID primitive.ObjectID, comment models.Comment) (*models.ForumPost, error) {
	if comment.ID.IsZero() {
		comment.ID = primitive.NewObjectID()
	}
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now().UTC()
	}
	update := bson.M{"$push": bson.M{"comments": comment}}
	return findOneAndUpdate[models.ForumPost](ctx, s.col(colForumPosts), bson.M{"_id": postID}, update)
}

func (s *Store) DeletePost(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, s.col(colForumPosts), id)
}
