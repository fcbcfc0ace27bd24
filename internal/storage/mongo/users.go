package mongo

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/AnshRaj112/researchhive-backend/internal/models"
	"github.com/AnshRaj112/researchhive-backend/internal/storage"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	now := time.Now().UTC()
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	user.CreatedAt, user.UpdatedAt = now, now
	user.Username = strings.ToLower(user.Username)
	user.Email = strings.ToLower(user.Email)

	_, err := s.col(colUsers).InsertOne(ctx, user)
	return mapErr(err)
}

func (s *Store) GetUser(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return findOne[models.User](ctx, s.col(colUsers), bson.M{"_id": id})
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return findOne[models.User](ctx, s.col(colUsers), bson.M{"email": strings.ToLower(email)})
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return findOne[models.User](ctx, s.col(colUsers), bson.M{"username": strings.ToLower(username)})
}

func (s *Store) GetUsers(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}
	return findAll[models.User](ctx, s.col(colUsers), bson.M{"_id": bson.M{"$in": ids}}, options.Find())
}

func (s *Store) SearchUsers(ctx context.Context, username string, limit int64) ([]models.User, error) {
	filter := bson.M{"username": primitive.Regex{Pattern: regexp.QuoteMeta(username), Options: "i"}}
	opts := findOptions(storage.Page{Limit: limit}, bson.D{{Key: "username", Value: 1}})
	return findAll[models.User](ctx, s.col(colUsers), filter, opts)
}

func (s *Store) ListUsers(ctx context.Context, page storage.Page) ([]models.User, error) {
	return findAll[models.User](ctx, s.col(colUsers), bson.M{}, findOptions(page, bson.D{{Key: "username", Value: 1}}))
}

func (s *Store) UpdateProfile(ctx context.Context, id primitive.ObjectID, update models.ProfileUpdate) (*models.User, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	fields := map[string]*string{
		"name":         update.Name,
		"bio":          update.Bio,
		"interests":    update.Interests,
		"publications": update.Publications,
		"projects":     update.Projects,
		"affiliations": update.Affiliations,
		"contact":      update.Contact,
	}
	for key, v := range fields {
		if v != nil {
			set[key] = *v
		}
	}
	return findOneAndUpdate[models.User](ctx, s.col(colUsers), bson.M{"_id": id}, bson.M{"$set": set})
}

func (s *Store) UpdatePasswordHash(ctx context.Context, id primitive.ObjectID, hash string) error {
	res, err := s.col(colUsers).UpdateByID(ctx, id, bson.M{"$set": bson.M{"password_hash": hash}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteUser(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, s.col(colUsers), id)
}
