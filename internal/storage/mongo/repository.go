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
)

func (s *Store) CreateItem(ctx context.Context, item *models.RepositoryItem) error {
	if item.ID.IsZero() {
		item.ID = primitive.NewObjectID()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}
	if item.Tags == nil {
		item.Tags = []string{}
	}
	_, err := s.col(colRepository).InsertOne(ctx, item)
	return mapErr(err)
}

func (s *Store) GetItem(ctx context.Context, id primitive.ObjectID) (*models.RepositoryItem, error) {
	return findOne[models.RepositoryItem](ctx, s.col(colRepository), bson.M{"_id": id})
}

func (s *Store) ListItems(ctx context.Context, query string, page storage.Page) ([]models.RepositoryItem, error) {
	filter := bson.M{}
	if q := strings.TrimSpace(query); q != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(q), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"title": re},
			bson.M{"description": re},
			bson.M{"tags": re},
		}
	}
	return findAll[models.RepositoryItem](ctx, s.col(colRepository), filter, findOptions(page, newestFirst))
}

func (s *Store) DeleteItem(ctx context.Context, id primitive.ObjectID) (*models.RepositoryItem, error) {
	var item models.RepositoryItem
	if err := s.col(colRepository).FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&item); err != nil {
		return nil, mapErr(err)
	}
	return &item, nil
}
