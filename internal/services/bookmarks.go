package services

import (
	"context"
	"strings"

	"github.com/AnshRaj112/researchhive-backend/internal/models"
	"github.com/AnshRaj112/researchhive-backend/internal/storage"
	"github.com/AnshRaj112/researchhive-backend/pkg/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type BookmarkService struct {
	store storage.Bookmarks
}

func NewBookmarkService(store storage.Bookmarks) *BookmarkService {
	return &BookmarkService{store: store}
}

func parseBookmarkType(raw string) (models.BookmarkType, error) {
	t := models.BookmarkType(strings.ToLower(strings.TrimSpace(raw)))
	if !t.Valid() {
		return "", utils.Invalid("type", "type must be forum or repository")
	}
	return t, nil
}

// Create bookmarks item for the caller. The same (type, item) twice yields storage.ErrDuplicate.
func (s *BookmarkService) Create(ctx context.Context, actor primitive.ObjectID, typ, item string) (*models.Bookmark, error) {
	t, err := parseBookmarkType(typ)
	if err != nil {
		return nil, err
	}
	itemID, err := parseID("item", item)
	if err != nil {
		return nil, err
	}
	b := &models.Bookmark{User: actor, Type: t, Item: itemID}
	if err := s.store.CreateBookmark(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// List returns the caller's bookmarks; typ may be empty for all types.
func (s *BookmarkService) List(ctx context.Context, actor primitive.ObjectID, userID, typ string) ([]models.Bookmark, error) {
	id, err := requireSelf(actor, userID)
	if err != nil {
		return nil, err
	}
	var t models.BookmarkType
	if typ != "" {
		if t, err = parseBookmarkType(typ); err != nil {
			return nil, err
		}
	}
	return s.store.ListBookmarks(ctx, id, t)
}

func (s *BookmarkService) Delete(ctx context.Context, actor primitive.ObjectID, bookmarkID string) error {
	id, err := parseID("id", bookmarkID)
	if err != nil {
		return err
	}
	b, err := s.store.GetBookmark(ctx, id)
	if err != nil {
		return err
	}
	if b.User != actor {
		return ErrForbidden
	}
	return s.store.DeleteBookmark(ctx, id)
}
