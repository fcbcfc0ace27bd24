package services

import (
	"context"
	"log/slog"
	"strings"

	"github.com/AnshRaj112/researchhive-backend/internal/models"
	"github.com/AnshRaj112/researchhive-backend/internal/storage"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const maxSearchResults = 20

type UserService struct {
	store    storage.Users
	cache    *CacheService
	sessions *SessionStore
}

func NewUserService(store storage.Users, cache *CacheService, sessions *SessionStore) *UserService {
	return &UserService{store: store, cache: cache, sessions: sessions}
}

func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	oid, err := parseID("id", id)
	if err != nil {
		return nil, err
	}
	return s.store.GetUser(ctx, oid)
}

// Search matches username substrings case-insensitively. A blank query returns no users.
func (s *UserService) Search(ctx context.Context, query string) ([]models.User, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.User{}, nil
	}
	return s.store.SearchUsers(ctx, query, maxSearchResults)
}

func (s *UserService) List(ctx context.Context, page storage.Page) ([]models.User, error) {
	return s.store.ListUsers(ctx, page)
}

func (s *UserService) UpdateProfile(ctx context.Context, actor primitive.ObjectID, update models.ProfileUpdate) (*models.User, error) {
	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		update.Name = &name
	}
	user, err := s.store.UpdateProfile(ctx, actor, update)
	if err != nil {
		return nil, err
	}
	s.forget(ctx, actor)
	return user, nil
}

// Delete removes the caller's own account and revokes its sessions.
// Posts, connections and other records referencing the user are left in place.
func (s *UserService) Delete(ctx context.Context, actor primitive.ObjectID, id string) error {
	oid, err := parseID("id", id)
	if err != nil {
		return err
	}
	if oid != actor {
		return ErrForbidden
	}
	if err := s.store.DeleteUser(ctx, oid); err != nil {
		return err
	}
	s.forget(ctx, oid)
	if s.sessions != nil {
		if err := s.sessions.InvalidateUser(ctx, oid.Hex()); err != nil {
			slog.Warn("failed to revoke sessions of deleted user", "user_id", oid.Hex(), "error", err)
		}
	}
	return nil
}

// Summary returns the public identity of a user through the cache.
func (s *UserService) Summary(ctx context.Context, id primitive.ObjectID) (models.UserSummary, error) {
	var summary models.UserSummary
	key := CacheKey("user_summary", id.Hex())
	if ok, _ := s.cache.Get(ctx, key, &summary); ok {
		return summary, nil
	}

	user, err := s.store.GetUser(ctx, id)
	if err != nil {
		return models.UserSummary{}, err
	}
	summary = user.Summary()
	if err := s.cache.Set(ctx, key, summary); err != nil {
		slog.Debug("user summary cache write failed", "user_id", id.Hex(), "error", err)
	}
	return summary, nil
}

// Summaries resolves many users at once; missing users map to a summary carrying only the id.
func (s *UserService) Summaries(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.UserSummary, error) {
	out := make(map[primitive.ObjectID]models.UserSummary, len(ids))
	var missing []primitive.ObjectID
	for _, id := range ids {
		if _, done := out[id]; done {
			continue
		}
		var summary models.UserSummary
		if ok, _ := s.cache.Get(ctx, CacheKey("user_summary", id.Hex()), &summary); ok {
			out[id] = summary
			continue
		}
		out[id] = models.UserSummary{ID: id.Hex()}
		missing = append(missing, id)
	}
	if len(missing) == 0 {
		return out, nil
	}

	users, err := s.store.GetUsers(ctx, missing)
	if err != nil {
		return nil, err
	}
	for i := range users {
		summary := users[i].Summary()
		out[users[i].ID] = summary
		_ = s.cache.Set(ctx, CacheKey("user_summary", summary.ID), summary)
	}
	return out, nil
}

// displayName is used in notification text; it falls back to "Someone" when the lookup fails.
func (s *UserService) displayName(ctx context.Context, id primitive.ObjectID) string {
	summary, err := s.Summary(ctx, id)
	if err != nil {
		return "Someone"
	}
	return summary.DisplayName()
}

// pick returns the summaries of ids in order.
func pick(all map[primitive.ObjectID]models.UserSummary, ids []primitive.ObjectID) []models.UserSummary {
	out := make([]models.UserSummary, 0, len(ids))
	for _, id := range ids {
		out = append(out, all[id])
	}
	return out
}

func (s *UserService) forget(ctx context.Context, id primitive.ObjectID) {
	if err := s.cache.Delete(ctx, CacheKey("user_summary", id.Hex())); err != nil {
		slog.Debug("user summary cache delete failed", "user_id", id.Hex(), "error", err)
	}
}
