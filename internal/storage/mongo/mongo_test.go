package mongo

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/AnshRaj112/researchhive-backend/internal/database"
	"github.com/AnshRaj112/researchhive-backend/internal/models"
	"github.com/AnshRaj112/researchhive-backend/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// newTestStore connects to MONGO_TEST_URI and uses a throwaway database.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.ConnectMongo(ctx, uri, fmt.Sprintf("researchhive_test_%d", time.Now().UnixNano()))
	require.NoError(t, err)
	s := New(db)
	require.NoError(t, s.EnsureIndexes(ctx))

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = db.Drop(ctx)
		_ = s.Close(ctx)
	})
	return s
}

func TestMongoUniqueUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateUser(ctx, &models.User{Username: "Ada", Email: "ada@example.org"}))
	err := s.CreateUser(ctx, &models.User{Username: "ada", Email: "other@example.org"})
	assert.ErrorIs(t, err, storage.ErrDuplicate)

	u, err := s.GetUserByUsername(ctx, "ADA")
	require.NoError(t, err)
	assert.Equal(t, "ada", u.Username)

	_, err = s.GetUser(ctx, primitive.NewObjectID())
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestMongoToggleLike(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	post := &models.ForumPost{Type: models.PostTypeIdea, Title: "t"}
	require.NoError(t, s.CreatePost(ctx, post))
	user := primitive.NewObjectID()

	p, err := s.ToggleLike(ctx, post.ID, user)
	require.NoError(t, err)
	assert.True(t, p.LikedBy(user))

	p, err = s.ToggleLike(ctx, post.ID, user)
	require.NoError(t, err)
	assert.False(t, p.LikedBy(user))
}

func TestMongoMembership(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	owner, peer := primitive.NewObjectID(), primitive.NewObjectID()
	p := &models.Project{Title: "p", Owner: owner, Collaborators: []primitive.ObjectID{owner}}
	require.NoError(t, s.CreateProject(ctx, p))

	_, err := s.UpdateProjectMembership(ctx, p.ID, models.MembershipChange{UserID: peer, AddTo: []string{models.FieldInvited}})
	require.NoError(t, err)
	got, err := s.UpdateProjectMembership(ctx, p.ID, models.MembershipChange{
		UserID:     peer,
		AddTo:      []string{models.FieldCollaborators},
		RemoveFrom: []string{models.FieldInvited},
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []primitive.ObjectID{owner, peer}, got.Collaborators)
	assert.Empty(t, got.Invited)
}

func TestMongoBookmarkDuplicate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	b := models.Bookmark{User: primitive.NewObjectID(), Type: models.BookmarkRepository, Item: primitive.NewObjectID()}
	first := b
	require.NoError(t, s.CreateBookmark(ctx, &first))
	second := b
	assert.ErrorIs(t, s.CreateBookmark(ctx, &second), storage.ErrDuplicate)
}
