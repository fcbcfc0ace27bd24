package services

import (
	"context"
	"testing"

	"github.com/AnshRaj112/researchhive-backend/internal/storage"
	"github.com/AnshRaj112/researchhive-backend/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestBookmarks(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	me, other := env.user(t, "me"), env.user(t, "other")
	post, item := primitive.NewObjectID(), primitive.NewObjectID()

	b, err := env.Bookmarks.Create(ctx, me, "forum", post.Hex())
	require.NoError(t, err)
	_, err = env.Bookmarks.Create(ctx, me, "forum", post.Hex())
	assert.ErrorIs(t, err, storage.ErrDuplicate)
	_, err = env.Bookmarks.Create(ctx, me, "Repository", item.Hex())
	require.NoError(t, err)

	var ve *utils.ValidationError
	_, err = env.Bookmarks.Create(ctx, me, "event", item.Hex())
	assert.ErrorAs(t, err, &ve)
	_, err = env.Bookmarks.Create(ctx, me, "forum", "")
	assert.ErrorAs(t, err, &ve)

	all, err := env.Bookmarks.List(ctx, me, me.Hex(), "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
	forum, err := env.Bookmarks.List(ctx, me, me.Hex(), "forum")
	require.NoError(t, err)
	assert.Len(t, forum, 1)

	_, err = env.Bookmarks.List(ctx, other, me.Hex(), "")
	assert.ErrorIs(t, err, ErrForbidden)

	assert.ErrorIs(t, env.Bookmarks.Delete(ctx, other, b.ID.Hex()), ErrForbidden)
	require.NoError(t, env.Bookmarks.Delete(ctx, me, b.ID.Hex()))
	assert.ErrorIs(t, env.Bookmarks.Delete(ctx, me, b.ID.Hex()), storage.ErrNotFound)
}
