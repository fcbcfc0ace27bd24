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

func TestProjectOwnerIsCollaborator(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.user(t, "owner")

	_, err := env.Projects.Create(ctx, owner, ProjectInput{})
	var ve *utils.ValidationError
	assert.ErrorAs(t, err, &ve)

	p, err := env.Projects.Create(ctx, owner, ProjectInput{Title: "Genome atlas"})
	require.NoError(t, err)
	assert.Equal(t, owner, p.Owner)
	assert.Equal(t, []primitive.ObjectID{owner}, p.Collaborators)
}

func TestProjectInviteIdempotentAndNotifiesOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner, peer, outsider := env.user(t, "owner"), env.user(t, "peer"), env.user(t, "outsider")
	p, err := env.Projects.Create(ctx, owner, ProjectInput{Title: "Atlas"})
	require.NoError(t, err)

	_, _, err = env.Projects.Invite(ctx, outsider, p.ID.Hex(), peer.Hex())
	assert.ErrorIs(t, err, ErrForbidden)

	got, invited, err := env.Projects.Invite(ctx, owner, p.ID.Hex(), peer.Hex())
	require.NoError(t, err)
	assert.True(t, invited)
	assert.Contains(t, got.Invited, peer)

	_, invited, err = env.Projects.Invite(ctx, owner, p.ID.Hex(), peer.Hex())
	require.NoError(t, err)
	assert.False(t, invited)
	notes := env.notificationsFor(t, peer)
	require.Len(t, notes, 1)
	assert.Contains(t, notes[0].Message, "Atlas")

	_, invited, err = env.Projects.Invite(ctx, owner, p.ID.Hex(), owner.Hex())
	require.NoError(t, err)
	assert.False(t, invited, "owner is already a collaborator")

	_, _, err = env.Projects.Invite(ctx, owner, p.ID.Hex(), primitive.NewObjectID().Hex())
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestProjectAcceptDecline(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner, peer, other := env.user(t, "owner"), env.user(t, "peer"), env.user(t, "other")
	p, err := env.Projects.Create(ctx, owner, ProjectInput{Title: "Atlas"})
	require.NoError(t, err)
	_, _, err = env.Projects.Invite(ctx, owner, p.ID.Hex(), peer.Hex())
	require.NoError(t, err)
	_, _, err = env.Projects.Invite(ctx, owner, p.ID.Hex(), other.Hex())
	require.NoError(t, err)

	got, err := env.Projects.Accept(ctx, peer, p.ID.Hex())
	require.NoError(t, err)
	assert.ElementsMatch(t, []primitive.ObjectID{owner, peer}, got.Collaborators)

	got, err = env.Projects.Decline(ctx, other, p.ID.Hex())
	require.NoError(t, err)
	assert.Empty(t, got.Invited)

	var ve *utils.ValidationError
	_, err = env.Projects.Accept(ctx, other, p.ID.Hex())
	assert.ErrorAs(t, err, &ve)

	list, err := env.Projects.ForUser(ctx, peer.Hex())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "owner Name", list[0].OwnerUser.Name)
	names := []string{}
	for _, u := range list[0].CollaboratorUsers {
		names = append(names, u.Username)
	}
	assert.ElementsMatch(t, []string{"owner", "peer"}, names)
	assert.Empty(t, list[0].InvitedUsers)
}

func TestProjectUpdateAndDeleteOwnerOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner, other := env.user(t, "owner"), env.user(t, "other")
	p, err := env.Projects.Create(ctx, owner, ProjectInput{Title: "Atlas"})
	require.NoError(t, err)

	_, err = env.Projects.Update(ctx, other, p.ID.Hex(), ProjectInput{Title: "Mine now"})
	assert.ErrorIs(t, err, ErrForbidden)

	got, err := env.Projects.Update(ctx, owner, p.ID.Hex(), ProjectInput{Title: "Atlas v2", Description: "d"})
	require.NoError(t, err)
	assert.Equal(t, "Atlas v2", got.Title)

	assert.ErrorIs(t, env.Projects.Delete(ctx, other, p.ID.Hex()), ErrForbidden)
	require.NoError(t, env.Projects.Delete(ctx, owner, p.ID.Hex()))
	_, err = env.Projects.Get(ctx, p.ID.Hex())
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
