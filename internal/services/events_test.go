package services

import (
	"context"
	"testing"
	"time"

	"github.com/AnshRaj112/researchhive-backend/internal/models"
	"github.com/AnshRaj112/researchhive-backend/internal/storage"
	"github.com/AnshRaj112/researchhive-backend/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func eventInput(title string) CreateEventInput {
	start := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	return CreateEventInput{Title: title, Start: start, End: start.Add(2 * time.Hour)}
}

func TestCreateEventValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	me := env.user(t, "me")
	var ve *utils.ValidationError

	in := eventInput("")
	_, err := env.Events.Create(ctx, me, in)
	assert.ErrorAs(t, err, &ve)

	in = eventInput("x")
	in.End = in.Start.Add(-time.Minute)
	_, err = env.Events.Create(ctx, me, in)
	assert.ErrorAs(t, err, &ve)

	in = eventInput("x")
	in.Type = "party"
	_, err = env.Events.Create(ctx, me, in)
	assert.ErrorAs(t, err, &ve)

	e, err := env.Events.Create(ctx, me, eventInput("Reading group"))
	require.NoError(t, err)
	assert.Equal(t, models.EventOther, e.Type)
	assert.Equal(t, me, e.CreatedBy)
}

func TestCreateEventNotifiesInitialInvitees(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	me, a, b := env.user(t, "me"), env.user(t, "a"), env.user(t, "b")

	in := eventInput("Thesis defense")
	in.Invited = []string{a.Hex(), b.Hex(), a.Hex(), me.Hex()}
	e, err := env.Events.Create(ctx, me, in)
	require.NoError(t, err)
	assert.Len(t, e.Invited, 2)

	assert.Len(t, env.notificationsFor(t, a), 1)
	assert.Len(t, env.notificationsFor(t, b), 1)
	assert.Empty(t, env.notificationsFor(t, me))
}

func TestEventInviteAcceptDecline(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	me, guest, other := env.user(t, "me"), env.user(t, "guest"), env.user(t, "other")
	e, err := env.Events.Create(ctx, me, eventInput("Seminar"))
	require.NoError(t, err)

	_, invited, err := env.Events.Invite(ctx, me, e.ID.Hex(), guest.Hex())
	require.NoError(t, err)
	assert.True(t, invited)
	_, invited, err = env.Events.Invite(ctx, me, e.ID.Hex(), guest.Hex())
	require.NoError(t, err)
	assert.False(t, invited)
	assert.Len(t, env.notificationsFor(t, guest), 1, "invite notifies once")

	reqs, err := env.Events.Requests(ctx, guest, guest.Hex())
	require.NoError(t, err)
	require.Len(t, reqs, 1)
	assert.Equal(t, "me Name", reqs[0].CreatedByUser.Name)
	require.Len(t, reqs[0].InvitedUsers, 1)
	assert.Equal(t, "guest", reqs[0].InvitedUsers[0].Username)
	_, err = env.Events.Requests(ctx, other, guest.Hex())
	assert.ErrorIs(t, err, ErrForbidden)

	var ve *utils.ValidationError
	_, err = env.Events.Accept(ctx, other, e.ID.Hex())
	assert.ErrorAs(t, err, &ve, "not invited")

	got, err := env.Events.Accept(ctx, guest, e.ID.Hex())
	require.NoError(t, err)
	assert.Contains(t, got.Participants, guest)
	assert.NotContains(t, got.Invited, guest)

	_, invited, err = env.Events.Invite(ctx, me, e.ID.Hex(), guest.Hex())
	require.NoError(t, err)
	assert.False(t, invited, "participants are not re-invited")

	_, _, err = env.Events.Invite(ctx, me, e.ID.Hex(), other.Hex())
	require.NoError(t, err)
	got, err = env.Events.Decline(ctx, other, e.ID.Hex())
	require.NoError(t, err)
	assert.NotContains(t, got.Invited, other)
	assert.NotContains(t, got.Participants, other)
}

func TestEventJoinLeaveIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	me, guest := env.user(t, "me"), env.user(t, "guest")
	e, err := env.Events.Create(ctx, me, eventInput("Workshop"))
	require.NoError(t, err)

	_, err = env.Events.Join(ctx, guest, e.ID.Hex())
	require.NoError(t, err)
	got, err := env.Events.Join(ctx, guest, e.ID.Hex())
	require.NoError(t, err)
	assert.Len(t, got.Participants, 1)

	mine, err := env.Events.ForUser(ctx, guest.Hex())
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	got, err = env.Events.Leave(ctx, guest, e.ID.Hex())
	require.NoError(t, err)
	assert.Empty(t, got.Participants)
	_, err = env.Events.Leave(ctx, guest, e.ID.Hex())
	require.NoError(t, err)
}

func TestDeleteEventCreatorOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	me, other := env.user(t, "me"), env.user(t, "other")
	e, err := env.Events.Create(ctx, me, eventInput("Deadline"))
	require.NoError(t, err)

	assert.ErrorIs(t, env.Events.Delete(ctx, other, e.ID.Hex()), ErrForbidden)
	require.NoError(t, env.Events.Delete(ctx, me, e.ID.Hex()))
	_, err = env.Events.Get(ctx, e.ID.Hex())
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestEventCreatorCannotBeInvited(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	me, guest := env.user(t, "me"), env.user(t, "guest")
	e, err := env.Events.Create(ctx, me, eventInput("Colloquium"))
	require.NoError(t, err)

	var ve *utils.ValidationError
	_, _, err = env.Events.Invite(ctx, guest, e.ID.Hex(), me.Hex())
	assert.ErrorAs(t, err, &ve)
	_, _, err = env.Events.Invite(ctx, me, e.ID.Hex(), me.Hex())
	assert.ErrorAs(t, err, &ve)
	assert.Empty(t, env.notificationsFor(t, me))

	got, err := env.Events.Get(ctx, e.ID.Hex())
	require.NoError(t, err)
	assert.Empty(t, got.Invited)
	assert.Empty(t, got.InvitedUsers)
	assert.Equal(t, "me", got.CreatedByUser.Username)
}
