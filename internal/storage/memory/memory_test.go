package memory

import (
	"context"
	"testing"
	"time"

	"github.com/AnshRaj112/researchhive-backend/internal/models"
	"github.com/AnshRaj112/researchhive-backend/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestUsersUniqueAndLookup(t *testing.T) {
	ctx := context.Background()
	s := New()

	u := &models.User{Username: "ada", Email: "ada@example.org", Name: "Ada"}
	require.NoError(t, s.CreateUser(ctx, u))
	assert.False(t, u.ID.IsZero())
	assert.False(t, u.CreatedAt.IsZero())

	err := s.CreateUser(ctx, &models.User{Username: "ADA", Email: "other@example.org"})
	assert.ErrorIs(t, err, storage.ErrDuplicate)
	err = s.CreateUser(ctx, &models.User{Username: "grace", Email: "ada@example.org"})
	assert.ErrorIs(t, err, storage.ErrDuplicate)

	got, err := s.GetUserByEmail(ctx, "ada@example.org")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = s.GetUser(ctx, primitive.NewObjectID())
	assert.ErrorIs(t, err, storage.ErrNotFound)

	bio := "compilers"
	updated, err := s.UpdateProfile(ctx, u.ID, models.ProfileUpdate{Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, "compilers", updated.Bio)
	assert.Equal(t, "Ada", updated.Name)

	require.NoError(t, s.DeleteUser(ctx, u.ID))
	assert.ErrorIs(t, s.DeleteUser(ctx, u.ID), storage.ErrNotFound)
}

func TestSearchUsersIsCaseInsensitiveSubstring(t *testing.T) {
	ctx := context.Background()
	s := New()
	for _, name := range []string{"alice", "malik", "bob"} {
		require.NoError(t, s.CreateUser(ctx, &models.User{Username: name, Email: name + "@x.io"}))
	}

	found, err := s.SearchUsers(ctx, "LI", 10)
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "alice", found[0].Username)
	assert.Equal(t, "malik", found[1].Username)

	found, err = s.SearchUsers(ctx, "li", 1)
	require.NoError(t, err)
	assert.Len(t, found, 1)
}

func TestToggleLike(t *testing.T) {
	ctx := context.Background()
	s := New()
	post := &models.ForumPost{Author: primitive.NewObjectID(), Type: models.PostTypeIdea, Title: "t", Content: "c"}
	require.NoError(t, s.CreatePost(ctx, post))

	user := primitive.NewObjectID()
	p, err := s.ToggleLike(ctx, post.ID, user)
	require.NoError(t, err)
	assert.True(t, p.LikedBy(user))

	p, err = s.ToggleLike(ctx, post.ID, user)
	require.NoError(t, err)
	assert.False(t, p.LikedBy(user))
	assert.Empty(t, p.Likes)

	_, err = s.ToggleLike(ctx, primitive.NewObjectID(), user)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestListPostsFilterAndOrder(t *testing.T) {
	ctx := context.Background()
	s := New()
	base := time.Now().UTC()
	for i, typ := range []models.PostType{models.PostTypeIdea, models.PostTypeIssue, models.PostTypeIdea} {
		require.NoError(t, s.CreatePost(ctx, &models.ForumPost{
			Type:      typ,
			Title:     string(typ),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	ideas, err := s.ListPosts(ctx, storage.ForumFilter{Type: models.PostTypeIdea}, storage.Page{})
	require.NoError(t, err)
	require.Len(t, ideas, 2)
	assert.True(t, ideas[0].CreatedAt.After(ideas[1].CreatedAt))

	page, err := s.ListPosts(ctx, storage.ForumFilter{}, storage.Page{Limit: 1, Skip: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, models.PostTypeIssue, page[0].Type)
}

func TestAddCommentStampsID(t *testing.T) {
	ctx := context.Background()
	s := New()
	post := &models.ForumPost{Type: models.PostTypeIssue}
	require.NoError(t, s.CreatePost(ctx, post))

	p, err := s.AddComment(ctx, post.ID, models.Comment{User: primitive.NewObjectID(), Text: "+1"})
	require.NoError(t, err)
	require.Len(t, p.Comments, 1)
	assert.False(t, p.Comments[0].ID.IsZero())

	// returned copies must not alias stored state
	p.Comments[0].Text = "mutated"
	again, err := s.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "+1", again.Comments[0].Text)
}

func TestBookmarkDuplicate(t *testing.T) {
	ctx := context.Background()
	s := New()
	user, item := primitive.NewObjectID(), primitive.NewObjectID()

	require.NoError(t, s.CreateBookmark(ctx, &models.Bookmark{User: user, Type: models.BookmarkForum, Item: item}))
	err := s.CreateBookmark(ctx, &models.Bookmark{User: user, Type: models.BookmarkForum, Item: item})
	assert.ErrorIs(t, err, storage.ErrDuplicate)
	require.NoError(t, s.CreateBookmark(ctx, &models.Bookmark{User: user, Type: models.BookmarkRepository, Item: item}))

	all, err := s.ListBookmarks(ctx, user, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
	forum, err := s.ListBookmarks(ctx, user, models.BookmarkForum)
	require.NoError(t, err)
	assert.Len(t, forum, 1)
}

func TestNotificationsReadState(t *testing.T) {
	ctx := context.Background()
	s := New()
	user := primitive.NewObjectID()
	for i := 0; i < 3; i++ {
		require.NoError(t, s.CreateNotification(ctx, &models.Notification{User: user, Type: models.NotificationSystem, Message: "hi"}))
	}
	require.NoError(t, s.CreateNotification(ctx, &models.Notification{User: primitive.NewObjectID(), Message: "other"}))

	list, err := s.ListNotifications(ctx, user, false, storage.Page{})
	require.NoError(t, err)
	require.Len(t, list, 3)

	require.NoError(t, s.MarkNotificationRead(ctx, list[0].ID))
	unread, err := s.ListNotifications(ctx, user, true, storage.Page{})
	require.NoError(t, err)
	assert.Len(t, unread, 2)

	n, err := s.MarkAllNotificationsRead(ctx, user)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	assert.ErrorIs(t, s.MarkNotificationRead(ctx, primitive.NewObjectID()), storage.ErrNotFound)
}

func TestEventMembership(t *testing.T) {
	ctx := context.Background()
	s := New()
	creator, guest := primitive.NewObjectID(), primitive.NewObjectID()
	e := &models.Event{Title: "PLDI", Type: models.EventConference, CreatedBy: creator, Start: time.Now()}
	require.NoError(t, s.CreateEvent(ctx, e))

	got, err := s.UpdateEventMembership(ctx, e.ID, models.MembershipChange{UserID: guest, AddTo: []string{models.FieldInvited}})
	require.NoError(t, err)
	assert.Contains(t, got.Invited, guest)

	invites, err := s.ListEventInvites(ctx, guest)
	require.NoError(t, err)
	assert.Len(t, invites, 1)

	got, err = s.UpdateEventMembership(ctx, e.ID, models.MembershipChange{
		UserID:     guest,
		AddTo:      []string{models.FieldParticipants},
		RemoveFrom: []string{models.FieldInvited},
	})
	require.NoError(t, err)
	assert.Contains(t, got.Participants, guest)
	assert.NotContains(t, got.Invited, guest)

	// adding twice keeps the set unique
	got, err = s.UpdateEventMembership(ctx, e.ID, models.MembershipChange{UserID: guest, AddTo: []string{models.FieldParticipants}})
	require.NoError(t, err)
	assert.Len(t, got.Participants, 1)

	mine, err := s.ListEventsForUser(ctx, guest)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}

func TestProjectMembershipAndUpdate(t *testing.T) {
	ctx := context.Background()
	s := New()
	owner, peer := primitive.NewObjectID(), primitive.NewObjectID()
	p := &models.Project{Title: "a", Owner: owner, Collaborators: []primitive.ObjectID{owner}}
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

	got, err = s.UpdateProject(ctx, p.ID, "b", "desc")
	require.NoError(t, err)
	assert.Equal(t, "b", got.Title)

	list, err := s.ListProjectsForUser(ctx, peer)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, s.DeleteProject(ctx, p.ID))
	_, err = s.GetProject(ctx, p.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestRepositorySearchAndDelete(t *testing.T) {
	ctx := context.Background()
	s := New()
	a := &models.RepositoryItem{Title: "Graph Neural Nets", Tags: []string{"ml"}}
	b := &models.RepositoryItem{Title: "Soil samples", Description: "field data", Tags: []string{"Ecology"}}
	require.NoError(t, s.CreateItem(ctx, a))
	require.NoError(t, s.CreateItem(ctx, b))

	found, err := s.ListItems(ctx, "ecology", storage.Page{})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, b.ID, found[0].ID)

	found, err = s.ListItems(ctx, "", storage.Page{})
	require.NoError(t, err)
	assert.Len(t, found, 2)

	deleted, err := s.DeleteItem(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Graph Neural Nets", deleted.Title)
	_, err = s.DeleteItem(ctx, a.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestConnectionBetweenEitherDirection(t *testing.T) {
	ctx := context.Background()
	s := New()
	a, b := primitive.NewObjectID(), primitive.NewObjectID()
	c := &models.Connection{Requester: a, Recipient: b}
	require.NoError(t, s.CreateConnection(ctx, c))
	assert.Equal(t, models.ConnectionPending, c.Status)

	found, err := s.FindConnectionBetween(ctx, b, a)
	require.NoError(t, err)
	assert.Equal(t, c.ID, found.ID)

	updated, err := s.SetConnectionStatus(ctx, c.ID, models.ConnectionAccepted)
	require.NoError(t, err)
	assert.Equal(t, models.ConnectionAccepted, updated.Status)

	list, err := s.ListConnections(ctx, b)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
