// Package storage defines the persistence contracts for ResearchHive collections.
// Each method is a single operation against one collection; nothing here spans
// collections or runs in a transaction.
package storage

import (
	"context"
	"errors"

	"github.com/AnshRaj112/researchhive-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// ErrNotFound is returned when the addressed document does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a unique constraint would be violated.
	ErrDuplicate = errors.New("duplicate")
)

// Page bounds list queries.
type Page struct {
	Limit int64
	Skip  int64
}

type Users interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUsers(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
	SearchUsers(ctx context.Context, username string, limit int64) ([]models.User, error)
	ListUsers(ctx context.Context, page Page) ([]models.User, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, update models.ProfileUpdate) (*models.User, error)
	UpdatePasswordHash(ctx context.Context, id primitive.ObjectID, hash string) error
	DeleteUser(ctx context.Context, id primitive.ObjectID) error
}

// ForumFilter narrows ListPosts; zero value lists everything.
type ForumFilter struct {
	Type   models.PostType
	Author primitive.ObjectID
}

type Forum interface {
	CreatePost(ctx context.Context, post *models.ForumPost) error
	GetPost(ctx context.Context, id primitive.ObjectID) (*models.ForumPost, error)
	ListPosts(ctx context.Context, filter ForumFilter, page Page) ([]models.ForumPost, error)
	// ToggleLike adds userID to the like set, or removes it when already present.
	ToggleLike(ctx context.Context, postID, userID primitive.ObjectID) (*models.ForumPost, error)
	AddComment(ctx context.Context, postID primitive.ObjectID, comment models.Comment) (*models.ForumPost, error)
	DeletePost(ctx context.Context, id primitive.ObjectID) error
}

type Connections interface {
	CreateConnection(ctx context.Context, conn *models.Connection) error
	GetConnection(ctx context.Context, id primitive.ObjectID) (*models.Connection, error)
	// FindConnectionBetween returns the connection between a and b in either direction.
	FindConnectionBetween(ctx context.Context, a, b primitive.ObjectID) (*models.Connection, error)
	SetConnectionStatus(ctx context.Context, id primitive.ObjectID, status models.ConnectionStatus) (*models.Connection, error)
	ListConnections(ctx context.Context, userID primitive.ObjectID) ([]models.Connection, error)
	DeleteConnection(ctx context.Context, id primitive.ObjectID) error
}

type Notifications interface {
	CreateNotification(ctx context.Context, n *models.Notification) error
	GetNotification(ctx context.Context, id primitive.ObjectID) (*models.Notification, error)
	ListNotifications(ctx context.Context, userID primitive.ObjectID, unreadOnly bool, page Page) ([]models.Notification, error)
	MarkNotificationRead(ctx context.Context, id primitive.ObjectID) error
	MarkAllNotificationsRead(ctx context.Context, userID primitive.ObjectID) (int64, error)
}

type Bookmarks interface {
	CreateBookmark(ctx context.Context, b *models.Bookmark) error
	GetBookmark(ctx context.Context, id primitive.ObjectID) (*models.Bookmark, error)
	// ListBookmarks lists a user's bookmarks; an empty typ lists all types.
	ListBookmarks(ctx context.Context, userID primitive.ObjectID, typ models.BookmarkType) ([]models.Bookmark, error)
	DeleteBookmark(ctx context.Context, id primitive.ObjectID) error
}

type Repository interface {
	CreateItem(ctx context.Context, item *models.RepositoryItem) error
	GetItem(ctx context.Context, id primitive.ObjectID) (*models.RepositoryItem, error)
	// ListItems returns items newest first; query matches title, description or tags case-insensitively.
	ListItems(ctx context.Context, query string, page Page) ([]models.RepositoryItem, error)
	// DeleteItem removes the record and returns it so the caller can remove the stored bytes.
	DeleteItem(ctx context.Context, id primitive.ObjectID) (*models.RepositoryItem, error)
}

type Events interface {
	CreateEvent(ctx context.Context, e *models.Event) error
	GetEvent(ctx context.Context, id primitive.ObjectID) (*models.Event, error)
	ListEvents(ctx context.Context, page Page) ([]models.Event, error)
	// ListEventsForUser returns events the user created, joined or was invited to.
	ListEventsForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Event, error)
	ListEventInvites(ctx context.Context, userID primitive.ObjectID) ([]models.Event, error)
	UpdateEventMembership(ctx context.Context, id primitive.ObjectID, change models.MembershipChange) (*models.Event, error)
	DeleteEvent(ctx context.Context, id primitive.ObjectID) error
}

type Projects interface {
	CreateProject(ctx context.Context, p *models.Project) error
	GetProject(ctx context.Context, id primitive.ObjectID) (*models.Project, error)
	// ListProjectsForUser returns projects the user owns, collaborates on or was invited to.
	ListProjectsForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Project, error)
	UpdateProject(ctx context.Context, id primitive.ObjectID, title, description string) (*models.Project, error)
	UpdateProjectMembership(ctx context.Context, id primitive.ObjectID, change models.MembershipChange) (*models.Project, error)
	DeleteProject(ctx context.Context, id primitive.ObjectID) error
}

// Store bundles every collection. Implementations: mongo (production) and memory (tests, local dev).
type Store interface {
	Users
	Forum
	Connections
	Notifications
	Bookmarks
	Repository
	Events
	Projects

	// Ping checks connectivity for /health.
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
