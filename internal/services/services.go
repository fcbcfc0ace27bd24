package services

import (
	"time"

	"github.com/AnshRaj112/researchhive-backend/internal/auth"
	"github.com/AnshRaj112/researchhive-backend/internal/storage"
	"github.com/redis/go-redis/v9"
)

// Deps are the shared clients the services are built from.
type Deps struct {
	Store      storage.Store
	Redis      *redis.Client
	Tokens     *auth.JWTManager
	SessionTTL time.Duration
	Devices    *DeviceLog // nil without PostgreSQL
	LocalFiles *LocalFileStore
	Remote     FileStore // nil without Cloudinary
}

// Services is the application layer used by the HTTP handlers.
type Services struct {
	Sessions      *SessionStore
	Hub           *NotificationHub
	Auth          *AuthService
	Users         *UserService
	Notifications *NotificationService
	Forum         *ForumService
	Connections   *ConnectionService
	Bookmarks     *BookmarkService
	Repository    *RepositoryService
	Events        *EventService
	Projects      *ProjectService
}

func New(d Deps) *Services {
	sessions := NewSessionStore(d.Redis, d.SessionTTL)
	hub := NewNotificationHub(d.Redis)
	users := NewUserService(d.Store, NewCacheService(d.Redis), sessions)
	notifier := NewNotificationService(d.Store, hub)

	return &Services{
		Sessions:      sessions,
		Hub:           hub,
		Auth:          NewAuthService(d.Store, d.Tokens, sessions, d.Devices),
		Users:         users,
		Notifications: notifier,
		Forum:         NewForumService(d.Store, users, notifier),
		Connections:   NewConnectionService(d.Store, users, notifier),
		Bookmarks:     NewBookmarkService(d.Store),
		Repository:    NewRepositoryService(d.Store, d.LocalFiles, d.Remote),
		Events:        NewEventService(d.Store, users, notifier),
		Projects:      NewProjectService(d.Store, users, notifier),
	}
}
