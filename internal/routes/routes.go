package routes

import (
	"context"
	"net/http"
	"strings"

	"github.com/AnshRaj112/researchhive-backend/internal/handlers"
	"github.com/AnshRaj112/researchhive-backend/internal/middleware"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/klauspost/compress/gzhttp"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Options wire the router to the rest of the server.
type Options struct {
	Handler        *handlers.Handler
	Auth           middleware.Authenticator
	Ping           func(context.Context) error
	UploadDir      string
	AllowedOrigins []string

	// Limiter and RedisLimiter are optional; production sets both.
	Limiter      *middleware.Limiter
	RedisLimiter *middleware.RedisRateLimiter
	Production   bool
	AllowedHost  string
}

// NewRouter builds the full HTTP surface.
func NewRouter(o Options) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, chimw.Recoverer, middleware.Observe)
	r.Use(middleware.CORS(o.AllowedOrigins))

	if o.Limiter != nil {
		if o.Production {
			r.Use(o.Limiter.ProductionSecurity(o.AllowedHost)...)
		} else {
			r.Use(o.Limiter.Login)
		}
		r.Use(o.Limiter.SearchRateLimit)
	}

	r.Get("/health", o.Handler.Health(o.Ping))
	r.Handle("/metrics", promhttp.Handler())
	r.Handle("/uploads/*", http.StripPrefix("/uploads/", noListing(http.FileServer(http.Dir(o.UploadDir)))))
	r.With(middleware.RequireAuth(o.Auth)).Get("/ws/notifications", o.Handler.NotificationSocket)

	r.Route("/api", func(api chi.Router) {
		if o.RedisLimiter != nil {
			api.Use(o.RedisLimiter.Handler)
		}
		api.Use(func(next http.Handler) http.Handler { return gzhttp.GzipHandler(next) })
		SetupRoutes(api, o.Handler, middleware.RequireAuth(o.Auth))
	})
	return r
}

// SetupRoutes registers the REST API under /api.
func SetupRoutes(r chi.Router, h *handlers.Handler, requireAuth func(http.Handler) http.Handler) {
	// Auth
	r.Post("/auth/register", h.Register)
	r.Post("/auth/login", h.Login)
	r.With(requireAuth).Post("/auth/logout", h.Logout)
	r.With(requireAuth).Get("/auth/me", h.Me)

	// Users
	r.Get("/user/search", h.SearchUsers)
	r.Get("/user/all", h.ListUsers)
	r.Get("/user/{id}", h.GetUser)
	r.With(requireAuth).Put("/user/profile", h.UpdateProfile)
	r.With(requireAuth).Delete("/user/{id}", h.DeleteUser)

	// Forum
	r.Get("/forum", h.ListPosts)
	r.Get("/forum/{id}", h.GetPost)
	r.Group(func(r chi.Router) {
		r.Use(requireAuth)
		r.Post("/forum", h.CreatePost)
		r.Post("/forum/{id}/like", h.ToggleLike)
		r.Post("/forum/{id}/comment", h.AddComment)
		r.Delete("/forum/{id}", h.DeletePost)
	})

	// Connections
	r.Route("/connections", func(r chi.Router) {
		r.Use(requireAuth)
		r.Post("/request", h.RequestConnection)
		r.Post("/accept", h.AcceptConnection)
		r.Post("/reject", h.RejectConnection)
		r.Get("/{id}", h.ListConnections)
		r.Delete("/{id}", h.RemoveConnection)
	})

	// Notifications
	r.Route("/notifications", func(r chi.Router) {
		r.Use(requireAuth)
		r.Put("/read-all", h.MarkAllNotificationsRead)
		r.Get("/{id}", h.ListNotifications)
		r.Put("/{id}/read", h.MarkNotificationRead)
	})

	// Bookmarks
	r.Route("/bookmarks", func(r chi.Router) {
		r.Use(requireAuth)
		r.Post("/", h.CreateBookmark)
		r.Get("/user/{id}/type/{type}", h.ListBookmarks)
		r.Get("/{id}", h.ListBookmarks)
		r.Delete("/{id}", h.DeleteBookmark)
	})

	// Repository
	r.Get("/repository", h.ListItems)
	r.Get("/repository/{id}", h.GetItem)
	r.Get("/repository/download/{id}", h.DownloadItem)
	r.With(requireAuth).Post("/repository", h.UploadItem)
	r.With(requireAuth).Delete("/repository/{id}", h.DeleteItem)

	// Events
	r.Get("/events", h.ListEvents)
	r.Get("/events/{id}", h.GetEvent)
	r.Get("/events/user/{userId}", h.UserEvents)
	r.Group(func(r chi.Router) {
		r.Use(requireAuth)
		r.Post("/events", h.CreateEvent)
		r.Get("/events/requests/{userId}", h.EventRequests)
		r.Post("/events/{id}/join", h.JoinEvent)
		r.Post("/events/{id}/leave", h.LeaveEvent)
		r.Post("/events/{id}/invite", h.InviteToEvent)
		r.Post("/events/{id}/accept", h.AcceptEvent)
		r.Post("/events/{id}/decline", h.DeclineEvent)
		r.Delete("/events/{id}", h.DeleteEvent)
	})

	// Projects
	r.Get("/projects/{id}", h.GetProject)
	r.Get("/projects/user/{userId}", h.UserProjects)
	r.Group(func(r chi.Router) {
		r.Use(requireAuth)
		r.Post("/projects", h.CreateProject)
		r.Put("/projects/{id}", h.UpdateProject)
		r.Post("/projects/{id}/invite", h.InviteToProject)
		r.Post("/projects/{id}/accept", h.AcceptProject)
		r.Post("/projects/{id}/decline", h.DeclineProject)
		r.Delete("/projects/{id}", h.DeleteProject)
	})
}

// noListing hides directory indexes of the upload dir.
func noListing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}
