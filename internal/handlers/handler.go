package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/AnshRaj112/researchhive-backend/internal/auth"
	"github.com/AnshRaj112/researchhive-backend/internal/services"
	"github.com/AnshRaj112/researchhive-backend/internal/storage"
	"github.com/AnshRaj112/researchhive-backend/pkg/clientip"
	"github.com/AnshRaj112/researchhive-backend/pkg/utils"
	"github.com/go-chi/chi/v5"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
	maxJSONBody     = 1 << 20
)

// Options tune request handling.
type Options struct {
	MaxUploadBytes int64
	AllowedOrigins []string
	TrustProxy     bool
}

// Handler serves the REST API on top of the services layer.
type Handler struct {
	svc  *services.Services
	opts Options
}

func New(svc *services.Services, opts Options) *Handler {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 32 << 20
	}
	return &Handler{svc: svc, opts: opts}
}

// Response is the common envelope; handlers embed resources next to it.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("failed to write response", "error", err)
	}
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, Response{Success: status < 400, Message: message})
}

// writeError maps service errors to status codes. Unknown errors are logged and hidden.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *utils.ValidationError
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &verr):
		writeMessage(w, http.StatusBadRequest, verr.Message)
	case errors.As(err, &tooLarge):
		writeMessage(w, http.StatusRequestEntityTooLarge, "Request body too large")
	case errors.Is(err, storage.ErrDuplicate):
		writeMessage(w, http.StatusBadRequest, "Already exists")
	case errors.Is(err, storage.ErrNotFound):
		writeMessage(w, http.StatusNotFound, "Not found")
	case errors.Is(err, services.ErrInvalidCredentials):
		writeMessage(w, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, services.ErrUnauthorized):
		writeMessage(w, http.StatusUnauthorized, "Authentication required")
	case errors.Is(err, services.ErrForbidden):
		writeMessage(w, http.StatusForbidden, "You are not allowed to do that")
	case errors.Is(err, context.DeadlineExceeded):
		slog.Error("request timed out", "path", r.URL.Path, "error", err)
		writeMessage(w, http.StatusServiceUnavailable, "Service temporarily unavailable")
	default:
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeMessage(w, http.StatusInternalServerError, "Internal server error")
	}
}

// decodeJSON reads a bounded JSON body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		return utils.Invalid("body", "Invalid request body")
	}
	return nil
}

// storageCtx bounds one service call.
func storageCtx(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), services.StorageTimeout)
}

// principal returns the caller set by RequireAuth. Routes without it never call this.
func principal(r *http.Request) auth.Principal {
	p, _ := auth.PrincipalFrom(r.Context())
	return p
}

// pageFrom reads ?limit= and ?skip=.
func pageFrom(r *http.Request) storage.Page {
	q := r.URL.Query()
	limit, err := strconv.ParseInt(q.Get("limit"), 10, 64)
	if err != nil || limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	skip, err := strconv.ParseInt(q.Get("skip"), 10, 64)
	if err != nil || skip < 0 {
		skip = 0
	}
	return storage.Page{Limit: limit, Skip: skip}
}

func param(r *http.Request, name string) string {
	return chi.URLParam(r, name)
}

func (h *Handler) clientIP(r *http.Request) string {
	return clientip.Resolve(r, h.opts.TrustProxy)
}

// Health reports whether the primary store answers.
func (h *Handler) Health(ping func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := storageCtx(r)
		defer cancel()
		if err := ping(ctx); err != nil {
			slog.Warn("health check failed", "error", err)
			writeMessage(w, http.StatusServiceUnavailable, "unhealthy")
			return
		}
		writeMessage(w, http.StatusOK, "ok")
	}
}
