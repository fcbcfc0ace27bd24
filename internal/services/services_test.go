package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/AnshRaj112/researchhive-backend/internal/auth"
	"github.com/AnshRaj112/researchhive-backend/internal/models"
	"github.com/AnshRaj112/researchhive-backend/internal/storage"
	"github.com/AnshRaj112/researchhive-backend/internal/storage/memory"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type testEnv struct {
	*Services
	store *memory.Store
	redis *miniredis.Miniredis
	rdb   *redis.Client
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	local, err := NewLocalFileStore(t.TempDir(), "/uploads")
	require.NoError(t, err)

	store := memory.New()
	svc := New(Deps{
		Store:      store,
		Redis:      rdb,
		Tokens:     auth.NewJWTManager("test-secret", time.Hour),
		SessionTTL: time.Hour,
		LocalFiles: local,
	})
	return &testEnv{Services: svc, store: store, redis: mr, rdb: rdb}
}

// user inserts an account directly and returns its id.
func (e *testEnv) user(t *testing.T, username string) primitive.ObjectID {
	t.Helper()
	u := &models.User{Username: username, Name: username + " Name", Email: username + "@example.org"}
	require.NoError(t, e.store.CreateUser(context.Background(), u))
	return u.ID
}

func (e *testEnv) notificationsFor(t *testing.T, id primitive.ObjectID) []models.Notification {
	t.Helper()
	list, err := e.store.ListNotifications(context.Background(), id, false, storage.Page{})
	require.NoError(t, err)
	return list
}

// failingNotifications wraps a store whose notification writes always fail.
type failingNotifications struct {
	storage.Notifications
}

func (failingNotifications) CreateNotification(context.Context, *models.Notification) error {
	return errors.New("mongo unavailable")
}

// recordingConn captures pushed events.
type recordingConn struct {
	mu     sync.Mutex
	events []NotificationEvent
}

func (c *recordingConn) WriteJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, v.(NotificationEvent))
	return nil
}

func (c *recordingConn) Close() error { return nil }

func (c *recordingConn) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.events)
}
