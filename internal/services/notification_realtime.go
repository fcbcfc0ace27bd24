package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/AnshRaj112/researchhive-backend/internal/metrics"
	"github.com/AnshRaj112/researchhive-backend/internal/models"
	"github.com/redis/go-redis/v9"
)

const notificationChannelPrefix = "notifications:user:"

// NotificationEvent is the payload pushed over Redis and WebSocket.
type NotificationEvent struct {
	Type         string               `json:"type"` // "notification"
	UserID       string               `json:"user_id"`
	Notification *models.Notification `json:"notification,omitempty"`
}

// PushConn is the minimal interface our WebSocket implementation must satisfy.
type PushConn interface {
	WriteJSON(v interface{}) error
	Close() error
}

// subscriberQueue bounds the events waiting for one slow socket.
const subscriberQueue = 32

// Subscriber is one open socket of a user. A single writer goroutine drains its
// queue so events reach the socket in publish order.
type Subscriber struct {
	UserID string
	Conn   PushConn
	queue  chan NotificationEvent
}

func (s *Subscriber) pump() {
	for event := range s.queue {
		if err := s.Conn.WriteJSON(event); err != nil {
			slog.Debug("notification push failed", "user_id", s.UserID, "error", err)
		}
	}
}

// NotificationHub tracks this instance's sockets and relays events published by any instance.
// Without Redis, Publish delivers to local sockets only.
type NotificationHub struct {
	rdb *redis.Client

	mu    sync.RWMutex
	conns map[string]map[*Subscriber]struct{}

	started sync.Once
}

func NewNotificationHub(rdb *redis.Client) *NotificationHub {
	return &NotificationHub{
		rdb:   rdb,
		conns: make(map[string]map[*Subscriber]struct{}),
	}
}

// Register adds a socket for userID. A user may hold several.
func (h *NotificationHub) Register(userID string, conn PushConn) *Subscriber {
	sub := &Subscriber{UserID: userID, Conn: conn, queue: make(chan NotificationEvent, subscriberQueue)}
	go sub.pump()

	h.mu.Lock()
	set, ok := h.conns[userID]
	if !ok {
		set = make(map[*Subscriber]struct{})
		h.conns[userID] = set
	}
	set[sub] = struct{}{}
	h.mu.Unlock()

	metrics.WebSocketClients.Inc()
	return sub
}

func (h *NotificationHub) Unregister(sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.conns[sub.UserID]
	if !ok {
		return
	}
	if _, ok := set[sub]; !ok {
		return
	}
	delete(set, sub)
	close(sub.queue)
	if len(set) == 0 {
		delete(h.conns, sub.UserID)
	}
	metrics.WebSocketClients.Dec()
}

// Connected reports how many sockets userID holds on this instance.
func (h *NotificationHub) Connected(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns[userID])
}

// FanOut queues event for every local socket of its user. A socket whose queue
// is full drops the event rather than stall the others.
func (h *NotificationHub) FanOut(event NotificationEvent) {
	if event.UserID == "" {
		return
	}

	// Queues are closed under the write lock, so sending under the read lock is safe.
	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.conns[event.UserID] {
		select {
		case sub.queue <- event:
		default:
			slog.Warn("notification queue full, dropping event", "user_id", sub.UserID)
		}
	}
}

// Publish announces a new notification to every instance.
func (h *NotificationHub) Publish(ctx context.Context, n *models.Notification) error {
	event := NotificationEvent{Type: "notification", UserID: n.User.Hex(), Notification: n}
	if h.rdb == nil {
		h.FanOut(event)
		return nil
	}
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return h.rdb.Publish(ctx, notificationChannelPrefix+event.UserID, data).Err()
}

// Start runs a single shared Redis listener until ctx is done.
func (h *NotificationHub) Start(ctx context.Context) {
	if h.rdb == nil {
		slog.Info("Redis not configured; notification subscriber not started")
		return
	}
	h.started.Do(func() {
		go h.run(ctx)
	})
}

func (h *NotificationHub) run(ctx context.Context) {
	backoff := time.Second

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		func() {
			pubsub := h.rdb.PSubscribe(ctx, notificationChannelPrefix+"*")
			defer pubsub.Close()

			slog.Info("notification subscriber started", "pattern", notificationChannelPrefix+"*")

			for {
				msg, err := pubsub.ReceiveMessage(ctx)
				if err != nil {
					if ctx.Err() != nil {
						return
					}
					slog.Warn("notification subscriber error", "error", err, "retry_in", backoff)
					select {
					case <-ctx.Done():
						return
					case <-time.After(backoff):
					}
					backoff *= 2
					if backoff > 30*time.Second {
						backoff = 30 * time.Second
					}
					return
				}

				backoff = time.Second

				var event NotificationEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					slog.Warn("bad notification event", "channel", msg.Channel, "error", err)
					continue
				}
				if event.UserID == "" {
					event.UserID = strings.TrimPrefix(msg.Channel, notificationChannelPrefix)
				}
				h.FanOut(event)
			}
		}()
	}
}
