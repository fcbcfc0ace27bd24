package handlers

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/AnshRaj112/researchhive-backend/internal/services"
	"github.com/gorilla/websocket"
)

const (
	wsPongWait   = 90 * time.Second
	wsPingPeriod = 30 * time.Second
	wsReadLimit  = 4 * 1024
)

// upgrader accepts same-origin, non-browser and allow-listed origins.
func (h *Handler) upgrader() *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			for _, a := range h.opts.AllowedOrigins {
				if strings.EqualFold(strings.TrimSpace(a), origin) {
					return true
				}
			}
			u, err := url.Parse(origin)
			return err == nil && strings.EqualFold(u.Host, r.Host)
		},
	}
}

// NotificationSocket pushes the caller's new notifications until the client goes away.
// Clients authenticate with ?token= since browsers cannot set headers on the handshake.
func (h *Handler) NotificationSocket(w http.ResponseWriter, r *http.Request) {
	p := principal(r)
	conn, err := h.upgrader().Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		return
	}
	defer conn.Close()

	userID := p.UserID.Hex()
	if err := conn.WriteJSON(services.NotificationEvent{Type: "connected", UserID: userID}); err != nil {
		return
	}

	sub := h.svc.Hub.Register(userID, conn)
	defer h.svc.Hub.Unregister(sub)
	slog.Debug("notification socket opened", "user_id", userID)

	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(wsPingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(10*time.Second)); err != nil {
					return
				}
			}
		}
	}()

	// The socket is push-only; reads just keep the deadline fresh and detect close.
	conn.SetReadLimit(wsReadLimit)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			slog.Debug("notification socket closed", "user_id", userID, "error", err)
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	}
}
