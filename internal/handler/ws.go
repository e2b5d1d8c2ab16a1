package handler

import (
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
	"github.com/usetandem/tandem/internal/ctxkeys"
	"github.com/usetandem/tandem/internal/realtime"
)

// WSHandler upgrades authenticated requests onto the live channel. One
// connection per user; a newer connection replaces the older one in the
// registry.
type WSHandler struct {
	registry realtime.Registry
	upgrader websocket.Upgrader
}

func NewWSHandler(registry realtime.Registry, appURL string) *WSHandler {
	return &WSHandler{
		registry: registry,
		upgrader: websocket.Upgrader{
			HandshakeTimeout: 10 * time.Second,
			ReadBufferSize:   1024,
			WriteBufferSize:  1024,
			CheckOrigin:      originChecker(appURL),
		},
	}
}

// originChecker accepts same-host origins and non-browser clients (no
// Origin header).
func originChecker(appURL string) func(*http.Request) bool {
	app, err := url.Parse(appURL)
	if err != nil {
		app = nil
	}

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}

		parsed, err := url.Parse(origin)
		if err != nil {
			return false
		}
		if parsed.Host == r.Host {
			return true
		}
		return app != nil && parsed.Host == app.Host
	}
}

func (h *WSHandler) Connect(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response.
		slog.Debug("websocket upgrade failed", "error", err, "user_id", user.ID)
		return
	}

	client := realtime.NewClient(user.ID, conn, h.registry)
	go client.Run()
}
