package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"

	"github.com/cyber-Je-di/tuta-pamodzi/internal/events"
)

const streamPingInterval = 30 * time.Second

// StreamHandler pushes enrollment events to the connected student or tutor.
type StreamHandler struct {
	hub    *events.Hub
	logger zerolog.Logger
}

// NewStreamHandler constructs the handler.
func NewStreamHandler(hub *events.Hub, logger zerolog.Logger) *StreamHandler {
	return &StreamHandler{
		hub:    hub,
		logger: logger.With().Str("component", "stream_handler").Logger(),
	}
}

// Register binds the upgrade route; the group must be authenticated.
func (h *StreamHandler) Register(router fiber.Router) {
	router.Get("", requireUpgrade, websocket.New(h.serve))
}

func requireUpgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

func (h *StreamHandler) serve(conn *websocket.Conn) {
	accountID, _ := conn.Locals("user_id").(uint)
	if accountID == 0 {
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "authentication required"))
		_ = conn.Close()
		return
	}

	updates, unsubscribe := h.hub.Subscribe(accountID)
	defer unsubscribe()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	logger := h.logger.With().Uint("account_id", accountID).Logger()
	logger.Debug().Msg("stream connected")
	defer logger.Debug().Msg("stream disconnected")

	ticker := time.NewTicker(streamPingInterval)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-updates:
			if !ok {
				return
			}
			if err := conn.WriteJSON(event); err != nil {
				logger.Debug().Err(err).Msg("stream write failed")
				return
			}
		case <-ticker.C:
			if err := conn.WriteMessage(websocket.PingMessage, []byte("keepalive")); err != nil {
				return
			}
		case <-closed:
			return
		}
	}
}
