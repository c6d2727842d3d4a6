package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"openadr/internal/infrastructure/notifier"
	"openadr/internal/shared/logger"
	"openadr/internal/wire"

	"openadr/internal/interfaces/http/middleware"
	"openadr/internal/interfaces/http/utils"
)

// writeTimeout bounds a single frame write to a subscriber.
const writeTimeout = 10 * time.Second

// WebsocketHandler upgrades authenticated clients to a notification
// stream. One connection per client; notifications matching the client's
// subscriptions arrive as JSON text frames.
type WebsocketHandler struct {
	notifier *notifier.Notifier
	upgrader websocket.Upgrader
	logger   logger.Interface
}

// NewWebsocketHandler creates the websocket handler.
func NewWebsocketHandler(n *notifier.Notifier, log logger.Interface) *WebsocketHandler {
	return &WebsocketHandler{
		notifier: n,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// Tokens, not origins, gate this endpoint.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		logger: log,
	}
}

// Subscribe handles GET /notifiers/websocket. The channel is claimed
// before the upgrade so a duplicate connection still gets a proper 409
// response.
func (h *WebsocketHandler) Subscribe(c *gin.Context) {
	claims, err := middleware.ClaimsFrom(c)
	if err != nil {
		utils.Error(c, err)
		return
	}

	ch, err := h.notifier.Register(claims.ClientID)
	if err != nil {
		utils.Error(c, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.notifier.Unregister(claims.ClientID)
		h.logger.Warnw("websocket upgrade failed", "client_id", claims.ClientID, "error", err)
		return
	}

	h.logger.Infow("websocket subscriber connected", "client_id", claims.ClientID)
	go h.writeLoop(claims.ClientID, conn, ch)
	go h.readLoop(claims.ClientID, conn)
}

// writeLoop drains the notification channel onto the connection until
// the channel closes or a write fails.
func (h *WebsocketHandler) writeLoop(clientID string, conn *websocket.Conn, ch <-chan wire.Notification) {
	for notification := range ch {
		_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteJSON(notification); err != nil {
			h.logger.Warnw("websocket write failed", "client_id", clientID, "error", err)
			h.notifier.Unregister(clientID)
			_ = conn.Close()
			return
		}
	}
	// Channel closed by Unregister; say goodbye cleanly.
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	_ = conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	_ = conn.Close()
}

// readLoop discards inbound frames. The read keeps the connection's
// close handshake working and tears the registration down on EOF.
func (h *WebsocketHandler) readLoop(clientID string, conn *websocket.Conn) {
	defer func() {
		h.notifier.Unregister(clientID)
		h.logger.Infow("websocket subscriber disconnected", "client_id", clientID)
	}()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
