package openadr3

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"

	"openadr/internal/wire"
)

// Notifications connects to the VTN's WebSocket endpoint and streams the
// notifications matching the caller's subscriptions. The channel closes
// when the context is cancelled or the connection drops.
func (c *Client) Notifications(ctx context.Context) (<-chan wire.Notification, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	wsURL := c.baseURL + "/notifiers/websocket"
	switch {
	case strings.HasPrefix(wsURL, "https://"):
		wsURL = "wss://" + strings.TrimPrefix(wsURL, "https://")
	case strings.HasPrefix(wsURL, "http://"):
		wsURL = "ws://" + strings.TrimPrefix(wsURL, "http://")
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("failed to open notification stream: %w (status %d)", err, resp.StatusCode)
		}
		return nil, fmt.Errorf("failed to open notification stream: %w", err)
	}

	out := make(chan wire.Notification)
	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()
	go func() {
		defer close(out)
		defer conn.Close()
		for {
			var notification wire.Notification
			if err := conn.ReadJSON(&notification); err != nil {
				if ctx.Err() == nil && !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
					c.logger.Warnw("notification stream closed", "error", err)
				}
				return
			}
			select {
			case out <- notification:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}
