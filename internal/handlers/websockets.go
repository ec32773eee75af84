package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"cozy_nook/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Send/receive timing configuration and message size limits.
const (
	writeWait        = 10 * time.Second
	pongWait         = 60 * time.Second
	pingPeriod       = (pongWait * 9) / 10
	maxMsgSize       = 1 << 12 // 4 KB
	defaultInterval  = 250 * time.Millisecond
	maxInterval      = 10 * time.Second
	maxIntervalMilli = 10_000 // 10s in ms
)

// Envelope used for WebSocket messages.
type wsEnvelope struct {
	Type  string      `json:"type"`
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true }, // TODO: restrict to the storefront origin once it is configurable
}

// @Summary      Change stream
// @Description  Sends a products snapshot, then one "change" message per written collection. Changes are batched per ?interval (default 250ms); a products change also resends the snapshot.
// @Tags         system
// @Param        interval     query  string  false  "Batching window, e.g. 500ms"
// @Param        interval_ms  query  int     false  "Batching window in milliseconds"
// @Router       /ws [get]
func (h *Handler) wsConnect(c *gin.Context) {
	interval := h.parseInterval(c)

	changes, unsubscribe := h.services.Subscribe()
	defer unsubscribe()

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		if h.log != nil {
			h.log.Errorw("ws_upgrade_failed", "err", err)
		}
		return
	}
	defer func() { _ = conn.Close() }()

	conn.SetReadLimit(maxMsgSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	done := make(chan struct{})
	go h.startReader(conn, done)

	ticker := time.NewTicker(interval)
	ping := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		ping.Stop()
	}()

	if err := h.sendProducts(c.Request.Context(), conn); err != nil {
		if h.log != nil {
			h.log.Infow("ws_write_failed_initial", "err", err)
		}
		return
	}

	// topic -> latest change, flushed once per tick
	pending := make(map[string]service.Change)
	var order []string

	for {
		select {
		case <-done:
			return
		case <-c.Request.Context().Done():
			return
		case ch, ok := <-changes:
			if !ok {
				return
			}
			if _, seen := pending[ch.Topic]; !seen {
				order = append(order, ch.Topic)
			}
			pending[ch.Topic] = ch
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				if h.log != nil {
					h.log.Infow("ws_ping_failed", "err", err)
				}
				return
			}
		case <-ticker.C:
			if len(order) == 0 {
				continue
			}
			if err := h.flushChanges(c.Request.Context(), conn, order, pending); err != nil {
				if h.log != nil {
					h.log.Infow("ws_write_failed", "err", err)
				}
				return
			}
			pending = make(map[string]service.Change)
			order = order[:0]
		}
	}
}

// parseInterval reads ?interval=2s or ?interval_ms=2000 with bounds.
func (h *Handler) parseInterval(c *gin.Context) time.Duration {
	interval := defaultInterval

	if s := c.Query("interval"); s != "" {
		if d, err := time.ParseDuration(s); err == nil && d > 0 && d <= maxInterval {
			return d
		}
	}

	if ms := c.Query("interval_ms"); ms != "" {
		if v, err := strconv.Atoi(ms); err == nil && v > 0 && v <= maxIntervalMilli {
			return time.Duration(v) * time.Millisecond
		}
	}

	return interval
}

// startReader drains incoming messages to handle control frames and detect closure.
func (h *Handler) startReader(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if h.log != nil {
				h.log.Infow("ws_read_closed", "err", err)
			}
			return
		}
	}
}

func (h *Handler) flushChanges(ctx context.Context, conn *websocket.Conn, order []string, pending map[string]service.Change) error {
	for _, topic := range order {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(wsEnvelope{Type: "change", Data: pending[topic]}); err != nil {
			return err
		}
		if topic == service.TopicProducts {
			if err := h.sendProducts(ctx, conn); err != nil {
				return err
			}
		}
	}
	return nil
}

// sendProducts writes the current catalog with a write deadline.
func (h *Handler) sendProducts(ctx context.Context, conn *websocket.Conn) error {
	products, err := h.services.ListProducts(ctx)
	if err != nil {
		if h.log != nil {
			h.log.Errorw("ws_list_products_failed", "err", err)
		}
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(wsEnvelope{Type: "products", Data: products})
}
