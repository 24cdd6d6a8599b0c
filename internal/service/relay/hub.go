package relay

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/KNICEX/scalp-runner/internal/metrics"
	"github.com/KNICEX/scalp-runner/internal/schedule"
	"github.com/gorilla/websocket"
)

var _ schedule.Task = (*Hub)(nil)

// Source 日志来源, 按顺序把每一行交给 fn
type Source interface {
	Drain(ctx context.Context, fn func(line string)) error
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub 把进度日志推给所有 websocket 客户端, 不补发断开期间的日志
type Hub struct {
	source     Source
	upgrader   websocket.Upgrader
	sendBuffer int
	writeWait  time.Duration

	mu      sync.Mutex
	clients map[*client]struct{}
	closed  bool
}

type Option func(h *Hub)

// WithSendBuffer 单个客户端的缓冲行数, 满了丢弃新行
func WithSendBuffer(n int) Option {
	return func(h *Hub) {
		if n > 0 {
			h.sendBuffer = n
		}
	}
}

func NewHub(source Source, opts ...Option) *Hub {
	h := &Hub{
		source: source,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		sendBuffer: 256,
		writeWait:  10 * time.Second,
		clients:    make(map[*client]struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Hub) Name() string {
	return "log relay hub"
}

// Run 消费日志直到 ctx 结束, 退出时断开所有客户端
func (h *Hub) Run(ctx context.Context) error {
	err := h.source.Drain(ctx, h.broadcast)
	h.shutdown()
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

func (h *Hub) broadcast(line string) {
	msg := []byte(line)
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			// 慢客户端只丢这一行
		}
	}
}

// Clients 当前连接数
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("fail to upgrade websocket", "error", err)
		return
	}
	c := &client{conn: conn, send: make(chan []byte, h.sendBuffer)}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		_ = conn.Close()
		return
	}
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	metrics.RelayClients.Inc()

	go h.writePump(c)
	h.readPump(c)
}

// readPump 只用来感知断开
func (h *Hub) readPump(c *client) {
	defer func() {
		h.unregister(c)
		_ = c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	defer c.conn.Close()
	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(h.writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
	_ = c.conn.SetWriteDeadline(time.Now().Add(h.writeWait))
	_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
	metrics.RelayClients.Dec()
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
		metrics.RelayClients.Dec()
	}
}
