// Package ws fans order status events out to websocket subscribers.
//
// The sandbox API runs one Hub; each connection subscribes to a single topic
// (an order id) and receives every message published to it:
//
//	hub := ws.NewHub()
//	go hub.Run(ctx)
//
//	// GET /orders/{id}/live
//	ws.Upgrade(w, r, hub, "order:"+id)
//
//	// on status change
//	hub.Publish("order:"+id, payload)
//
// Clients read a topic with Subscribe.
package ws

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/sparkcrackers/storefront/pkg/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024
	sendBuffer     = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// SetCheckOrigin replaces the default allow-all origin check.
func SetCheckOrigin(fn func(r *http.Request) bool) {
	upgrader.CheckOrigin = fn
}

// ─── Client ───────────────────────────────────────────────────────────────────

type client struct {
	hub   *Hub
	topic string
	conn  *websocket.Conn
	send  chan []byte
}

// readPump only services control frames; subscribers never send data.
func (c *client) readPump() {
	defer func() {
		c.hub.leave(c)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("ws: unexpected close", "topic", c.topic, "error", err)
			}
			return
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ─── Hub ──────────────────────────────────────────────────────────────────────

type publication struct {
	topic string
	data  []byte
}

// Hub tracks subscribers per topic. All state is owned by Run.
type Hub struct {
	topics     map[string]map[*client]bool
	register   chan *client
	unregister chan *client
	publish    chan publication
	done       chan struct{}
	count      chan chan int
}

func NewHub() *Hub {
	return &Hub{
		topics:     make(map[string]map[*client]bool),
		register:   make(chan *client),
		unregister: make(chan *client),
		publish:    make(chan publication, 64),
		done:       make(chan struct{}),
		count:      make(chan chan int),
	}
}

// Run serves the hub until ctx is cancelled, then closes every subscriber.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for _, subs := range h.topics {
				for c := range subs {
					close(c.send)
				}
			}
			h.topics = map[string]map[*client]bool{}
			return

		case c := <-h.register:
			if h.topics[c.topic] == nil {
				h.topics[c.topic] = make(map[*client]bool)
			}
			h.topics[c.topic][c] = true

		case c := <-h.unregister:
			if subs, ok := h.topics[c.topic]; ok && subs[c] {
				delete(subs, c)
				close(c.send)
				if len(subs) == 0 {
					delete(h.topics, c.topic)
				}
			}

		case p := <-h.publish:
			for c := range h.topics[p.topic] {
				select {
				case c.send <- p.data:
				default:
					delete(h.topics[p.topic], c)
					close(c.send)
				}
			}

		case reply := <-h.count:
			n := 0
			for _, subs := range h.topics {
				n += len(subs)
			}
			reply <- n
		}
	}
}

// Publish queues data for every subscriber of topic. It never blocks once
// the hub has stopped.
func (h *Hub) Publish(topic string, data []byte) {
	select {
	case h.publish <- publication{topic: topic, data: data}:
	case <-h.done:
	}
}

// Subscribers returns the number of connected subscribers, or 0 once the hub
// has stopped.
func (h *Hub) Subscribers() int {
	reply := make(chan int, 1)
	select {
	case h.count <- reply:
		return <-reply
	case <-h.done:
		return 0
	}
}

func (h *Hub) join(c *client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) leave(c *client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Upgrade switches the request to a websocket subscribed to topic. Any
// greeting messages are sent to this subscriber before published ones.
func Upgrade(w http.ResponseWriter, r *http.Request, hub *Hub, topic string, greeting ...[]byte) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.WithCtx(r.Context()).Error("ws: upgrade failed", "error", err)
		return
	}
	c := &client{hub: hub, topic: topic, conn: conn, send: make(chan []byte, sendBuffer)}
	for _, msg := range greeting {
		if len(c.send) < cap(c.send) {
			c.send <- msg
		}
	}
	if !hub.join(c) {
		conn.Close()
		return
	}
	go c.writePump()
	go c.readPump()
}

// Subscribe dials url and calls fn for every text message until the server
// closes the stream, fn returns false, or ctx is cancelled. A normal close
// from the server returns nil.
func Subscribe(ctx context.Context, url string, header http.Header, fn func([]byte) bool) error {
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, url, header)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		if resp != nil {
			return &DialError{Status: resp.StatusCode, Err: err}
		}
		return err
	}

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second))
			conn.Close()
		case <-stop:
		}
	}()
	defer conn.Close()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return err
		}
		if !fn(msg) {
			return nil
		}
	}
}

// DialError reports a handshake rejected with an HTTP status.
type DialError struct {
	Status int
	Err    error
}

func (e *DialError) Error() string { return e.Err.Error() }
func (e *DialError) Unwrap() error { return e.Err }
