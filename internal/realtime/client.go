package realtime

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/noah-isme/pricelist-review-api/internal/dto"
	"github.com/noah-isme/pricelist-review-api/internal/models"
	"github.com/noah-isme/pricelist-review-api/internal/review"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	maxMessageSize = 4096
	sendBuffer     = 32
)

// CloseTokenExpired is the close code sent when the session's token expires.
const CloseTokenExpired = 4001

// Searcher runs a job search for a client.
type Searcher func(ctx context.Context, filters models.FilterState) (*dto.JobListResponse, error)

// Conn is the part of *websocket.Conn a Client uses.
type Conn interface {
	SetReadLimit(limit int64)
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetPongHandler(h func(appData string) error)
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

var _ Conn = (*websocket.Conn)(nil)

// ClientConfig tunes one connection.
type ClientConfig struct {
	Actor          string
	PingInterval   time.Duration
	SearchDebounce time.Duration
	// ExpiresAt is when the forwarded token stops being valid. The feed is
	// closed at that moment; zero means no limit.
	ExpiresAt time.Time
}

// Client is one websocket connection. It owns its hub registration and
// its search debouncer; Serve releases both when the connection ends.
type Client struct {
	hub    *Hub
	conn   Conn
	send   chan []byte
	closed chan struct{}
	once   sync.Once
	actor  string
	ping   time.Duration
	expiry time.Time
	cancel context.CancelFunc
	logger *zap.Logger

	search  *review.Debouncer[models.FilterState, *dto.JobListResponse]
	mu      sync.Mutex
	filters models.FilterState
}

// NewClient binds conn to hub. ctx scopes the client's searches and should
// carry the caller's upstream token.
func NewClient(ctx context.Context, hub *Hub, conn Conn, searcher Searcher, cfg ClientConfig) *Client {
	if cfg.PingInterval <= 0 || cfg.PingInterval >= pongWait {
		cfg.PingInterval = pongWait * 9 / 10
	}
	cancel := context.CancelFunc(func() {})
	if !cfg.ExpiresAt.IsZero() {
		ctx, cancel = context.WithDeadline(ctx, cfg.ExpiresAt)
	}
	c := &Client{
		hub:     hub,
		conn:    conn,
		send:    make(chan []byte, sendBuffer),
		closed:  make(chan struct{}),
		actor:   cfg.Actor,
		ping:    cfg.PingInterval,
		expiry:  cfg.ExpiresAt,
		cancel:  cancel,
		logger:  hub.logger.With(zap.String("actor", cfg.Actor)),
		filters: models.DefaultFilterState(),
	}
	c.search = review.NewDebouncer[models.FilterState, *dto.JobListResponse](ctx, cfg.SearchDebounce, searcher, c.deliverSearch)
	return c
}

// Serve registers the client and pumps messages until the connection
// closes. All resources are released before it returns.
func (c *Client) Serve() {
	defer c.conn.Close()
	defer c.cancel()
	defer c.search.Stop()
	if !c.hub.add(c) {
		return
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		c.writePump()
	}()

	c.readPump()

	c.hub.remove(c)
	c.stop()
	<-done
}

// stop signals the write pump to send a close frame and exit.
func (c *Client) stop() {
	c.once.Do(func() { close(c.closed) })
}

func (c *Client) readPump() {
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info("live feed read failed", zap.Error(err))
			}
			return
		}
		c.handle(raw)
	}
}

// writePump closes the connection on exit, which also ends readPump.
func (c *Client) writePump() {
	ticker := time.NewTicker(c.ping)
	var expired <-chan time.Time
	if !c.expiry.IsZero() {
		timer := time.NewTimer(time.Until(c.expiry))
		defer timer.Stop()
		expired = timer.C
	}
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case <-expired:
			c.logger.Info("live feed token expired")
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(CloseTokenExpired, "token expired"))
			return
		case <-c.closed:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) handle(raw []byte) {
	var msg inbound
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.reply(EventError, ErrorPayload{Message: "malformed message"})
		return
	}
	switch msg.Type {
	case "search":
		filters, err := c.nextFilters(msg)
		if err != nil {
			c.reply(EventError, ErrorPayload{Message: err.Error()})
			return
		}
		c.search.Submit(filters)
	case "clear":
		c.mu.Lock()
		c.filters.Clear()
		filters := c.filters
		c.mu.Unlock()
		c.search.Submit(filters)
	default:
		c.reply(EventError, ErrorPayload{Message: "unknown message type"})
	}
}

// nextFilters applies msg to the session's filters. Any change to a filter
// input resets the page to 1.
func (c *Client) nextFilters(msg inbound) (models.FilterState, error) {
	next := models.FilterState{
		SearchQuery:  strings.TrimSpace(msg.Query),
		ClientFilter: orAll(msg.Client),
		StatusFilter: orAll(msg.Status),
		CurrentPage:  msg.Page,
		Sort:         models.SortConfig{Key: msg.SortKey, Direction: models.SortDirection(msg.SortDir)},
	}
	var err error
	if next.DateFrom, err = models.ParseDateBound(msg.DateFrom, false); err != nil {
		return next, err
	}
	if next.DateTo, err = models.ParseDateBound(msg.DateTo, true); err != nil {
		return next, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if next.Sort.Key == "" {
		next.Sort = c.filters.Sort
	}
	if next.CurrentPage < 1 || !next.SameFilters(c.filters) {
		next.CurrentPage = 1
	}
	c.filters = next
	return next, nil
}

func (c *Client) deliverSearch(result *dto.JobListResponse, err error) {
	if err != nil {
		c.reply(EventError, ErrorPayload{Message: err.Error()})
		return
	}
	c.reply(EventSearchResults, result)
}

// reply queues a message for this client only. It drops the message if
// the client is not keeping up.
func (c *Client) reply(eventType string, payload interface{}) {
	msg, err := encode(eventType, payload)
	if err != nil {
		c.logger.Error("encode reply", zap.Error(err))
		return
	}
	select {
	case <-c.closed:
	case c.send <- msg:
	default:
	}
}

func orAll(v string) string {
	if v = strings.TrimSpace(v); v == "" {
		return models.FilterAll
	}
	return v
}
