package realtime

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/pricelist-review-api/internal/dto"
	"github.com/noah-isme/pricelist-review-api/internal/models"
)

type fakeConn struct {
	incoming   chan []byte
	written    chan Envelope
	closeCodes chan int
	once       sync.Once
	closed     chan struct{}
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		incoming:   make(chan []byte, 8),
		written:    make(chan Envelope, 32),
		closeCodes: make(chan int, 4),
		closed:     make(chan struct{}),
	}
}

func (f *fakeConn) SetReadLimit(int64)                   {}
func (f *fakeConn) SetReadDeadline(time.Time) error      { return nil }
func (f *fakeConn) SetWriteDeadline(time.Time) error     { return nil }
func (f *fakeConn) SetPongHandler(func(string) error)    {}
func (f *fakeConn) Close() error                         { f.once.Do(func() { close(f.closed) }); return nil }

func (f *fakeConn) ReadMessage() (int, []byte, error) {
	select {
	case msg, ok := <-f.incoming:
		if !ok {
			return 0, nil, &websocket.CloseError{Code: websocket.CloseNormalClosure}
		}
		return websocket.TextMessage, msg, nil
	case <-f.closed:
		return 0, nil, errors.New("closed")
	}
}

func (f *fakeConn) WriteMessage(messageType int, data []byte) error {
	if messageType == websocket.CloseMessage && len(data) >= 2 {
		f.closeCodes <- int(binary.BigEndian.Uint16(data))
		return nil
	}
	if messageType != websocket.TextMessage {
		return nil
	}
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	f.written <- env
	return nil
}

func waitFor(t *testing.T, ch <-chan Envelope, eventType string) Envelope {
	t.Helper()
	deadline := time.After(time.Second)
	for {
		select {
		case env := <-ch:
			if env.Type == eventType {
				return env
			}
		case <-deadline:
			t.Fatalf("no %s event received", eventType)
		}
	}
}

func startHub(t *testing.T) *Hub {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	hub := NewHub(nil, nil)
	go hub.Run(ctx)
	return hub
}

func TestClientDebouncesSearchAndReleasesOnDisconnect(t *testing.T) {
	hub := startHub(t)
	var calls int32
	var lastQuery atomic.Value
	searcher := func(_ context.Context, filters models.FilterState) (*dto.JobListResponse, error) {
		atomic.AddInt32(&calls, 1)
		lastQuery.Store(filters.SearchQuery)
		return &dto.JobListResponse{Filters: filters, Total: 1}, nil
	}

	conn := newFakeConn()
	client := NewClient(context.Background(), hub, conn, searcher, ClientConfig{Actor: "tester", SearchDebounce: 40 * time.Millisecond})
	served := make(chan struct{})
	go func() {
		client.Serve()
		close(served)
	}()

	for _, q := range []string{"a", "ac", "acm", "acme"} {
		conn.incoming <- []byte(`{"type":"search","query":"` + q + `","page":3}`)
	}

	env := waitFor(t, conn.written, EventSearchResults)
	payload := env.Payload.(map[string]interface{})
	require.EqualValues(t, 1, payload["total"])
	require.Equal(t, "acme", lastQuery.Load())
	require.Equal(t, int32(1), atomic.LoadInt32(&calls))

	require.Eventually(t, func() bool { return hub.Count() == 1 }, time.Second, 10*time.Millisecond)
	close(conn.incoming)
	select {
	case <-served:
	case <-time.After(time.Second):
		t.Fatal("client did not shut down")
	}
	require.Eventually(t, func() bool { return hub.Count() == 0 }, time.Second, 10*time.Millisecond)
}

func TestClientClosesFeedWhenTokenExpires(t *testing.T) {
	hub := startHub(t)
	var searchErr atomic.Value
	searcher := func(ctx context.Context, _ models.FilterState) (*dto.JobListResponse, error) {
		<-ctx.Done()
		searchErr.Store(ctx.Err())
		return nil, ctx.Err()
	}

	conn := newFakeConn()
	client := NewClient(context.Background(), hub, conn, searcher, ClientConfig{
		SearchDebounce: 10 * time.Millisecond,
		ExpiresAt:      time.Now().Add(150 * time.Millisecond),
	})
	served := make(chan struct{})
	go func() {
		client.Serve()
		close(served)
	}()
	conn.incoming <- []byte(`{"type":"search","query":"acme"}`)

	select {
	case code := <-conn.closeCodes:
		require.Equal(t, CloseTokenExpired, code)
	case <-time.After(time.Second):
		t.Fatal("feed was not closed at token expiry")
	}
	select {
	case <-served:
	case <-time.After(time.Second):
		t.Fatal("client did not shut down")
	}
	require.Eventually(t, func() bool { return searchErr.Load() != nil }, time.Second, 10*time.Millisecond)
	require.Eventually(t, func() bool { return hub.Count() == 0 }, time.Second, 10*time.Millisecond)
}

func TestHubPublishReachesClients(t *testing.T) {
	hub := startHub(t)
	conn := newFakeConn()
	client := NewClient(context.Background(), hub, conn, nil, ClientConfig{Actor: "viewer"})
	go client.Serve()
	defer close(conn.incoming)

	require.Eventually(t, func() bool { return hub.Count() == 1 }, time.Second, 10*time.Millisecond)
	hub.Publish(EventJobStatus, JobStatusPayload{JobID: "42", Status: "rejected"})

	env := waitFor(t, conn.written, EventJobStatus)
	payload := env.Payload.(map[string]interface{})
	require.Equal(t, "42", payload["job_id"])
	require.Equal(t, "rejected", payload["status"])
}

func TestClientRejectsUnknownMessages(t *testing.T) {
	hub := startHub(t)
	conn := newFakeConn()
	client := NewClient(context.Background(), hub, conn, nil, ClientConfig{})
	go client.Serve()
	defer close(conn.incoming)

	conn.incoming <- []byte(`{"type":"subscribe"}`)
	env := waitFor(t, conn.written, EventError)
	require.Equal(t, "unknown message type", env.Payload.(map[string]interface{})["message"])

	conn.incoming <- []byte(`{"type":"search","date_from":"yesterday"}`)
	waitFor(t, conn.written, EventError)
}

func TestNextFiltersResetsPageOnFilterChange(t *testing.T) {
	hub := NewHub(nil, nil)
	client := NewClient(context.Background(), hub, newFakeConn(), nil, ClientConfig{})

	first, err := client.nextFilters(inbound{Query: "acme", Page: 4})
	require.NoError(t, err)
	require.Equal(t, 1, first.CurrentPage)

	same, err := client.nextFilters(inbound{Query: "acme", Page: 4})
	require.NoError(t, err)
	require.Equal(t, 4, same.CurrentPage)
	require.Equal(t, models.SortDesc, same.Sort.Direction)

	changed, err := client.nextFilters(inbound{Query: "acme", Status: "pending", Page: 4})
	require.NoError(t, err)
	require.Equal(t, 1, changed.CurrentPage)
	require.Equal(t, models.FilterAll, changed.ClientFilter)
}
