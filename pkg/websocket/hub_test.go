package websocket

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/backsoul/quizwidget/pkg/models"
	"go.uber.org/zap"
)

type fakeConn struct {
	mu       sync.Mutex
	messages [][]byte
	deadline time.Time
	closed   bool
	fail     bool
	written  chan struct{}
}

func newFakeConn() *fakeConn {
	return &fakeConn{written: make(chan struct{}, 16)}
}

func (c *fakeConn) SetWriteDeadline(t time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deadline = t
	return nil
}

func (c *fakeConn) WriteMessage(_ int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return errors.New("broken pipe")
	}
	c.messages = append(c.messages, data)
	c.written <- struct{}{}
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func waitWrite(t *testing.T, c *fakeConn) {
	t.Helper()
	select {
	case <-c.written:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
	}
}

func TestPublishReachesOnlyWidgetSubscribers(t *testing.T) {
	hub := NewHub(zap.NewNop())
	go hub.Run()
	defer hub.Stop()

	mine, other := newFakeConn(), newFakeConn()
	hub.Register("w1", mine)
	hub.Register("w2", other)

	hub.Publish("w1", models.WidgetView{ID: "w1", Status: "completed", Score: 70})
	waitWrite(t, mine)

	var msg struct {
		Type string            `json:"type"`
		Data models.WidgetView `json:"data"`
	}
	mine.mu.Lock()
	err := json.Unmarshal(mine.messages[0], &msg)
	mine.mu.Unlock()
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if msg.Type != "state" || msg.Data.Score != 70 {
		t.Fatalf("unexpected message %+v", msg)
	}
	mine.mu.Lock()
	deadline := mine.deadline
	mine.mu.Unlock()
	if deadline.IsZero() {
		t.Fatal("write deadline was not set")
	}

	// Un publish posterior a w2 demuestra que el anterior no le llegó
	hub.Publish("w2", models.WidgetView{ID: "w2"})
	waitWrite(t, other)
	other.mu.Lock()
	n := len(other.messages)
	other.mu.Unlock()
	if n != 1 {
		t.Fatalf("w2 received %d messages, want 1", n)
	}
}

func TestFailingConnectionIsDropped(t *testing.T) {
	hub := NewHub(zap.NewNop())
	go hub.Run()
	defer hub.Stop()

	broken := newFakeConn()
	broken.fail = true
	healthy := newFakeConn()
	hub.Register("w1", broken)
	hub.Register("w1", healthy)

	hub.Publish("w1", models.WidgetView{ID: "w1"})
	waitWrite(t, healthy)

	// El hub procesa en orden: tras este registro el broadcast anterior ya terminó
	hub.Register("w9", newFakeConn())
	if !broken.isClosed() {
		t.Fatal("failing connection should be closed")
	}
}

func TestStopClosesConnections(t *testing.T) {
	hub := NewHub(zap.NewNop())
	finished := make(chan struct{})
	go func() {
		hub.Run()
		close(finished)
	}()

	conn := newFakeConn()
	hub.Register("w1", conn)
	hub.Stop()

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after Stop")
	}
	if !conn.isClosed() {
		t.Fatal("connection should be closed on Stop")
	}

	// Después de Stop no bloquea
	hub.Publish("w1", models.WidgetView{})
	hub.Unregister("w1", conn)
}

// stalledConn simula un cliente cuyo buffer TCP no avanza
type stalledConn struct {
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (c *stalledConn) SetWriteDeadline(time.Time) error { return nil }

func (c *stalledConn) WriteMessage(int, []byte) error {
	c.once.Do(func() { close(c.entered) })
	<-c.release
	return nil
}

func (c *stalledConn) Close() error { return nil }

func TestPublishDoesNotBlockOnStalledClient(t *testing.T) {
	hub := NewHub(zap.NewNop())
	go hub.Run()
	defer hub.Stop()

	stalled := &stalledConn{entered: make(chan struct{}), release: make(chan struct{})}
	defer close(stalled.release)
	hub.Register("slow", stalled)

	hub.Publish("slow", models.WidgetView{ID: "slow"})
	select {
	case <-stalled.entered:
	case <-time.After(time.Second):
		t.Fatal("hub never wrote to the stalled client")
	}

	// Con el hub atascado, publicar para otro widget no debe bloquear aunque la cola se llene
	done := make(chan struct{})
	go func() {
		for i := 0; i < broadcastBuffer*2; i++ {
			hub.Publish("other", models.WidgetView{ID: "other"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked while the hub was stalled")
	}
}
