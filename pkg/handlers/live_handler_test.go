package handlers

import (
	"context"
	"net"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/backsoul/quizwidget/pkg/models"
	"github.com/backsoul/quizwidget/pkg/services"
	"github.com/fasthttp/websocket"
	"github.com/valyala/fasthttp"
)

// hookStore ejecuta onLoad una única vez, en la siguiente lectura
type hookStore struct {
	*services.MemoryStore
	mu     sync.Mutex
	onLoad func()
}

func (s *hookStore) arm(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onLoad = fn
}

func (s *hookStore) Load(ctx context.Context, id string) (*services.Widget, error) {
	s.mu.Lock()
	hook := s.onLoad
	s.onLoad = nil
	s.mu.Unlock()

	if hook != nil {
		hook()
	}
	return s.MemoryStore.Load(ctx, id)
}

func oneQuestionDoc() *models.QuizDocument {
	return &models.QuizDocument{Questions: []models.Question{{
		Description: "2+2?",
		Options:     []models.Option{{Description: "4", IsCorrect: true}, {Description: "5"}},
	}}}
}

func dialLive(t *testing.T, s *testServer, cookie string) *websocket.Conn {
	t.Helper()

	dialer := websocket.Dialer{
		NetDial: func(network, addr string) (net.Conn, error) {
			return s.ln.Dial()
		},
		HandshakeTimeout: time.Second,
	}
	header := http.Header{}
	header.Set("Cookie", sessionCookieName+"="+cookie)

	conn, _, err := dialer.Dial("ws://quiz.local/ws", header)
	if err != nil {
		t.Fatalf("dial /ws: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readState(t *testing.T, conn *websocket.Conn) models.WidgetView {
	t.Helper()

	if err := conn.SetReadDeadline(time.Now().Add(2 * time.Second)); err != nil {
		t.Fatalf("SetReadDeadline: %v", err)
	}
	var msg struct {
		Type string            `json:"type"`
		Data models.WidgetView `json:"data"`
	}
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if msg.Type != "state" {
		t.Fatalf("message type = %q, want state", msg.Type)
	}
	return msg.Data
}

func TestLiveStreamsStateChanges(t *testing.T) {
	gate := make(chan struct{})
	s := newTestServer(t, &stubLoader{doc: oneQuestionDoc(), gate: gate})

	mounted := s.do(t, fasthttp.MethodPost, "/api/widget", "", "", "")
	if mounted.status != fasthttp.StatusOK {
		t.Fatalf("mount = %d", mounted.status)
	}

	conn := dialLive(t, s, mounted.cookie)
	if view := readState(t, conn); view.Status != "loading" {
		t.Fatalf("first state = %q, want loading", view.Status)
	}

	close(gate)
	view := readState(t, conn)
	if view.Status != "in_progress" || view.QuestionNumber != 1 || view.Question != "2+2?" {
		t.Fatalf("unexpected state after load %+v", view)
	}

	answered := s.do(t, fasthttp.MethodPost, "/api/widget/answer", "application/json", `{"option": 0}`, mounted.cookie)
	if answered.status != fasthttp.StatusOK {
		t.Fatalf("answer = %d: %s", answered.status, answered.body)
	}
	view = readState(t, conn)
	if view.Status != "completed" || view.Score != 10 {
		t.Fatalf("unexpected state after answer %+v", view)
	}
}

func TestLiveSendsStateSettledDuringHandshake(t *testing.T) {
	gate := make(chan struct{})
	store := &hookStore{MemoryStore: services.NewMemoryStore()}
	s := newTestServerWithStore(t, &stubLoader{doc: oneQuestionDoc(), gate: gate}, store)

	mounted := s.do(t, fasthttp.MethodPost, "/api/widget", "", "", "")
	if mounted.status != fasthttp.StatusOK {
		t.Fatalf("mount = %d", mounted.status)
	}

	// La carga termina justo después de que /ws lee el widget y antes del registro en el hub
	store.arm(func() {
		close(gate)
		s.widgets.Wait()
	})

	conn := dialLive(t, s, mounted.cookie)
	if view := readState(t, conn); view.Status != "in_progress" {
		t.Fatalf("first state = %q, want in_progress", view.Status)
	}
}
