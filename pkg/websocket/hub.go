package websocket

import (
	"encoding/json"
	"time"

	"github.com/backsoul/quizwidget/pkg/models"
	"github.com/fasthttp/websocket"
	"go.uber.org/zap"
)

// Tiempo máximo para escribir un mensaje a un cliente
const writeWait = 10 * time.Second

// Capacidad de la cola de publicaciones pendientes
const broadcastBuffer = 64

// Conn lo mínimo que el hub necesita de una conexión
type Conn interface {
	SetWriteDeadline(t time.Time) error
	WriteMessage(messageType int, data []byte) error
	Close() error
}

type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type subscription struct {
	widgetID string
	conn     Conn
}

type publication struct {
	widgetID string
	payload  []byte
}

// Hub reparte los cambios de estado de cada widget a sus conexiones abiertas
type Hub struct {
	clients    map[string]map[Conn]bool
	broadcast  chan publication
	register   chan subscription
	unregister chan subscription
	done       chan struct{}
	logger     *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]map[Conn]bool),
		broadcast:  make(chan publication, broadcastBuffer),
		register:   make(chan subscription),
		unregister: make(chan subscription),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run procesa registros y publicaciones hasta Stop
func (h *Hub) Run() {
	for {
		select {
		case sub := <-h.register:
			conns, ok := h.clients[sub.widgetID]
			if !ok {
				conns = make(map[Conn]bool)
				h.clients[sub.widgetID] = conns
			}
			conns[sub.conn] = true
			h.logger.Debug("cliente WebSocket conectado",
				zap.String("widget_id", sub.widgetID),
				zap.Int("total", len(conns)),
			)

		case sub := <-h.unregister:
			h.remove(sub.widgetID, sub.conn)

		case pub := <-h.broadcast:
			for conn := range h.clients[pub.widgetID] {
				if err := h.write(conn, pub.payload); err != nil {
					h.logger.Warn("error enviando mensaje WebSocket",
						zap.String("widget_id", pub.widgetID),
						zap.Error(err),
					)
					h.remove(pub.widgetID, conn)
				}
			}

		case <-h.done:
			for widgetID, conns := range h.clients {
				for conn := range conns {
					_ = conn.Close()
				}
				delete(h.clients, widgetID)
			}
			return
		}
	}
}

// write escribe con deadline; un error saca al cliente del hub
func (h *Hub) write(conn Conn, payload []byte) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, payload)
}

func (h *Hub) remove(widgetID string, conn Conn) {
	conns, ok := h.clients[widgetID]
	if !ok || !conns[conn] {
		return
	}
	delete(conns, conn)
	_ = conn.Close()
	if len(conns) == 0 {
		delete(h.clients, widgetID)
	}
	h.logger.Debug("cliente WebSocket desconectado", zap.String("widget_id", widgetID))
}

// Stop termina Run y cierra todas las conexiones
func (h *Hub) Stop() {
	close(h.done)
}

func (h *Hub) Register(widgetID string, conn Conn) {
	select {
	case h.register <- subscription{widgetID: widgetID, conn: conn}:
	case <-h.done:
	}
}

func (h *Hub) Unregister(widgetID string, conn Conn) {
	select {
	case h.unregister <- subscription{widgetID: widgetID, conn: conn}:
	case <-h.done:
	}
}

// Publish envía el nuevo estado del widget a sus suscriptores.
// Nunca bloquea: con la cola llena la publicación se descarta.
func (h *Hub) Publish(widgetID string, view models.WidgetView) {
	data, err := json.Marshal(Message{Type: "state", Data: view})
	if err != nil {
		h.logger.Error("error serializando mensaje", zap.Error(err))
		return
	}

	select {
	case <-h.done:
		return
	default:
	}

	select {
	case h.broadcast <- publication{widgetID: widgetID, payload: data}:
	default:
		h.logger.Warn("cola de WebSocket llena, publicación descartada", zap.String("widget_id", widgetID))
	}
}
