package handlers

import (
	"context"

	"github.com/backsoul/quizwidget/pkg/services"
	websocketHub "github.com/backsoul/quizwidget/pkg/websocket"
	"github.com/fasthttp/websocket"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

// LiveHandler empuja los cambios de estado del widget al navegador
type LiveHandler struct {
	widgets *services.WidgetService
	cookies *SessionCookies
	hub     *websocketHub.Hub
	logger  *zap.Logger
}

func NewLiveHandler(widgets *services.WidgetService, cookies *SessionCookies, hub *websocketHub.Hub, logger *zap.Logger) *LiveHandler {
	return &LiveHandler{
		widgets: widgets,
		cookies: cookies,
		hub:     hub,
		logger:  logger,
	}
}

var upgrader = websocket.FastHTTPUpgrader{
	CheckOrigin: func(ctx *fasthttp.RequestCtx) bool {
		return true
	},
}

// HandleWebSocket maneja GET /ws
func (h *LiveHandler) HandleWebSocket(ctx *fasthttp.RequestCtx) {
	id, ok := h.cookies.Read(ctx)
	if !ok {
		respondWithError(ctx, fasthttp.StatusNotFound, services.ErrWidgetNotFound.Error())
		return
	}

	if _, err := h.widgets.Get(ctx, id); err != nil {
		respondWithError(ctx, statusFor(err), err.Error())
		return
	}

	// ctx no se puede usar dentro del callback: la conexión ya fue secuestrada
	err := upgrader.Upgrade(ctx, func(ws *websocket.Conn) {
		h.hub.Register(id, ws)
		defer h.hub.Unregister(id, ws)

		// Estado actual tras registrarse, para no perder un cambio intermedio
		if err := h.widgets.Announce(context.Background(), id); err != nil {
			h.logger.Debug("widget no disponible para WebSocket", zap.String("widget_id", id), zap.Error(err))
			return
		}

		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				h.logger.Debug("WebSocket cerrado", zap.String("widget_id", id), zap.Error(err))
				return
			}
		}
	})
	if err != nil {
		h.logger.Warn("error upgrading to WebSocket", zap.Error(err))
	}
}
