package handlers

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"strconv"

	"github.com/backsoul/quizwidget/pkg/services"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

//go:embed templates/widget.html
var templateFS embed.FS

var widgetTemplate = template.Must(template.ParseFS(templateFS, "templates/widget.html"))

// WidgetHandler maneja la página del widget y sus acciones
type WidgetHandler struct {
	widgets *services.WidgetService
	cookies *SessionCookies
	logger  *zap.Logger
}

// NewWidgetHandler crea una nueva instancia del handler
func NewWidgetHandler(widgets *services.WidgetService, cookies *SessionCookies, logger *zap.Logger) *WidgetHandler {
	return &WidgetHandler{
		widgets: widgets,
		cookies: cookies,
		logger:  logger,
	}
}

// current obtiene el widget de la sesión. Con mount=true crea uno si no hay.
func (h *WidgetHandler) current(ctx *fasthttp.RequestCtx, mount bool) (*services.Widget, error) {
	if id, ok := h.cookies.Read(ctx); ok {
		widget, err := h.widgets.Get(ctx, id)
		if err == nil {
			return widget, nil
		}
		if !errors.Is(err, services.ErrWidgetNotFound) {
			return nil, err
		}
	}

	if !mount {
		return nil, services.ErrWidgetNotFound
	}
	return h.mount(ctx)
}

func (h *WidgetHandler) mount(ctx *fasthttp.RequestCtx) (*services.Widget, error) {
	widget, err := h.widgets.Create(ctx)
	if err != nil {
		return nil, err
	}
	if err := h.cookies.Write(ctx, widget.ID); err != nil {
		return nil, err
	}
	return widget, nil
}

// Page maneja GET /
func (h *WidgetHandler) Page(ctx *fasthttp.RequestCtx) {
	widget, err := h.current(ctx, true)
	if err != nil {
		h.logger.Error("error obteniendo widget", zap.Error(err))
		ctx.Error("widget unavailable", fasthttp.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := widgetTemplate.Execute(&buf, widget.View()); err != nil {
		h.logger.Error("error renderizando widget", zap.String("widget_id", widget.ID), zap.Error(err))
		ctx.Error("render failed", fasthttp.StatusInternalServerError)
		return
	}

	ctx.SetContentType("text/html; charset=utf-8")
	ctx.SetBody(buf.Bytes())
}

// Answer maneja POST /answer (formulario con el campo option)
func (h *WidgetHandler) Answer(ctx *fasthttp.RequestCtx) {
	defer ctx.Redirect("/", fasthttp.StatusSeeOther)

	id, ok := h.cookies.Read(ctx)
	if !ok {
		return
	}
	index, err := strconv.Atoi(string(ctx.FormValue("option")))
	if err != nil {
		return
	}

	if _, err := h.widgets.SelectOption(ctx, id, index); err != nil {
		h.logAction("answer", id, err)
	}
}

// Restart maneja POST /restart
func (h *WidgetHandler) Restart(ctx *fasthttp.RequestCtx) {
	defer ctx.Redirect("/", fasthttp.StatusSeeOther)

	id, ok := h.cookies.Read(ctx)
	if !ok {
		return
	}
	if _, err := h.widgets.Restart(ctx, id); err != nil {
		h.logAction("restart", id, err)
	}
}

// BalloonDone maneja POST /balloons/done, llamado al terminar la animación de un globo
func (h *WidgetHandler) BalloonDone(ctx *fasthttp.RequestCtx) {
	id, ok := h.cookies.Read(ctx)
	if !ok {
		respondWithError(ctx, fasthttp.StatusNotFound, "no widget for this session")
		return
	}

	key := string(ctx.FormValue("key"))
	if key == "" {
		respondWithError(ctx, fasthttp.StatusBadRequest, "balloon key is required")
		return
	}

	widget, err := h.widgets.BalloonDone(ctx, id, key)
	if err != nil {
		respondWithError(ctx, statusFor(err), err.Error())
		return
	}

	respondWithSuccess(ctx, map[string]interface{}{
		"remaining": len(widget.Balloons),
	}, "balloon removed")
}

// Mount maneja POST /api/widget: monta un widget nuevo para la sesión
func (h *WidgetHandler) Mount(ctx *fasthttp.RequestCtx) {
	widget, err := h.mount(ctx)
	if err != nil {
		respondWithError(ctx, statusFor(err), err.Error())
		return
	}
	respondWithSuccess(ctx, widget.View(), "widget mounted")
}

// State maneja GET /api/widget
func (h *WidgetHandler) State(ctx *fasthttp.RequestCtx) {
	widget, err := h.current(ctx, false)
	if err != nil {
		respondWithError(ctx, statusFor(err), err.Error())
		return
	}
	respondWithSuccess(ctx, widget.View(), "")
}

// AnswerJSON maneja POST /api/widget/answer con {"option": n}
func (h *WidgetHandler) AnswerJSON(ctx *fasthttp.RequestCtx) {
	var request struct {
		Option *int `json:"option"`
	}
	if err := json.Unmarshal(ctx.PostBody(), &request); err != nil || request.Option == nil {
		respondWithError(ctx, fasthttp.StatusBadRequest, `body must be {"option": <index>}`)
		return
	}

	id, ok := h.cookies.Read(ctx)
	if !ok {
		respondWithError(ctx, fasthttp.StatusNotFound, services.ErrWidgetNotFound.Error())
		return
	}

	widget, err := h.widgets.SelectOption(ctx, id, *request.Option)
	if err != nil {
		respondWithError(ctx, statusFor(err), err.Error())
		return
	}
	respondWithSuccess(ctx, widget.View(), "")
}

// RestartJSON maneja POST /api/widget/restart
func (h *WidgetHandler) RestartJSON(ctx *fasthttp.RequestCtx) {
	id, ok := h.cookies.Read(ctx)
	if !ok {
		respondWithError(ctx, fasthttp.StatusNotFound, services.ErrWidgetNotFound.Error())
		return
	}

	widget, err := h.widgets.Restart(ctx, id)
	if err != nil {
		respondWithError(ctx, statusFor(err), err.Error())
		return
	}
	respondWithSuccess(ctx, widget.View(), "")
}

// Unmount maneja DELETE /api/widget
func (h *WidgetHandler) Unmount(ctx *fasthttp.RequestCtx) {
	if id, ok := h.cookies.Read(ctx); ok {
		if err := h.widgets.Close(ctx, id); err != nil {
			respondWithError(ctx, fasthttp.StatusInternalServerError, err.Error())
			return
		}
	}
	h.cookies.Clear(ctx)
	respondWithSuccess(ctx, nil, "widget unmounted")
}

func (h *WidgetHandler) logAction(action, id string, err error) {
	if statusFor(err) == fasthttp.StatusInternalServerError {
		h.logger.Error("error en acción del widget", zap.String("action", action), zap.String("widget_id", id), zap.Error(err))
		return
	}
	h.logger.Debug("acción ignorada", zap.String("action", action), zap.String("widget_id", id), zap.Error(err))
}
