package handlers

import (
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

// Router enruta las peticiones a los handlers
type Router struct {
	widgets   *WidgetHandler
	questions *QuestionHandler
	live      *LiveHandler
	logger    *zap.Logger
}

func NewRouter(widgets *WidgetHandler, questions *QuestionHandler, live *LiveHandler, logger *zap.Logger) *Router {
	return &Router{
		widgets:   widgets,
		questions: questions,
		live:      live,
		logger:    logger,
	}
}

// Handle es el fasthttp.RequestHandler del servidor
func (r *Router) Handle(ctx *fasthttp.RequestCtx) {
	start := time.Now()
	path := string(ctx.Path())
	method := string(ctx.Method())

	ctx.Response.Header.Set("Server", "Quiz-Widget/1.0")
	ctx.Response.Header.Set("Cache-Control", "no-cache")

	switch {
	// Página del widget y acciones de formulario
	case path == "/" && method == fasthttp.MethodGet:
		r.widgets.Page(ctx)
	case path == "/answer" && method == fasthttp.MethodPost:
		r.widgets.Answer(ctx)
	case path == "/restart" && method == fasthttp.MethodPost:
		r.widgets.Restart(ctx)
	case path == "/balloons/done" && method == fasthttp.MethodPost:
		r.widgets.BalloonDone(ctx)
	case path == "/favicon.ico":
		ctx.SetStatusCode(fasthttp.StatusNotFound)

	// Documento del quiz
	case path == DocumentPath && method == fasthttp.MethodGet:
		r.questions.ServeDocument(ctx)

	// API Routes
	case path == "/api/health" && method == fasthttp.MethodGet:
		r.questions.HealthCheck(ctx)
	case path == "/api/widget" && method == fasthttp.MethodGet:
		r.widgets.State(ctx)
	case path == "/api/widget" && method == fasthttp.MethodPost:
		r.widgets.Mount(ctx)
	case path == "/api/widget" && method == fasthttp.MethodDelete:
		r.widgets.Unmount(ctx)
	case path == "/api/widget/answer" && method == fasthttp.MethodPost:
		r.widgets.AnswerJSON(ctx)
	case path == "/api/widget/restart" && method == fasthttp.MethodPost:
		r.widgets.RestartJSON(ctx)

	// WebSocket Route
	case path == "/ws":
		r.live.HandleWebSocket(ctx)

	default:
		serve404(ctx)
	}

	r.logger.Debug("request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", ctx.Response.StatusCode()),
		zap.Duration("elapsed", time.Since(start)),
	)
}

func serve404(ctx *fasthttp.RequestCtx) {
	ctx.SetStatusCode(fasthttp.StatusNotFound)
	ctx.SetContentType("text/html; charset=utf-8")
	ctx.SetBodyString(`<!DOCTYPE html>
<html>
<head><title>404 - Page not found</title></head>
<body style="font-family: Arial, sans-serif; text-align: center; padding: 50px;">
	<h1>404 - Page not found</h1>
	<p><a href="/">Back to the quiz</a></p>
</body>
</html>`)
}
