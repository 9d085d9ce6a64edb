package handlers

import (
	"github.com/backsoul/quizwidget/pkg/services"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

// DocumentPath ruta fija desde la que el widget pide sus preguntas
const DocumentPath = "/Uw5CrX"

// QuestionHandler sirve el documento del quiz y el health check
type QuestionHandler struct {
	questionService *services.QuestionService
	widgetService   *services.WidgetService
	logger          *zap.Logger
}

// NewQuestionHandler crea una nueva instancia del handler
func NewQuestionHandler(questionService *services.QuestionService, widgetService *services.WidgetService, logger *zap.Logger) *QuestionHandler {
	return &QuestionHandler{
		questionService: questionService,
		widgetService:   widgetService,
		logger:          logger,
	}
}

// ServeDocument maneja GET /Uw5CrX
func (h *QuestionHandler) ServeDocument(ctx *fasthttp.RequestCtx) {
	data, err := h.questionService.Document()
	if err != nil {
		h.logger.Warn("documento del quiz no disponible", zap.Error(err))
		ctx.Error(fasthttp.StatusMessage(fasthttp.StatusInternalServerError), fasthttp.StatusInternalServerError)
		return
	}

	ctx.SetStatusCode(fasthttp.StatusOK)
	ctx.SetContentType("application/json")
	ctx.SetBody(data)
}

// HealthCheck maneja GET /api/health
func (h *QuestionHandler) HealthCheck(ctx *fasthttp.RequestCtx) {
	if err := h.widgetService.HealthCheck(ctx); err != nil {
		respondWithError(ctx, fasthttp.StatusServiceUnavailable, "store unavailable: "+err.Error())
		return
	}

	count, err := h.questionService.GetQuestionCount()
	if err != nil {
		respondWithError(ctx, fasthttp.StatusServiceUnavailable, "quiz document unavailable: "+err.Error())
		return
	}

	respondWithSuccess(ctx, map[string]interface{}{
		"status":    "healthy",
		"questions": count,
	}, "service is healthy")
}
