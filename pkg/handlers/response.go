package handlers

import (
	"encoding/json"
	"errors"

	"github.com/backsoul/quizwidget/pkg/models"
	"github.com/backsoul/quizwidget/pkg/quiz"
	"github.com/backsoul/quizwidget/pkg/services"
	"github.com/valyala/fasthttp"
)

// respondWithJSON envía una respuesta JSON
func respondWithJSON(ctx *fasthttp.RequestCtx, statusCode int, response interface{}) {
	jsonData, err := json.Marshal(response)
	if err != nil {
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		ctx.SetContentType("application/json")
		ctx.SetBodyString(`{"success": false, "error": "error serializing response"}`)
		return
	}

	ctx.SetStatusCode(statusCode)
	ctx.SetContentType("application/json")
	ctx.SetBody(jsonData)
}

// respondWithError envía una respuesta de error
func respondWithError(ctx *fasthttp.RequestCtx, statusCode int, message string) {
	respondWithJSON(ctx, statusCode, models.APIResponse{
		Success: false,
		Error:   message,
	})
}

// respondWithSuccess envía una respuesta exitosa
func respondWithSuccess(ctx *fasthttp.RequestCtx, data interface{}, message string) {
	respondWithJSON(ctx, fasthttp.StatusOK, models.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// statusFor traduce errores del dominio a códigos HTTP
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrWidgetNotFound):
		return fasthttp.StatusNotFound
	case errors.Is(err, quiz.ErrUnknownOption):
		return fasthttp.StatusBadRequest
	case errors.Is(err, quiz.ErrNotInProgress), errors.Is(err, quiz.ErrNotCompleted):
		return fasthttp.StatusConflict
	default:
		return fasthttp.StatusInternalServerError
	}
}
