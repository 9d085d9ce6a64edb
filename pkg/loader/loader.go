package loader

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/backsoul/quizwidget/pkg/models"
	"github.com/valyala/fasthttp"
)

const (
	DefaultTimeout = 10 * time.Second

	placeholderQuestion = "No question text"
	placeholderOption   = "No Answer Text"
)

// NetworkError el servidor respondió con un estado no exitoso o la petición no llegó
type NetworkError struct {
	StatusCode int
	Status     string
	Err        error
}

func (e *NetworkError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return "Failed to fetch: " + e.Status
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ParseError el cuerpo no es un JSON válido
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Loader hace el único GET del documento del quiz
type Loader struct {
	client  *fasthttp.Client
	timeout time.Duration
}

// NewLoader crea un loader. Un client nil usa uno por defecto.
func NewLoader(client *fasthttp.Client, timeout time.Duration) *Loader {
	if client == nil {
		client = &fasthttp.Client{Name: "quizwidget-loader"}
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Loader{
		client:  client,
		timeout: timeout,
	}
}

// Load pide el documento y aplica los valores por defecto de cada pregunta
func (l *Loader) Load(ctx context.Context, url string) (*models.QuizDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, &NetworkError{Err: err}
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")

	deadline := time.Now().Add(l.timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}

	if err := l.client.DoDeadline(req, resp, deadline); err != nil {
		return nil, &NetworkError{Err: fmt.Errorf("Failed to fetch: %w", err)}
	}

	status := resp.StatusCode()
	if status < 200 || status > 299 {
		return nil, &NetworkError{
			StatusCode: status,
			Status:     fasthttp.StatusMessage(status),
		}
	}

	return Parse(resp.Body())
}

// Parse decodifica el documento del quiz. Un campo questions ausente es una lista vacía.
func Parse(body []byte) (*models.QuizDocument, error) {
	var doc models.QuizDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, &ParseError{Err: err}
	}

	doc.Questions = normalize(doc.Questions)
	return &doc, nil
}

func normalize(questions []models.Question) []models.Question {
	if questions == nil {
		return []models.Question{}
	}

	for i := range questions {
		q := &questions[i]
		if q.Description == "" {
			q.Description = placeholderQuestion
		}
		// Toda pregunta tiene al menos una opción
		if len(q.Options) == 0 {
			q.Options = []models.Option{{Description: placeholderOption}}
		}
		for j := range q.Options {
			if q.Options[j].Description == "" {
				q.Options[j].Description = placeholderOption
			}
		}
	}
	return questions
}
