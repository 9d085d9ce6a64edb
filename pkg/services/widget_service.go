package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/backsoul/quizwidget/pkg/celebration"
	"github.com/backsoul/quizwidget/pkg/models"
	"github.com/backsoul/quizwidget/pkg/quiz"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// QuizLoader obtiene el documento del quiz
type QuizLoader interface {
	Load(ctx context.Context, url string) (*models.QuizDocument, error)
}

// Publisher recibe cada nuevo estado del widget (p.ej. el hub de WebSocket).
// Se invoca con el mutex del servicio tomado, así que no debe bloquear.
type Publisher interface {
	Publish(widgetID string, view models.WidgetView)
}

// errUnchanged indica a update que no hay nada que guardar
var errUnchanged = errors.New("widget unchanged")

// WidgetService maneja el ciclo de vida de los widgets, uno por sesión de navegador.
// Todas las mutaciones pasan por un único mutex.
type WidgetService struct {
	mu        sync.Mutex
	wg        sync.WaitGroup
	store     Store
	loader    QuizLoader
	presenter *celebration.Presenter
	publisher Publisher
	logger    *zap.Logger
	sourceURL string
	ttl       time.Duration
}

// NewWidgetService crea una nueva instancia del servicio. publisher puede ser nil.
func NewWidgetService(
	store Store,
	loader QuizLoader,
	presenter *celebration.Presenter,
	publisher Publisher,
	logger *zap.Logger,
	sourceURL string,
	ttl time.Duration,
) *WidgetService {
	return &WidgetService{
		store:     store,
		loader:    loader,
		presenter: presenter,
		publisher: publisher,
		logger:    logger,
		sourceURL: sourceURL,
		ttl:       ttl,
	}
}

// Create monta un widget nuevo y lanza la única carga de preguntas en segundo plano
func (s *WidgetService) Create(ctx context.Context) (*Widget, error) {
	widget := &Widget{
		ID:        uuid.NewString(),
		State:     quiz.NewState(),
		Balloons:  []models.Balloon{},
		CreatedAt: time.Now(),
	}

	s.mu.Lock()
	err := s.store.Save(ctx, widget, s.ttl)
	s.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("error guardando widget: %w", err)
	}

	s.logger.Info("widget montado", zap.String("widget_id", widget.ID))

	s.wg.Add(1)
	go s.mount(context.Background(), widget.ID)

	return widget, nil
}

func (s *WidgetService) mount(ctx context.Context, id string) {
	defer s.wg.Done()

	doc, loadErr := s.loader.Load(ctx, s.sourceURL)

	widget, err := s.update(ctx, id, true, func(w *Widget) error {
		if loadErr != nil {
			return w.State.Fail(loadErr.Error())
		}
		return w.State.Load(doc.Questions)
	})
	switch {
	case errors.Is(err, ErrWidgetNotFound):
		s.logger.Debug("widget cerrado antes de terminar la carga", zap.String("widget_id", id))
		return
	case err != nil:
		s.logger.Error("error aplicando la carga del quiz", zap.String("widget_id", id), zap.Error(err))
		return
	}

	if loadErr != nil {
		s.logger.Warn("error cargando preguntas",
			zap.String("widget_id", id),
			zap.String("url", s.sourceURL),
			zap.Error(loadErr),
		)
		return
	}

	s.logger.Info("preguntas cargadas",
		zap.String("widget_id", id),
		zap.String("status", string(widget.State.Status)),
		zap.Int("questions", len(widget.State.Questions)),
	)
}

// Wait espera a que terminen las cargas en curso
func (s *WidgetService) Wait() {
	s.wg.Wait()
}

// Get obtiene un widget por ID
func (s *WidgetService) Get(ctx context.Context, id string) (*Widget, error) {
	return s.store.Load(ctx, id)
}

// SelectOption registra la opción elegida en la pregunta actual
func (s *WidgetService) SelectOption(ctx context.Context, id string, index int) (*Widget, error) {
	return s.update(ctx, id, true, func(w *Widget) error {
		completed, err := w.State.SelectOption(index)
		if err != nil {
			return err
		}
		if !completed {
			return nil
		}

		s.logger.Info("quiz completado",
			zap.String("widget_id", w.ID),
			zap.Int("score", w.State.Score),
		)

		if celebration.ShouldCelebrate(w.State.Score) {
			w.Balloons = s.presenter.Burst()
			s.logger.Info("celebración lanzada",
				zap.String("widget_id", w.ID),
				zap.Int("balloons", len(w.Balloons)),
			)
		}
		return nil
	})
}

// Restart reinicia la pasada sin volver a pedir las preguntas
func (s *WidgetService) Restart(ctx context.Context, id string) (*Widget, error) {
	return s.update(ctx, id, true, func(w *Widget) error {
		if err := w.State.Restart(); err != nil {
			return err
		}
		w.Balloons = []models.Balloon{}
		return nil
	})
}

// BalloonDone quita un globo cuya animación terminó. Una clave desconocida no hace nada.
// No se notifica: el navegador ya eliminó el elemento.
func (s *WidgetService) BalloonDone(ctx context.Context, id, key string) (*Widget, error) {
	return s.update(ctx, id, false, func(w *Widget) error {
		rest, ok := celebration.Remove(w.Balloons, key)
		if !ok {
			return errUnchanged
		}
		w.Balloons = rest
		return nil
	})
}

// Close desmonta el widget. Una carga pendiente se descarta al terminar.
func (s *WidgetService) Close(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("error eliminando widget %s: %w", id, err)
	}
	s.logger.Info("widget desmontado", zap.String("widget_id", id))
	return nil
}

// Announce publica el estado actual del widget, p.ej. a un cliente recién suscrito.
// Lee y publica bajo el mismo mutex que update.
func (s *WidgetService) Announce(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	widget, err := s.store.Load(ctx, id)
	if err != nil {
		return err
	}
	if s.publisher != nil {
		s.publisher.Publish(widget.ID, widget.View())
	}
	return nil
}

// HealthCheck verifica el store
func (s *WidgetService) HealthCheck(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func (s *WidgetService) update(ctx context.Context, id string, notify bool, mutate func(w *Widget) error) (*Widget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	widget, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := mutate(widget); err != nil {
		if errors.Is(err, errUnchanged) {
			return widget, nil
		}
		return widget, err
	}

	if err := s.store.Save(ctx, widget, s.ttl); err != nil {
		return nil, fmt.Errorf("error guardando widget %s: %w", id, err)
	}

	if notify && s.publisher != nil {
		s.publisher.Publish(widget.ID, widget.View())
	}
	return widget, nil
}
