package quiz

import (
	"errors"

	"github.com/backsoul/quizwidget/pkg/models"
)

// PointsPerCorrect puntos otorgados por cada respuesta correcta
const PointsPerCorrect = 10

// Status estado del widget
type Status string

const (
	StatusLoading    Status = "loading"
	StatusError      Status = "error"
	StatusEmpty      Status = "empty"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

var (
	ErrNotInProgress  = errors.New("quiz is not in progress")
	ErrNotCompleted   = errors.New("quiz is not completed")
	ErrAlreadySettled = errors.New("quiz data already settled")
	ErrUnknownOption  = errors.New("unknown option for current question")
)

// State estado mutable de una pasada del quiz. Se serializa tal cual en el store.
type State struct {
	Questions    []models.Question `json:"questions"`
	Status       Status            `json:"status"`
	CurrentIndex int               `json:"current_index"`
	Score        int               `json:"score"`
	LoadError    string            `json:"load_error,omitempty"`
}

// NewState crea el estado inicial (cargando, sin preguntas)
func NewState() State {
	return State{
		Questions: []models.Question{},
		Status:    StatusLoading,
	}
}

// Load aplica el resultado exitoso del fetch
func (s *State) Load(questions []models.Question) error {
	if s.Status != StatusLoading {
		return ErrAlreadySettled
	}

	if questions == nil {
		questions = []models.Question{}
	}
	s.Questions = questions
	s.CurrentIndex = 0
	s.Score = 0

	if len(questions) == 0 {
		s.Status = StatusEmpty
		return nil
	}
	s.Status = StatusInProgress
	return nil
}

// Fail aplica un fallo del fetch o del parseo
func (s *State) Fail(message string) error {
	if s.Status != StatusLoading {
		return ErrAlreadySettled
	}
	s.Status = StatusError
	s.LoadError = message
	return nil
}

// SelectAnswer registra una respuesta y avanza. Devuelve true cuando la pasada termina.
func (s *State) SelectAnswer(isCorrect bool) (bool, error) {
	if s.Status != StatusInProgress || s.CurrentIndex >= len(s.Questions) {
		return false, ErrNotInProgress
	}

	if isCorrect {
		s.Score += PointsPerCorrect
	}

	next := s.CurrentIndex + 1
	if next < len(s.Questions) {
		s.CurrentIndex = next
		return false, nil
	}

	s.Status = StatusCompleted
	return true, nil
}

// SelectOption resuelve la opción indicada de la pregunta actual
func (s *State) SelectOption(index int) (bool, error) {
	question, ok := s.Current()
	if !ok {
		return false, ErrNotInProgress
	}
	if index < 0 || index >= len(question.Options) {
		return false, ErrUnknownOption
	}
	return s.SelectAnswer(question.Options[index].IsCorrect)
}

// Restart vuelve a empezar sin volver a pedir las preguntas
func (s *State) Restart() error {
	if s.Status != StatusCompleted {
		return ErrNotCompleted
	}
	s.CurrentIndex = 0
	s.Score = 0
	s.Status = StatusInProgress
	return nil
}

// Current devuelve la pregunta actual mientras el quiz está en curso
func (s *State) Current() (models.Question, bool) {
	if s.Status != StatusInProgress || s.CurrentIndex >= len(s.Questions) {
		return models.Question{}, false
	}
	return s.Questions[s.CurrentIndex], true
}

// Completed indica si la pasada actual terminó
func (s *State) Completed() bool {
	return s.Status == StatusCompleted
}
