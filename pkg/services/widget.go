package services

import (
	"fmt"
	"slices"
	"time"

	"github.com/backsoul/quizwidget/pkg/celebration"
	"github.com/backsoul/quizwidget/pkg/models"
	"github.com/backsoul/quizwidget/pkg/quiz"
)

const (
	widgetTitle    = "Gamified Quiz Application"
	loadingText    = "Loading quiz..."
	emptyText      = "No quiz questions available."
	completedText  = "Quiz Completed!"
	errorTextStart = "Error: "
)

// Widget instantánea del QuizWidget de una sesión de navegador
type Widget struct {
	ID        string           `json:"id"`
	State     quiz.State       `json:"state"`
	Balloons  []models.Balloon `json:"balloons"`
	CreatedAt time.Time        `json:"created_at"`
}

func (w *Widget) clone() *Widget {
	c := *w
	c.Balloons = slices.Clone(w.Balloons)
	c.State.Questions = slices.Clone(w.State.Questions)
	return &c
}

// View construye la vista renderizable del estado actual
func (w *Widget) View() models.WidgetView {
	view := models.WidgetView{
		ID:     w.ID,
		Status: string(w.State.Status),
		Title:  widgetTitle,
		Score:  w.State.Score,
	}

	switch w.State.Status {
	case quiz.StatusLoading:
		view.Heading = loadingText
	case quiz.StatusError:
		view.Heading = errorTextStart + w.State.LoadError
	case quiz.StatusEmpty:
		view.Heading = emptyText
	case quiz.StatusInProgress:
		question, _ := w.State.Current()
		view.QuestionNumber = w.State.CurrentIndex + 1
		view.QuestionCount = len(w.State.Questions)
		view.Heading = fmt.Sprintf("Question %d of %d", view.QuestionNumber, view.QuestionCount)
		view.Question = question.Description
		view.Options = make([]models.OptionView, len(question.Options))
		for i, option := range question.Options {
			view.Options[i] = models.OptionView{Index: i, Description: option.Description}
		}
	case quiz.StatusCompleted:
		view.Heading = completedText
		view.ScoreText = fmt.Sprintf("Your Score: %d points", w.State.Score)
		view.Verdict = celebration.Verdict(w.State.Score)
		view.CanRestart = true
		view.Balloons = append([]models.Balloon(nil), w.Balloons...)
	}

	return view
}
