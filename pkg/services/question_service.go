package services

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/backsoul/quizwidget/pkg/models"
	"go.uber.org/zap"
)

// QuestionService sirve el documento estático del quiz desde un archivo JSON
type QuestionService struct {
	filePath string
	logger   *zap.Logger
}

// NewQuestionService crea una nueva instancia del servicio
func NewQuestionService(filePath string, logger *zap.Logger) *QuestionService {
	return &QuestionService{
		filePath: filePath,
		logger:   logger,
	}
}

// Document lee el archivo en cada llamada y verifica que sea un documento de quiz válido
func (s *QuestionService) Document() ([]byte, error) {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return nil, fmt.Errorf("error leyendo archivo JSON: %w", err)
	}

	var doc models.QuizDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("error parsing JSON de %s: %w", s.filePath, err)
	}

	return data, nil
}

// GetQuestionCount obtiene el número total de preguntas del archivo
func (s *QuestionService) GetQuestionCount() (int, error) {
	data, err := s.Document()
	if err != nil {
		return 0, err
	}

	var doc models.QuizDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return 0, err
	}
	return len(doc.Questions), nil
}

// LogSummary informa al arrancar cuántas preguntas hay disponibles
func (s *QuestionService) LogSummary() {
	count, err := s.GetQuestionCount()
	if err != nil {
		s.logger.Warn("documento del quiz no disponible",
			zap.String("path", s.filePath),
			zap.Error(err),
		)
		return
	}
	s.logger.Info("documento del quiz listo",
		zap.String("path", s.filePath),
		zap.Int("questions", count),
	)
}
