package models

// Option es una respuesta seleccionable de una pregunta
type Option struct {
	Description string `json:"description"`
	IsCorrect   bool   `json:"is_correct"`
}

// Question estructura para representar una pregunta del quiz
type Question struct {
	Description string   `json:"description"`
	Options     []Option `json:"options"`
}

// QuizDocument estructura para el JSON completo servido por el endpoint del quiz
type QuizDocument struct {
	Questions []Question `json:"questions"`
}

// APIResponse estructura estándar para respuestas de API
type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}
