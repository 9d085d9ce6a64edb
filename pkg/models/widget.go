package models

// Balloon es un elemento efímero de la celebración
type Balloon struct {
	Key      string `json:"key"`
	Position int    `json:"position"` // porcentaje horizontal
	Color    string `json:"color"`    // #RRGGBB
}

// OptionView opción tal como se pinta en la página
type OptionView struct {
	Index       int    `json:"index"`
	Description string `json:"description"`
}

// WidgetView estado renderizable del widget
type WidgetView struct {
	ID             string       `json:"id"`
	Status         string       `json:"status"`
	Title          string       `json:"title"`
	Heading        string       `json:"heading"`
	Question       string       `json:"question,omitempty"`
	QuestionNumber int          `json:"questionNumber,omitempty"`
	QuestionCount  int          `json:"questionCount,omitempty"`
	Options        []OptionView `json:"options,omitempty"`
	Score          int          `json:"score"`
	ScoreText      string       `json:"scoreText,omitempty"`
	Verdict        string       `json:"verdict,omitempty"`
	CanRestart     bool         `json:"canRestart"`
	Balloons       []Balloon    `json:"balloons,omitempty"`
}
