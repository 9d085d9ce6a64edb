package celebration

import (
	"fmt"
	"math/rand"

	"github.com/backsoul/quizwidget/pkg/models"
	"github.com/google/uuid"
)

const (
	BalloonCount = 40
	MinPosition  = 5
	MaxPosition  = 94

	CelebrationScore = 60
	PoorScore        = 40

	maxDrawAttempts = 64
)

// Verdict devuelve el mensaje final según la puntuación
func Verdict(score int) string {
	switch {
	case score > CelebrationScore:
		return "Great!"
	case score < PoorScore:
		return "Not Good"
	default:
		return ""
	}
}

// ShouldCelebrate indica si la puntuación merece la explosión de globos
func ShouldCelebrate(score int) bool {
	return score > CelebrationScore
}

// Presenter genera las ráfagas de globos. No es seguro para uso concurrente.
type Presenter struct {
	rng    *rand.Rand
	count  int
	min    int
	max    int
	newKey func() string
}

// NewPresenter crea un presenter con las constantes por defecto
func NewPresenter(rng *rand.Rand) *Presenter {
	return NewPresenterWithRange(rng, BalloonCount, MinPosition, MaxPosition)
}

// NewPresenterWithRange permite ajustar cantidad y rango de posiciones (inclusivo)
func NewPresenterWithRange(rng *rand.Rand, count, min, max int) *Presenter {
	if max < min {
		min, max = max, min
	}
	return &Presenter{
		rng:    rng,
		count:  count,
		min:    min,
		max:    max,
		newKey: uuid.NewString,
	}
}

// Burst genera una ráfaga de globos con posiciones únicas y colores aleatorios
func (p *Presenter) Burst() []models.Balloon {
	span := p.max - p.min + 1
	count := p.count
	if count > span {
		count = span
	}

	used := make(map[int]bool, count)
	balloons := make([]models.Balloon, 0, count)
	for i := 0; i < count; i++ {
		position := p.drawPosition(used, span)
		used[position] = true

		balloons = append(balloons, models.Balloon{
			Key:      p.newKey(),
			Position: position,
			Color:    p.randomColor(),
		})
	}

	return balloons
}

func (p *Presenter) drawPosition(used map[int]bool, span int) int {
	for attempt := 0; attempt < maxDrawAttempts; attempt++ {
		position := p.min + p.rng.Intn(span)
		if !used[position] {
			return position
		}
	}

	// Demasiadas colisiones: elegir entre los valores libres
	free := make([]int, 0, span-len(used))
	for position := p.min; position <= p.max; position++ {
		if !used[position] {
			free = append(free, position)
		}
	}
	return free[p.rng.Intn(len(free))]
}

func (p *Presenter) randomColor() string {
	return fmt.Sprintf("#%06X", p.rng.Intn(1<<24))
}

// Remove quita el globo cuya animación terminó. Devuelve false si la clave no existe.
func Remove(balloons []models.Balloon, key string) ([]models.Balloon, bool) {
	for i, balloon := range balloons {
		if balloon.Key == key {
			return append(balloons[:i:i], balloons[i+1:]...), true
		}
	}
	return balloons, false
}
