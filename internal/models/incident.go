package models

import (
	"time"

	"github.com/google/uuid"
)

// Decision - вердикт классификатора
type Decision string

const (
	DecisionEmergency    Decision = "emergency"
	DecisionNotEmergency Decision = "not emergency"
)

// IsEmergency сообщает, требует ли решение оповещения подписчиков
func (d Decision) IsEmergency() bool {
	return d == DecisionEmergency
}

// Incident - сохраненный результат одной классификации.
// После создания запись не изменяется.
type Incident struct {
	ID        uuid.UUID `json:"_id"`
	Decision  Decision  `json:"decision"`
	Location  string    `json:"location"`
	Keywords  []string  `json:"keywords"`
	Image     string    `json:"image"`
	CreatedAt time.Time `json:"created_at"`
}

// Classification - результат вызова классификатора, не сохраняется отдельно
type Classification struct {
	Decision Decision
	Keywords []string
}
