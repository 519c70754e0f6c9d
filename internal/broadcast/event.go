package broadcast

import "github.com/shenikar/smart_incident_detection/internal/models"

// EventNewIncident is emitted for every stored emergency.
const EventNewIncident = "new_incident"

// Event is the message delivered to live subscribers.
type Event struct {
	Name string           `json:"event"`
	Data *models.Incident `json:"data"`
}

func NewIncidentEvent(incident *models.Incident) Event {
	return Event{Name: EventNewIncident, Data: incident}
}
