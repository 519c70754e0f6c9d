package v1

import "github.com/shenikar/smart_incident_detection/internal/models"

// keywordsOrEmpty гарантирует, что в JSON всегда будет массив, а не null
func keywordsOrEmpty(keywords []string) []string {
	if keywords == nil {
		return []string{}
	}
	return keywords
}

// ModelToIncidentResponse преобразует доменную модель в DTO для ответа
func ModelToIncidentResponse(model *models.Incident) *IncidentResponse {
	return &IncidentResponse{
		ID:       model.ID.String(),
		Decision: string(model.Decision),
		Location: model.Location,
		Keywords: keywordsOrEmpty(model.Keywords),
		Image:    model.Image,
	}
}

// ModelsToIncidentResponses преобразует слайс моделей в слайс DTO
func ModelsToIncidentResponses(models []*models.Incident) []*IncidentResponse {
	responses := make([]*IncidentResponse, len(models))
	for i, model := range models {
		responses[i] = ModelToIncidentResponse(model)
	}
	return responses
}

// ResultToAnalyzeResponse выбирает тело ответа по решению классификатора
func ResultToAnalyzeResponse(incident *models.Incident) any {
	if incident.Decision.IsEmergency() {
		return EmergencyResponse{
			Event:    eventEmergencyDetected,
			Keywords: keywordsOrEmpty(incident.Keywords),
			Location: incident.Location,
		}
	}
	return NoEmergencyResponse{
		Message:  messageNoEmergency,
		Keywords: keywordsOrEmpty(incident.Keywords),
	}
}
