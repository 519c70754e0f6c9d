package v1

import "mime/multipart"

const (
	eventEmergencyDetected = "emergency_detected"
	messageNoEmergency     = "No emergency detected"
)

// AnalyzeRequest - поля multipart-формы /analyze
type AnalyzeRequest struct {
	Image    *multipart.FileHeader `form:"image" validate:"required"`
	Location string                `form:"location" validate:"required"`
}

// EmergencyResponse DTO ответа при обнаружении чрезвычайной ситуации
// @Description DTO ответа при обнаружении чрезвычайной ситуации
type EmergencyResponse struct {
	Event    string   `json:"event" example:"emergency_detected"`
	Keywords []string `json:"keywords"`
	Location string   `json:"location"`
}

// NoEmergencyResponse DTO ответа, если чрезвычайной ситуации нет
// @Description DTO ответа, если чрезвычайной ситуации нет
type NoEmergencyResponse struct {
	Message  string   `json:"message" example:"No emergency detected"`
	Keywords []string `json:"keywords"`
}

// IncidentResponse DTO для ответа с информацией об инциденте
// @Description DTO для ответа с информацией об инциденте
type IncidentResponse struct {
	ID       string   `json:"_id"`
	Decision string   `json:"decision"`
	Location string   `json:"location"`
	Keywords []string `json:"keywords"`
	Image    string   `json:"image"`
}

// ErrorResponse DTO ошибки
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
