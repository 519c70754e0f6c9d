package v1

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shenikar/smart_incident_detection/internal/metrics"
	"github.com/shenikar/smart_incident_detection/internal/service"
	"github.com/sirupsen/logrus"
)

// LiveFeed подключает зрителей к живой ленте событий
type LiveFeed interface {
	ServeWS(w http.ResponseWriter, r *http.Request)
}

type Handler struct {
	incidentService service.IncidentService
	gate            Authenticator
	feed            LiveFeed
	logger          *logrus.Logger
	validate        *validator.Validate
}

func NewHandler(incidentService service.IncidentService, gate Authenticator, feed LiveFeed, logger *logrus.Logger) *Handler {
	return &Handler{
		incidentService: incidentService,
		gate:            gate,
		feed:            feed,
		logger:          logger,
		validate:        validator.New(),
	}
}

// Сообщения об отсутствующих полях формы
var missingFieldMessages = map[string]string{
	"Image":    "No image provided",
	"Location": "No location provided",
}

// @Summary Analyze an incident image
// @Description Classify an uploaded image as emergency or not, store the finding and alert subscribers on emergency. Requires HTTP Basic auth.
// @Tags Incidents
// @Accept multipart/form-data
// @Produce json
// @Security BasicAuth
// @Param image formData file true "Incident image"
// @Param location formData string true "Incident location"
// @Success 200 {object} EmergencyResponse "Emergency detected"
// @Success 200 {object} NoEmergencyResponse "No emergency detected"
// @Failure 400 {object} ErrorResponse "Missing image or location"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 500 {object} ErrorResponse "Classification or storage failure"
// @Router /analyze [post]
func (h *Handler) analyzeIncident(c *gin.Context) {
	log := h.logger.WithField("method", "analyzeIncident")

	// Ошибка FormFile означает отсутствие файла; ее ловит валидация
	input := AnalyzeRequest{Location: c.PostForm("location")}
	input.Image, _ = c.FormFile("image")

	if err := h.validate.Struct(input); err != nil {
		message := validationMessage(err)
		log.WithError(err).Warn("Validation failed")
		metrics.RecordAnalyze(metrics.OutcomeBadRequest)
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: message})
		return
	}

	image, err := readUpload(input)
	if err != nil {
		log.WithError(err).Warn("Failed to read uploaded image")
		metrics.RecordAnalyze(metrics.OutcomeBadRequest)
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: missingFieldMessages["Image"]})
		return
	}

	result, err := h.incidentService.AnalyzeIncident(c.Request.Context(), service.AnalyzeInput{
		Image:    image,
		Location: input.Location,
	})
	if err != nil {
		if errors.Is(err, service.ErrClassification) {
			log.WithError(err).Error("Failed to classify incident")
			metrics.RecordAnalyze(metrics.OutcomeClassificationError)
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to parse response", Details: err.Error()})
			return
		}
		log.WithError(err).Error("Failed to analyze incident in service")
		metrics.RecordAnalyze(metrics.OutcomeInternalError)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to store incident", Details: err.Error()})
		return
	}

	if result.IsEmergency() {
		metrics.RecordAnalyze(metrics.OutcomeEmergency)
	} else {
		metrics.RecordAnalyze(metrics.OutcomeNotEmergency)
	}
	c.JSON(http.StatusOK, ResultToAnalyzeResponse(result.Incident))
}

// @Summary Get a list of incidents
// @Description Get all stored incidents in insertion order. Requires HTTP Basic auth.
// @Tags Incidents
// @Produce json
// @Security BasicAuth
// @Success 200 {array} IncidentResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /incidents [get]
func (h *Handler) listIncidents(c *gin.Context) {
	log := h.logger.WithField("method", "listIncidents")

	incidents, err := h.incidentService.ListIncidents(c.Request.Context())
	if err != nil {
		log.WithError(err).Error("Failed to list incident from service")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(http.StatusOK, ModelsToIncidentResponses(incidents))
}

// @Summary Live incident feed
// @Description Upgrade to a websocket that receives {"event":"new_incident","data":{...}} for every emergency.
// @Tags Broadcast
// @Success 101 "Switching Protocols"
// @Router /ws [get]
func (h *Handler) liveFeed(c *gin.Context) {
	h.feed.ServeWS(c.Writer, c.Request)
}

// @Summary Health check
// @Description Check the health of the service.
// @Tags System
// @Produce json
// @Success 200 {object} map[string]string
// @Router /system/health [get]
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// validationMessage возвращает сообщение для первого отсутствующего поля
func validationMessage(err error) string {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		if message, ok := missingFieldMessages[fieldErrs[0].Field()]; ok {
			return message
		}
	}
	return err.Error()
}

func readUpload(input AnalyzeRequest) ([]byte, error) {
	f, err := input.Image.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	return data, nil
}
