package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shenikar/smart_incident_detection/internal/imagecodec"
	"github.com/shenikar/smart_incident_detection/internal/metrics"
	"github.com/shenikar/smart_incident_detection/internal/models"
	"github.com/sirupsen/logrus"
)

//go:generate mockgen -source=incident.go -destination=mocks/mock_incident.go -package=mocks

var (
	// ErrClassification - модель не вернула пригодную классификацию
	ErrClassification = errors.New("classification failed")
	// ErrPersistence - инцидент не удалось сохранить
	ErrPersistence = errors.New("incident could not be stored")
)

// IncidentRepository определяет контракт для работы с бд инцидентов
type IncidentRepository interface {
	Create(ctx context.Context, incident *models.Incident) error
	ListAll(ctx context.Context) ([]*models.Incident, error)
}

// Classifier определяет контракт модели, оценивающей изображение
type Classifier interface {
	Classify(ctx context.Context, image []byte) (*models.Classification, error)
}

// AlertDispatcher рассылает оповещения о чрезвычайных инцидентах
type AlertDispatcher interface {
	Dispatch(ctx context.Context, incident *models.Incident)
}

// IncidentService определяет контракт для бизнес-логики анализа инцидентов
type IncidentService interface {
	AnalyzeIncident(ctx context.Context, input AnalyzeInput) (*AnalysisResult, error)
	ListIncidents(ctx context.Context) ([]*models.Incident, error)
}

// AnalyzeInput - данные одной отправки: изображение и адрес
type AnalyzeInput struct {
	Image    []byte
	Location string
}

// AnalysisResult - итог анализа отправки
type AnalysisResult struct {
	Incident *models.Incident
}

// IsEmergency сообщает, был ли инцидент признан чрезвычайным
func (r *AnalysisResult) IsEmergency() bool {
	return r.Incident.Decision.IsEmergency()
}

// submission не меняется после создания; каждый шаг возвращает новое значение
type submission struct {
	image          []byte
	location       string
	classification models.Classification
}

func (s submission) classified(c models.Classification) submission {
	s.classification = c
	return s
}

func (s submission) incident() *models.Incident {
	keywords := make([]string, len(s.classification.Keywords))
	copy(keywords, s.classification.Keywords)
	return &models.Incident{
		Decision: s.classification.Decision,
		Location: s.location,
		Keywords: keywords,
		Image:    imagecodec.Encode(s.image),
	}
}

type incidentService struct {
	repo       IncidentRepository
	classifier Classifier
	dispatcher AlertDispatcher
	logger     *logrus.Logger
}

func NewIncidentService(repo IncidentRepository, classifier Classifier, dispatcher AlertDispatcher, logger *logrus.Logger) IncidentService {
	return &incidentService{
		repo:       repo,
		classifier: classifier,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// AnalyzeIncident классифицирует изображение, сохраняет инцидент и при
// чрезвычайной ситуации оповещает подписчиков
func (s *incidentService) AnalyzeIncident(ctx context.Context, input AnalyzeInput) (*AnalysisResult, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":    "incident",
		"method":     "AnalyzeIncident",
		"location":   input.Location,
		"image_size": len(input.Image),
	})
	log.Info("Analyzing submitted image")

	sub := submission{image: input.Image, location: input.Location}

	started := time.Now()
	classification, err := s.classifier.Classify(ctx, sub.image)
	metrics.RecordClassification(time.Since(started))
	if err != nil {
		log.WithError(err).Error("Failed to classify image")
		return nil, fmt.Errorf("%w: %w", ErrClassification, err)
	}
	sub = sub.classified(*classification)
	log = log.WithField("decision", classification.Decision)

	incident := sub.incident()
	if err := s.repo.Create(ctx, incident); err != nil {
		log.WithError(err).Error("Failed to create incident in repository")
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	log = log.WithField("incident_id", incident.ID)
	log.Info("Incident stored")

	if incident.Decision.IsEmergency() {
		log.Warn("Emergency detected, dispatching alerts")
		s.dispatcher.Dispatch(ctx, incident)
	}

	return &AnalysisResult{Incident: incident}, nil
}

// ListIncidents возвращает все инциденты в порядке сохранения
func (s *incidentService) ListIncidents(ctx context.Context) ([]*models.Incident, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "incident",
		"method":  "ListIncidents",
	})
	log.Info("Listing incidents")

	incidents, err := s.repo.ListAll(ctx)
	if err != nil {
		log.WithError(err).Error("Failed to list incidents from repository")
		return nil, fmt.Errorf("service: could not list incidents: %w", err)
	}

	log.WithField("count", len(incidents)).Info("Incidents listed successfully")
	return incidents, nil
}
