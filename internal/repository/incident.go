package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shenikar/smart_incident_detection/internal/models"
	"github.com/shenikar/smart_incident_detection/internal/service"
	"github.com/sirupsen/logrus"
)

const (
	incidentListCacheKey  = "incidents:all"
	incidentGenerationKey = "incidents:generation"
)

// Список кешируется под ключом текущего поколения. Create увеличивает поколение
// после вставки, поэтому список, прочитанный до вставки, попадает под старый
// ключ, который больше никто не читает.
type IncidentRepository struct {
	db          *pgxpool.Pool
	redisClient *redis.Client
	cacheTTL    time.Duration
	logger      *logrus.Logger
}

func NewIncidentRepository(db *pgxpool.Pool, redisClient *redis.Client, cacheTTL time.Duration, logger *logrus.Logger) service.IncidentRepository {
	return &IncidentRepository{
		db:          db,
		redisClient: redisClient,
		cacheTTL:    cacheTTL,
		logger:      logger,
	}
}

// Create сохраняет инцидент; id и created_at назначает бд
func (r *IncidentRepository) Create(ctx context.Context, incident *models.Incident) error {
	query := `
		INSERT INTO incidents (decision, location, keywords, image)
		VALUES ($1, $2, $3, $4) RETURNING id, created_at;
	`
	keywords := incident.Keywords
	if keywords == nil {
		keywords = []string{}
	}
	err := r.db.QueryRow(ctx, query,
		string(incident.Decision),
		incident.Location,
		keywords,
		incident.Image,
	).Scan(&incident.ID, &incident.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create incident: %w", err)
	}

	if err := r.bumpGeneration(ctx); err != nil {
		r.logger.WithError(err).Warn("Failed to invalidate incident list cache")
	}
	return nil
}

// ListAll возвращает все инциденты в порядке добавления
func (r *IncidentRepository) ListAll(ctx context.Context) ([]*models.Incident, error) {
	// поколение читается до запроса в бд
	generation, cacheable := r.currentGeneration(ctx)
	if cacheable {
		cached, err := r.listFromCache(ctx, generation)
		if err != nil {
			r.logger.WithError(err).Warn("Failed to read incident list cache")
		}
		if cached != nil {
			return cached, nil
		}
	}

	incidents, err := r.listFromDB(ctx)
	if err != nil {
		return nil, err
	}

	if cacheable {
		if err := r.setListCache(ctx, generation, incidents); err != nil {
			r.logger.WithError(err).Warn("Failed to populate incident list cache")
		}
	}
	return incidents, nil
}

func (r *IncidentRepository) listFromDB(ctx context.Context) ([]*models.Incident, error) {
	query := `
		SELECT id, decision, location, keywords, image, created_at
		FROM incidents
		ORDER BY seq ASC;
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list incidents: %w", err)
	}
	defer rows.Close()

	incidents := make([]*models.Incident, 0)
	for rows.Next() {
		incident := &models.Incident{}
		var decision string
		if err := rows.Scan(
			&incident.ID,
			&decision,
			&incident.Location,
			&incident.Keywords,
			&incident.Image,
			&incident.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan incident row: %w", err)
		}
		incident.Decision = models.Decision(decision)
		incidents = append(incidents, incident)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error list iteration: %w", err)
	}
	return incidents, nil
}

func (r *IncidentRepository) cacheEnabled() bool {
	return r.redisClient != nil && r.cacheTTL > 0
}

func listCacheKey(generation int64) string {
	return fmt.Sprintf("%s:%d", incidentListCacheKey, generation)
}

// currentGeneration возвращает false, если кеш выключен или недоступен
func (r *IncidentRepository) currentGeneration(ctx context.Context) (int64, bool) {
	if !r.cacheEnabled() {
		return 0, false
	}
	generation, err := r.redisClient.Get(ctx, incidentGenerationKey).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, true
		}
		r.logger.WithError(err).Warn("Failed to read incident cache generation")
		return 0, false
	}
	return generation, true
}

// listFromCache возвращает nil без ошибки при промахе кеша
func (r *IncidentRepository) listFromCache(ctx context.Context, generation int64) ([]*models.Incident, error) {
	val, err := r.redisClient.Get(ctx, listCacheKey(generation)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get incidents from cache: %w", err)
	}

	incidents := make([]*models.Incident, 0)
	if err := json.Unmarshal(val, &incidents); err != nil {
		return nil, fmt.Errorf("failed to unmarshal incidents from cache: %w", err)
	}
	return incidents, nil
}

func (r *IncidentRepository) setListCache(ctx context.Context, generation int64, incidents []*models.Incident) error {
	val, err := json.Marshal(incidents)
	if err != nil {
		return fmt.Errorf("failed to marshal incidents for cache: %w", err)
	}
	if err := r.redisClient.Set(ctx, listCacheKey(generation), val, r.cacheTTL).Err(); err != nil {
		return fmt.Errorf("failed to set incidents in cache: %w", err)
	}
	return nil
}

func (r *IncidentRepository) bumpGeneration(ctx context.Context) error {
	if r.redisClient == nil {
		return nil
	}
	if err := r.redisClient.Incr(ctx, incidentGenerationKey).Err(); err != nil {
		return fmt.Errorf("failed to bump incident cache generation: %w", err)
	}
	return nil
}
