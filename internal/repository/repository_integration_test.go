//go:build integration

package repository

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shenikar/smart_incident_detection/internal/auth"
	"github.com/shenikar/smart_incident_detection/internal/models"
	"github.com/shenikar/smart_incident_detection/pkg/postgres"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

var testPool *pgxpool.Pool

func TestMain(m *testing.M) {
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("testdb"),
		tcpostgres.WithUsername("testuser"),
		tcpostgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		logrus.Fatalf("start postgres container: %v", err)
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		logrus.Fatalf("get connection string: %v", err)
	}

	migrator, err := migrate.New("file://../../migrations", strings.Replace(connStr, "postgres://", "pgx5://", 1))
	if err != nil {
		logrus.Fatalf("create migrate instance: %v", err)
	}
	if err := migrator.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		logrus.Fatalf("run migrations: %v", err)
	}

	testPool, err = postgres.NewPostgresDB(ctx, connStr)
	if err != nil {
		logrus.Fatalf("connect to postgres: %v", err)
	}

	code := m.Run()

	testPool.Close()
	_ = testcontainers.TerminateContainer(container)
	os.Exit(code)
}

func newIntegrationRepository(t *testing.T) *IncidentRepository {
	ctx := context.Background()
	_, err := testPool.Exec(ctx, "TRUNCATE incidents, users")
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})

	return NewIncidentRepository(testPool, client, time.Minute, logger).(*IncidentRepository)
}

func newStoredIncident(location string) *models.Incident {
	return &models.Incident{
		Decision: models.DecisionEmergency,
		Location: location,
		Keywords: []string{"fire", "smoke"},
		Image:    "aW1n",
	}
}

func TestIncidentRepository_ListAllKeepsInsertionOrder(t *testing.T) {
	repo := newIntegrationRepository(t)
	ctx := context.Background()

	for _, location := range []string{"A", "B", "C"} {
		incident := newStoredIncident(location)
		require.NoError(t, repo.Create(ctx, incident))
		assert.NotZero(t, incident.ID)
		assert.False(t, incident.CreatedAt.IsZero())
	}

	listed, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 3)
	assert.Equal(t, "A", listed[0].Location)
	assert.Equal(t, "C", listed[2].Location)
	assert.Equal(t, []string{"fire", "smoke"}, listed[0].Keywords)
}

func TestIncidentRepository_CreateDuringListIsNotHidden(t *testing.T) {
	repo := newIntegrationRepository(t)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, newStoredIncident("A")))

	// A: промах кеша, чтение поколения и SELECT
	generation, ok := repo.currentGeneration(ctx)
	require.True(t, ok)
	stale, err := repo.listFromDB(ctx)
	require.NoError(t, err)
	require.Len(t, stale, 1)

	// B: новый инцидент
	require.NoError(t, repo.Create(ctx, newStoredIncident("B")))

	// A: запись устаревшего списка в кеш
	require.NoError(t, repo.setListCache(ctx, generation, stale))

	listed, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, listed, 2)
}

func TestIncidentRepository_ListAllServedFromCache(t *testing.T) {
	repo := newIntegrationRepository(t)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, newStoredIncident("A")))

	first, err := repo.ListAll(ctx)
	require.NoError(t, err)

	// строка, вставленная в обход репозитория, не видна до следующего Create
	_, err = testPool.Exec(ctx, `INSERT INTO incidents (decision, location, keywords, image) VALUES ('emergency', 'raw', '{}', '')`)
	require.NoError(t, err)

	second, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(first), len(second))
}

func TestCredentialRepository_FindAndUpsert(t *testing.T) {
	newIntegrationRepository(t)
	repo := NewCredentialRepository(testPool)
	ctx := context.Background()

	_, err := repo.FindByUsername(ctx, "alice")
	assert.ErrorIs(t, err, auth.ErrCredentialNotFound)

	require.NoError(t, repo.Upsert(ctx, &models.Credential{Username: "alice", Secret: []byte("legacy"), Kind: models.SecretKindPlaintext}))
	require.NoError(t, repo.Upsert(ctx, &models.Credential{Username: "alice", Secret: []byte("$2a$hash"), Kind: models.SecretKindBcrypt}))

	cred, err := repo.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, models.SecretKindBcrypt, cred.Kind)
	assert.Equal(t, []byte("$2a$hash"), cred.Secret)
}
