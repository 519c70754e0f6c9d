package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shenikar/smart_incident_detection/internal/auth"
	"github.com/shenikar/smart_incident_detection/internal/broadcast"
	"github.com/shenikar/smart_incident_detection/internal/classifier"
	"github.com/shenikar/smart_incident_detection/internal/config"
	v1 "github.com/shenikar/smart_incident_detection/internal/handler/http/v1"
	"github.com/shenikar/smart_incident_detection/internal/notify"
	"github.com/shenikar/smart_incident_detection/internal/repository"
	"github.com/shenikar/smart_incident_detection/internal/service"
	"github.com/shenikar/smart_incident_detection/pkg/logger"
	"github.com/shenikar/smart_incident_detection/pkg/postgres"
	"github.com/shenikar/smart_incident_detection/pkg/pushbullet"
	redisclient "github.com/shenikar/smart_incident_detection/pkg/redis"
	"github.com/sirupsen/logrus"

	_ "github.com/shenikar/smart_incident_detection/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title Smart Incident Detection API
// @version 1.0
// @description Classifies reported incident images and alerts subscribers about emergencies.
// @host localhost:5000
// @BasePath /
// @securityDefinitions.basic BasicAuth
func runMigrations(cfg *config.Config, log *logrus.Logger) error {
	log.Info("Running database migrations...")

	migrationURL := cfg.DatabaseURL
	if !strings.HasPrefix(migrationURL, "pgx5://") {
		migrationURL = strings.Replace(migrationURL, "postgres://", "pgx5://", 1)
	}

	m, err := migrate.New(
		"file://migrations",
		migrationURL,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info("Database migrations applied successfully")
	return nil
}

// newPushNotifier возвращает nil, если ключ Pushbullet не задан
func newPushNotifier(cfg *config.Config, log *logrus.Logger) notify.Notifier {
	if cfg.PushbulletKey == "" {
		log.Warn("PUSHBULLET_API_KEY is not set, push alerts are disabled")
		return nil
	}
	client := pushbullet.NewClient(pushbullet.Config{
		APIKey:    cfg.PushbulletKey,
		BaseURL:   cfg.PushbulletBaseURL,
		RateLimit: cfg.PushRateLimit,
	})
	return notify.NewPushNotifier(client, cfg.PushChannelTag, os.TempDir(), log)
}

func main() {
	// Загрузка конфигурации
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	// Инициализация логгера
	log := logger.New(cfg.LogLevel)

	// Контекст для graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Запуск миграций
	if err := runMigrations(cfg, log); err != nil {
		log.Fatalf("Failed to run database migrations: %v", err)
	}

	// Подключение к PostgreSQL
	dbpool, err := postgres.NewPostgresDB(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	defer dbpool.Close()
	log.Info("Successfully connected to PostgreSQL")

	// Инициализация Redis клиента
	redisClient, err := redisclient.NewRedisClient(ctx, redisclient.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()
	log.Info("Successfully connected to Redis")

	// Живая лента: локальный хаб + ретранслятор канала Redis
	hub := broadcast.NewHub(log)
	go hub.Run(ctx)
	relay := broadcast.NewRelay(redisClient, cfg.BroadcastChannel, hub, log)
	if err := relay.Start(ctx); err != nil {
		log.Fatalf("Failed to start broadcast relay: %v", err)
	}
	publisher := broadcast.NewFallbackPublisher(
		broadcast.NewRedisPublisher(redisClient, cfg.BroadcastChannel),
		hub,
		log,
	)

	// Оповещения
	dispatcher := notify.NewDispatcher(newPushNotifier(cfg, log), publisher, log)

	// Классификатор
	vision := classifier.New(classifier.Options{
		APIKey:  cfg.OpenAIKey,
		BaseURL: cfg.OpenAIBaseURL,
		Model:   cfg.OpenAIModel,
		Timeout: cfg.OpenAITimeout,
	}, log)

	// Инициализация репозиториев
	incidentRepo := repository.NewIncidentRepository(dbpool, redisClient, cfg.IncidentCacheTTL, log)
	credentialRepo := repository.NewCredentialRepository(dbpool)

	// Инициализация сервисов
	gate := auth.NewGate(credentialRepo, auth.DefaultVerifiers(), log)
	incidentService := service.NewIncidentService(incidentRepo, vision, dispatcher, log)

	// Инициализация хэндлеров
	handler := v1.NewHandler(incidentService, gate, hub, log)

	// Настройка Gin роутера
	router := gin.Default()
	router.MaxMultipartMemory = cfg.MaxUploadBytes()
	handler.RegisterRoutes(router)

	// Метрики и Swagger UI
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Запуск HTTP-сервера
	serverAddr := fmt.Sprintf(":%s", cfg.HTTPPort)

	srv := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	// Запуск сервера в горутине
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Error starting HTTP server: %v", err)
		}
	}()
	log.Infof("HTTP server started on port %s", cfg.HTTPPort)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Received shutdown signal, shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	cancel()
	<-relay.Done()

	log.Info("Server gracefully stopped")
}
