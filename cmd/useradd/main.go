package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/shenikar/smart_incident_detection/internal/auth"
	"github.com/shenikar/smart_incident_detection/internal/models"
	"github.com/shenikar/smart_incident_detection/internal/repository"
	"github.com/shenikar/smart_incident_detection/pkg/logger"
	"github.com/shenikar/smart_incident_detection/pkg/postgres"
)

const envPassword = "USERADD_PASSWORD"

// newCredential готовит запись для хранилища; plaintext оставлен для старых учетных записей
func newCredential(username, secret string, kind models.SecretKind) (*models.Credential, error) {
	if username == "" {
		return nil, fmt.Errorf("username is required")
	}
	if secret == "" {
		return nil, fmt.Errorf("password is required (-password or %s)", envPassword)
	}

	switch kind {
	case models.SecretKindBcrypt:
		hash, err := auth.HashSecret(secret)
		if err != nil {
			return nil, err
		}
		return &models.Credential{Username: username, Secret: hash, Kind: kind}, nil
	case models.SecretKindPlaintext:
		return &models.Credential{Username: username, Secret: []byte(secret), Kind: kind}, nil
	default:
		return nil, fmt.Errorf("unsupported secret kind %q", kind)
	}
}

func main() {
	var (
		dsn      = flag.String("dsn", "", "Database connection string (defaults to DATABASE_URL)")
		username = flag.String("username", "", "User name")
		password = flag.String("password", "", "Password (defaults to "+envPassword+")")
		kind     = flag.String("kind", string(models.SecretKindBcrypt), "Storage form: bcrypt or plaintext")
	)
	flag.Parse()

	_ = godotenv.Load()
	log := logger.New(os.Getenv("LOG_LEVEL"))

	if *dsn == "" {
		*dsn = os.Getenv("DATABASE_URL")
	}
	if *dsn == "" {
		log.Fatal("DATABASE_URL environment variable or -dsn flag is required")
	}
	if *password == "" {
		*password = os.Getenv(envPassword)
	}

	cred, err := newCredential(*username, *password, models.SecretKind(*kind))
	if err != nil {
		log.Fatalf("Invalid credential: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	dbpool, err := postgres.NewPostgresDB(ctx, *dsn)
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	defer dbpool.Close()

	if err := repository.NewCredentialRepository(dbpool).Upsert(ctx, cred); err != nil {
		log.Fatalf("Failed to store credential: %v", err)
	}
	log.WithField("username", cred.Username).WithField("kind", cred.Kind).Info("Credential stored")
}
