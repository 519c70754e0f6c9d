package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shenikar/smart_incident_detection/internal/auth"
	"github.com/shenikar/smart_incident_detection/internal/models"
)

type CredentialRepository struct {
	db *pgxpool.Pool
}

func NewCredentialRepository(db *pgxpool.Pool) *CredentialRepository {
	return &CredentialRepository{db: db}
}

// FindByUsername возвращает auth.ErrCredentialNotFound, если пользователя нет
func (r *CredentialRepository) FindByUsername(ctx context.Context, username string) (*models.Credential, error) {
	cred := &models.Credential{}
	var kind string
	query := `SELECT username, password, password_kind FROM users WHERE username = $1;`
	err := r.db.QueryRow(ctx, query, username).Scan(&cred.Username, &cred.Secret, &kind)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, auth.ErrCredentialNotFound
		}
		return nil, fmt.Errorf("failed to get credential: %w", err)
	}
	cred.Kind = models.SecretKind(kind)
	return cred, nil
}

// Upsert создает или заменяет учетную запись; используется только CLI-утилитой
func (r *CredentialRepository) Upsert(ctx context.Context, cred *models.Credential) error {
	query := `
		INSERT INTO users (username, password, password_kind)
		VALUES ($1, $2, $3)
		ON CONFLICT (username) DO UPDATE SET password = EXCLUDED.password, password_kind = EXCLUDED.password_kind;
	`
	if _, err := r.db.Exec(ctx, query, cred.Username, cred.Secret, string(cred.Kind)); err != nil {
		return fmt.Errorf("failed to upsert credential: %w", err)
	}
	return nil
}
