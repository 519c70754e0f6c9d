package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/shenikar/smart_incident_detection/internal/models"
	"github.com/sirupsen/logrus"
)

var (
	// ErrUnauthorized - неизвестный пользователь или неверный секрет
	ErrUnauthorized = errors.New("unauthorized")
	// ErrCredentialNotFound возвращается хранилищем, если пользователя нет
	ErrCredentialNotFound = errors.New("credential not found")
)

// unknownUserHash сравнивается с секретом, если имени нет в хранилище,
// чтобы ответ для неизвестного и известного имени занимал одинаковое время
var unknownUserHash = sync.OnceValue(func() []byte {
	hash, _ := HashSecret("unknown-user-placeholder")
	return hash
})

//go:generate mockgen -source=gate.go -destination=mocks/mock_gate.go -package=mocks

// CredentialStore определяет контракт поиска учетных данных
type CredentialStore interface {
	FindByUsername(ctx context.Context, username string) (*models.Credential, error)
}

// Gate проверяет пару имя/секрет до запуска любой операции конвейера
type Gate struct {
	store     CredentialStore
	verifiers Verifiers
	logger    *logrus.Logger
}

func NewGate(store CredentialStore, verifiers Verifiers, logger *logrus.Logger) *Gate {
	return &Gate{
		store:     store,
		verifiers: verifiers,
		logger:    logger,
	}
}

// Authenticate возвращает nil, если секрет совпадает с сохраненным.
// Ошибки хранилища (кроме отсутствия записи) возвращаются как есть и не означают отказ в доступе.
func (g *Gate) Authenticate(ctx context.Context, username, secret string) error {
	log := g.logger.WithFields(logrus.Fields{
		"component": "auth",
		"username":  username,
	})

	cred, err := g.store.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrCredentialNotFound) {
			if verifier, ok := g.verifiers[models.SecretKindBcrypt]; ok {
				verifier.Verify(unknownUserHash(), secret)
			}
			log.Warn("Unknown username")
			return ErrUnauthorized
		}
		log.WithError(err).Error("Failed to look up credential")
		return fmt.Errorf("auth: could not look up credential: %w", err)
	}

	verifier, ok := g.verifiers[cred.Kind]
	if !ok {
		log.WithField("secret_kind", cred.Kind).Error("No verifier registered for secret kind")
		return ErrUnauthorized
	}

	if !verifier.Verify(cred.Secret, secret) {
		log.Warn("Secret mismatch")
		return ErrUnauthorized
	}
	return nil
}
