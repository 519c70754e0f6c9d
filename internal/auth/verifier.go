package auth

import (
	"crypto/subtle"

	"github.com/shenikar/smart_incident_detection/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// SecretVerifier сравнивает предъявленный секрет с сохраненным значением
type SecretVerifier interface {
	Verify(stored []byte, presented string) bool
}

// HashedSecret - секрет, сохраненный как bcrypt-хеш с солью
type HashedSecret struct{}

func (HashedSecret) Verify(stored []byte, presented string) bool {
	return bcrypt.CompareHashAndPassword(stored, []byte(presented)) == nil
}

// PlaintextSecret - устаревший вариант хранения секрета открытым текстом
type PlaintextSecret struct{}

func (PlaintextSecret) Verify(stored []byte, presented string) bool {
	return subtle.ConstantTimeCompare(stored, []byte(presented)) == 1
}

// Verifiers - реестр стратегий проверки по типу хранения секрета
type Verifiers map[models.SecretKind]SecretVerifier

// DefaultVerifiers возвращает реестр с bcrypt и plaintext стратегиями
func DefaultVerifiers() Verifiers {
	return Verifiers{
		models.SecretKindBcrypt:    HashedSecret{},
		models.SecretKindPlaintext: PlaintextSecret{},
	}
}

// HashSecret хеширует секрет для хранения в виде models.SecretKindBcrypt
func HashSecret(secret string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
}
