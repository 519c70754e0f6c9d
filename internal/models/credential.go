package models

// SecretKind - способ хранения секрета пользователя
type SecretKind string

const (
	SecretKindBcrypt    SecretKind = "bcrypt"
	SecretKindPlaintext SecretKind = "plaintext" // legacy
)

// Credential - учетная запись из хранилища; создается вне сервиса
type Credential struct {
	Username string
	Secret   []byte
	Kind     SecretKind
}
