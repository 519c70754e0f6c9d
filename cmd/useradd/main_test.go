package main

import (
	"testing"

	"github.com/shenikar/smart_incident_detection/internal/auth"
	"github.com/shenikar/smart_incident_detection/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCredential_Bcrypt(t *testing.T) {
	cred, err := newCredential("alice", "s3cret", models.SecretKindBcrypt)
	require.NoError(t, err)

	assert.Equal(t, models.SecretKindBcrypt, cred.Kind)
	assert.NotEqual(t, []byte("s3cret"), cred.Secret)
	assert.True(t, auth.HashedSecret{}.Verify(cred.Secret, "s3cret"))
}

func TestNewCredential_Plaintext(t *testing.T) {
	cred, err := newCredential("bob", "legacy", models.SecretKindPlaintext)
	require.NoError(t, err)

	assert.Equal(t, []byte("legacy"), cred.Secret)
}

func TestNewCredential_Rejects(t *testing.T) {
	_, err := newCredential("", "x", models.SecretKindBcrypt)
	assert.ErrorContains(t, err, "username")

	_, err = newCredential("alice", "", models.SecretKindBcrypt)
	assert.ErrorContains(t, err, "password")

	_, err = newCredential("alice", "x", models.SecretKind("md5"))
	assert.ErrorContains(t, err, "unsupported")
}
