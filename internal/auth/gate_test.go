package auth

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/shenikar/smart_incident_detection/internal/auth/mocks"
	"github.com/shenikar/smart_incident_detection/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"
)

func newTestGate(t *testing.T) (*Gate, *mocks.MockCredentialStore) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockCredentialStore(ctrl)

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})

	return NewGate(store, DefaultVerifiers(), logger), store
}

func hashed(t *testing.T, secret string) []byte {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.MinCost)
	require.NoError(t, err)
	return hash
}

func TestAuthenticate_UnknownUser(t *testing.T) {
	gate, store := newTestGate(t)
	ctx := context.Background()

	store.EXPECT().FindByUsername(ctx, "ghost").Return(nil, ErrCredentialNotFound).Times(1)

	err := gate.Authenticate(ctx, "ghost", "secret")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

type countingVerifier struct {
	calls  int
	stored [][]byte
}

func (v *countingVerifier) Verify(stored []byte, _ string) bool {
	v.calls++
	v.stored = append(v.stored, stored)
	return false
}

func TestAuthenticate_UnknownUserPaysHashCost(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockCredentialStore(ctrl)
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})

	hashVerifier := &countingVerifier{}
	gate := NewGate(store, Verifiers{models.SecretKindBcrypt: hashVerifier}, logger)
	ctx := context.Background()

	store.EXPECT().FindByUsername(ctx, "ghost").Return(nil, ErrCredentialNotFound).Times(1)

	err := gate.Authenticate(ctx, "ghost", "secret")

	assert.ErrorIs(t, err, ErrUnauthorized)
	require.Equal(t, 1, hashVerifier.calls)
	_, costErr := bcrypt.Cost(hashVerifier.stored[0])
	assert.NoError(t, costErr, "comparison must run against a real bcrypt hash")
}

func TestAuthenticate_UnknownUserRejectedByRealHash(t *testing.T) {
	gate, store := newTestGate(t)
	ctx := context.Background()

	store.EXPECT().FindByUsername(ctx, "ghost").Return(nil, ErrCredentialNotFound).Times(1)

	assert.ErrorIs(t, gate.Authenticate(ctx, "ghost", "unknown-user-placeholder"), ErrUnauthorized)
}

func TestAuthenticate_StoreFailureIsNotUnauthorized(t *testing.T) {
	gate, store := newTestGate(t)
	ctx := context.Background()

	store.EXPECT().FindByUsername(ctx, "alice").Return(nil, errors.New("connection refused")).Times(1)

	err := gate.Authenticate(ctx, "alice", "secret")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnauthorized)
	assert.ErrorContains(t, err, "connection refused")
}

func TestAuthenticate_SecretForms(t *testing.T) {
	tests := []struct {
		name      string
		cred      *models.Credential
		presented string
		wantErr   error
	}{
		{
			name:      "hashed correct",
			cred:      &models.Credential{Username: "alice", Secret: hashed(t, "s3cret"), Kind: models.SecretKindBcrypt},
			presented: "s3cret",
		},
		{
			name:      "hashed wrong",
			cred:      &models.Credential{Username: "alice", Secret: hashed(t, "s3cret"), Kind: models.SecretKindBcrypt},
			presented: "guess",
			wantErr:   ErrUnauthorized,
		},
		{
			name:      "plaintext correct",
			cred:      &models.Credential{Username: "alice", Secret: []byte("legacy"), Kind: models.SecretKindPlaintext},
			presented: "legacy",
		},
		{
			name:      "plaintext wrong",
			cred:      &models.Credential{Username: "alice", Secret: []byte("legacy"), Kind: models.SecretKindPlaintext},
			presented: "Legacy",
			wantErr:   ErrUnauthorized,
		},
		{
			name:      "unknown kind fails closed",
			cred:      &models.Credential{Username: "alice", Secret: []byte("legacy"), Kind: "argon2"},
			presented: "legacy",
			wantErr:   ErrUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gate, store := newTestGate(t)
			ctx := context.Background()

			store.EXPECT().FindByUsername(ctx, "alice").Return(tt.cred, nil).Times(1)

			err := gate.Authenticate(ctx, "alice", tt.presented)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestHashSecret_VerifiesWithHashedSecret(t *testing.T) {
	hash, err := HashSecret("pa55")
	require.NoError(t, err)

	assert.True(t, HashedSecret{}.Verify(hash, "pa55"))
	assert.False(t, HashedSecret{}.Verify(hash, "pa56"))
	assert.False(t, HashedSecret{}.Verify([]byte("pa55"), "pa55"), "plaintext must not pass as a hash")
}

type alwaysVerifier struct{}

func (alwaysVerifier) Verify([]byte, string) bool { return true }

func TestVerifiers_NewKindWithoutGateChanges(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockCredentialStore(ctrl)
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})

	verifiers := DefaultVerifiers()
	verifiers["token"] = alwaysVerifier{}
	gate := NewGate(store, verifiers, logger)

	store.EXPECT().FindByUsername(gomock.Any(), "svc").
		Return(&models.Credential{Username: "svc", Kind: "token"}, nil)

	assert.NoError(t, gate.Authenticate(context.Background(), "svc", "anything"))
}
