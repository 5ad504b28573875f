package usecase

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"asset-backend/app/domain"
	"asset-backend/app/mocks"
	"asset-backend/app/token"
	apperrors "asset-backend/app/utils/errors"
	"asset-backend/app/utils/logger"
)

const testSecret = "test-app-secret"

func newVerifyFixture(t *testing.T) (*VerifySessionUsecase, *mocks.MockUserRepositoryPort, *token.Codec) {
	t.Helper()

	ctrl := gomock.NewController(t)
	userRepo := mocks.NewMockUserRepositoryPort(ctrl)

	codec, err := token.NewCodec(testSecret)
	require.NoError(t, err)

	log, err := logger.New("error")
	require.NoError(t, err)

	return NewVerifySessionUsecase(codec, userRepo, log), userRepo, codec
}

func encryptPayload(t *testing.T, codec *token.Codec, payload domain.SessionPayload) string {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	encrypted, err := codec.Encrypt(string(raw))
	require.NoError(t, err)
	return encrypted
}

func TestVerifySession_NoCookie(t *testing.T) {
	uc, _, _ := newVerifyFixture(t)

	_, err := uc.VerifySession(context.Background(), "")

	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeNoSession))
}

func TestVerifySession_MalformedCookie(t *testing.T) {
	uc, _, _ := newVerifyFixture(t)

	_, err := uc.VerifySession(context.Background(), "not-a-token")

	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInvalidSession))
}

func TestVerifySession_WrongSecret(t *testing.T) {
	uc, _, _ := newVerifyFixture(t)

	other, err := token.NewCodec("different-secret")
	require.NoError(t, err)
	foreign, err := other.Encrypt(`{"email":"user@example.com"}`)
	require.NoError(t, err)

	_, err = uc.VerifySession(context.Background(), foreign)

	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInvalidSession))
}

func TestVerifySession_Expired(t *testing.T) {
	uc, _, codec := newVerifyFixture(t)

	past := time.Now().Add(-time.Hour)
	cookie := encryptPayload(t, codec, domain.SessionPayload{
		Email: "user@example.com",
		Exp:   &past,
	})

	_, err := uc.VerifySession(context.Background(), cookie)

	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeSessionExpired))
}

func TestVerifySession_ProfileFieldsWin(t *testing.T) {
	uc, userRepo, codec := newVerifyFixture(t)

	cookie := encryptPayload(t, codec, domain.SessionPayload{
		Email: "Admin@Example.com",
		Name:  "Stale Name",
		Role:  domain.RoleReadOnly, // stale role carried in the token
	})

	userID := uuid.New()
	locations := []domain.Location{
		{ID: 1, Description: "Head Office"},
		{ID: 2, Description: "Field Site"},
	}
	userRepo.EXPECT().
		GetByEmail(gomock.Any(), "admin@example.com").
		Return(&domain.User{
			ID:        userID,
			Email:     "admin@example.com",
			Name:      "Fresh Name",
			Role:      domain.RoleAdmin,
			Locations: locations,
		}, nil)

	identity, err := uc.VerifySession(context.Background(), cookie)
	require.NoError(t, err)

	assert.Equal(t, domain.RoleAdmin, identity.Role)
	assert.Equal(t, "Fresh Name", identity.Name)
	assert.Equal(t, userID.String(), identity.ID)
	assert.Equal(t, locations, identity.Location)
	require.NotNil(t, identity.LastVerified)
	assert.WithinDuration(t, time.Now(), *identity.LastVerified, time.Minute)
}

func TestVerifySession_ProfileNotFound_DefaultsReadOnly(t *testing.T) {
	uc, userRepo, codec := newVerifyFixture(t)

	cookie := encryptPayload(t, codec, domain.SessionPayload{
		Email: "ghost@example.com",
		Name:  "Ghost",
	})

	userRepo.EXPECT().
		GetByEmail(gomock.Any(), "ghost@example.com").
		Return(nil, apperrors.ErrUserNotFound)

	identity, err := uc.VerifySession(context.Background(), cookie)
	require.NoError(t, err)

	assert.Equal(t, domain.RoleReadOnly, identity.Role)
	assert.Empty(t, identity.Location)
	assert.Equal(t, "Ghost", identity.Name)
}

func TestVerifySession_StoreOutage_DegradesNotFails(t *testing.T) {
	uc, userRepo, codec := newVerifyFixture(t)

	cookie := encryptPayload(t, codec, domain.SessionPayload{
		Email: "user@example.com",
		Name:  "User",
		Role:  domain.RoleLead,
	})

	userRepo.EXPECT().
		GetByEmail(gomock.Any(), "user@example.com").
		Return(nil, apperrors.Wrap(apperrors.ErrCodeDatabaseError, "db down", assert.AnError))

	identity, err := uc.VerifySession(context.Background(), cookie)
	require.NoError(t, err, "a store outage must never log out a cookie-holding user")

	assert.Equal(t, domain.RoleLead, identity.Role)
	assert.Equal(t, "User", identity.Name)
	assert.NotNil(t, identity.LastVerified)
}

func TestVerifySession_NoEmail_SkipsLookup(t *testing.T) {
	uc, _, codec := newVerifyFixture(t)

	cookie := encryptPayload(t, codec, domain.SessionPayload{Name: "Anonymous Token"})

	identity, err := uc.VerifySession(context.Background(), cookie)
	require.NoError(t, err)

	assert.Equal(t, "Anonymous Token", identity.Name)
	assert.Equal(t, domain.RoleReadOnly, identity.Role)
}

func TestVerifySession_UnknownRolePassesThrough(t *testing.T) {
	uc, userRepo, codec := newVerifyFixture(t)

	cookie := encryptPayload(t, codec, domain.SessionPayload{
		Email: "user@example.com",
		Role:  domain.Role("supervisor"),
	})

	userRepo.EXPECT().
		GetByEmail(gomock.Any(), "user@example.com").
		Return(nil, apperrors.ErrUserNotFound)

	identity, err := uc.VerifySession(context.Background(), cookie)
	require.NoError(t, err)

	// Unrecognized roles are display-only, not rejected.
	assert.Equal(t, domain.Role("supervisor"), identity.Role)
}

func TestDecryptToken(t *testing.T) {
	uc, _, codec := newVerifyFixture(t)

	cookie := encryptPayload(t, codec, domain.SessionPayload{
		Email: "user@example.com",
		Role:  domain.RoleHead,
	})

	identity, err := uc.DecryptToken(context.Background(), cookie)
	require.NoError(t, err)

	assert.Equal(t, domain.RoleHead, identity.Role)
	assert.NotNil(t, identity.LastVerified)
}

func TestDecryptToken_Missing(t *testing.T) {
	uc, _, _ := newVerifyFixture(t)

	_, err := uc.DecryptToken(context.Background(), "")

	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeMissingField))
}

func TestDecryptToken_Expired(t *testing.T) {
	uc, _, codec := newVerifyFixture(t)

	past := time.Now().Add(-time.Minute)
	cookie := encryptPayload(t, codec, domain.SessionPayload{
		Email: "user@example.com",
		Exp:   &past,
	})

	_, err := uc.DecryptToken(context.Background(), cookie)

	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeSessionExpired))
}
