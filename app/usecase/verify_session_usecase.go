package usecase

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"asset-backend/app/domain"
	"asset-backend/app/port"
	apperrors "asset-backend/app/utils/errors"
)

// VerifySessionUsecase verifies encrypted session tokens and augments
// them with fresh profile data from the user store.
type VerifySessionUsecase struct {
	codec    port.TokenCodec
	userRepo port.UserRepositoryPort
	logger   *slog.Logger
	now      func() time.Time
}

// NewVerifySessionUsecase creates a new VerifySessionUsecase
func NewVerifySessionUsecase(codec port.TokenCodec, userRepo port.UserRepositoryPort, logger *slog.Logger) *VerifySessionUsecase {
	return &VerifySessionUsecase{
		codec:    codec,
		userRepo: userRepo,
		logger:   logger.With("component", "verify_session_usecase"),
		now:      time.Now,
	}
}

// VerifySession implements port.SessionUsecase.
//
// An absent cookie is the expected logged-out state (NO_SESSION), not a
// fault. Decrypt failures and expired payloads surface as
// INVALID_SESSION / SESSION_EXPIRED so the HTTP layer can clear the
// cookie. A profile-store outage never invalidates an otherwise valid
// session: the call degrades to the session's embedded fields.
func (u *VerifySessionUsecase) VerifySession(ctx context.Context, cookieValue string) (*domain.Identity, error) {
	if cookieValue == "" {
		return nil, apperrors.ErrNoSession
	}

	payload, err := u.decode(cookieValue)
	if err != nil {
		return nil, err
	}

	if payload.Email == "" {
		// Nothing to look up; return what the session carries.
		return u.stamp(payload.Identity()), nil
	}

	email := domain.NormalizeEmail(payload.Email)

	user, err := u.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if apperrors.IsCode(err, apperrors.ErrCodeUserNotFound) {
			u.logger.Warn("session user has no profile, serving session fields",
				"email", email)
		} else {
			u.logger.Warn("profile lookup failed during verification, serving session fields",
				"email", email,
				"error", err)
		}
		return u.stamp(payload.Identity()), nil
	}

	return u.stamp(u.merge(payload, user)), nil
}

// DecryptToken implements port.SessionUsecase for the raw token
// endpoint: decrypt and expiry-check only, no profile augmentation.
func (u *VerifySessionUsecase) DecryptToken(ctx context.Context, tokenValue string) (*domain.Identity, error) {
	if tokenValue == "" {
		return nil, apperrors.New(apperrors.ErrCodeMissingField, "missing token")
	}

	payload, err := u.decode(tokenValue)
	if err != nil {
		return nil, err
	}

	identity := payload.Identity()
	// Keep the embedded role untouched here; only cookie verification
	// resolves against the profile store.
	if payload.Role != "" {
		identity.Role = payload.Role
	}
	return u.stamp(identity), nil
}

func (u *VerifySessionUsecase) decode(tokenValue string) (*domain.SessionPayload, error) {
	decrypted, err := u.codec.Decrypt(tokenValue)
	if err != nil {
		u.logger.Warn("session token decrypt failed", "error", err)
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidSession, "invalid session", err)
	}

	var payload domain.SessionPayload
	if err := json.Unmarshal([]byte(decrypted), &payload); err != nil {
		u.logger.Warn("session payload parse failed", "error", err)
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidSession, "invalid session", err)
	}

	if payload.Expired(u.now()) {
		return nil, apperrors.ErrSessionExpired
	}

	return &payload, nil
}

// merge combines the decrypted session fields with the authoritative
// profile. Profile fields win for id, role, name and locations.
func (u *VerifySessionUsecase) merge(payload *domain.SessionPayload, user *domain.User) *domain.Identity {
	identity := user.Identity()
	identity.Exp = payload.Exp
	if identity.Name == "" {
		identity.Name = payload.Name
	}
	return identity
}

func (u *VerifySessionUsecase) stamp(identity *domain.Identity) *domain.Identity {
	verifiedAt := u.now()
	identity.LastVerified = &verifiedAt
	return identity
}
