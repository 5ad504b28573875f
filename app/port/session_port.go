package port

//go:generate mockgen -source=session_port.go -destination=../mocks/mock_session_port.go -package=mocks

import (
	"context"

	"asset-backend/app/domain"
)

// SessionUsecase defines the session verification business logic interface
type SessionUsecase interface {
	// VerifySession decrypts the session cookie value, checks expiry and
	// augments the payload with fresh profile data. A profile-store
	// outage degrades to the session's embedded fields instead of
	// failing the call.
	VerifySession(ctx context.Context, cookieValue string) (*domain.Identity, error)

	// DecryptToken decrypts a raw token (not necessarily from a cookie)
	// and returns the verified identity carried inside it.
	DecryptToken(ctx context.Context, tokenValue string) (*domain.Identity, error)
}

// TokenCodec encrypts small payloads into URL-safe strings and back
type TokenCodec interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(token string) (string, error)
}
