package token

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"net/url"
)

// ErrDecrypt is returned when a token is malformed, truncated, or was
// produced under a different secret.
var ErrDecrypt = fmt.Errorf("token decrypt failed")

// Codec encrypts small JSON payloads into URL-safe strings and back.
// The same codec backs the session cookie and the outbound redirect-URL
// parameter of the login handoff, so its output must survive a
// round-trip through URL escaping.
type Codec struct {
	gcm cipher.AEAD
}

// NewCodec derives an AES-256-GCM codec from the application secret.
func NewCodec(secret string) (*Codec, error) {
	if secret == "" {
		return nil, fmt.Errorf("codec secret is required")
	}

	key := sha256.Sum256([]byte(secret))

	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher block: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return &Codec{gcm: gcm}, nil
}

// Encrypt seals plaintext with a random nonce and returns the
// base64url-encoded nonce||ciphertext.
func (c *Codec) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, c.gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to create nonce: %w", err)
	}

	ciphertext := c.gcm.Seal(nonce, nonce, []byte(plaintext), nil)

	return base64.RawURLEncoding.EncodeToString(ciphertext), nil
}

// Decrypt reverses Encrypt. Any malformed, truncated, or
// wrong-secret input yields ErrDecrypt; Decrypt never panics.
func (c *Codec) Decrypt(token string) (string, error) {
	// Tolerate tokens that passed through URL escaping on the way here.
	if unescaped, err := url.QueryUnescape(token); err == nil {
		token = unescaped
	}

	ciphertext, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return "", fmt.Errorf("%w: invalid encoding", ErrDecrypt)
	}

	nonceSize := c.gcm.NonceSize()
	if len(ciphertext) < nonceSize {
		return "", fmt.Errorf("%w: ciphertext too short", ErrDecrypt)
	}

	nonce, ciphertext := ciphertext[:nonceSize], ciphertext[nonceSize:]

	plaintext, err := c.gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecrypt, err)
	}

	return string(plaintext), nil
}
