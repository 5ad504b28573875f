package domain

import (
	"strings"
	"time"
)

// Role represents the access level of a user
type Role string

const (
	RoleAdmin    Role = "admin"
	RolePIC      Role = "pic"
	RoleLead     Role = "lead"
	RoleHead     Role = "head"
	RoleReadOnly Role = "read_only"
)

// Known reports whether the role is part of the closed enumeration.
// Unknown roles are carried through as opaque display-only strings
// rather than rejected.
func (r Role) Known() bool {
	switch r {
	case RoleAdmin, RolePIC, RoleLead, RoleHead, RoleReadOnly:
		return true
	}
	return false
}

// CanWrite reports whether the role is allowed to mutate data.
func (r Role) CanWrite() bool {
	switch r {
	case RoleAdmin, RolePIC, RoleLead, RoleHead:
		return true
	}
	return false
}

// Location is read-only reference data attached many-to-many to a user
type Location struct {
	ID          int    `json:"id"`
	Description string `json:"description"`
}

// Identity is the canonical representation of an authenticated principal
type Identity struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	Name         string     `json:"name"`
	Role         Role       `json:"role"`
	Location     []Location `json:"location"`
	Exp          *time.Time `json:"exp,omitempty"`
	LastVerified *time.Time `json:"lastVerified,omitempty"`
}

// SessionPayload is the JSON document carried inside the encrypted
// session cookie. Exp is optional; absence means no explicit expiry.
type SessionPayload struct {
	ID       string     `json:"id,omitempty"`
	Email    string     `json:"email,omitempty"`
	Name     string     `json:"name,omitempty"`
	Role     Role       `json:"role,omitempty"`
	Location []Location `json:"location,omitempty"`
	Exp      *time.Time `json:"exp,omitempty"`
}

// Expired reports whether the payload carries an expiry in the past.
func (p *SessionPayload) Expired(now time.Time) bool {
	return p.Exp != nil && p.Exp.Before(now)
}

// Identity converts the raw session payload into a principal record
// without consulting the profile store. Role defaults to read_only and
// locations to empty so a session stays usable when the backing profile
// is unavailable.
func (p *SessionPayload) Identity() *Identity {
	role := p.Role
	if role == "" {
		role = RoleReadOnly
	}
	locations := p.Location
	if locations == nil {
		locations = []Location{}
	}
	return &Identity{
		ID:       p.ID,
		Email:    NormalizeEmail(p.Email),
		Name:     p.Name,
		Role:     role,
		Location: locations,
		Exp:      p.Exp,
	}
}

// NormalizeEmail lowercases an email address. Emails are always
// lowercased before comparison or storage.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// FallbackIdentity synthesizes a locally usable read-only identity for
// the case where backend profile resolution is unavailable. The id is
// deterministic so repeated synthesis for the same email agrees.
func FallbackIdentity(email, nameHint string) *Identity {
	email = NormalizeEmail(email)
	name := nameHint
	if name == "" {
		name = EmailLocalPart(email)
	}
	return &Identity{
		ID:       "fallback_" + slugifyEmail(email),
		Email:    email,
		Name:     name,
		Role:     RoleReadOnly,
		Location: []Location{},
	}
}

// EmailLocalPart returns the part of an email address before the '@'.
func EmailLocalPart(email string) string {
	if i := strings.IndexByte(email, '@'); i >= 0 {
		return email[:i]
	}
	return email
}

// slugifyEmail replaces every character outside [a-z0-9] with '_'.
func slugifyEmail(email string) string {
	var b strings.Builder
	b.Grow(len(email))
	for _, c := range email {
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') {
			b.WriteRune(c)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}
