package domain

import (
	"fmt"
	"net/mail"
	"time"

	"github.com/google/uuid"
)

// User represents a persisted user profile in the asset database
type User struct {
	ID        uuid.UUID  `json:"id"`
	Email     string     `json:"email"`
	Name      string     `json:"name"`
	Role      Role       `json:"role"`
	Placement *string    `json:"placement,omitempty"`
	Locations []Location `json:"locations"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	DeletedAt *time.Time `json:"deletedAt,omitempty"`
}

// NewUser creates a new user with validation. The email is lowercased;
// an empty name defaults to the email local part and an empty role to
// read_only, matching the auto-registration defaults.
func NewUser(email, name string, role Role) (*User, error) {
	if email == "" {
		return nil, fmt.Errorf("email is required")
	}
	email = NormalizeEmail(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("invalid email format: %w", err)
	}

	if name == "" {
		name = EmailLocalPart(email)
	}
	if role == "" {
		role = RoleReadOnly
	}

	now := time.Now()
	return &User{
		ID:        uuid.New(),
		Email:     email,
		Name:      name,
		Role:      role,
		Locations: []Location{},
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// UpdateProfile updates the mutable profile fields
func (u *User) UpdateProfile(name string, role Role, placement *string) {
	u.Name = name
	u.Role = role
	u.Placement = placement
	u.UpdatedAt = time.Now()
}

// AssignLocations replaces the user's location assignments
func (u *User) AssignLocations(locations []Location) {
	if locations == nil {
		locations = []Location{}
	}
	u.Locations = locations
	u.UpdatedAt = time.Now()
}

// SoftDelete marks the user as deleted
func (u *User) SoftDelete() {
	now := time.Now()
	u.DeletedAt = &now
	u.UpdatedAt = now
}

// Restore clears the deletion mark
func (u *User) Restore() {
	u.DeletedAt = nil
	u.UpdatedAt = time.Now()
}

// IsDeleted returns true if the user is soft deleted
func (u *User) IsDeleted() bool {
	return u.DeletedAt != nil
}

// IsAdmin returns true if the user has the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Identity projects the profile into the canonical principal record.
func (u *User) Identity() *Identity {
	locations := u.Locations
	if locations == nil {
		locations = []Location{}
	}
	return &Identity{
		ID:       u.ID.String(),
		Email:    u.Email,
		Name:     u.Name,
		Role:     u.Role,
		Location: locations,
	}
}

// CreateUserRequest represents a user creation request
type CreateUserRequest struct {
	Email       string  `json:"email" validate:"required,email"`
	Name        string  `json:"name" validate:"required"`
	Role        Role    `json:"role" validate:"required"`
	Placement   *string `json:"placement,omitempty"`
	LocationIDs []int   `json:"locationIds,omitempty"`
}

// UpdateUserRequest represents a user update request
type UpdateUserRequest struct {
	Name        string  `json:"name" validate:"required"`
	Role        Role    `json:"role" validate:"required"`
	Placement   *string `json:"placement,omitempty"`
	LocationIDs []int   `json:"locationIds,omitempty"`
}

// RegisterRequest represents an auto-registration request keyed by email
type RegisterRequest struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name"`
}

// UserListFilter narrows user list queries
type UserListFilter struct {
	Query      string
	Role       Role
	Placement  string
	LocationID int
	Deleted    bool
	Sort       string
	Order      string
	Page       int
	Limit      int
}

// Normalize applies the defaults the list endpoints document
func (f *UserListFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 10
	}
	if f.Sort == "" {
		if f.Deleted {
			f.Sort = "deleted_at"
		} else {
			f.Sort = "created_at"
		}
	}
	if f.Order != "asc" {
		f.Order = "desc"
	}
}

// Offset returns the row offset for the current page
func (f *UserListFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}
