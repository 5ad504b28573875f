package port

//go:generate mockgen -source=user_port.go -destination=../mocks/mock_user_port.go -package=mocks

import (
	"context"

	"github.com/google/uuid"

	"asset-backend/app/domain"
)

// UserUsecase defines user management business logic interface
type UserUsecase interface {
	// Profile resolution
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetUserByID(ctx context.Context, userID uuid.UUID) (*domain.User, error)

	// Auto-registration: idempotent on existing email. The returned
	// bool is true when a new user was created.
	RegisterRequest(ctx context.Context, req *domain.RegisterRequest) (*domain.User, bool, error)

	// Administration
	CreateUser(ctx context.Context, req *domain.CreateUserRequest) (*domain.User, error)
	UpdateUser(ctx context.Context, userID uuid.UUID, req *domain.UpdateUserRequest) (*domain.User, error)
	DeleteUser(ctx context.Context, userID uuid.UUID) (*domain.User, error)
	RestoreUser(ctx context.Context, userID uuid.UUID) (*domain.User, error)
	ListUsers(ctx context.Context, filter *domain.UserListFilter) ([]*domain.User, int, error)

	// Reference data
	ListLocations(ctx context.Context) ([]domain.Location, error)
}

// UserRepositoryPort defines user data access interface
type UserRepositoryPort interface {
	Create(ctx context.Context, user *domain.User, locationIDs []int) error
	GetByID(ctx context.Context, userID uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User, locationIDs []int) error
	SetDeleted(ctx context.Context, userID uuid.UUID, deleted bool) error
	List(ctx context.Context, filter *domain.UserListFilter) ([]*domain.User, int, error)
}

// LocationRepositoryPort defines read-only location reference data access
type LocationRepositoryPort interface {
	List(ctx context.Context) ([]domain.Location, error)
	// First returns the location with the lowest id, used as the
	// default assignment for auto-registered users.
	First(ctx context.Context) (*domain.Location, error)
}
