package usecase

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"asset-backend/app/domain"
	"asset-backend/app/port"
	apperrors "asset-backend/app/utils/errors"
	"asset-backend/app/utils/validator"
)

// UserUsecase implements port.UserUsecase on top of the postgres
// repositories.
type UserUsecase struct {
	userRepo     port.UserRepositoryPort
	locationRepo port.LocationRepositoryPort
	validator    *validator.Validator
	logger       *slog.Logger
}

// NewUserUsecase creates a new UserUsecase
func NewUserUsecase(userRepo port.UserRepositoryPort, locationRepo port.LocationRepositoryPort, logger *slog.Logger) *UserUsecase {
	return &UserUsecase{
		userRepo:     userRepo,
		locationRepo: locationRepo,
		validator:    validator.New(),
		logger:       logger.With("component", "user_usecase"),
	}
}

// GetUserByEmail retrieves a user profile by lowercase-normalized email
func (u *UserUsecase) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	if email == "" {
		return nil, apperrors.New(apperrors.ErrCodeMissingField, "email is required")
	}
	return u.userRepo.GetByEmail(ctx, domain.NormalizeEmail(email))
}

// GetUserByID retrieves a user profile by id
func (u *UserUsecase) GetUserByID(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	return u.userRepo.GetByID(ctx, userID)
}

// RegisterRequest auto-registers a user with the read_only role and the
// default location. Idempotent: an existing email returns the existing
// profile with created=false.
func (u *UserUsecase) RegisterRequest(ctx context.Context, req *domain.RegisterRequest) (*domain.User, bool, error) {
	if err := u.validator.Validate(req); err != nil {
		return nil, false, apperrors.Wrap(apperrors.ErrCodeValidationFailed, "invalid registration request", err)
	}

	email := domain.NormalizeEmail(req.Email)

	existing, err := u.userRepo.GetByEmail(ctx, email)
	if err == nil {
		u.logger.Info("registration request for existing user", "email", email)
		return existing, false, nil
	}
	if !apperrors.IsCode(err, apperrors.ErrCodeUserNotFound) {
		return nil, false, apperrors.Wrap(apperrors.ErrCodeRegistrationFailed, "failed to check existing user", err)
	}

	user, err := domain.NewUser(email, req.Name, domain.RoleReadOnly)
	if err != nil {
		return nil, false, apperrors.Wrap(apperrors.ErrCodeValidationFailed, "invalid registration request", err)
	}

	defaultLocation, err := u.locationRepo.First(ctx)
	if err != nil {
		u.logger.Error("no default location for auto-registration", "error", err)
		return nil, false, apperrors.Wrap(apperrors.ErrCodeLocationNotFound, "no default location found", err)
	}

	if err := u.userRepo.Create(ctx, user, []int{defaultLocation.ID}); err != nil {
		u.logger.Error("auto-registration failed", "email", email, "error", err)
		return nil, false, apperrors.Wrap(apperrors.ErrCodeRegistrationFailed, "failed to register user", err)
	}

	user.AssignLocations([]domain.Location{*defaultLocation})
	u.logger.Info("user auto-registered", "email", email, "user_id", user.ID)
	return user, true, nil
}

// CreateUser creates a user with an explicit role and location set
func (u *UserUsecase) CreateUser(ctx context.Context, req *domain.CreateUserRequest) (*domain.User, error) {
	if err := u.validator.Validate(req); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeValidationFailed, "invalid create request", err)
	}

	user, err := domain.NewUser(req.Email, req.Name, req.Role)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeValidationFailed, "invalid create request", err)
	}
	user.Placement = req.Placement

	if err := u.userRepo.Create(ctx, user, req.LocationIDs); err != nil {
		return nil, err
	}

	return u.userRepo.GetByID(ctx, user.ID)
}

// UpdateUser updates the profile fields and replaces location links
func (u *UserUsecase) UpdateUser(ctx context.Context, userID uuid.UUID, req *domain.UpdateUserRequest) (*domain.User, error) {
	if err := u.validator.Validate(req); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeValidationFailed, "invalid update request", err)
	}

	user, err := u.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.UpdateProfile(req.Name, req.Role, req.Placement)

	if err := u.userRepo.Update(ctx, user, req.LocationIDs); err != nil {
		return nil, err
	}

	return u.userRepo.GetByID(ctx, userID)
}

// DeleteUser soft-deletes a user
func (u *UserUsecase) DeleteUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := u.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := u.userRepo.SetDeleted(ctx, userID, true); err != nil {
		return nil, err
	}

	user.SoftDelete()
	return user, nil
}

// RestoreUser clears a user's deletion mark
func (u *UserUsecase) RestoreUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := u.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := u.userRepo.SetDeleted(ctx, userID, false); err != nil {
		return nil, err
	}

	user.Restore()
	return user, nil
}

// ListUsers returns a filtered, paginated user page plus the total count
func (u *UserUsecase) ListUsers(ctx context.Context, filter *domain.UserListFilter) ([]*domain.User, int, error) {
	if filter == nil {
		filter = &domain.UserListFilter{}
	}
	filter.Normalize()
	return u.userRepo.List(ctx, filter)
}

// ListLocations returns the location reference data
func (u *UserUsecase) ListLocations(ctx context.Context) ([]domain.Location, error) {
	return u.locationRepo.List(ctx)
}
