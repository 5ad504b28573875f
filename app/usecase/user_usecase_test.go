package usecase

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"asset-backend/app/domain"
	"asset-backend/app/mocks"
	apperrors "asset-backend/app/utils/errors"
	"asset-backend/app/utils/logger"
)

func newUserFixture(t *testing.T) (*UserUsecase, *mocks.MockUserRepositoryPort, *mocks.MockLocationRepositoryPort) {
	t.Helper()

	ctrl := gomock.NewController(t)
	userRepo := mocks.NewMockUserRepositoryPort(ctrl)
	locationRepo := mocks.NewMockLocationRepositoryPort(ctrl)

	log, err := logger.New("error")
	require.NoError(t, err)

	return NewUserUsecase(userRepo, locationRepo, log), userRepo, locationRepo
}

func TestGetUserByEmail_Normalizes(t *testing.T) {
	uc, userRepo, _ := newUserFixture(t)

	expected := &domain.User{Email: "user@example.com"}
	userRepo.EXPECT().
		GetByEmail(gomock.Any(), "user@example.com").
		Return(expected, nil)

	user, err := uc.GetUserByEmail(context.Background(), "User@Example.COM")
	require.NoError(t, err)
	assert.Equal(t, expected, user)
}

func TestGetUserByEmail_Empty(t *testing.T) {
	uc, _, _ := newUserFixture(t)

	_, err := uc.GetUserByEmail(context.Background(), "")
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeMissingField))
}

func TestRegisterRequest_ExistingUserIsIdempotent(t *testing.T) {
	uc, userRepo, _ := newUserFixture(t)

	existing := &domain.User{ID: uuid.New(), Email: "user@example.com", Role: domain.RoleLead}
	userRepo.EXPECT().
		GetByEmail(gomock.Any(), "user@example.com").
		Return(existing, nil)

	user, created, err := uc.RegisterRequest(context.Background(), &domain.RegisterRequest{
		Email: "User@example.com",
		Name:  "User",
	})
	require.NoError(t, err)

	assert.False(t, created)
	assert.Equal(t, existing, user)
	assert.Equal(t, domain.RoleLead, user.Role, "existing role must not be downgraded")
}

func TestRegisterRequest_CreatesReadOnlyWithDefaultLocation(t *testing.T) {
	uc, userRepo, locationRepo := newUserFixture(t)

	userRepo.EXPECT().
		GetByEmail(gomock.Any(), "new_user@example.com").
		Return(nil, apperrors.ErrUserNotFound)
	locationRepo.EXPECT().
		First(gomock.Any()).
		Return(&domain.Location{ID: 1, Description: "Head Office"}, nil)
	userRepo.EXPECT().
		Create(gomock.Any(), gomock.Any(), []int{1}).
		DoAndReturn(func(_ context.Context, user *domain.User, _ []int) error {
			assert.Equal(t, "new_user@example.com", user.Email)
			assert.Equal(t, domain.RoleReadOnly, user.Role)
			assert.Equal(t, "new_user", user.Name)
			return nil
		})

	user, created, err := uc.RegisterRequest(context.Background(), &domain.RegisterRequest{
		Email: "New_User@example.com",
	})
	require.NoError(t, err)

	assert.True(t, created)
	assert.Equal(t, domain.RoleReadOnly, user.Role)
	require.Len(t, user.Locations, 1)
	assert.Equal(t, "Head Office", user.Locations[0].Description)
}

func TestRegisterRequest_NoDefaultLocation(t *testing.T) {
	uc, userRepo, locationRepo := newUserFixture(t)

	userRepo.EXPECT().
		GetByEmail(gomock.Any(), "user@example.com").
		Return(nil, apperrors.ErrUserNotFound)
	locationRepo.EXPECT().
		First(gomock.Any()).
		Return(nil, apperrors.ErrLocationNotFound)

	_, _, err := uc.RegisterRequest(context.Background(), &domain.RegisterRequest{
		Email: "user@example.com",
	})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeLocationNotFound))
}

func TestRegisterRequest_InvalidEmail(t *testing.T) {
	uc, _, _ := newUserFixture(t)

	_, _, err := uc.RegisterRequest(context.Background(), &domain.RegisterRequest{
		Email: "not-an-email",
	})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeValidationFailed))
}

func TestRegisterRequest_LookupOutage(t *testing.T) {
	uc, userRepo, _ := newUserFixture(t)

	userRepo.EXPECT().
		GetByEmail(gomock.Any(), "user@example.com").
		Return(nil, apperrors.ErrDatabaseError)

	_, _, err := uc.RegisterRequest(context.Background(), &domain.RegisterRequest{
		Email: "user@example.com",
	})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeRegistrationFailed))
}

func TestUpdateUser(t *testing.T) {
	uc, userRepo, _ := newUserFixture(t)

	userID := uuid.New()
	stored := &domain.User{ID: userID, Email: "user@example.com", Name: "Old", Role: domain.RoleReadOnly}

	userRepo.EXPECT().GetByID(gomock.Any(), userID).Return(stored, nil)
	userRepo.EXPECT().
		Update(gomock.Any(), gomock.Any(), []int{2, 3}).
		DoAndReturn(func(_ context.Context, user *domain.User, _ []int) error {
			assert.Equal(t, "New", user.Name)
			assert.Equal(t, domain.RolePIC, user.Role)
			return nil
		})
	updated := &domain.User{ID: userID, Email: "user@example.com", Name: "New", Role: domain.RolePIC}
	userRepo.EXPECT().GetByID(gomock.Any(), userID).Return(updated, nil)

	user, err := uc.UpdateUser(context.Background(), userID, &domain.UpdateUserRequest{
		Name:        "New",
		Role:        domain.RolePIC,
		LocationIDs: []int{2, 3},
	})
	require.NoError(t, err)
	assert.Equal(t, updated, user)
}

func TestUpdateUser_NotFound(t *testing.T) {
	uc, userRepo, _ := newUserFixture(t)

	userID := uuid.New()
	userRepo.EXPECT().GetByID(gomock.Any(), userID).Return(nil, apperrors.ErrUserNotFound)

	_, err := uc.UpdateUser(context.Background(), userID, &domain.UpdateUserRequest{
		Name: "New",
		Role: domain.RoleAdmin,
	})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeUserNotFound))
}

func TestDeleteAndRestoreUser(t *testing.T) {
	uc, userRepo, _ := newUserFixture(t)

	userID := uuid.New()
	stored := &domain.User{ID: userID, Email: "user@example.com"}

	userRepo.EXPECT().GetByID(gomock.Any(), userID).Return(stored, nil)
	userRepo.EXPECT().SetDeleted(gomock.Any(), userID, true).Return(nil)

	deleted, err := uc.DeleteUser(context.Background(), userID)
	require.NoError(t, err)
	assert.True(t, deleted.IsDeleted())

	userRepo.EXPECT().GetByID(gomock.Any(), userID).Return(deleted, nil)
	userRepo.EXPECT().SetDeleted(gomock.Any(), userID, false).Return(nil)

	restored, err := uc.RestoreUser(context.Background(), userID)
	require.NoError(t, err)
	assert.False(t, restored.IsDeleted())
}

func TestListUsers_NormalizesFilter(t *testing.T) {
	uc, userRepo, _ := newUserFixture(t)

	userRepo.EXPECT().
		List(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, filter *domain.UserListFilter) ([]*domain.User, int, error) {
			assert.Equal(t, 1, filter.Page)
			assert.Equal(t, 10, filter.Limit)
			assert.Equal(t, "created_at", filter.Sort)
			assert.Equal(t, "desc", filter.Order)
			return []*domain.User{}, 0, nil
		})

	_, total, err := uc.ListUsers(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, total)
}

func TestListLocations(t *testing.T) {
	uc, _, locationRepo := newUserFixture(t)

	expected := []domain.Location{{ID: 1, Description: "Head Office"}}
	locationRepo.EXPECT().List(gomock.Any()).Return(expected, nil)

	locations, err := uc.ListLocations(context.Background())
	require.NoError(t, err)
	assert.Equal(t, expected, locations)
}
