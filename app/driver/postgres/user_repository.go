package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"asset-backend/app/domain"
	"asset-backend/app/port"
	apperrors "asset-backend/app/utils/errors"
)

// UserRepository implements port.UserRepositoryPort for PostgreSQL
type UserRepository struct {
	db     DatabaseIface
	logger *slog.Logger
}

// NewUserRepository creates a new PostgreSQL user repository
func NewUserRepository(db DatabaseIface, logger *slog.Logger) port.UserRepositoryPort {
	return &UserRepository{
		db:     db,
		logger: logger.With("component", "user_repository"),
	}
}

// Sortable columns for user list queries. Anything else falls back to
// created_at so user input never reaches the ORDER BY clause directly.
var sortableColumns = map[string]string{
	"created_at": "created_at",
	"updated_at": "updated_at",
	"deleted_at": "deleted_at",
	"name":       "name",
	"email":      "email",
	"role":       "role",
}

// Create inserts a new user and its location assignments
func (r *UserRepository) Create(ctx context.Context, user *domain.User, locationIDs []int) error {
	query := `
		INSERT INTO users (
			id, email, name, role, placement, created_at, updated_at, deleted_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8
		)`

	_, err := r.db.Exec(ctx, query,
		user.ID,
		user.Email,
		user.Name,
		string(user.Role),
		user.Placement,
		user.CreatedAt,
		user.UpdatedAt,
		user.DeletedAt,
	)
	if err != nil {
		r.logger.Error("failed to create user", "email", user.Email, "error", err)
		return apperrors.Wrap(apperrors.ErrCodeDatabaseError, "failed to create user", err)
	}

	if err := r.insertLocationLinks(ctx, user.ID, locationIDs); err != nil {
		return err
	}

	r.logger.Info("user created", "user_id", user.ID, "email", user.Email)
	return nil
}

// GetByID retrieves a user by id, including soft-deleted users so they
// can be restored
func (r *UserRepository) GetByID(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	query := `
		SELECT id, email, name, role, placement, created_at, updated_at, deleted_at
		FROM users
		WHERE id = $1`

	user, err := r.scanUser(r.db.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.Newf(apperrors.ErrCodeUserNotFound, "user %s not found", userID)
		}
		r.logger.Error("failed to get user by id", "user_id", userID, "error", err)
		return nil, apperrors.Wrap(apperrors.ErrCodeDatabaseError, "failed to get user", err)
	}

	if err := r.attachLocations(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// GetByEmail retrieves a non-deleted user by email. The lookup is
// case-insensitive; stored emails are already lowercased.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `
		SELECT id, email, name, role, placement, created_at, updated_at, deleted_at
		FROM users
		WHERE email = lower($1) AND deleted_at IS NULL`

	user, err := r.scanUser(r.db.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.Newf(apperrors.ErrCodeUserNotFound, "user %s not found", email)
		}
		r.logger.Error("failed to get user by email", "email", email, "error", err)
		return nil, apperrors.Wrap(apperrors.ErrCodeDatabaseError, "failed to get user", err)
	}

	if err := r.attachLocations(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Update persists the user's mutable profile fields and replaces its
// location assignments
func (r *UserRepository) Update(ctx context.Context, user *domain.User, locationIDs []int) error {
	query := `
		UPDATE users
		SET name = $2, role = $3, placement = $4, updated_at = $5
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query,
		user.ID,
		user.Name,
		string(user.Role),
		user.Placement,
		user.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("failed to update user", "user_id", user.ID, "error", err)
		return apperrors.Wrap(apperrors.ErrCodeDatabaseError, "failed to update user", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.Newf(apperrors.ErrCodeUserNotFound, "user %s not found", user.ID)
	}

	if _, err := r.db.Exec(ctx, `DELETE FROM user_locations WHERE user_id = $1`, user.ID); err != nil {
		r.logger.Error("failed to clear location links", "user_id", user.ID, "error", err)
		return apperrors.Wrap(apperrors.ErrCodeDatabaseError, "failed to update user locations", err)
	}
	if err := r.insertLocationLinks(ctx, user.ID, locationIDs); err != nil {
		return err
	}

	r.logger.Info("user updated", "user_id", user.ID)
	return nil
}

// SetDeleted marks or unmarks a user as soft deleted
func (r *UserRepository) SetDeleted(ctx context.Context, userID uuid.UUID, deleted bool) error {
	var deletedAt *time.Time
	if deleted {
		now := time.Now()
		deletedAt = &now
	}

	query := `
		UPDATE users
		SET deleted_at = $2, updated_at = $3
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, userID, deletedAt, time.Now())
	if err != nil {
		r.logger.Error("failed to set deleted flag", "user_id", userID, "deleted", deleted, "error", err)
		return apperrors.Wrap(apperrors.ErrCodeDatabaseError, "failed to update user", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.Newf(apperrors.ErrCodeUserNotFound, "user %s not found", userID)
	}

	r.logger.Info("user deletion flag updated", "user_id", userID, "deleted", deleted)
	return nil
}

// List returns a page of users matching the filter plus the total match
// count before pagination
func (r *UserRepository) List(ctx context.Context, filter *domain.UserListFilter) ([]*domain.User, int, error) {
	where, args := buildUserFilter(filter)

	countQuery := `SELECT COUNT(*) FROM users u ` + where
	var total int
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		r.logger.Error("failed to count users", "error", err)
		return nil, 0, apperrors.Wrap(apperrors.ErrCodeDatabaseError, "failed to count users", err)
	}

	sortColumn, ok := sortableColumns[filter.Sort]
	if !ok {
		sortColumn = "created_at"
	}
	direction := "DESC"
	if filter.Order == "asc" {
		direction = "ASC"
	}

	listQuery := fmt.Sprintf(`
		SELECT u.id, u.email, u.name, u.role, u.placement, u.created_at, u.updated_at, u.deleted_at
		FROM users u
		%s
		ORDER BY u.%s %s NULLS LAST
		LIMIT $%d OFFSET $%d`,
		where, sortColumn, direction, len(args)+1, len(args)+2)
	args = append(args, filter.Limit, filter.Offset())

	rows, err := r.db.Query(ctx, listQuery, args...)
	if err != nil {
		r.logger.Error("failed to list users", "error", err)
		return nil, 0, apperrors.Wrap(apperrors.ErrCodeDatabaseError, "failed to list users", err)
	}
	defer rows.Close()

	users := []*domain.User{}
	for rows.Next() {
		user, err := r.scanUser(rows)
		if err != nil {
			return nil, 0, apperrors.Wrap(apperrors.ErrCodeDatabaseError, "failed to scan user", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, apperrors.Wrap(apperrors.ErrCodeDatabaseError, "failed to list users", err)
	}

	for _, user := range users {
		if err := r.attachLocations(ctx, user); err != nil {
			return nil, 0, err
		}
	}

	return users, total, nil
}

// buildUserFilter renders the WHERE clause and its positional arguments
// for a list query
func buildUserFilter(filter *domain.UserListFilter) (string, []interface{}) {
	conditions := []string{}
	args := []interface{}{}

	if filter.Deleted {
		conditions = append(conditions, "u.deleted_at IS NOT NULL")
	} else {
		conditions = append(conditions, "u.deleted_at IS NULL")
	}

	if filter.Query != "" {
		args = append(args, "%"+filter.Query+"%")
		n := len(args)
		conditions = append(conditions, fmt.Sprintf("(u.email ILIKE $%d OR u.name ILIKE $%d)", n, n))
	}
	if filter.Role != "" {
		args = append(args, string(filter.Role))
		conditions = append(conditions, fmt.Sprintf("u.role = $%d", len(args)))
	}
	if filter.Placement != "" {
		args = append(args, filter.Placement)
		conditions = append(conditions, fmt.Sprintf("u.placement = $%d", len(args)))
	}
	if filter.LocationID != 0 {
		args = append(args, filter.LocationID)
		conditions = append(conditions, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM user_locations ul WHERE ul.user_id = u.id AND ul.location_id = $%d)", len(args)))
	}

	return "WHERE " + strings.Join(conditions, " AND "), args
}

// insertLocationLinks writes the user_locations rows for a user
func (r *UserRepository) insertLocationLinks(ctx context.Context, userID uuid.UUID, locationIDs []int) error {
	for _, locationID := range locationIDs {
		_, err := r.db.Exec(ctx,
			`INSERT INTO user_locations (user_id, location_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			userID, locationID)
		if err != nil {
			r.logger.Error("failed to link location", "user_id", userID, "location_id", locationID, "error", err)
			return apperrors.Wrap(apperrors.ErrCodeDatabaseError, "failed to assign location", err)
		}
	}
	return nil
}

// attachLocations loads the user's location assignments
func (r *UserRepository) attachLocations(ctx context.Context, user *domain.User) error {
	query := `
		SELECT l.id, l.description
		FROM locations l
		JOIN user_locations ul ON ul.location_id = l.id
		WHERE ul.user_id = $1
		ORDER BY l.id`

	rows, err := r.db.Query(ctx, query, user.ID)
	if err != nil {
		r.logger.Error("failed to load user locations", "user_id", user.ID, "error", err)
		return apperrors.Wrap(apperrors.ErrCodeDatabaseError, "failed to load user locations", err)
	}
	defer rows.Close()

	locations := []domain.Location{}
	for rows.Next() {
		var location domain.Location
		if err := rows.Scan(&location.ID, &location.Description); err != nil {
			return apperrors.Wrap(apperrors.ErrCodeDatabaseError, "failed to scan location", err)
		}
		locations = append(locations, location)
	}
	if err := rows.Err(); err != nil {
		return apperrors.Wrap(apperrors.ErrCodeDatabaseError, "failed to load user locations", err)
	}

	user.Locations = locations
	return nil
}

// scanUser reads one user row
func (r *UserRepository) scanUser(row pgx.Row) (*domain.User, error) {
	user := &domain.User{}
	var role string
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&role,
		&user.Placement,
		&user.CreatedAt,
		&user.UpdatedAt,
		&user.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	user.Role = domain.Role(role)
	return user, nil
}
