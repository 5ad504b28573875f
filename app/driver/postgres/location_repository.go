package postgres

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"asset-backend/app/domain"
	"asset-backend/app/port"
	apperrors "asset-backend/app/utils/errors"
)

// LocationRepository implements port.LocationRepositoryPort for PostgreSQL
type LocationRepository struct {
	db     DatabaseIface
	logger *slog.Logger
}

// NewLocationRepository creates a new PostgreSQL location repository
func NewLocationRepository(db DatabaseIface, logger *slog.Logger) port.LocationRepositoryPort {
	return &LocationRepository{
		db:     db,
		logger: logger.With("component", "location_repository"),
	}
}

// List returns all locations ordered by id
func (r *LocationRepository) List(ctx context.Context) ([]domain.Location, error) {
	query := `SELECT id, description FROM locations ORDER BY id`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.logger.Error("failed to list locations", "error", err)
		return nil, apperrors.Wrap(apperrors.ErrCodeDatabaseError, "failed to list locations", err)
	}
	defer rows.Close()

	locations := []domain.Location{}
	for rows.Next() {
		var location domain.Location
		if err := rows.Scan(&location.ID, &location.Description); err != nil {
			return nil, apperrors.Wrap(apperrors.ErrCodeDatabaseError, "failed to scan location", err)
		}
		locations = append(locations, location)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeDatabaseError, "failed to list locations", err)
	}

	return locations, nil
}

// First returns the location with the lowest id. New users registered
// through the auto-registration flow are assigned to it.
func (r *LocationRepository) First(ctx context.Context) (*domain.Location, error) {
	query := `SELECT id, description FROM locations ORDER BY id LIMIT 1`

	location := &domain.Location{}
	err := r.db.QueryRow(ctx, query).Scan(&location.ID, &location.Description)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.New(apperrors.ErrCodeLocationNotFound, "no locations configured")
		}
		r.logger.Error("failed to get default location", "error", err)
		return nil, apperrors.Wrap(apperrors.ErrCodeDatabaseError, "failed to get default location", err)
	}

	return location, nil
}
