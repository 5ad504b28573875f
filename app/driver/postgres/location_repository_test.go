package postgres

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "asset-backend/app/utils/errors"
	"asset-backend/app/utils/logger"
)

func createTestLocationRepository(t *testing.T) (*LocationRepository, pgxmock.PgxPoolIface) {
	t.Helper()

	mockDB, err := pgxmock.NewPool()
	require.NoError(t, err)

	testLogger, err := logger.New("error")
	require.NoError(t, err)

	repo := NewLocationRepository(mockDB, testLogger).(*LocationRepository)

	return repo, mockDB
}

func TestLocationRepository_List(t *testing.T) {
	repo, mockDB := createTestLocationRepository(t)
	defer mockDB.Close()

	mockDB.ExpectQuery("SELECT(.+)FROM locations ORDER BY id").
		WillReturnRows(
			pgxmock.NewRows([]string{"id", "description"}).
				AddRow(1, "Head Office").
				AddRow(2, "Branch Jakarta").
				AddRow(3, "Warehouse"),
		)

	locations, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, locations, 3)
	assert.Equal(t, 1, locations[0].ID)
	assert.Equal(t, "Warehouse", locations[2].Description)

	assert.NoError(t, mockDB.ExpectationsWereMet())
}

func TestLocationRepository_First(t *testing.T) {
	t.Run("returns lowest id location", func(t *testing.T) {
		repo, mockDB := createTestLocationRepository(t)
		defer mockDB.Close()

		mockDB.ExpectQuery("SELECT(.+)FROM locations ORDER BY id LIMIT 1").
			WillReturnRows(pgxmock.NewRows([]string{"id", "description"}).AddRow(1, "Head Office"))

		location, err := repo.First(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, location.ID)
		assert.Equal(t, "Head Office", location.Description)

		assert.NoError(t, mockDB.ExpectationsWereMet())
	})

	t.Run("no locations configured", func(t *testing.T) {
		repo, mockDB := createTestLocationRepository(t)
		defer mockDB.Close()

		mockDB.ExpectQuery("SELECT(.+)FROM locations ORDER BY id LIMIT 1").
			WillReturnError(pgx.ErrNoRows)

		_, err := repo.First(context.Background())
		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeLocationNotFound))

		assert.NoError(t, mockDB.ExpectationsWereMet())
	})
}
