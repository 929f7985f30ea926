package repositories

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/VELOCITY6097/valorant-tourney/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var tournamentColumnNames = []string{
	"id", "community_id", "name", "status", "is_paid", "mode", "sponsor_name", "timezone",
	"category_ref", "overwatch_role_ref", "staff_role_ref",
	"registration_channel_ref", "join_channel_ref", "staff_verify_channel_ref",
	"bracket_channel_ref", "bracket_message_ref", "bracket_service_id", "bracket_image_url",
	"registration_menu_message_ref", "created_at", "deleted_at",
}

func tournamentRow(id int, deletedAt interface{}) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows(tournamentColumnNames).
		AddRow(id, int64(42), "Summer Clash", "registration_open", false, "5v5", "", "Asia/Kolkata",
			nil, nil, nil,
			nil, nil, nil,
			nil, nil, nil, nil,
			nil, now, deletedAt)
}

func TestTournamentGetByIDScansFullRow(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresTournamentRepository(db)

	mock.ExpectQuery(`deleted_at\s+FROM tournaments WHERE id = \$1 AND deleted_at IS NULL`).
		WithArgs(3).
		WillReturnRows(tournamentRow(3, nil))

	tour, err := repo.GetByID(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, 3, tour.ID)
	assert.Equal(t, "Summer Clash", tour.Name)
	assert.Equal(t, models.StatusRegistrationOpen, tour.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTournamentGetByIDNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresTournamentRepository(db)

	mock.ExpectQuery(`deleted_at\s+FROM tournaments WHERE id = \$1 AND deleted_at IS NULL`).
		WithArgs(99).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), 99)
	assert.ErrorIs(t, err, ErrTournamentNotFound)
}

func TestTournamentGetByIDIncludingDeletedSeesDeletedRow(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresTournamentRepository(db)

	deletedAt := time.Now().UTC()
	mock.ExpectQuery(`deleted_at\s+FROM tournaments WHERE id = \$1`).
		WithArgs(3).
		WillReturnRows(tournamentRow(3, deletedAt))

	tour, err := repo.GetByIDIncludingDeleted(context.Background(), 3)
	require.NoError(t, err)
	require.NotNil(t, tour.DeletedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}
