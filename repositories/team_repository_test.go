package repositories

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var teamColumnNames = []string{
	"id", "tournament_id", "name", "captain_user_id", "role_ref",
	"registration_key_hash", "is_verified", "icon_url", "created_at",
}

func TestTeamGetByIDScansFullRow(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresTeamRepository(db)

	now := time.Now().UTC()
	rows := sqlmock.NewRows(teamColumnNames).
		AddRow(5, 3, "Alpha", int64(100), int64(9001), "hash", true, nil, now)

	mock.ExpectQuery(`created_at\s+FROM teams WHERE id = \$1`).
		WithArgs(5).
		WillReturnRows(rows)

	team, err := repo.GetByID(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, "Alpha", team.Name)
	assert.Equal(t, int64(9001), team.RoleRef)
	assert.True(t, team.IsVerified)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeamGetByIDNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresTeamRepository(db)

	mock.ExpectQuery(`created_at\s+FROM teams WHERE id = \$1`).
		WithArgs(99).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), 99)
	assert.ErrorIs(t, err, ErrTeamNotFound)
}

func TestTeamListByTournamentVerifiedFilter(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresTeamRepository(db)

	now := time.Now().UTC()
	rows := sqlmock.NewRows(teamColumnNames).
		AddRow(1, 3, "Alpha", int64(100), int64(9001), "hash", true, nil, now).
		AddRow(2, 3, "Bravo", int64(200), int64(9002), "hash", true, nil, now)

	mock.ExpectQuery(`created_at\s+FROM teams WHERE tournament_id = \$1 AND is_verified = TRUE ORDER BY id`).
		WithArgs(3).
		WillReturnRows(rows)

	teams, err := repo.ListByTournament(context.Background(), 3, true)
	require.NoError(t, err)
	require.Len(t, teams, 2)
	assert.Equal(t, "Alpha", teams[0].Name)
	assert.Equal(t, "Bravo", teams[1].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeamListByTournamentAll(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresTeamRepository(db)

	now := time.Now().UTC()
	rows := sqlmock.NewRows(teamColumnNames).
		AddRow(1, 3, "Alpha", int64(100), int64(9001), "hash", false, nil, now)

	mock.ExpectQuery(`created_at\s+FROM teams WHERE tournament_id = \$1 ORDER BY id`).
		WithArgs(3).
		WillReturnRows(rows)

	teams, err := repo.ListByTournament(context.Background(), 3, false)
	require.NoError(t, err)
	require.Len(t, teams, 1)
	assert.False(t, teams[0].IsVerified)
	assert.NoError(t, mock.ExpectationsWereMet())
}
