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

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

var matchColumnNames = []string{
	"id", "tournament_id", "round_number", "bracket_slot_index",
	"team_a_id", "team_b_id", "scheduled_time",
	"team_a_score", "team_b_score", "result", "service_match_id",
	"vc_a_ref", "vc_b_ref", "vc_spec_ref", "created_at", "updated_at",
}

func TestMatchGetByIDScansFullRow(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresMatchRepository(db)

	now := time.Now().UTC()
	scheduled := now.Add(time.Hour)
	rows := sqlmock.NewRows(matchColumnNames).
		AddRow(7, 3, 1, 2, 10, 11, scheduled, 0, 0, "pending", nil, nil, nil, nil, now, nil)

	// The column block and the FROM clause come from separate literals; the
	// whitespace between them has to survive the concatenation.
	mock.ExpectQuery(`updated_at\s+FROM matches WHERE id = \$1`).
		WithArgs(7).
		WillReturnRows(rows)

	m, err := repo.GetByID(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 7, m.ID)
	assert.Equal(t, 3, m.TournamentID)
	require.NotNil(t, m.TeamAID)
	assert.Equal(t, 10, *m.TeamAID)
	require.NotNil(t, m.TeamBID)
	assert.Equal(t, 11, *m.TeamBID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMatchGetByIDNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresMatchRepository(db)

	mock.ExpectQuery(`updated_at\s+FROM matches WHERE id = \$1`).
		WithArgs(99).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), 99)
	assert.ErrorIs(t, err, ErrMatchNotFound)
}

func TestMatchListDueForProvisioningQuery(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresMatchRepository(db)

	from := time.Now().UTC()
	to := from.Add(10 * time.Minute)
	scheduled := from.Add(5 * time.Minute)
	rows := sqlmock.NewRows(matchColumnNames).
		AddRow(1, 3, 1, 1, 10, 11, scheduled, 0, 0, "pending", nil, nil, nil, nil, from, nil)

	mock.ExpectQuery(`updated_at\s+FROM matches\s+WHERE scheduled_time >= \$1 AND scheduled_time <= \$2\s+AND vc_a_ref IS NULL`).
		WithArgs(from, to).
		WillReturnRows(rows)

	due, err := repo.ListDueForProvisioning(context.Background(), from, to)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, 1, due[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMatchSetVoiceChannelsRefusesOverwrite(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresMatchRepository(db)

	mock.ExpectExec(`UPDATE matches SET`).
		WithArgs(int64(1), int64(2), int64(3), 7).
		WillReturnResult(sqlmock.NewResult(0, 0))

	now := time.Now().UTC()
	provisioned := sqlmock.NewRows(matchColumnNames).
		AddRow(7, 3, 1, 1, 10, 11, nil, 0, 0, "pending", nil, int64(500), int64(501), int64(502), now, nil)
	mock.ExpectQuery(`updated_at\s+FROM matches WHERE id = \$1`).
		WithArgs(7).
		WillReturnRows(provisioned)

	err := repo.SetVoiceChannels(context.Background(), 7, 1, 2, 3)
	assert.ErrorIs(t, err, ErrMatchAlreadyProvisioned)
	assert.NoError(t, mock.ExpectationsWereMet())
}
