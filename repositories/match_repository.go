package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/VELOCITY6097/valorant-tourney/models"
	"github.com/lib/pq"
)

var (
	ErrMatchNotFound          = errors.New("match not found")
	ErrMatchSlotConflict      = errors.New("bracket slot already taken for this round")
	ErrMatchReferenceInvalid  = errors.New("invalid tournament or team reference")
	ErrMatchAlreadyProvisioned = errors.New("match voice channels already provisioned")
)

const matchColumns = `
	id, tournament_id, round_number, bracket_slot_index,
	team_a_id, team_b_id, scheduled_time,
	team_a_score, team_b_score, result, service_match_id,
	vc_a_ref, vc_b_ref, vc_spec_ref, created_at, updated_at`

type MatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.Match) error
	GetByID(ctx context.Context, id int) (*models.Match, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.Match, error)
	// ListDueForProvisioning returns matches whose scheduled time falls inside
	// [from, to] and whose vc_a_ref is still NULL. The NULL filter is the
	// sweep's idempotency guard: once channels exist the match never comes
	// back from this query.
	ListDueForProvisioning(ctx context.Context, from, to time.Time) ([]*models.Match, error)
	UpdateResult(ctx context.Context, id int, scoreA, scoreB int, result models.MatchResult, updatedAt time.Time) error
	// SetServiceMatchID links a seeded slot to its counterpart on the bracket
	// service so score pushes can address it.
	SetServiceMatchID(ctx context.Context, id int, serviceMatchID string) error
	// SetVoiceChannels writes all three refs in one statement and refuses to
	// overwrite a match that already has them.
	SetVoiceChannels(ctx context.Context, id int, vcA, vcB, vcSpec int64) error
	ClearVoiceChannels(ctx context.Context, id int) error
	Delete(ctx context.Context, id int) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func scanMatch(row interface {
	Scan(dest ...interface{}) error
}) (*models.Match, error) {
	m := &models.Match{}
	err := row.Scan(
		&m.ID, &m.TournamentID, &m.RoundNumber, &m.BracketSlotIndex,
		&m.TeamAID, &m.TeamBID, &m.ScheduledTime,
		&m.TeamAScore, &m.TeamBScore, &m.Result, &m.ServiceMatchID,
		&m.VcARef, &m.VcBRef, &m.VcSpecRef, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (r *postgresMatchRepository) Create(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO matches (
			tournament_id, round_number, bracket_slot_index,
			team_a_id, team_b_id, scheduled_time, result, service_match_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, team_a_score, team_b_score, created_at`

	err := executor.QueryRowContext(ctx, query,
		match.TournamentID, match.RoundNumber, match.BracketSlotIndex,
		match.TeamAID, match.TeamBID, match.ScheduledTime, match.Result, match.ServiceMatchID,
	).Scan(&match.ID, &match.TeamAScore, &match.TeamBScore, &match.CreatedAt)

	return r.handleMatchError(err)
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id int) (*models.Match, error) {
	query := `SELECT` + matchColumns + `
		FROM matches WHERE id = $1`
	m, err := scanMatch(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return m, nil
}

func (r *postgresMatchRepository) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Match, error) {
	query := `SELECT` + matchColumns + `
		FROM matches
		WHERE tournament_id = $1
		ORDER BY round_number, bracket_slot_index`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		m, scanErr := scanMatch(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

func (r *postgresMatchRepository) ListDueForProvisioning(ctx context.Context, from, to time.Time) ([]*models.Match, error) {
	query := `SELECT` + matchColumns + `
		FROM matches
		WHERE scheduled_time >= $1 AND scheduled_time <= $2
		  AND vc_a_ref IS NULL
		ORDER BY scheduled_time`

	rows, err := r.db.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		m, scanErr := scanMatch(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

func (r *postgresMatchRepository) UpdateResult(ctx context.Context, id int, scoreA, scoreB int, result models.MatchResult, updatedAt time.Time) error {
	query := `
		UPDATE matches SET
			team_a_score = $1,
			team_b_score = $2,
			result = $3,
			updated_at = $4
		WHERE id = $5`
	res, err := r.db.ExecContext(ctx, query, scoreA, scoreB, result, updatedAt, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(res, ErrMatchNotFound)
}

func (r *postgresMatchRepository) SetServiceMatchID(ctx context.Context, id int, serviceMatchID string) error {
	query := `UPDATE matches SET service_match_id = $1 WHERE id = $2`
	res, err := r.db.ExecContext(ctx, query, serviceMatchID, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(res, ErrMatchNotFound)
}

func (r *postgresMatchRepository) SetVoiceChannels(ctx context.Context, id int, vcA, vcB, vcSpec int64) error {
	query := `
		UPDATE matches SET
			vc_a_ref = $1,
			vc_b_ref = $2,
			vc_spec_ref = $3
		WHERE id = $4 AND vc_a_ref IS NULL`
	res, err := r.db.ExecContext(ctx, query, vcA, vcB, vcSpec, id)
	if err != nil {
		return err
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		// Either the match is gone or another writer beat us to it.
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return getErr
		}
		return ErrMatchAlreadyProvisioned
	}
	return nil
}

func (r *postgresMatchRepository) ClearVoiceChannels(ctx context.Context, id int) error {
	query := `UPDATE matches SET vc_a_ref = NULL, vc_b_ref = NULL, vc_spec_ref = NULL WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(res, ErrMatchNotFound)
}

func (r *postgresMatchRepository) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM matches WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(res, ErrMatchNotFound)
}

func (r *postgresMatchRepository) handleMatchError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Code {
		case "23505":
			return ErrMatchSlotConflict
		case "23503":
			return ErrMatchReferenceInvalid
		}
	}
	return err
}
