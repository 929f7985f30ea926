package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/VELOCITY6097/valorant-tourney/models"
	"github.com/lib/pq"
)

var (
	ErrTeamNotFound          = errors.New("team not found")
	ErrTeamNameConflict      = errors.New("team name conflict for this tournament")
	ErrTeamTournamentInvalid = errors.New("invalid tournament reference")
)

const teamColumns = `
	id, tournament_id, name, captain_user_id, role_ref,
	registration_key_hash, is_verified, icon_url, created_at`

type TeamRepository interface {
	Create(ctx context.Context, team *models.Team) error
	GetByID(ctx context.Context, id int) (*models.Team, error)
	ListByTournament(ctx context.Context, tournamentID int, verifiedOnly bool) ([]*models.Team, error)
	SetVerified(ctx context.Context, id int, verified bool) error
	UpdateCaptain(ctx context.Context, id int, captainUserID int64) error
	// Delete removes the team and, through ON DELETE CASCADE, all of its
	// registrations.
	Delete(ctx context.Context, id int) error
}

type postgresTeamRepository struct {
	db *sql.DB
}

func NewPostgresTeamRepository(db *sql.DB) TeamRepository {
	return &postgresTeamRepository{db: db}
}

func scanTeam(row interface {
	Scan(dest ...interface{}) error
}) (*models.Team, error) {
	t := &models.Team{}
	err := row.Scan(
		&t.ID, &t.TournamentID, &t.Name, &t.CaptainUserID, &t.RoleRef,
		&t.RegistrationKeyHash, &t.IsVerified, &t.IconURL, &t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *postgresTeamRepository) Create(ctx context.Context, team *models.Team) error {
	query := `
		INSERT INTO teams (
			tournament_id, name, captain_user_id, role_ref,
			registration_key_hash, is_verified, icon_url
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		team.TournamentID, team.Name, team.CaptainUserID, team.RoleRef,
		team.RegistrationKeyHash, team.IsVerified, team.IconURL,
	).Scan(&team.ID, &team.CreatedAt)

	return r.handleTeamError(err)
}

func (r *postgresTeamRepository) GetByID(ctx context.Context, id int) (*models.Team, error) {
	query := `SELECT` + teamColumns + `
		FROM teams WHERE id = $1`
	t, err := scanTeam(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	return t, nil
}

// ListByTournament returns teams in insertion order. Pairing depends on this
// order being stable across calls.
func (r *postgresTeamRepository) ListByTournament(ctx context.Context, tournamentID int, verifiedOnly bool) ([]*models.Team, error) {
	query := `SELECT` + teamColumns + `
		FROM teams WHERE tournament_id = $1`
	if verifiedOnly {
		query += ` AND is_verified = TRUE`
	}
	query += ` ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	teams := make([]*models.Team, 0)
	for rows.Next() {
		t, scanErr := scanTeam(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		teams = append(teams, t)
	}
	return teams, rows.Err()
}

func (r *postgresTeamRepository) SetVerified(ctx context.Context, id int, verified bool) error {
	query := `UPDATE teams SET is_verified = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, verified, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) UpdateCaptain(ctx context.Context, id int, captainUserID int64) error {
	query := `UPDATE teams SET captain_user_id = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, captainUserID, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM teams WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) handleTeamError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Code {
		case "23505":
			return ErrTeamNameConflict
		case "23503":
			return ErrTeamTournamentInvalid
		}
	}
	return err
}
