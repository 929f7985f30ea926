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
	ErrRegistrationNotFound    = errors.New("registration not found")
	ErrRegistrationTeamInvalid = errors.New("invalid team reference")
)

type RegistrationRepository interface {
	Create(ctx context.Context, reg *models.Registration) error
	GetByID(ctx context.Context, id int) (*models.Registration, error)
	ListByTeam(ctx context.Context, teamID int) ([]*models.Registration, error)
	Approve(ctx context.Context, id int, approvedAt time.Time) error
	Delete(ctx context.Context, id int) error
}

type postgresRegistrationRepository struct {
	db *sql.DB
}

func NewPostgresRegistrationRepository(db *sql.DB) RegistrationRepository {
	return &postgresRegistrationRepository{db: db}
}

func (r *postgresRegistrationRepository) Create(ctx context.Context, reg *models.Registration) error {
	query := `
		INSERT INTO registrations (team_id, user_id, approved)
		VALUES ($1, $2, $3)
		RETURNING id, requested_at`

	err := r.db.QueryRowContext(ctx, query, reg.TeamID, reg.UserID, reg.Approved).
		Scan(&reg.ID, &reg.RequestedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return ErrRegistrationTeamInvalid
		}
		return err
	}
	return nil
}

func (r *postgresRegistrationRepository) GetByID(ctx context.Context, id int) (*models.Registration, error) {
	query := `
		SELECT id, team_id, user_id, approved, requested_at, approved_at
		FROM registrations
		WHERE id = $1`

	reg := &models.Registration{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&reg.ID, &reg.TeamID, &reg.UserID, &reg.Approved, &reg.RequestedAt, &reg.ApprovedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRegistrationNotFound
		}
		return nil, err
	}
	return reg, nil
}

func (r *postgresRegistrationRepository) ListByTeam(ctx context.Context, teamID int) ([]*models.Registration, error) {
	query := `
		SELECT id, team_id, user_id, approved, requested_at, approved_at
		FROM registrations
		WHERE team_id = $1
		ORDER BY requested_at`

	rows, err := r.db.QueryContext(ctx, query, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	regs := make([]*models.Registration, 0)
	for rows.Next() {
		reg := &models.Registration{}
		if scanErr := rows.Scan(
			&reg.ID, &reg.TeamID, &reg.UserID, &reg.Approved, &reg.RequestedAt, &reg.ApprovedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		regs = append(regs, reg)
	}
	return regs, rows.Err()
}

func (r *postgresRegistrationRepository) Approve(ctx context.Context, id int, approvedAt time.Time) error {
	query := `UPDATE registrations SET approved = TRUE, approved_at = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, approvedAt, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrRegistrationNotFound)
}

func (r *postgresRegistrationRepository) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM registrations WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrRegistrationNotFound)
}
