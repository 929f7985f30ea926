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
	ErrTournamentNotFound     = errors.New("tournament not found")
	ErrTournamentNameConflict = errors.New("tournament name conflict for this community")
)

const tournamentColumns = `
	id, community_id, name, status, is_paid, mode, sponsor_name, timezone,
	category_ref, overwatch_role_ref, staff_role_ref,
	registration_channel_ref, join_channel_ref, staff_verify_channel_ref,
	bracket_channel_ref, bracket_message_ref, bracket_service_id, bracket_image_url,
	registration_menu_message_ref, created_at, deleted_at`

// TournamentRepository is the tournaments collection. Every lookup except
// GetByIDIncludingDeleted filters out soft-deleted rows, so "not found" and
// "deleted" are indistinguishable to callers on purpose.
type TournamentRepository interface {
	Create(ctx context.Context, t *models.Tournament) error
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	GetByIDIncludingDeleted(ctx context.Context, id int) (*models.Tournament, error)
	GetByName(ctx context.Context, communityID int64, name string) (*models.Tournament, error)
	GetByRegistrationChannel(ctx context.Context, channelRef int64) (*models.Tournament, error)
	GetByJoinChannel(ctx context.Context, channelRef int64) (*models.Tournament, error)
	ListActive(ctx context.Context) ([]*models.Tournament, error)
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.TournamentStatus) error
	UpdateBracketInfo(ctx context.Context, id int, channelRef, messageRef int64, serviceID, imageURL *string) error
	UpdateBracketImageURL(ctx context.Context, id int, imageURL string) error
	UpdateRegistrationMenuMessageRef(ctx context.Context, id int, messageRef int64) error
	SoftDelete(ctx context.Context, id int, deletedAt time.Time) error
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

func (r *postgresTournamentRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func scanTournament(row interface {
	Scan(dest ...interface{}) error
}) (*models.Tournament, error) {
	t := &models.Tournament{}
	err := row.Scan(
		&t.ID, &t.CommunityID, &t.Name, &t.Status, &t.IsPaid, &t.Mode, &t.SponsorName, &t.Timezone,
		&t.CategoryRef, &t.OverwatchRoleRef, &t.StaffRoleRef,
		&t.RegistrationChannelRef, &t.JoinChannelRef, &t.StaffVerifyChannelRef,
		&t.BracketChannelRef, &t.BracketMessageRef, &t.BracketServiceID, &t.BracketImageURL,
		&t.RegistrationMenuMessageRef, &t.CreatedAt, &t.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *postgresTournamentRepository) Create(ctx context.Context, t *models.Tournament) error {
	query := `
		INSERT INTO tournaments (
			community_id, name, status, is_paid, mode, sponsor_name, timezone,
			category_ref, overwatch_role_ref, staff_role_ref,
			registration_channel_ref, join_channel_ref, staff_verify_channel_ref
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		t.CommunityID, t.Name, t.Status, t.IsPaid, t.Mode, t.SponsorName, t.Timezone,
		t.CategoryRef, t.OverwatchRoleRef, t.StaffRoleRef,
		t.RegistrationChannelRef, t.JoinChannelRef, t.StaffVerifyChannelRef,
	).Scan(&t.ID, &t.CreatedAt)

	return r.handleTournamentError(err)
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	query := `SELECT` + tournamentColumns + `
		FROM tournaments WHERE id = $1 AND deleted_at IS NULL`
	t, err := scanTournament(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return t, nil
}

// GetByIDIncludingDeleted exists for historical match queries: a recorded
// match must stay resolvable after its tournament is soft-deleted.
func (r *postgresTournamentRepository) GetByIDIncludingDeleted(ctx context.Context, id int) (*models.Tournament, error) {
	query := `SELECT` + tournamentColumns + `
		FROM tournaments WHERE id = $1`
	t, err := scanTournament(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *postgresTournamentRepository) GetByName(ctx context.Context, communityID int64, name string) (*models.Tournament, error) {
	query := `SELECT` + tournamentColumns + `
		FROM tournaments
		WHERE community_id = $1 AND name = $2 AND deleted_at IS NULL`
	t, err := scanTournament(r.db.QueryRowContext(ctx, query, communityID, name))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *postgresTournamentRepository) GetByRegistrationChannel(ctx context.Context, channelRef int64) (*models.Tournament, error) {
	return r.getByChannelColumn(ctx, "registration_channel_ref", channelRef)
}

func (r *postgresTournamentRepository) GetByJoinChannel(ctx context.Context, channelRef int64) (*models.Tournament, error) {
	return r.getByChannelColumn(ctx, "join_channel_ref", channelRef)
}

func (r *postgresTournamentRepository) getByChannelColumn(ctx context.Context, column string, channelRef int64) (*models.Tournament, error) {
	query := `SELECT` + tournamentColumns + `
		FROM tournaments
		WHERE ` + column + ` = $1 AND deleted_at IS NULL`
	t, err := scanTournament(r.db.QueryRowContext(ctx, query, channelRef))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *postgresTournamentRepository) ListActive(ctx context.Context) ([]*models.Tournament, error) {
	query := `SELECT` + tournamentColumns + `
		FROM tournaments
		WHERE status = $1 AND deleted_at IS NULL
		ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query, models.StatusRegistrationOpen)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tournaments := make([]*models.Tournament, 0)
	for rows.Next() {
		t, scanErr := scanTournament(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		tournaments = append(tournaments, t)
	}
	return tournaments, rows.Err()
}

func (r *postgresTournamentRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.TournamentStatus) error {
	executor := r.getExecutor(exec)
	query := `UPDATE tournaments SET status = $1 WHERE id = $2 AND deleted_at IS NULL`
	result, err := executor.ExecContext(ctx, query, status, id)
	if err != nil {
		return r.handleTournamentError(err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) UpdateBracketInfo(ctx context.Context, id int, channelRef, messageRef int64, serviceID, imageURL *string) error {
	query := `
		UPDATE tournaments SET
			bracket_channel_ref = $1,
			bracket_message_ref = $2,
			bracket_service_id = $3,
			bracket_image_url = $4
		WHERE id = $5 AND deleted_at IS NULL`
	result, err := r.db.ExecContext(ctx, query, channelRef, messageRef, serviceID, imageURL, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) UpdateBracketImageURL(ctx context.Context, id int, imageURL string) error {
	query := `UPDATE tournaments SET bracket_image_url = $1 WHERE id = $2 AND deleted_at IS NULL`
	result, err := r.db.ExecContext(ctx, query, imageURL, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) UpdateRegistrationMenuMessageRef(ctx context.Context, id int, messageRef int64) error {
	query := `UPDATE tournaments SET registration_menu_message_ref = $1 WHERE id = $2 AND deleted_at IS NULL`
	result, err := r.db.ExecContext(ctx, query, messageRef, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

// SoftDelete marks the row deleted without touching status or matches.
// Deleting an already-deleted tournament reports ErrTournamentNotFound
// because the WHERE clause no longer matches.
func (r *postgresTournamentRepository) SoftDelete(ctx context.Context, id int, deletedAt time.Time) error {
	query := `UPDATE tournaments SET deleted_at = $1 WHERE id = $2 AND deleted_at IS NULL`
	result, err := r.db.ExecContext(ctx, query, deletedAt, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) handleTournamentError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		if pqErr.Code == "23505" && pqErr.Constraint == "tournaments_community_id_name_active_key" {
			return ErrTournamentNameConflict
		}
	}
	return err
}
