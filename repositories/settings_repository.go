package repositories

import (
	"context"
	"database/sql"

	"github.com/VELOCITY6097/valorant-tourney/models"
)

type GuildSettingsRepository interface {
	// Get never reports "not found": a community without a settings row gets
	// the defaults, matching how /setup treats a fresh guild.
	Get(ctx context.Context, communityID int64) (*models.GuildSettings, error)
	Upsert(ctx context.Context, settings *models.GuildSettings) error
}

type postgresGuildSettingsRepository struct {
	db *sql.DB
}

func NewPostgresGuildSettingsRepository(db *sql.DB) GuildSettingsRepository {
	return &postgresGuildSettingsRepository{db: db}
}

func (r *postgresGuildSettingsRepository) Get(ctx context.Context, communityID int64) (*models.GuildSettings, error) {
	query := `
		SELECT community_id, admin_role_ref, overwatch_role_ref, staff_role_ref, category_ref,
		       bot_updates_channel_ref, tourney_log_channel_ref,
		       maintenance_mode, maintenance_msg, default_timezone, premium_enabled
		FROM guild_settings
		WHERE community_id = $1`

	s := &models.GuildSettings{}
	err := r.db.QueryRowContext(ctx, query, communityID).Scan(
		&s.CommunityID, &s.AdminRoleRef, &s.OverwatchRoleRef, &s.StaffRoleRef, &s.CategoryRef,
		&s.BotUpdatesChannelRef, &s.TourneyLogChannelRef,
		&s.MaintenanceMode, &s.MaintenanceMsg, &s.DefaultTimezone, &s.PremiumEnabled,
	)
	if err == sql.ErrNoRows {
		return &models.GuildSettings{
			CommunityID:     communityID,
			DefaultTimezone: "Asia/Kolkata",
		}, nil
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *postgresGuildSettingsRepository) Upsert(ctx context.Context, settings *models.GuildSettings) error {
	query := `
		INSERT INTO guild_settings (
			community_id, admin_role_ref, overwatch_role_ref, staff_role_ref, category_ref,
			bot_updates_channel_ref, tourney_log_channel_ref,
			maintenance_mode, maintenance_msg, default_timezone, premium_enabled
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (community_id) DO UPDATE SET
			admin_role_ref = EXCLUDED.admin_role_ref,
			overwatch_role_ref = EXCLUDED.overwatch_role_ref,
			staff_role_ref = EXCLUDED.staff_role_ref,
			category_ref = EXCLUDED.category_ref,
			bot_updates_channel_ref = EXCLUDED.bot_updates_channel_ref,
			tourney_log_channel_ref = EXCLUDED.tourney_log_channel_ref,
			maintenance_mode = EXCLUDED.maintenance_mode,
			maintenance_msg = EXCLUDED.maintenance_msg,
			default_timezone = EXCLUDED.default_timezone,
			premium_enabled = EXCLUDED.premium_enabled`

	_, err := r.db.ExecContext(ctx, query,
		settings.CommunityID, settings.AdminRoleRef, settings.OverwatchRoleRef, settings.StaffRoleRef,
		settings.CategoryRef, settings.BotUpdatesChannelRef, settings.TourneyLogChannelRef,
		settings.MaintenanceMode, settings.MaintenanceMsg, settings.DefaultTimezone, settings.PremiumEnabled,
	)
	return err
}
