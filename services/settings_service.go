package services

import (
	"context"
	"log/slog"

	"github.com/VELOCITY6097/valorant-tourney/models"
	"github.com/VELOCITY6097/valorant-tourney/repositories"
)

// SettingsService backs the one-time community setup flow and maintenance
// toggles.
type SettingsService struct {
	settingsRepo repositories.GuildSettingsRepository
	logger       *slog.Logger
}

func NewSettingsService(settingsRepo repositories.GuildSettingsRepository, logger *slog.Logger) *SettingsService {
	return &SettingsService{settingsRepo: settingsRepo, logger: logger}
}

func (s *SettingsService) Get(ctx context.Context, communityID int64) (*models.GuildSettings, error) {
	return s.settingsRepo.Get(ctx, communityID)
}

// Setup stores the community's role and channel wiring. Only admins may run
// it; it overwrites any previous setup wholesale.
func (s *SettingsService) Setup(ctx context.Context, actor models.Actor, settings *models.GuildSettings) error {
	if !actor.Capabilities.Has(models.CapabilityAdmin) {
		return ErrForbiddenOperation
	}
	if settings.CommunityID == 0 {
		return ErrValidationFailed
	}
	if settings.DefaultTimezone == "" {
		settings.DefaultTimezone = "Asia/Kolkata"
	}

	if err := s.settingsRepo.Upsert(ctx, settings); err != nil {
		return err
	}

	s.logger.Info("community setup stored",
		slog.Int64("community_id", settings.CommunityID),
		slog.Bool("premium", settings.PremiumEnabled))
	return nil
}

func (s *SettingsService) SetMaintenance(ctx context.Context, actor models.Actor, communityID int64, enabled bool, message string) error {
	if !actor.Capabilities.Has(models.CapabilityAdmin) {
		return ErrForbiddenOperation
	}

	settings, err := s.settingsRepo.Get(ctx, communityID)
	if err != nil {
		return err
	}
	settings.MaintenanceMode = enabled
	settings.MaintenanceMsg = message
	return s.settingsRepo.Upsert(ctx, settings)
}
