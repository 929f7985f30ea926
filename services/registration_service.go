package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/VELOCITY6097/valorant-tourney/models"
	"github.com/VELOCITY6097/valorant-tourney/platform"
	"github.com/VELOCITY6097/valorant-tourney/repositories"
)

// RegistrationService handles the membership workflow inside a team:
// pending join requests, approvals, and removals.
type RegistrationService struct {
	tournamentRepo   repositories.TournamentRepository
	teamRepo         repositories.TeamRepository
	registrationRepo repositories.RegistrationRepository
	gateway          platform.Gateway
	logger           *slog.Logger
}

func NewRegistrationService(
	tournamentRepo repositories.TournamentRepository,
	teamRepo repositories.TeamRepository,
	registrationRepo repositories.RegistrationRepository,
	gateway platform.Gateway,
	logger *slog.Logger,
) *RegistrationService {
	return &RegistrationService{
		tournamentRepo:   tournamentRepo,
		teamRepo:         teamRepo,
		registrationRepo: registrationRepo,
		gateway:          gateway,
		logger:           logger,
	}
}

// RequestJoin records a pending membership request for approval by the
// captain. Players who know the registration key skip this and join directly.
func (s *RegistrationService) RequestJoin(ctx context.Context, teamID int, userID int64) (*models.Registration, error) {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}

	reg := &models.Registration{TeamID: team.ID, UserID: userID, Approved: false}
	if err := s.registrationRepo.Create(ctx, reg); err != nil {
		return nil, err
	}

	if err := s.gateway.SendDirectNotification(ctx, team.CaptainUserID,
		fmt.Sprintf("A player requested to join your team %q.", team.Name)); err != nil {
		s.logger.Warn("join request DM failed", slog.Int("team_id", team.ID), slog.Any("error", err))
	}
	return reg, nil
}

// Approve confirms a pending request. Only the team captain or staff may
// approve; approval assigns the team role.
func (s *RegistrationService) Approve(ctx context.Context, actor models.Actor, registrationID int) error {
	reg, team, err := s.loadRegistration(ctx, registrationID)
	if err != nil {
		return err
	}
	if actor.UserID != team.CaptainUserID && !actor.Capabilities.IsStaff() {
		return ErrCaptainActionForbidden
	}

	if err := s.registrationRepo.Approve(ctx, reg.ID, time.Now().UTC()); err != nil {
		if errors.Is(err, repositories.ErrRegistrationNotFound) {
			return ErrRegistrationNotFound
		}
		return err
	}

	t, err := s.tournamentRepo.GetByIDIncludingDeleted(ctx, team.TournamentID)
	if err != nil {
		return err
	}
	if err := s.gateway.AssignRole(ctx, t.CommunityID, reg.UserID, team.RoleRef); err != nil {
		s.logger.Warn("role assignment on approval failed",
			slog.Int("registration_id", reg.ID), slog.Any("error", err))
	}
	return nil
}

// Remove deletes a membership. Captains remove anyone but themselves;
// members may remove themselves; staff may remove anyone.
func (s *RegistrationService) Remove(ctx context.Context, actor models.Actor, registrationID int) error {
	reg, team, err := s.loadRegistration(ctx, registrationID)
	if err != nil {
		return err
	}

	isCaptain := actor.UserID == team.CaptainUserID
	isSelf := actor.UserID == reg.UserID
	if !isCaptain && !isSelf && !actor.Capabilities.IsStaff() {
		return ErrForbiddenOperation
	}
	if reg.UserID == team.CaptainUserID {
		// The captaincy must be transferred before the captain can leave.
		return ErrCaptainActionForbidden
	}

	if err := s.registrationRepo.Delete(ctx, reg.ID); err != nil {
		if errors.Is(err, repositories.ErrRegistrationNotFound) {
			return ErrRegistrationNotFound
		}
		return err
	}

	t, err := s.tournamentRepo.GetByIDIncludingDeleted(ctx, team.TournamentID)
	if err != nil {
		return err
	}
	if err := s.gateway.RemoveRole(ctx, t.CommunityID, reg.UserID, team.RoleRef); err != nil {
		s.logger.Warn("role removal failed",
			slog.Int("registration_id", reg.ID), slog.Any("error", err))
	}
	return nil
}

func (s *RegistrationService) ListByTeam(ctx context.Context, teamID int) ([]*models.Registration, error) {
	return s.registrationRepo.ListByTeam(ctx, teamID)
}

func (s *RegistrationService) loadRegistration(ctx context.Context, registrationID int) (*models.Registration, *models.Team, error) {
	reg, err := s.registrationRepo.GetByID(ctx, registrationID)
	if err != nil {
		if errors.Is(err, repositories.ErrRegistrationNotFound) {
			return nil, nil, ErrRegistrationNotFound
		}
		return nil, nil, err
	}
	team, err := s.teamRepo.GetByID(ctx, reg.TeamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, nil, ErrTeamNotFound
		}
		return nil, nil, err
	}
	return reg, team, nil
}
