package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/VELOCITY6097/valorant-tourney/models"
	"github.com/VELOCITY6097/valorant-tourney/platform"
	"github.com/VELOCITY6097/valorant-tourney/repositories"
	"github.com/VELOCITY6097/valorant-tourney/storage"
	"github.com/VELOCITY6097/valorant-tourney/utils"
)

type RegisterTeamInput struct {
	RegistrationChannelRef int64
	Name                   string
	CaptainUserID          int64
	IconURL                *string
}

// RegisterTeamResult carries the plaintext registration key back to the
// caller exactly once. It is never persisted or logged.
type RegisterTeamResult struct {
	Team            *models.Team
	RegistrationKey string
}

type TeamService struct {
	tournamentRepo   repositories.TournamentRepository
	teamRepo         repositories.TeamRepository
	registrationRepo repositories.RegistrationRepository
	settingsRepo     repositories.GuildSettingsRepository
	gateway          platform.Gateway
	uploader         storage.FileUploader
	httpClient       *http.Client
	logger           *slog.Logger
}

func NewTeamService(
	tournamentRepo repositories.TournamentRepository,
	teamRepo repositories.TeamRepository,
	registrationRepo repositories.RegistrationRepository,
	settingsRepo repositories.GuildSettingsRepository,
	gateway platform.Gateway,
	uploader storage.FileUploader,
	logger *slog.Logger,
) *TeamService {
	return &TeamService{
		tournamentRepo:   tournamentRepo,
		teamRepo:         teamRepo,
		registrationRepo: registrationRepo,
		settingsRepo:     settingsRepo,
		gateway:          gateway,
		uploader:         uploader,
		httpClient:       &http.Client{Timeout: 15 * time.Second},
		logger:           logger,
	}
}

// RegisterTeam creates a team in the tournament owning the registration
// channel the request came from. The captain gets a team role, an approved
// membership and a one-time registration key over DM. Free tournaments
// verify the team immediately; paid ones wait for staff.
func (s *TeamService) RegisterTeam(ctx context.Context, input RegisterTeamInput) (*RegisterTeamResult, error) {
	if input.Name == "" {
		return nil, ErrTeamNameRequired
	}

	t, err := s.tournamentRepo.GetByRegistrationChannel(ctx, input.RegistrationChannelRef)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	if t.Status != models.StatusRegistrationOpen {
		return nil, ErrRegistrationNotOpen
	}

	key, err := utils.GenerateRegistrationKey()
	if err != nil {
		return nil, err
	}
	keyHash, err := utils.HashRegistrationKey(key)
	if err != nil {
		return nil, err
	}

	roleRef, err := s.gateway.CreateRole(ctx, t.CommunityID, "Team "+input.Name)
	if err != nil {
		return nil, fmt.Errorf("provision team role: %w", err)
	}

	team := &models.Team{
		TournamentID:        t.ID,
		Name:                input.Name,
		CaptainUserID:       input.CaptainUserID,
		RoleRef:             roleRef,
		RegistrationKeyHash: keyHash,
		IsVerified:          !t.IsPaid,
	}

	if input.IconURL != nil && s.uploader != nil {
		iconKey := fmt.Sprintf("teams/%d/%s.png", t.ID, input.Name)
		mirrored, mirrorErr := storage.MirrorFromURL(ctx, s.uploader, s.httpClient, *input.IconURL, iconKey)
		if mirrorErr != nil {
			s.logger.Warn("team icon mirror failed, keeping source URL",
				slog.String("team", input.Name), slog.Any("error", mirrorErr))
			team.IconURL = input.IconURL
		} else {
			team.IconURL = &mirrored
		}
	}

	if err := s.teamRepo.Create(ctx, team); err != nil {
		if delErr := s.gateway.DeleteRole(ctx, t.CommunityID, roleRef); delErr != nil {
			s.logger.Warn("team role teardown failed after create error", slog.Any("error", delErr))
		}
		if errors.Is(err, repositories.ErrTeamNameConflict) {
			return nil, ErrTeamNameConflict
		}
		return nil, err
	}

	captainReg := &models.Registration{TeamID: team.ID, UserID: input.CaptainUserID, Approved: true}
	if err := s.registrationRepo.Create(ctx, captainReg); err != nil {
		s.logger.Error("captain registration insert failed",
			slog.Int("team_id", team.ID), slog.Any("error", err))
	} else {
		team.Registrations = append(team.Registrations, *captainReg)
	}

	if err := s.gateway.AssignRole(ctx, t.CommunityID, input.CaptainUserID, roleRef); err != nil {
		s.logger.Warn("captain role assignment failed",
			slog.Int("team_id", team.ID), slog.Any("error", err))
	}

	dm := fmt.Sprintf("Your team %q is registered for %s. Registration key (share with teammates, shown only once): %s",
		team.Name, t.Name, key)
	if err := s.gateway.SendDirectNotification(ctx, input.CaptainUserID, dm); err != nil {
		s.logger.Warn("registration key DM failed",
			slog.Int("team_id", team.ID), slog.Any("error", err))
	}

	if t.IsPaid && t.StaffVerifyChannelRef != nil {
		if _, err := s.gateway.PostMessage(ctx, t.CommunityID, *t.StaffVerifyChannelRef, platform.Message{
			Title: "Verification needed",
			Body:  fmt.Sprintf("Team %q registered for paid tournament %q and awaits payment verification.", team.Name, t.Name),
		}); err != nil {
			s.logger.Warn("staff verify notification failed", slog.Any("error", err))
		}
	}

	s.logger.Info("team registered",
		slog.Int("tournament_id", t.ID),
		slog.Int("team_id", team.ID),
		slog.Bool("verified", team.IsVerified))
	return &RegisterTeamResult{Team: team, RegistrationKey: key}, nil
}

// JoinByKey admits a player into whichever team of the tournament the key
// unlocks. The key is compared against every team's hash; there is no way to
// look a team up by key directly since only hashes are stored.
func (s *TeamService) JoinByKey(ctx context.Context, joinChannelRef, userID int64, key string) (*models.Team, error) {
	t, err := s.tournamentRepo.GetByJoinChannel(ctx, joinChannelRef)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	if t.Status != models.StatusRegistrationOpen {
		return nil, ErrRegistrationNotOpen
	}

	teams, err := s.teamRepo.ListByTournament(ctx, t.ID, false)
	if err != nil {
		return nil, err
	}

	var team *models.Team
	for _, candidate := range teams {
		if utils.CheckRegistrationKey(key, candidate.RegistrationKeyHash) {
			team = candidate
			break
		}
	}
	if team == nil {
		return nil, ErrInvalidRegistrationKey
	}

	reg := &models.Registration{TeamID: team.ID, UserID: userID, Approved: true}
	if err := s.registrationRepo.Create(ctx, reg); err != nil {
		return nil, err
	}

	if err := s.gateway.AssignRole(ctx, t.CommunityID, userID, team.RoleRef); err != nil {
		s.logger.Warn("member role assignment failed",
			slog.Int("team_id", team.ID), slog.Int64("user_id", userID), slog.Any("error", err))
	}

	s.logger.Info("player joined team via key",
		slog.Int("team_id", team.ID), slog.Int64("user_id", userID))
	return team, nil
}

// Verify marks a paid team as payment-verified.
func (s *TeamService) Verify(ctx context.Context, actor models.Actor, teamID int) error {
	if !actor.Capabilities.IsStaff() {
		return ErrForbiddenOperation
	}

	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return ErrTeamNotFound
		}
		return err
	}

	if err := s.teamRepo.SetVerified(ctx, team.ID, true); err != nil {
		return err
	}

	if err := s.gateway.SendDirectNotification(ctx, team.CaptainUserID,
		fmt.Sprintf("Your team %q has been verified. Good luck!", team.Name)); err != nil {
		s.logger.Warn("verification DM failed", slog.Int("team_id", team.ID), slog.Any("error", err))
	}
	return nil
}

// Disqualify removes a team entirely: role, memberships, row. Works in any
// tournament state; already-seeded matches keep their team reference until a
// staff member re-records the result.
func (s *TeamService) Disqualify(ctx context.Context, actor models.Actor, teamID int, reason string) error {
	if !actor.Capabilities.IsStaff() {
		return ErrForbiddenOperation
	}

	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return ErrTeamNotFound
		}
		return err
	}

	t, err := s.tournamentRepo.GetByIDIncludingDeleted(ctx, team.TournamentID)
	if err != nil {
		return err
	}

	if err := s.teamRepo.Delete(ctx, team.ID); err != nil {
		return err
	}

	if delErr := s.gateway.DeleteRole(ctx, t.CommunityID, team.RoleRef); delErr != nil {
		s.logger.Warn("team role removal failed", slog.Int("team_id", team.ID), slog.Any("error", delErr))
	}

	dm := fmt.Sprintf("Your team %q has been removed from %s.", team.Name, t.Name)
	if reason != "" {
		dm += " Reason: " + reason
	}
	if err := s.gateway.SendDirectNotification(ctx, team.CaptainUserID, dm); err != nil {
		s.logger.Warn("disqualification DM failed", slog.Int("team_id", team.ID), slog.Any("error", err))
	}

	s.logger.Info("team disqualified", slog.Int("team_id", team.ID), slog.String("reason", reason))
	return nil
}

// TransferCaptain hands the captaincy to an approved member of the same team.
func (s *TeamService) TransferCaptain(ctx context.Context, actor models.Actor, teamID int, newCaptainID int64) error {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return ErrTeamNotFound
		}
		return err
	}
	if actor.UserID != team.CaptainUserID && !actor.Capabilities.IsStaff() {
		return ErrCaptainActionForbidden
	}

	regs, err := s.registrationRepo.ListByTeam(ctx, team.ID)
	if err != nil {
		return err
	}
	isMember := false
	for _, reg := range regs {
		if reg.UserID == newCaptainID && reg.Approved {
			isMember = true
			break
		}
	}
	if !isMember {
		return ErrRegistrationNotFound
	}

	return s.teamRepo.UpdateCaptain(ctx, team.ID, newCaptainID)
}
