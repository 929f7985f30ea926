package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/VELOCITY6097/valorant-tourney/brackets"
	"github.com/VELOCITY6097/valorant-tourney/models"
	"github.com/VELOCITY6097/valorant-tourney/platform"
	"github.com/VELOCITY6097/valorant-tourney/repositories"
	"golang.org/x/sync/errgroup"
)

type CreateTournamentInput struct {
	CommunityID int64
	Name        string
	IsPaid      bool
	Mode        string
	SponsorName string
	Timezone    string
}

// BracketInitializer is what CloseRegistration needs from the bracket side:
// create the remote bracket and the bracket channel once round 1 is seeded.
type BracketInitializer interface {
	Initialize(ctx context.Context, actor models.Actor, tournamentID int) (*models.Tournament, error)
}

type TournamentService struct {
	db             *sql.DB
	tournamentRepo repositories.TournamentRepository
	teamRepo       repositories.TeamRepository
	matchRepo      repositories.MatchRepository
	settingsRepo   repositories.GuildSettingsRepository
	gateway        platform.Gateway
	seeder         brackets.SeedGenerator
	bracketInit    BracketInitializer
	logger         *slog.Logger
}

func NewTournamentService(
	db *sql.DB,
	tournamentRepo repositories.TournamentRepository,
	teamRepo repositories.TeamRepository,
	matchRepo repositories.MatchRepository,
	settingsRepo repositories.GuildSettingsRepository,
	gateway platform.Gateway,
	seeder brackets.SeedGenerator,
	bracketInit BracketInitializer,
	logger *slog.Logger,
) *TournamentService {
	return &TournamentService{
		db:             db,
		tournamentRepo: tournamentRepo,
		teamRepo:       teamRepo,
		matchRepo:      matchRepo,
		settingsRepo:   settingsRepo,
		gateway:        gateway,
		seeder:         seeder,
		bracketInit:    bracketInit,
		logger:         logger,
	}
}

// Create provisions the tournament's platform surface (category plus the
// registration, join and staff-verify channels) and persists the tournament
// in registration_open. Channel creation happens before the insert, so a
// failed insert tears the channels back down best effort.
func (s *TournamentService) Create(ctx context.Context, actor models.Actor, input CreateTournamentInput) (*models.Tournament, error) {
	if !actor.Capabilities.Has(models.CapabilityAdmin) {
		return nil, ErrForbiddenOperation
	}
	if input.Name == "" {
		return nil, ErrTournamentNameRequired
	}

	if _, err := s.tournamentRepo.GetByName(ctx, input.CommunityID, input.Name); err == nil {
		return nil, ErrTournamentNameConflict
	} else if !errors.Is(err, repositories.ErrTournamentNotFound) {
		return nil, err
	}

	settings, err := s.settingsRepo.Get(ctx, input.CommunityID)
	if err != nil {
		return nil, err
	}

	timezone := input.Timezone
	if timezone == "" {
		timezone = settings.DefaultTimezone
	}

	categoryRef, err := s.gateway.CreateCategory(ctx, input.CommunityID, input.Name)
	if err != nil {
		return nil, fmt.Errorf("provision tournament category: %w", err)
	}

	t := &models.Tournament{
		CommunityID:      input.CommunityID,
		Name:             input.Name,
		Status:           models.StatusRegistrationOpen,
		IsPaid:           input.IsPaid,
		Mode:             input.Mode,
		SponsorName:      input.SponsorName,
		Timezone:         timezone,
		CategoryRef:      int64Ptr(categoryRef),
		OverwatchRoleRef: settings.OverwatchRoleRef,
		StaffRoleRef:     settings.StaffRoleRef,
	}

	var created []int64
	teardown := func() {
		for _, ref := range created {
			if delErr := s.gateway.DeleteChannel(ctx, input.CommunityID, ref); delErr != nil {
				s.logger.Warn("teardown of provisioned channel failed",
					slog.Int64("channel_ref", ref), slog.Any("error", delErr))
			}
		}
	}

	staffAccess := staffChannelAccess(t)
	channels := []struct {
		name   string
		access []platform.ChannelAccess
		target **int64
	}{
		{"registrations", nil, &t.RegistrationChannelRef},
		{"join-a-team", nil, &t.JoinChannelRef},
		{"staff-verify", staffAccess, &t.StaffVerifyChannelRef},
	}
	for _, ch := range channels {
		ref, chErr := s.gateway.CreateTextChannel(ctx, platform.TextChannelIntent{
			CommunityID: input.CommunityID,
			CategoryRef: t.CategoryRef,
			Name:        ch.name,
			Access:      ch.access,
		})
		if chErr != nil {
			teardown()
			return nil, fmt.Errorf("provision %s channel: %w", ch.name, chErr)
		}
		created = append(created, ref)
		*ch.target = int64Ptr(ref)
	}

	if err := s.tournamentRepo.Create(ctx, t); err != nil {
		teardown()
		if errors.Is(err, repositories.ErrTournamentNameConflict) {
			return nil, ErrTournamentNameConflict
		}
		return nil, err
	}

	// The registration menu is the message captains interact with; losing it
	// is recoverable (repost), so failure does not undo the tournament.
	menuRef, menuErr := s.gateway.PostMessage(ctx, input.CommunityID, *t.RegistrationChannelRef, platform.Message{
		Title: t.Name,
		Body:  "Team registration is open. Use the button below to register your team.",
	})
	if menuErr != nil {
		s.logger.Warn("failed to post registration menu",
			slog.Int("tournament_id", t.ID), slog.Any("error", menuErr))
	} else if err := s.tournamentRepo.UpdateRegistrationMenuMessageRef(ctx, t.ID, menuRef); err != nil {
		s.logger.Warn("failed to store registration menu ref",
			slog.Int("tournament_id", t.ID), slog.Any("error", err))
	} else {
		t.RegistrationMenuMessageRef = int64Ptr(menuRef)
	}

	s.notifyStaffLog(ctx, settings, fmt.Sprintf("Tournament %q created, registration is open.", t.Name))

	s.logger.Info("tournament created",
		slog.Int("tournament_id", t.ID),
		slog.Int64("community_id", t.CommunityID),
		slog.String("name", t.Name))
	return t, nil
}

func (s *TournamentService) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	t, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return t, nil
}

func (s *TournamentService) GetByRegistrationChannel(ctx context.Context, channelRef int64) (*models.Tournament, error) {
	t, err := s.tournamentRepo.GetByRegistrationChannel(ctx, channelRef)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return t, nil
}

func (s *TournamentService) GetByJoinChannel(ctx context.Context, channelRef int64) (*models.Tournament, error) {
	t, err := s.tournamentRepo.GetByJoinChannel(ctx, channelRef)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return t, nil
}

func (s *TournamentService) ListActive(ctx context.Context) ([]*models.Tournament, error) {
	return s.tournamentRepo.ListActive(ctx)
}

// GetFullState loads the tournament with its teams and matches, fetched in
// parallel.
func (s *TournamentService) GetFullState(ctx context.Context, id int) (*models.Tournament, error) {
	t, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		teams, teamsErr := s.teamRepo.ListByTournament(gCtx, t.ID, false)
		if teamsErr != nil {
			return teamsErr
		}
		t.Teams = make([]models.Team, 0, len(teams))
		for _, team := range teams {
			t.Teams = append(t.Teams, *team)
		}
		return nil
	})
	g.Go(func() error {
		matches, matchesErr := s.matchRepo.ListByTournament(gCtx, t.ID)
		if matchesErr != nil {
			return matchesErr
		}
		t.Matches = make([]models.Match, 0, len(matches))
		for _, m := range matches {
			t.Matches = append(t.Matches, *m)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return t, nil
}

// CloseRegistration freezes the field and seeds round 1. Teams are paired in
// stored order, an odd field gives the trailing team a bye, and the status
// flips to in_progress in the same transaction as the match inserts. Not a
// single row is written when anything fails. After the commit the bracket is
// initialized in the same sweep; a bracket failure leaves the seeded matches
// in place and staff retries via the bracket endpoint.
func (s *TournamentService) CloseRegistration(ctx context.Context, actor models.Actor, tournamentID int, matchTime *time.Time) ([]*models.Match, error) {
	if !actor.Capabilities.IsStaff() {
		return nil, ErrForbiddenOperation
	}

	t, err := s.GetByID(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if t.Status != models.StatusRegistrationOpen {
		return nil, ErrInvalidStateTransition
	}

	teams, err := s.teamRepo.ListByTournament(ctx, t.ID, true)
	if err != nil {
		return nil, err
	}
	if len(teams) < 2 {
		return nil, ErrInsufficientTeams
	}

	pairings, err := s.seeder.GenerateSeeds(ctx, brackets.PairingParams{Tournament: t, Teams: teams})
	if err != nil {
		if errors.Is(err, brackets.ErrNotEnoughTeams) {
			return nil, ErrInsufficientTeams
		}
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin close-registration transaction: %w", err)
	}
	var txErr error
	defer func() {
		if txErr != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				s.logger.Error("rollback failed after close-registration error",
					slog.Int("tournament_id", t.ID), slog.Any("error", rbErr))
			}
		}
	}()

	matches := make([]*models.Match, 0, len(pairings))
	for _, p := range pairings {
		m := &models.Match{
			TournamentID:     t.ID,
			RoundNumber:      1,
			BracketSlotIndex: p.SlotIndex,
			TeamAID:          &p.TeamA.ID,
			ScheduledTime:    matchTime,
			Result:           models.ResultPending,
		}
		if p.TeamB != nil {
			m.TeamBID = &p.TeamB.ID
		}
		if txErr = s.matchRepo.Create(ctx, tx, m); txErr != nil {
			return nil, fmt.Errorf("seed match for slot %d: %w", p.SlotIndex, txErr)
		}
		matches = append(matches, m)
	}

	if txErr = s.tournamentRepo.UpdateStatus(ctx, tx, t.ID, models.StatusInProgress); txErr != nil {
		return nil, txErr
	}

	if txErr = tx.Commit(); txErr != nil {
		return nil, fmt.Errorf("commit close-registration transaction: %w", txErr)
	}

	s.logger.Info("registration closed, round 1 seeded",
		slog.Int("tournament_id", t.ID),
		slog.Int("teams", len(teams)),
		slog.Int("matches", len(matches)))

	if s.bracketInit != nil {
		if _, initErr := s.bracketInit.Initialize(ctx, actor, t.ID); initErr != nil && !errors.Is(initErr, ErrBracketAlreadyInitialized) {
			s.logger.Warn("bracket initialization after close failed",
				slog.Int("tournament_id", t.ID), slog.Any("error", initErr))
		}
	}
	return matches, nil
}

// Complete moves an in-progress tournament to completed.
func (s *TournamentService) Complete(ctx context.Context, actor models.Actor, tournamentID int) error {
	if !actor.Capabilities.IsStaff() {
		return ErrForbiddenOperation
	}
	t, err := s.GetByID(ctx, tournamentID)
	if err != nil {
		return err
	}
	if !isValidStatusTransition(t.Status, models.StatusCompleted) {
		return ErrInvalidStateTransition
	}
	return s.tournamentRepo.UpdateStatus(ctx, nil, t.ID, models.StatusCompleted)
}

// SoftDelete marks the tournament deleted and tears down its platform
// surface best effort. Matches stay in the database for history; subsequent
// lookups no longer see the tournament, and deleting twice reports not found.
func (s *TournamentService) SoftDelete(ctx context.Context, actor models.Actor, tournamentID int) error {
	if !actor.Capabilities.Has(models.CapabilityAdmin) {
		return ErrForbiddenOperation
	}

	t, err := s.GetByID(ctx, tournamentID)
	if err != nil {
		return err
	}

	if err := s.tournamentRepo.SoftDelete(ctx, t.ID, time.Now().UTC()); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return ErrTournamentNotFound
		}
		return err
	}

	// Platform cleanup after the row is marked: a half-finished teardown must
	// never resurrect the tournament.
	teams, teamsErr := s.teamRepo.ListByTournament(ctx, t.ID, false)
	if teamsErr != nil {
		s.logger.Warn("could not list teams for teardown", slog.Int("tournament_id", t.ID), slog.Any("error", teamsErr))
	}
	for _, team := range teams {
		if delErr := s.gateway.DeleteRole(ctx, t.CommunityID, team.RoleRef); delErr != nil {
			s.logger.Warn("team role teardown failed",
				slog.Int("team_id", team.ID), slog.Any("error", delErr))
		}
	}
	for _, ref := range []*int64{t.RegistrationChannelRef, t.JoinChannelRef, t.StaffVerifyChannelRef, t.BracketChannelRef, t.CategoryRef} {
		if ref == nil {
			continue
		}
		if delErr := s.gateway.DeleteChannel(ctx, t.CommunityID, *ref); delErr != nil {
			s.logger.Warn("channel teardown failed",
				slog.Int("tournament_id", t.ID), slog.Int64("channel_ref", *ref), slog.Any("error", delErr))
		}
	}

	settings, settingsErr := s.settingsRepo.Get(ctx, t.CommunityID)
	if settingsErr == nil {
		s.notifyStaffLog(ctx, settings, fmt.Sprintf("Tournament %q was deleted.", t.Name))
	}

	s.logger.Info("tournament soft-deleted", slog.Int("tournament_id", t.ID))
	return nil
}

func (s *TournamentService) notifyStaffLog(ctx context.Context, settings *models.GuildSettings, body string) {
	if settings == nil || settings.TourneyLogChannelRef == nil {
		return
	}
	if _, err := s.gateway.PostMessage(ctx, settings.CommunityID, *settings.TourneyLogChannelRef, platform.Message{
		Title: "Tournament log",
		Body:  body,
	}); err != nil {
		s.logger.Warn("staff log notification failed", slog.Any("error", err))
	}
}
