package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/VELOCITY6097/valorant-tourney/models"
	"github.com/VELOCITY6097/valorant-tourney/platform"
	"github.com/VELOCITY6097/valorant-tourney/repositories"
	"github.com/VELOCITY6097/valorant-tourney/utils"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultSweepInterval  = time.Minute
	DefaultPreMatchWindow = 10 * time.Minute
)

// Scheduler provisions match voice channels shortly before each match starts.
// A sweep is idempotent: the due-matches query only returns rows whose
// vc_a_ref is still NULL, and the refs are written with a single guarded
// update, so a crash between channel creation and the write is repaired by
// the next sweep at worst re-creating channels.
type Scheduler struct {
	tournamentRepo   repositories.TournamentRepository
	teamRepo         repositories.TeamRepository
	matchRepo        repositories.MatchRepository
	registrationRepo repositories.RegistrationRepository
	gateway          platform.Gateway
	window           time.Duration
	logger           *slog.Logger

	// Guards against overlapping sweeps when one run outlasts the tick.
	sweepMu sync.Mutex
}

func NewScheduler(
	tournamentRepo repositories.TournamentRepository,
	teamRepo repositories.TeamRepository,
	matchRepo repositories.MatchRepository,
	registrationRepo repositories.RegistrationRepository,
	gateway platform.Gateway,
	window time.Duration,
	logger *slog.Logger,
) *Scheduler {
	if window <= 0 {
		window = DefaultPreMatchWindow
	}
	return &Scheduler{
		tournamentRepo:   tournamentRepo,
		teamRepo:         teamRepo,
		matchRepo:        matchRepo,
		registrationRepo: registrationRepo,
		gateway:          gateway,
		window:           window,
		logger:           logger,
	}
}

// Run sweeps on a fixed interval until the context is cancelled.
func (s *Scheduler) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("match scheduler started",
		slog.Duration("interval", interval),
		slog.Duration("window", s.window))

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("match scheduler stopped")
			return
		case <-ticker.C:
			if err := s.Sweep(ctx); err != nil {
				s.logger.Error("scheduler sweep failed", slog.Any("error", err))
			}
		}
	}
}

// Sweep provisions channels for every match due within the window. If a
// previous sweep is still running this one returns immediately.
func (s *Scheduler) Sweep(ctx context.Context) error {
	if !s.sweepMu.TryLock() {
		s.logger.Debug("sweep skipped, previous sweep still running")
		return nil
	}
	defer s.sweepMu.Unlock()

	now := time.Now().UTC()
	due, err := s.matchRepo.ListDueForProvisioning(ctx, now, now.Add(s.window))
	if err != nil {
		return fmt.Errorf("list due matches: %w", err)
	}

	for _, match := range due {
		if err := s.provisionMatch(ctx, match); err != nil {
			// One bad match must not starve the rest; it will come back
			// next sweep as long as its refs stay NULL.
			s.logger.Error("match provisioning failed",
				slog.Int("match_id", match.ID), slog.Any("error", err))
		}
	}
	return nil
}

func (s *Scheduler) provisionMatch(ctx context.Context, match *models.Match) error {
	if match.IsBye() {
		return nil
	}

	t, err := s.tournamentRepo.GetByIDIncludingDeleted(ctx, match.TournamentID)
	if err != nil {
		return err
	}
	if t.DeletedAt != nil {
		return nil
	}

	teamA, err := s.teamRepo.GetByID(ctx, *match.TeamAID)
	if err != nil {
		return err
	}
	teamB, err := s.teamRepo.GetByID(ctx, *match.TeamBID)
	if err != nil {
		return err
	}

	staffAccess := staffChannelAccess(t)
	teamAccess := func(roleRef int64, canSpeak bool) []platform.ChannelAccess {
		access := append([]platform.ChannelAccess{}, staffAccess...)
		return append(access, platform.ChannelAccess{
			RoleRef:    roleRef,
			CanConnect: true,
			CanSpeak:   canSpeak,
			CanView:    true,
		})
	}

	var created []int64
	teardown := func() {
		for _, ref := range created {
			if delErr := s.gateway.DeleteChannel(ctx, t.CommunityID, ref); delErr != nil {
				s.logger.Warn("voice channel teardown failed",
					slog.Int("match_id", match.ID), slog.Int64("channel_ref", ref), slog.Any("error", delErr))
			}
		}
	}

	createVC := func(name string, access []platform.ChannelAccess) (int64, error) {
		ref, vcErr := s.gateway.CreateVoiceChannel(ctx, platform.VoiceChannelIntent{
			CommunityID: t.CommunityID,
			CategoryRef: derefInt64(t.CategoryRef),
			Name:        name,
			Access:      access,
		})
		if vcErr != nil {
			return 0, fmt.Errorf("%w: %v", ErrVoiceProvisioningFailed, vcErr)
		}
		created = append(created, ref)
		return ref, nil
	}

	vcA, err := createVC(teamA.Name, teamAccess(teamA.RoleRef, true))
	if err != nil {
		return err
	}
	vcB, err := createVC(teamB.Name, teamAccess(teamB.RoleRef, true))
	if err != nil {
		teardown()
		return err
	}
	// Spectator channel is for staff and overwatch only; the everyone-deny
	// default keeps players and the public out.
	vcSpec, err := createVC("Spectators: "+teamA.Name+" vs "+teamB.Name, staffAccess)
	if err != nil {
		teardown()
		return err
	}

	if err := s.matchRepo.SetVoiceChannels(ctx, match.ID, vcA, vcB, vcSpec); err != nil {
		// Lost the race against a concurrent provisioner; our channels are
		// orphans and must go.
		teardown()
		if err == repositories.ErrMatchAlreadyProvisioned {
			s.logger.Warn("match was provisioned concurrently", slog.Int("match_id", match.ID))
			return nil
		}
		return err
	}
	match.VcARef, match.VcBRef, match.VcSpecRef = &vcA, &vcB, &vcSpec

	s.notifyPlayers(ctx, t, match, teamA, teamB)

	s.logger.Info("match voice channels provisioned",
		slog.Int("match_id", match.ID),
		slog.Int64("vc_a", vcA), slog.Int64("vc_b", vcB), slog.Int64("vc_spec", vcSpec))
	return nil
}

// notifyPlayers DMs every approved member of both teams. Failures are logged
// per player and never fail the sweep; closed DMs are normal.
func (s *Scheduler) notifyPlayers(ctx context.Context, t *models.Tournament, match *models.Match, teamA, teamB *models.Team) {
	content := fmt.Sprintf("Your match %s vs %s in %s is starting soon. Voice channels are up.",
		teamA.Name, teamB.Name, t.Name)
	if match.ScheduledTime != nil {
		content = fmt.Sprintf("Your match %s vs %s in %s starts at %s. Voice channels are up.",
			teamA.Name, teamB.Name, t.Name, utils.FormatInTimezone(*match.ScheduledTime, t.Timezone))
	}

	var userIDs []int64
	for _, team := range []*models.Team{teamA, teamB} {
		regs, err := s.registrationRepo.ListByTeam(ctx, team.ID)
		if err != nil {
			s.logger.Warn("could not list team members for notification",
				slog.Int("team_id", team.ID), slog.Any("error", err))
			continue
		}
		for _, reg := range regs {
			if reg.Approved {
				userIDs = append(userIDs, reg.UserID)
			}
		}
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, userID := range userIDs {
		userID := userID
		g.Go(func() error {
			if err := s.gateway.SendDirectNotification(gCtx, userID, content); err != nil {
				s.logger.Warn("match notification DM failed",
					slog.Int("match_id", match.ID),
					slog.Int64("user_id", userID),
					slog.Any("error", err))
			}
			return nil
		})
	}
	_ = g.Wait()
}
