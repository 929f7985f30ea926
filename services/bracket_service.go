package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/VELOCITY6097/valorant-tourney/bracketapi"
	"github.com/VELOCITY6097/valorant-tourney/brackets"
	"github.com/VELOCITY6097/valorant-tourney/models"
	"github.com/VELOCITY6097/valorant-tourney/platform"
	"github.com/VELOCITY6097/valorant-tourney/repositories"
	"github.com/VELOCITY6097/valorant-tourney/storage"
)

// BracketService owns the external bracket lifecycle: one-time creation on
// the rendering service, score pushes, and the pinned bracket message that
// mirrors the remote render.
type BracketService struct {
	tournamentRepo repositories.TournamentRepository
	teamRepo       repositories.TeamRepository
	matchRepo      repositories.MatchRepository
	client         bracketapi.Client
	gateway        platform.Gateway
	uploader       storage.FileUploader
	hub            *brackets.Hub
	httpClient     *http.Client
	logger         *slog.Logger
}

func NewBracketService(
	tournamentRepo repositories.TournamentRepository,
	teamRepo repositories.TeamRepository,
	matchRepo repositories.MatchRepository,
	client bracketapi.Client,
	gateway platform.Gateway,
	uploader storage.FileUploader,
	hub *brackets.Hub,
	logger *slog.Logger,
) *BracketService {
	return &BracketService{
		tournamentRepo: tournamentRepo,
		teamRepo:       teamRepo,
		matchRepo:      matchRepo,
		client:         client,
		gateway:        gateway,
		uploader:       uploader,
		hub:            hub,
		httpClient:     &http.Client{Timeout: 15 * time.Second},
		logger:         logger,
	}
}

// Initialize creates the remote bracket and the local bracket channel, in
// that order. A remote failure persists nothing, so the operation can simply
// be retried. A tournament whose bracket channel already exists is rejected
// no matter how far the previous attempt got.
//
// With zero verified teams only the channel and a placeholder message are
// created; the remote bracket is deferred until teams exist.
func (s *BracketService) Initialize(ctx context.Context, actor models.Actor, tournamentID int) (*models.Tournament, error) {
	if !actor.Capabilities.IsStaff() {
		return nil, ErrForbiddenOperation
	}

	t, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	if t.BracketInitialized() {
		return nil, ErrBracketAlreadyInitialized
	}

	teams, err := s.teamRepo.ListByTournament(ctx, t.ID, true)
	if err != nil {
		return nil, err
	}

	var (
		serviceID *string
		imageURL  *string
	)
	if len(teams) > 0 {
		names := make([]string, 0, len(teams))
		for _, team := range teams {
			names = append(names, team.Name)
		}
		result, createErr := s.client.CreateBracket(ctx, t.Name, names, bracketapi.TopologySingleElimination)
		if createErr != nil {
			return nil, fmt.Errorf("%w: %v", ErrBracketServiceUnavailable, createErr)
		}
		serviceID = &result.ServiceID
		mirrored := s.mirrorRender(ctx, t.ID, result.ImageURL)
		imageURL = &mirrored
	}

	channelRef, err := s.gateway.CreateTextChannel(ctx, platform.TextChannelIntent{
		CommunityID: t.CommunityID,
		CategoryRef: t.CategoryRef,
		Name:        "bracket",
		Access:      staffChannelAccess(t),
	})
	if err != nil {
		return nil, fmt.Errorf("provision bracket channel: %w", err)
	}

	msg := platform.Message{Title: t.Name + " bracket"}
	if imageURL != nil {
		msg.ImageURL = *imageURL
	} else {
		msg.Body = "The bracket will appear here once teams are seeded."
	}
	messageRef, err := s.gateway.PostMessage(ctx, t.CommunityID, channelRef, msg)
	if err != nil {
		if delErr := s.gateway.DeleteChannel(ctx, t.CommunityID, channelRef); delErr != nil {
			s.logger.Warn("bracket channel teardown failed", slog.Any("error", delErr))
		}
		return nil, fmt.Errorf("post bracket message: %w", err)
	}

	if err := s.tournamentRepo.UpdateBracketInfo(ctx, t.ID, channelRef, messageRef, serviceID, imageURL); err != nil {
		return nil, err
	}

	t.BracketChannelRef = int64Ptr(channelRef)
	t.BracketMessageRef = int64Ptr(messageRef)
	t.BracketServiceID = serviceID
	t.BracketImageURL = imageURL

	if serviceID != nil {
		s.linkRemoteMatches(ctx, t.ID, *serviceID)
	}

	if imageURL != nil {
		s.hub.BroadcastBracketUpdate(t.ID, *imageURL)
	}

	s.logger.Info("bracket initialized",
		slog.Int("tournament_id", t.ID),
		slog.Int("teams", len(teams)),
		slog.String("service_id", derefString(serviceID)))
	return t, nil
}

// linkRemoteMatches pairs the seeded round-one matches with their remote
// counterparts so score pushes have an address. Byes never exist on the remote
// bracket, so only contested slots are linked. Best effort: an unlinked match
// just skips the remote push and stays repairable via RefreshRender.
func (s *BracketService) linkRemoteMatches(ctx context.Context, tournamentID int, serviceID string) {
	slots, err := s.client.ListMatches(ctx, serviceID)
	if err != nil {
		s.logger.Warn("listing remote matches failed, score pushes disabled",
			slog.Int("tournament_id", tournamentID), slog.Any("error", err))
		return
	}

	remote := make([]bracketapi.MatchSlot, 0, len(slots))
	for _, slot := range slots {
		if slot.Round == 1 {
			remote = append(remote, slot)
		}
	}
	sort.Slice(remote, func(i, j int) bool { return remote[i].Position < remote[j].Position })

	local, err := s.matchRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		s.logger.Warn("listing local matches for linking failed",
			slog.Int("tournament_id", tournamentID), slog.Any("error", err))
		return
	}

	idx := 0
	for _, match := range local {
		if match.RoundNumber != 1 || match.IsBye() {
			continue
		}
		if idx >= len(remote) {
			s.logger.Warn("remote bracket has fewer matches than seeded locally",
				slog.Int("tournament_id", tournamentID), slog.Int("match_id", match.ID))
			return
		}
		if err := s.matchRepo.SetServiceMatchID(ctx, match.ID, remote[idx].ServiceMatchID); err != nil {
			s.logger.Warn("linking match to remote slot failed",
				slog.Int("match_id", match.ID), slog.Any("error", err))
		}
		idx++
	}
}

// RecordResult stores a match's final score locally first, then pushes it to
// the bracket service and refreshes the pinned render. Everything after the
// local write is best effort: a remote outage leaves the local result intact
// and the render repairable via RefreshRender.
func (s *BracketService) RecordResult(ctx context.Context, actor models.Actor, matchID, scoreA, scoreB int) (*models.Match, error) {
	if !actor.Capabilities.IsStaff() {
		return nil, ErrForbiddenOperation
	}

	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	if match.IsBye() {
		return nil, ErrByeMatchHasNoResult
	}

	result := models.ClassifyResult(scoreA, scoreB)
	now := time.Now().UTC()
	if err := s.matchRepo.UpdateResult(ctx, match.ID, scoreA, scoreB, result, now); err != nil {
		return nil, err
	}
	match.TeamAScore = scoreA
	match.TeamBScore = scoreB
	match.Result = result
	match.UpdatedAt = &now

	// Matches of soft-deleted tournaments stay recordable for history.
	t, err := s.tournamentRepo.GetByIDIncludingDeleted(ctx, match.TournamentID)
	if err != nil {
		return nil, err
	}

	if t.BracketServiceID != nil && match.ServiceMatchID != nil {
		remoteURL, pushErr := s.client.UpdateMatchScore(ctx, *t.BracketServiceID, *match.ServiceMatchID, scoreA, scoreB)
		if pushErr != nil {
			s.logger.Warn("remote score push failed, local result kept",
				slog.Int("match_id", match.ID), slog.Any("error", pushErr))
		} else {
			s.publishRender(ctx, t, remoteURL)
		}
	}

	s.teardownVoiceChannels(ctx, t, match)

	s.logger.Info("match result recorded",
		slog.Int("match_id", match.ID),
		slog.Int("score_a", scoreA),
		slog.Int("score_b", scoreB),
		slog.String("result", string(result)))
	return match, nil
}

// RefreshRender re-fetches the remote render and republishes it. This is the
// repair path for any divergence left behind by a failed score push.
func (s *BracketService) RefreshRender(ctx context.Context, actor models.Actor, tournamentID int) (string, error) {
	if !actor.Capabilities.IsStaff() {
		return "", ErrForbiddenOperation
	}

	t, err := s.tournamentRepo.GetByIDIncludingDeleted(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return "", ErrTournamentNotFound
		}
		return "", err
	}
	if t.BracketServiceID == nil {
		return "", ErrBracketNotInitialized
	}

	remoteURL, err := s.client.FetchBracketImage(ctx, *t.BracketServiceID)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBracketServiceUnavailable, err)
	}

	imageURL := s.publishRender(ctx, t, remoteURL)
	return imageURL, nil
}

// publishRender mirrors the remote image, stores the URL, edits the pinned
// bracket message and notifies live viewers. Each step is best effort.
func (s *BracketService) publishRender(ctx context.Context, t *models.Tournament, remoteURL string) string {
	imageURL := s.mirrorRender(ctx, t.ID, remoteURL)

	if err := s.tournamentRepo.UpdateBracketImageURL(ctx, t.ID, imageURL); err != nil {
		s.logger.Warn("bracket image URL update failed",
			slog.Int("tournament_id", t.ID), slog.Any("error", err))
	}

	if t.BracketChannelRef != nil && t.BracketMessageRef != nil {
		if err := s.gateway.EditMessage(ctx, t.CommunityID, *t.BracketChannelRef, *t.BracketMessageRef, platform.Message{
			Title:    t.Name + " bracket",
			ImageURL: imageURL,
		}); err != nil {
			s.logger.Warn("bracket message edit failed",
				slog.Int("tournament_id", t.ID), slog.Any("error", err))
		}
	}

	s.hub.BroadcastBracketUpdate(t.ID, imageURL)
	return imageURL
}

// mirrorRender copies the remote PNG into our bucket so the pinned message
// survives the rendering service going away. Falls back to the remote URL.
func (s *BracketService) mirrorRender(ctx context.Context, tournamentID int, remoteURL string) string {
	if s.uploader == nil {
		return remoteURL
	}
	key := fmt.Sprintf("brackets/%d/render-%d.png", tournamentID, time.Now().UTC().Unix())
	mirrored, err := storage.MirrorFromURL(ctx, s.uploader, s.httpClient, remoteURL, key)
	if err != nil {
		s.logger.Warn("bracket render mirror failed, keeping remote URL",
			slog.Int("tournament_id", tournamentID), slog.Any("error", err))
		return remoteURL
	}
	return mirrored
}

func (s *BracketService) teardownVoiceChannels(ctx context.Context, t *models.Tournament, match *models.Match) {
	refs := []*int64{match.VcARef, match.VcBRef, match.VcSpecRef}
	any := false
	for _, ref := range refs {
		if ref == nil {
			continue
		}
		any = true
		if err := s.gateway.DeleteChannel(ctx, t.CommunityID, *ref); err != nil {
			s.logger.Warn("match voice channel teardown failed",
				slog.Int("match_id", match.ID), slog.Int64("channel_ref", *ref), slog.Any("error", err))
		}
	}
	if !any {
		return
	}
	if err := s.matchRepo.ClearVoiceChannels(ctx, match.ID); err != nil {
		s.logger.Warn("clearing voice channel refs failed",
			slog.Int("match_id", match.ID), slog.Any("error", err))
	}
	match.VcARef, match.VcBRef, match.VcSpecRef = nil, nil, nil
}
