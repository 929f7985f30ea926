package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/VELOCITY6097/valorant-tourney/bracketapi"
	"github.com/VELOCITY6097/valorant-tourney/models"
	"github.com/VELOCITY6097/valorant-tourney/platform"
	"github.com/VELOCITY6097/valorant-tourney/repositories"
)

// In-memory fakes for the repository and collaborator interfaces. They keep
// just enough state for the service tests and record the calls that matter.

var errIntentRejected = errors.New("intent rejected")

type fakeTournamentRepo struct {
	mu          sync.Mutex
	tournaments map[int]*models.Tournament
	nextID      int

	bracketInfoUpdates int
	statusUpdates      []models.TournamentStatus
}

func newFakeTournamentRepo() *fakeTournamentRepo {
	return &fakeTournamentRepo{tournaments: make(map[int]*models.Tournament), nextID: 1}
}

func (f *fakeTournamentRepo) add(t *models.Tournament) *models.Tournament {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t.ID == 0 {
		t.ID = f.nextID
		f.nextID++
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	f.tournaments[t.ID] = t
	return t
}

func (f *fakeTournamentRepo) Create(_ context.Context, t *models.Tournament) error {
	f.mu.Lock()
	for _, existing := range f.tournaments {
		if existing.CommunityID == t.CommunityID && existing.Name == t.Name && existing.DeletedAt == nil {
			f.mu.Unlock()
			return repositories.ErrTournamentNameConflict
		}
	}
	f.mu.Unlock()
	f.add(t)
	return nil
}

func (f *fakeTournamentRepo) GetByID(_ context.Context, id int) (*models.Tournament, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tournaments[id]
	if !ok || t.DeletedAt != nil {
		return nil, repositories.ErrTournamentNotFound
	}
	copied := *t
	return &copied, nil
}

func (f *fakeTournamentRepo) GetByIDIncludingDeleted(_ context.Context, id int) (*models.Tournament, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	copied := *t
	return &copied, nil
}

func (f *fakeTournamentRepo) GetByName(_ context.Context, communityID int64, name string) (*models.Tournament, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.tournaments {
		if t.CommunityID == communityID && t.Name == name && t.DeletedAt == nil {
			copied := *t
			return &copied, nil
		}
	}
	return nil, repositories.ErrTournamentNotFound
}

func (f *fakeTournamentRepo) GetByRegistrationChannel(_ context.Context, channelRef int64) (*models.Tournament, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.tournaments {
		if t.RegistrationChannelRef != nil && *t.RegistrationChannelRef == channelRef && t.DeletedAt == nil {
			copied := *t
			return &copied, nil
		}
	}
	return nil, repositories.ErrTournamentNotFound
}

func (f *fakeTournamentRepo) GetByJoinChannel(_ context.Context, channelRef int64) (*models.Tournament, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.tournaments {
		if t.JoinChannelRef != nil && *t.JoinChannelRef == channelRef && t.DeletedAt == nil {
			copied := *t
			return &copied, nil
		}
	}
	return nil, repositories.ErrTournamentNotFound
}

func (f *fakeTournamentRepo) ListActive(_ context.Context) ([]*models.Tournament, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Tournament
	for _, t := range f.tournaments {
		if t.Status == models.StatusRegistrationOpen && t.DeletedAt == nil {
			copied := *t
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeTournamentRepo) UpdateStatus(_ context.Context, _ repositories.SQLExecutor, id int, status models.TournamentStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tournaments[id]
	if !ok || t.DeletedAt != nil {
		return repositories.ErrTournamentNotFound
	}
	t.Status = status
	f.statusUpdates = append(f.statusUpdates, status)
	return nil
}

func (f *fakeTournamentRepo) UpdateBracketInfo(_ context.Context, id int, channelRef, messageRef int64, serviceID, imageURL *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tournaments[id]
	if !ok || t.DeletedAt != nil {
		return repositories.ErrTournamentNotFound
	}
	t.BracketChannelRef = &channelRef
	t.BracketMessageRef = &messageRef
	t.BracketServiceID = serviceID
	t.BracketImageURL = imageURL
	f.bracketInfoUpdates++
	return nil
}

func (f *fakeTournamentRepo) UpdateBracketImageURL(_ context.Context, id int, imageURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tournaments[id]
	if !ok || t.DeletedAt != nil {
		return repositories.ErrTournamentNotFound
	}
	t.BracketImageURL = &imageURL
	return nil
}

func (f *fakeTournamentRepo) UpdateRegistrationMenuMessageRef(_ context.Context, id int, messageRef int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tournaments[id]
	if !ok || t.DeletedAt != nil {
		return repositories.ErrTournamentNotFound
	}
	t.RegistrationMenuMessageRef = &messageRef
	return nil
}

func (f *fakeTournamentRepo) SoftDelete(_ context.Context, id int, deletedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tournaments[id]
	if !ok || t.DeletedAt != nil {
		return repositories.ErrTournamentNotFound
	}
	t.DeletedAt = &deletedAt
	return nil
}

type fakeTeamRepo struct {
	mu     sync.Mutex
	teams  map[int]*models.Team
	nextID int
}

func newFakeTeamRepo() *fakeTeamRepo {
	return &fakeTeamRepo{teams: make(map[int]*models.Team), nextID: 1}
}

func (f *fakeTeamRepo) add(t *models.Team) *models.Team {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t.ID == 0 {
		t.ID = f.nextID
		f.nextID++
	}
	f.teams[t.ID] = t
	return t
}

func (f *fakeTeamRepo) Create(_ context.Context, team *models.Team) error {
	f.mu.Lock()
	for _, existing := range f.teams {
		if existing.TournamentID == team.TournamentID && existing.Name == team.Name {
			f.mu.Unlock()
			return repositories.ErrTeamNameConflict
		}
	}
	f.mu.Unlock()
	f.add(team)
	return nil
}

func (f *fakeTeamRepo) GetByID(_ context.Context, id int) (*models.Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.teams[id]
	if !ok {
		return nil, repositories.ErrTeamNotFound
	}
	copied := *t
	return &copied, nil
}

func (f *fakeTeamRepo) ListByTournament(_ context.Context, tournamentID int, verifiedOnly bool) ([]*models.Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.Team, 0)
	// Stable insertion order, same as the ORDER BY id in the real repo.
	for id := 1; id < f.nextID; id++ {
		t, ok := f.teams[id]
		if !ok || t.TournamentID != tournamentID {
			continue
		}
		if verifiedOnly && !t.IsVerified {
			continue
		}
		copied := *t
		out = append(out, &copied)
	}
	return out, nil
}

func (f *fakeTeamRepo) SetVerified(_ context.Context, id int, verified bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.teams[id]
	if !ok {
		return repositories.ErrTeamNotFound
	}
	t.IsVerified = verified
	return nil
}

func (f *fakeTeamRepo) UpdateCaptain(_ context.Context, id int, captainUserID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.teams[id]
	if !ok {
		return repositories.ErrTeamNotFound
	}
	t.CaptainUserID = captainUserID
	return nil
}

func (f *fakeTeamRepo) Delete(_ context.Context, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.teams[id]; !ok {
		return repositories.ErrTeamNotFound
	}
	delete(f.teams, id)
	return nil
}

type fakeRegistrationRepo struct {
	mu     sync.Mutex
	regs   map[int]*models.Registration
	nextID int
}

func newFakeRegistrationRepo() *fakeRegistrationRepo {
	return &fakeRegistrationRepo{regs: make(map[int]*models.Registration), nextID: 1}
}

func (f *fakeRegistrationRepo) Create(_ context.Context, reg *models.Registration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	reg.ID = f.nextID
	f.nextID++
	reg.RequestedAt = time.Now().UTC()
	stored := *reg
	f.regs[reg.ID] = &stored
	return nil
}

func (f *fakeRegistrationRepo) GetByID(_ context.Context, id int) (*models.Registration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	reg, ok := f.regs[id]
	if !ok {
		return nil, repositories.ErrRegistrationNotFound
	}
	copied := *reg
	return &copied, nil
}

func (f *fakeRegistrationRepo) ListByTeam(_ context.Context, teamID int) ([]*models.Registration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.Registration, 0)
	for id := 1; id < f.nextID; id++ {
		reg, ok := f.regs[id]
		if ok && reg.TeamID == teamID {
			copied := *reg
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeRegistrationRepo) Approve(_ context.Context, id int, approvedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	reg, ok := f.regs[id]
	if !ok {
		return repositories.ErrRegistrationNotFound
	}
	reg.Approved = true
	reg.ApprovedAt = &approvedAt
	return nil
}

func (f *fakeRegistrationRepo) Delete(_ context.Context, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.regs[id]; !ok {
		return repositories.ErrRegistrationNotFound
	}
	delete(f.regs, id)
	return nil
}

type fakeMatchRepo struct {
	mu      sync.Mutex
	matches map[int]*models.Match
	nextID  int
}

func newFakeMatchRepo() *fakeMatchRepo {
	return &fakeMatchRepo{matches: make(map[int]*models.Match), nextID: 1}
}

func (f *fakeMatchRepo) add(m *models.Match) *models.Match {
	f.mu.Lock()
	defer f.mu.Unlock()
	if m.ID == 0 {
		m.ID = f.nextID
		f.nextID++
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	f.matches[m.ID] = m
	return m
}

func (f *fakeMatchRepo) Create(_ context.Context, _ repositories.SQLExecutor, match *models.Match) error {
	f.add(match)
	return nil
}

func (f *fakeMatchRepo) GetByID(_ context.Context, id int) (*models.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	copied := *m
	return &copied, nil
}

func (f *fakeMatchRepo) ListByTournament(_ context.Context, tournamentID int) ([]*models.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.Match, 0)
	for id := 1; id < f.nextID; id++ {
		m, ok := f.matches[id]
		if ok && m.TournamentID == tournamentID {
			copied := *m
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeMatchRepo) ListDueForProvisioning(_ context.Context, from, to time.Time) ([]*models.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.Match, 0)
	for id := 1; id < f.nextID; id++ {
		m, ok := f.matches[id]
		if !ok || m.ScheduledTime == nil || m.VcARef != nil {
			continue
		}
		if m.ScheduledTime.Before(from) || m.ScheduledTime.After(to) {
			continue
		}
		copied := *m
		out = append(out, &copied)
	}
	return out, nil
}

func (f *fakeMatchRepo) UpdateResult(_ context.Context, id int, scoreA, scoreB int, result models.MatchResult, updatedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	m.TeamAScore = scoreA
	m.TeamBScore = scoreB
	m.Result = result
	m.UpdatedAt = &updatedAt
	return nil
}

func (f *fakeMatchRepo) SetServiceMatchID(_ context.Context, id int, serviceMatchID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	m.ServiceMatchID = &serviceMatchID
	return nil
}

func (f *fakeMatchRepo) SetVoiceChannels(_ context.Context, id int, vcA, vcB, vcSpec int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	if m.VcARef != nil {
		return repositories.ErrMatchAlreadyProvisioned
	}
	m.VcARef, m.VcBRef, m.VcSpecRef = &vcA, &vcB, &vcSpec
	return nil
}

func (f *fakeMatchRepo) ClearVoiceChannels(_ context.Context, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	m.VcARef, m.VcBRef, m.VcSpecRef = nil, nil, nil
	return nil
}

func (f *fakeMatchRepo) Delete(_ context.Context, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.matches[id]; !ok {
		return repositories.ErrMatchNotFound
	}
	delete(f.matches, id)
	return nil
}

type fakeSettingsRepo struct {
	mu       sync.Mutex
	settings map[int64]*models.GuildSettings
}

func newFakeSettingsRepo() *fakeSettingsRepo {
	return &fakeSettingsRepo{settings: make(map[int64]*models.GuildSettings)}
}

func (f *fakeSettingsRepo) Get(_ context.Context, communityID int64) (*models.GuildSettings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.settings[communityID]; ok {
		copied := *s
		return &copied, nil
	}
	return &models.GuildSettings{CommunityID: communityID, DefaultTimezone: "Asia/Kolkata"}, nil
}

func (f *fakeSettingsRepo) Upsert(_ context.Context, settings *models.GuildSettings) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *settings
	f.settings[settings.CommunityID] = &copied
	return nil
}

// fakeGateway records intents and hands out sequential refs. Individual ops
// can be made to fail or block through the hook fields.
type fakeGateway struct {
	mu      sync.Mutex
	nextRef int64

	createdChannels []int64
	deletedChannels []int64
	createdRoles    []int64
	deletedRoles    []int64
	assignedRoles   map[int64][]int64
	messages        []platform.Message
	editedMessages  []platform.Message
	notifications   map[int64][]string
	voiceIntents    []platform.VoiceChannelIntent

	failVoiceAfter int // fail the Nth voice channel create (1-based), 0 = never
	voiceCreates   int
	voiceHook      func() // called inside CreateVoiceChannel before returning
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		nextRef:       1000,
		assignedRoles: make(map[int64][]int64),
		notifications: make(map[int64][]string),
	}
}

func (f *fakeGateway) ref() int64 {
	f.nextRef++
	return f.nextRef
}

func (f *fakeGateway) CreateCategory(_ context.Context, _ int64, _ string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ref(), nil
}

func (f *fakeGateway) CreateTextChannel(_ context.Context, _ platform.TextChannelIntent) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ref := f.ref()
	f.createdChannels = append(f.createdChannels, ref)
	return ref, nil
}

func (f *fakeGateway) CreateVoiceChannel(_ context.Context, intent platform.VoiceChannelIntent) (int64, error) {
	f.mu.Lock()
	f.voiceCreates++
	f.voiceIntents = append(f.voiceIntents, intent)
	fail := f.failVoiceAfter > 0 && f.voiceCreates == f.failVoiceAfter
	hook := f.voiceHook
	var ref int64
	if !fail {
		ref = f.ref()
		f.createdChannels = append(f.createdChannels, ref)
	}
	f.mu.Unlock()

	if hook != nil {
		hook()
	}
	if fail {
		return 0, errIntentRejected
	}
	return ref, nil
}

func (f *fakeGateway) DeleteChannel(_ context.Context, _ int64, channelRef int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletedChannels = append(f.deletedChannels, channelRef)
	return nil
}

func (f *fakeGateway) CreateRole(_ context.Context, _ int64, _ string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ref := f.ref()
	f.createdRoles = append(f.createdRoles, ref)
	return ref, nil
}

func (f *fakeGateway) DeleteRole(_ context.Context, _ int64, roleRef int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletedRoles = append(f.deletedRoles, roleRef)
	return nil
}

func (f *fakeGateway) AssignRole(_ context.Context, _ int64, userID, roleRef int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.assignedRoles[userID] = append(f.assignedRoles[userID], roleRef)
	return nil
}

func (f *fakeGateway) RemoveRole(_ context.Context, _ int64, _, _ int64) error {
	return nil
}

func (f *fakeGateway) PostMessage(_ context.Context, _ int64, _ int64, msg platform.Message) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, msg)
	return f.ref(), nil
}

func (f *fakeGateway) EditMessage(_ context.Context, _ int64, _, _ int64, msg platform.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.editedMessages = append(f.editedMessages, msg)
	return nil
}

func (f *fakeGateway) SendDirectNotification(_ context.Context, userID int64, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notifications[userID] = append(f.notifications[userID], content)
	return nil
}

func (f *fakeGateway) notificationCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, msgs := range f.notifications {
		total += len(msgs)
	}
	return total
}

type fakeBracketClient struct {
	mu              sync.Mutex
	createCalls     int
	scoreCalls      int
	failCreate      bool
	failScorePush   bool
	failListMatches bool

	lastParticipants []string
	remoteMatches    []bracketapi.MatchSlot
}

func (f *fakeBracketClient) CreateBracket(_ context.Context, name string, participants []string, _ string) (*bracketapi.CreateResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if f.failCreate {
		return nil, errIntentRejected
	}
	f.lastParticipants = append([]string(nil), participants...)
	return &bracketapi.CreateResult{
		ServiceID: "svc-" + name,
		ImageURL:  "https://brackets.example/" + name + ".png",
	}, nil
}

func (f *fakeBracketClient) UpdateMatchScore(_ context.Context, serviceID, _ string, _, _ int) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scoreCalls++
	if f.failScorePush {
		return "", errIntentRejected
	}
	return "https://brackets.example/" + serviceID + "-updated.png", nil
}

func (f *fakeBracketClient) FetchBracketImage(_ context.Context, serviceID string) (string, error) {
	return "https://brackets.example/" + serviceID + "-fresh.png", nil
}

func (f *fakeBracketClient) ListMatches(_ context.Context, serviceID string) ([]bracketapi.MatchSlot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failListMatches {
		return nil, errIntentRejected
	}
	if f.remoteMatches != nil {
		return append([]bracketapi.MatchSlot(nil), f.remoteMatches...), nil
	}
	// Default to one contested slot per registered participant pair.
	n := len(f.lastParticipants) / 2
	slots := make([]bracketapi.MatchSlot, 0, n)
	for i := 0; i < n; i++ {
		slots = append(slots, bracketapi.MatchSlot{
			ServiceMatchID: fmt.Sprintf("%s-m%d", serviceID, i+1),
			Round:          1,
			Position:       i + 1,
		})
	}
	return slots, nil
}
