package services

import (
	"context"
	"strings"
	"testing"

	"github.com/VELOCITY6097/valorant-tourney/models"
	"github.com/VELOCITY6097/valorant-tourney/repositories"
	"github.com/VELOCITY6097/valorant-tourney/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type teamServiceFixture struct {
	tournamentRepo *fakeTournamentRepo
	teamRepo       *fakeTeamRepo
	regRepo        *fakeRegistrationRepo
	settingsRepo   *fakeSettingsRepo
	gateway        *fakeGateway
	svc            *TeamService
}

func newTeamServiceFixture() *teamServiceFixture {
	f := &teamServiceFixture{
		tournamentRepo: newFakeTournamentRepo(),
		teamRepo:       newFakeTeamRepo(),
		regRepo:        newFakeRegistrationRepo(),
		settingsRepo:   newFakeSettingsRepo(),
		gateway:        newFakeGateway(),
	}
	f.svc = NewTeamService(f.tournamentRepo, f.teamRepo, f.regRepo, f.settingsRepo,
		f.gateway, nil, testLogger())
	return f
}

func (f *teamServiceFixture) seedTournament(status models.TournamentStatus, isPaid bool) *models.Tournament {
	regChannel := int64(700)
	joinChannel := int64(701)
	verifyChannel := int64(702)
	return f.tournamentRepo.add(&models.Tournament{
		CommunityID:            42,
		Name:                   "Summer Clash",
		Status:                 status,
		IsPaid:                 isPaid,
		RegistrationChannelRef: &regChannel,
		JoinChannelRef:         &joinChannel,
		StaffVerifyChannelRef:  &verifyChannel,
	})
}

func TestRegisterTeamIssuesKeyAndProvisionsRole(t *testing.T) {
	f := newTeamServiceFixture()
	f.seedTournament(models.StatusRegistrationOpen, false)

	result, err := f.svc.RegisterTeam(context.Background(), RegisterTeamInput{
		RegistrationChannelRef: 700,
		Name:                   "Alpha",
		CaptainUserID:          100,
	})
	require.NoError(t, err)

	assert.Len(t, result.RegistrationKey, utils.RegistrationKeyLength)
	assert.True(t, result.Team.IsVerified, "free tournaments verify on registration")
	assert.NotEqual(t, result.RegistrationKey, result.Team.RegistrationKeyHash)

	require.Len(t, f.gateway.createdRoles, 1)
	assert.Equal(t, f.gateway.createdRoles[0], result.Team.RoleRef)
	assert.Contains(t, f.gateway.assignedRoles[100], result.Team.RoleRef)

	regs, err := f.regRepo.ListByTeam(context.Background(), result.Team.ID)
	require.NoError(t, err)
	require.Len(t, regs, 1)
	assert.True(t, regs[0].Approved)

	// The plaintext key travels exactly once, in the captain's DM.
	require.Len(t, f.gateway.notifications[100], 1)
	assert.Contains(t, f.gateway.notifications[100][0], result.RegistrationKey)
}

func TestRegisterTeamPaidAwaitsStaffVerification(t *testing.T) {
	f := newTeamServiceFixture()
	f.seedTournament(models.StatusRegistrationOpen, true)

	result, err := f.svc.RegisterTeam(context.Background(), RegisterTeamInput{
		RegistrationChannelRef: 700,
		Name:                   "Alpha",
		CaptainUserID:          100,
	})
	require.NoError(t, err)

	assert.False(t, result.Team.IsVerified)
	require.Len(t, f.gateway.messages, 1)
	assert.Contains(t, f.gateway.messages[0].Body, "payment verification")
}

func TestRegisterTeamRejectsClosedRegistration(t *testing.T) {
	f := newTeamServiceFixture()
	f.seedTournament(models.StatusInProgress, false)

	_, err := f.svc.RegisterTeam(context.Background(), RegisterTeamInput{
		RegistrationChannelRef: 700,
		Name:                   "Alpha",
		CaptainUserID:          100,
	})
	assert.ErrorIs(t, err, ErrRegistrationNotOpen)
}

func TestRegisterTeamNameConflictTearsDownRole(t *testing.T) {
	f := newTeamServiceFixture()
	f.seedTournament(models.StatusRegistrationOpen, false)

	_, err := f.svc.RegisterTeam(context.Background(), RegisterTeamInput{
		RegistrationChannelRef: 700, Name: "Alpha", CaptainUserID: 100,
	})
	require.NoError(t, err)

	_, err = f.svc.RegisterTeam(context.Background(), RegisterTeamInput{
		RegistrationChannelRef: 700, Name: "Alpha", CaptainUserID: 200,
	})
	assert.ErrorIs(t, err, ErrTeamNameConflict)
	require.Len(t, f.gateway.deletedRoles, 1)
	assert.Equal(t, f.gateway.createdRoles[1], f.gateway.deletedRoles[0])
}

func TestJoinByKeyAdmitsPlayer(t *testing.T) {
	f := newTeamServiceFixture()
	f.seedTournament(models.StatusRegistrationOpen, false)

	result, err := f.svc.RegisterTeam(context.Background(), RegisterTeamInput{
		RegistrationChannelRef: 700, Name: "Alpha", CaptainUserID: 100,
	})
	require.NoError(t, err)

	team, err := f.svc.JoinByKey(context.Background(), 701, 300, result.RegistrationKey)
	require.NoError(t, err)
	assert.Equal(t, result.Team.ID, team.ID)

	regs, err := f.regRepo.ListByTeam(context.Background(), team.ID)
	require.NoError(t, err)
	require.Len(t, regs, 2)
	assert.True(t, regs[1].Approved)
	assert.Contains(t, f.gateway.assignedRoles[300], team.RoleRef)
}

func TestJoinByKeyRejectsUnknownKey(t *testing.T) {
	f := newTeamServiceFixture()
	f.seedTournament(models.StatusRegistrationOpen, false)

	_, err := f.svc.RegisterTeam(context.Background(), RegisterTeamInput{
		RegistrationChannelRef: 700, Name: "Alpha", CaptainUserID: 100,
	})
	require.NoError(t, err)

	_, err = f.svc.JoinByKey(context.Background(), 701, 300, strings.Repeat("x", utils.RegistrationKeyLength))
	assert.ErrorIs(t, err, ErrInvalidRegistrationKey)
}

func TestVerifyMarksTeamAndNotifiesCaptain(t *testing.T) {
	f := newTeamServiceFixture()
	tour := f.seedTournament(models.StatusRegistrationOpen, true)
	team := f.teamRepo.add(&models.Team{
		TournamentID: tour.ID, Name: "Alpha", CaptainUserID: 100, RoleRef: 9001,
	})

	require.NoError(t, f.svc.Verify(context.Background(), staffActor, team.ID))

	stored, err := f.teamRepo.GetByID(context.Background(), team.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsVerified)
	assert.Len(t, f.gateway.notifications[100], 1)
}

func TestVerifyRequiresStaff(t *testing.T) {
	f := newTeamServiceFixture()
	tour := f.seedTournament(models.StatusRegistrationOpen, true)
	team := f.teamRepo.add(&models.Team{TournamentID: tour.ID, Name: "Alpha", CaptainUserID: 100})

	err := f.svc.Verify(context.Background(), plainActor, team.ID)
	assert.ErrorIs(t, err, ErrForbiddenOperation)
}

func TestDisqualifyRemovesTeamAndRole(t *testing.T) {
	f := newTeamServiceFixture()
	tour := f.seedTournament(models.StatusInProgress, false)
	team := f.teamRepo.add(&models.Team{
		TournamentID: tour.ID, Name: "Alpha", CaptainUserID: 100, RoleRef: 9001,
	})

	require.NoError(t, f.svc.Disqualify(context.Background(), staffActor, team.ID, "no-show"))

	_, err := f.teamRepo.GetByID(context.Background(), team.ID)
	assert.ErrorIs(t, err, repositories.ErrTeamNotFound)
	assert.Contains(t, f.gateway.deletedRoles, int64(9001))
	require.Len(t, f.gateway.notifications[100], 1)
	assert.Contains(t, f.gateway.notifications[100][0], "no-show")
}

func TestTransferCaptainToApprovedMember(t *testing.T) {
	f := newTeamServiceFixture()
	tour := f.seedTournament(models.StatusRegistrationOpen, false)
	team := f.teamRepo.add(&models.Team{TournamentID: tour.ID, Name: "Alpha", CaptainUserID: 100})
	require.NoError(t, f.regRepo.Create(context.Background(), &models.Registration{TeamID: team.ID, UserID: 300, Approved: true}))

	captain := models.Actor{UserID: 100}
	require.NoError(t, f.svc.TransferCaptain(context.Background(), captain, team.ID, 300))

	stored, err := f.teamRepo.GetByID(context.Background(), team.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(300), stored.CaptainUserID)
}

func TestTransferCaptainRejectsNonMember(t *testing.T) {
	f := newTeamServiceFixture()
	tour := f.seedTournament(models.StatusRegistrationOpen, false)
	team := f.teamRepo.add(&models.Team{TournamentID: tour.ID, Name: "Alpha", CaptainUserID: 100})

	captain := models.Actor{UserID: 100}
	err := f.svc.TransferCaptain(context.Background(), captain, team.ID, 999)
	assert.ErrorIs(t, err, ErrRegistrationNotFound)
}

func TestTransferCaptainForbiddenForOutsider(t *testing.T) {
	f := newTeamServiceFixture()
	tour := f.seedTournament(models.StatusRegistrationOpen, false)
	team := f.teamRepo.add(&models.Team{TournamentID: tour.ID, Name: "Alpha", CaptainUserID: 100})

	err := f.svc.TransferCaptain(context.Background(), plainActor, team.ID, 300)
	assert.ErrorIs(t, err, ErrCaptainActionForbidden)
}
