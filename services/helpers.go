package services

import (
	"github.com/VELOCITY6097/valorant-tourney/models"
	"github.com/VELOCITY6097/valorant-tourney/platform"
)

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefInt64(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}

func int64Ptr(v int64) *int64 {
	return &v
}

// isValidStatusTransition encodes the forward-only tournament lifecycle.
func isValidStatusTransition(current, next models.TournamentStatus) bool {
	allowed := map[models.TournamentStatus][]models.TournamentStatus{
		models.StatusRegistrationOpen: {models.StatusInProgress},
		models.StatusInProgress:       {models.StatusCompleted},
		models.StatusCompleted:        {},
	}
	for _, candidate := range allowed[current] {
		if next == candidate {
			return true
		}
	}
	return false
}

// staffChannelAccess builds the access entries granting the tournament's
// overwatch and staff roles full access to a channel. Every channel starts
// default-deny, so omitting a role locks it out.
func staffChannelAccess(t *models.Tournament) []platform.ChannelAccess {
	access := make([]platform.ChannelAccess, 0, 2)
	for _, roleRef := range []*int64{t.OverwatchRoleRef, t.StaffRoleRef} {
		if roleRef == nil {
			continue
		}
		access = append(access, platform.ChannelAccess{
			RoleRef:    *roleRef,
			CanConnect: true,
			CanSpeak:   true,
			CanView:    true,
			CanSend:    true,
		})
	}
	return access
}
