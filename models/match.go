package models

import "time"

type MatchResult string

const (
	ResultPending  MatchResult = "pending"
	ResultTeamAWin MatchResult = "team_a_win"
	ResultTeamBWin MatchResult = "team_b_win"
	ResultDraw     MatchResult = "draw"
)

// Match is one bracket slot. TeamBID is nil for a bye. The three voice
// channel refs are written together, exactly once, by the scheduler sweep;
// VcARef doubles as the sweep's idempotency guard.
type Match struct {
	ID               int         `json:"id" db:"id"`
	TournamentID     int         `json:"tournament_id" db:"tournament_id"`
	RoundNumber      int         `json:"round_number" db:"round_number"`
	BracketSlotIndex int         `json:"bracket_slot_index" db:"bracket_slot_index"`
	TeamAID          *int        `json:"team_a_id,omitempty" db:"team_a_id"`
	TeamBID          *int        `json:"team_b_id,omitempty" db:"team_b_id"`
	ScheduledTime    *time.Time  `json:"scheduled_time,omitempty" db:"scheduled_time"`
	TeamAScore       int         `json:"team_a_score" db:"team_a_score"`
	TeamBScore       int         `json:"team_b_score" db:"team_b_score"`
	Result           MatchResult `json:"result" db:"result"`
	ServiceMatchID   *string     `json:"service_match_id,omitempty" db:"service_match_id"`

	VcARef    *int64 `json:"vc_a_ref,omitempty" db:"vc_a_ref"`
	VcBRef    *int64 `json:"vc_b_ref,omitempty" db:"vc_b_ref"`
	VcSpecRef *int64 `json:"vc_spec_ref,omitempty" db:"vc_spec_ref"`

	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty" db:"updated_at"`
}

// IsBye reports whether this slot has no opponent. Byes get no score and no
// voice channels.
func (m *Match) IsBye() bool {
	return m.TeamBID == nil
}

// ClassifyResult maps a final score onto a match result by strict comparison.
func ClassifyResult(scoreA, scoreB int) MatchResult {
	switch {
	case scoreA > scoreB:
		return ResultTeamAWin
	case scoreB > scoreA:
		return ResultTeamBWin
	default:
		return ResultDraw
	}
}
