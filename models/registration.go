package models

import "time"

// Registration is one player's membership request on a team. Uniqueness of
// (team, user) is a workflow guard, not a store constraint.
type Registration struct {
	ID          int        `json:"id" db:"id"`
	TeamID      int        `json:"team_id" db:"team_id"`
	UserID      int64      `json:"user_id" db:"user_id"`
	Approved    bool       `json:"approved" db:"approved"`
	RequestedAt time.Time  `json:"requested_at" db:"requested_at"`
	ApprovedAt  *time.Time `json:"approved_at,omitempty" db:"approved_at"`
}
