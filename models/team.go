package models

import "time"

// Team belongs to exactly one tournament. RegistrationKeyHash is the bcrypt
// hash of the captain's join key; the plaintext key is shown once and never
// stored. Free tournaments verify teams immediately, paid ones after staff
// verification.
type Team struct {
	ID                  int       `json:"id" db:"id"`
	TournamentID        int       `json:"tournament_id" db:"tournament_id"`
	Name                string    `json:"name" db:"name"`
	CaptainUserID       int64     `json:"captain_user_id" db:"captain_user_id"`
	RoleRef             int64     `json:"role_ref" db:"role_ref"`
	RegistrationKeyHash string    `json:"-" db:"registration_key_hash"`
	IsVerified          bool      `json:"is_verified" db:"is_verified"`
	IconURL             *string   `json:"icon_url,omitempty" db:"icon_url"`
	CreatedAt           time.Time `json:"created_at" db:"created_at"`

	Registrations []Registration `json:"registrations,omitempty" db:"-"`
}
