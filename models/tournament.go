package models

import "time"

// TournamentStatus mirrors the tournament_status ENUM in the database.
type TournamentStatus string

const (
	StatusRegistrationOpen TournamentStatus = "registration_open"
	StatusInProgress       TournamentStatus = "in_progress"
	StatusCompleted        TournamentStatus = "completed"
)

// Tournament is one bracket event inside a community (guild).
// Status only moves forward: registration_open -> in_progress -> completed.
// Deletion is soft: DeletedAt is set and the row drops out of every active lookup,
// but matches keep referencing it for history.
type Tournament struct {
	ID          int              `json:"id" db:"id"`
	CommunityID int64            `json:"community_id" db:"community_id"`
	Name        string           `json:"name" db:"name"`
	Status      TournamentStatus `json:"status" db:"status"`
	IsPaid      bool             `json:"is_paid" db:"is_paid"`
	Mode        string           `json:"mode" db:"mode"`
	SponsorName string           `json:"sponsor_name" db:"sponsor_name"`
	Timezone    string           `json:"timezone" db:"timezone"`

	CategoryRef            *int64 `json:"category_ref,omitempty" db:"category_ref"`
	OverwatchRoleRef       *int64 `json:"overwatch_role_ref,omitempty" db:"overwatch_role_ref"`
	StaffRoleRef           *int64 `json:"staff_role_ref,omitempty" db:"staff_role_ref"`
	RegistrationChannelRef *int64 `json:"registration_channel_ref,omitempty" db:"registration_channel_ref"`
	JoinChannelRef         *int64 `json:"join_channel_ref,omitempty" db:"join_channel_ref"`
	StaffVerifyChannelRef  *int64 `json:"staff_verify_channel_ref,omitempty" db:"staff_verify_channel_ref"`

	// Bracket pointers, populated only after a successful remote creation.
	// BracketServiceID is the identifier the bracket service handed back,
	// never a value guessed from the tournament name.
	BracketChannelRef          *int64  `json:"bracket_channel_ref,omitempty" db:"bracket_channel_ref"`
	BracketMessageRef          *int64  `json:"bracket_message_ref,omitempty" db:"bracket_message_ref"`
	BracketServiceID           *string `json:"bracket_service_id,omitempty" db:"bracket_service_id"`
	BracketImageURL            *string `json:"bracket_image_url,omitempty" db:"bracket_image_url"`
	RegistrationMenuMessageRef *int64  `json:"registration_menu_message_ref,omitempty" db:"registration_menu_message_ref"`

	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`

	Teams   []Team  `json:"teams,omitempty" db:"-"`
	Matches []Match `json:"matches,omitempty" db:"-"`
}

// BracketInitialized reports whether a bracket channel already exists for
// this tournament. A remote bracket may still be absent (zero-team init).
func (t *Tournament) BracketInitialized() bool {
	return t.BracketChannelRef != nil
}
