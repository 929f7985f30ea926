package models

// GuildSettings is the per-community configuration document written by /setup.
// All refs are nullable until setup has run.
type GuildSettings struct {
	CommunityID          int64   `json:"community_id" db:"community_id"`
	AdminRoleRef         *int64  `json:"admin_role_ref,omitempty" db:"admin_role_ref"`
	OverwatchRoleRef     *int64  `json:"overwatch_role_ref,omitempty" db:"overwatch_role_ref"`
	StaffRoleRef         *int64  `json:"staff_role_ref,omitempty" db:"staff_role_ref"`
	CategoryRef          *int64  `json:"category_ref,omitempty" db:"category_ref"`
	BotUpdatesChannelRef *int64  `json:"bot_updates_channel_ref,omitempty" db:"bot_updates_channel_ref"`
	TourneyLogChannelRef *int64  `json:"tourney_log_channel_ref,omitempty" db:"tourney_log_channel_ref"`
	MaintenanceMode      bool    `json:"maintenance_mode" db:"maintenance_mode"`
	MaintenanceMsg       string  `json:"maintenance_msg" db:"maintenance_msg"`
	DefaultTimezone      string  `json:"default_timezone" db:"default_timezone"`
	PremiumEnabled       bool    `json:"premium_enabled" db:"premium_enabled"`
}
