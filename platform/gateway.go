// Package platform is the boundary to the chat-platform binding. The core
// only issues intents through the Gateway; the binding executes them against
// the real platform and reports per-intent success or failure. Caller
// identity and role membership are resolved on the other side of this
// boundary and arrive in the core as capability flags.
package platform

import "context"

// ChannelAccess is a role-based access list entry for a channel intent.
// Channels are default-deny for everyone; only the listed roles get in.
type ChannelAccess struct {
	RoleRef    int64 `json:"role_ref"`
	CanConnect bool  `json:"can_connect"`
	CanSpeak   bool  `json:"can_speak"`
	CanView    bool  `json:"can_view"`
	CanSend    bool  `json:"can_send"`
}

// VoiceChannelIntent asks the binding to create one voice channel under a
// tournament category.
type VoiceChannelIntent struct {
	CommunityID int64           `json:"community_id"`
	CategoryRef int64           `json:"category_ref"`
	Name        string          `json:"name"`
	Access      []ChannelAccess `json:"access"`
}

// TextChannelIntent mirrors VoiceChannelIntent for text channels.
type TextChannelIntent struct {
	CommunityID int64           `json:"community_id"`
	CategoryRef *int64          `json:"category_ref,omitempty"`
	Name        string          `json:"name"`
	Access      []ChannelAccess `json:"access"`
}

// Message is the renderable payload for posted or edited channel messages.
// Presentation (embeds, emoji) is the binding's business.
type Message struct {
	Title    string `json:"title"`
	Body     string `json:"body"`
	ImageURL string `json:"image_url,omitempty"`
}

type Gateway interface {
	CreateCategory(ctx context.Context, communityID int64, name string) (int64, error)
	CreateTextChannel(ctx context.Context, intent TextChannelIntent) (int64, error)
	CreateVoiceChannel(ctx context.Context, intent VoiceChannelIntent) (int64, error)
	DeleteChannel(ctx context.Context, communityID, channelRef int64) error

	CreateRole(ctx context.Context, communityID int64, name string) (int64, error)
	DeleteRole(ctx context.Context, communityID, roleRef int64) error
	AssignRole(ctx context.Context, communityID, userID, roleRef int64) error
	RemoveRole(ctx context.Context, communityID, userID, roleRef int64) error

	PostMessage(ctx context.Context, communityID, channelRef int64, msg Message) (int64, error)
	EditMessage(ctx context.Context, communityID, channelRef, messageRef int64, msg Message) error

	// SendDirectNotification delivers a DM. Unreachable recipients are an
	// expected failure mode; callers treat errors as best-effort.
	SendDirectNotification(ctx context.Context, userID int64, content string) error
}
