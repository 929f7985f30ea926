// Package bracketapi talks to the external bracket-rendering service
// (a Challonge-compatible v1 HTTP API). The client is deliberately dumb:
// it has no idempotency of its own, so callers must guarantee at most one
// CreateBracket per tournament.
package bracketapi

import "context"

// CreateResult carries the identifiers handed back by the remote service on
// a successful bracket creation. ServiceID is authoritative; it must never be
// reconstructed from the tournament name.
type CreateResult struct {
	ServiceID string
	ImageURL  string
}

// MatchSlot identifies one remote match by its position in the bracket.
// Position is 1-based within the round, following the service's suggested
// play order.
type MatchSlot struct {
	ServiceMatchID string
	Round          int
	Position       int
}

type Client interface {
	// CreateBracket creates the remote bracket, registers every participant
	// in the given order and starts the tournament. Fallible with no remote
	// rollback: a failed call leaves nothing the caller has to clean up,
	// a second successful call creates a duplicate bracket.
	CreateBracket(ctx context.Context, name string, participants []string, topology string) (*CreateResult, error)

	// UpdateMatchScore reports one match's final score and returns a fresh
	// image URL reflecting the whole bracket. Resending the same score is
	// harmless, which is what makes divergence repair by retry possible.
	UpdateMatchScore(ctx context.Context, serviceID, serviceMatchID string, scoreA, scoreB int) (imageURL string, err error)

	// FetchBracketImage returns the current render URL without mutating
	// anything, for on-demand refreshes of the pinned bracket message.
	FetchBracketImage(ctx context.Context, serviceID string) (imageURL string, err error)

	// ListMatches returns the remote bracket's match slots so local matches
	// can be linked to their service counterparts.
	ListMatches(ctx context.Context, serviceID string) ([]MatchSlot, error)
}

const TopologySingleElimination = "single elimination"
