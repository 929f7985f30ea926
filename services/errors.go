package services

import "errors"

// Sentinel errors shared across services and the HTTP error mapping.
var (
	ErrNotFound = errors.New("requested resource not found")

	// Validation and business rules
	ErrValidationFailed        = errors.New("validation failed")
	ErrTournamentNameRequired  = errors.New("tournament name is required")
	ErrTeamNameRequired        = errors.New("team name is required")
	ErrRegistrationNotOpen     = errors.New("tournament registration is not open")
	ErrInsufficientTeams       = errors.New("at least two verified teams are required to seed a bracket")
	ErrInvalidRegistrationKey  = errors.New("registration key does not match any team in this tournament")
	ErrTeamNotVerified         = errors.New("team has not been verified yet")
	ErrMatchAlreadyScheduled   = errors.New("match already has a scheduled time")
	ErrByeMatchHasNoResult     = errors.New("a bye match cannot have a result recorded")

	// State machine
	ErrInvalidStateTransition   = errors.New("operation not allowed in the tournament's current state")
	ErrBracketAlreadyInitialized = errors.New("bracket already initialized for this tournament")
	ErrBracketNotInitialized     = errors.New("bracket has not been initialized for this tournament")

	// Conflicts
	ErrTournamentNameConflict = errors.New("a tournament with this name already exists in the community")
	ErrTeamNameConflict       = errors.New("a team with this name already exists in the tournament")

	// Authorization
	ErrForbiddenOperation     = errors.New("operation not allowed for the current actor")
	ErrCaptainActionForbidden = errors.New("only the team captain can perform this action")

	// Entity-specific not-found variants
	ErrTournamentNotFound   = errors.New("tournament not found")
	ErrTeamNotFound         = errors.New("team not found")
	ErrMatchNotFound        = errors.New("match not found")
	ErrRegistrationNotFound = errors.New("registration not found")

	// Collaborator failures
	ErrBracketServiceUnavailable = errors.New("bracket service request failed")
	ErrVoiceProvisioningFailed   = errors.New("voice channel provisioning failed")
)
