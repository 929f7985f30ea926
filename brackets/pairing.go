package brackets

import (
	"context"
	"errors"

	"github.com/VELOCITY6097/valorant-tourney/models"
)

var ErrNotEnoughTeams = errors.New("not enough verified teams to pair (minimum 2)")

// Pairing is one round-1 bracket slot. TeamB is nil when the trailing team of
// an odd field gets a bye.
type Pairing struct {
	SlotIndex int
	TeamA     *models.Team
	TeamB     *models.Team
}

type PairingParams struct {
	Tournament *models.Tournament
	Teams      []*models.Team
}

// SeedGenerator produces the round-1 slots for a bracket topology.
type SeedGenerator interface {
	GenerateSeeds(ctx context.Context, params PairingParams) ([]Pairing, error)
	GetName() string
}

type SingleEliminationGenerator struct{}

func NewSingleEliminationGenerator() SeedGenerator {
	return &SingleEliminationGenerator{}
}

func (g *SingleEliminationGenerator) GetName() string {
	return "SingleElimination"
}

// GenerateSeeds pairs teams consecutively in stored order: (0,1) -> slot 1,
// (2,3) -> slot 2, and so on. No shuffling; seeding order is whatever order
// the teams registered in. An odd count leaves the last team with a bye.
func (g *SingleEliminationGenerator) GenerateSeeds(_ context.Context, params PairingParams) ([]Pairing, error) {
	teams := params.Teams
	if len(teams) < 2 {
		return nil, ErrNotEnoughTeams
	}

	pairings := make([]Pairing, 0, (len(teams)+1)/2)
	for i := 0; i < len(teams); i += 2 {
		p := Pairing{
			SlotIndex: (i / 2) + 1,
			TeamA:     teams[i],
		}
		if i+1 < len(teams) {
			p.TeamB = teams[i+1]
		}
		pairings = append(pairings, p)
	}
	return pairings, nil
}
