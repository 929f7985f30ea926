package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyResult(t *testing.T) {
	tests := []struct {
		name   string
		scoreA int
		scoreB int
		want   MatchResult
	}{
		{"team A wins", 13, 7, ResultTeamAWin},
		{"team B wins", 7, 13, ResultTeamBWin},
		{"draw", 10, 10, ResultDraw},
		{"zero-zero is a draw", 0, 0, ResultDraw},
		{"one point margin", 14, 13, ResultTeamAWin},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyResult(tt.scoreA, tt.scoreB))
		})
	}
}

func TestIsBye(t *testing.T) {
	teamA := 1
	teamB := 2

	assert.True(t, (&Match{TeamAID: &teamA}).IsBye())
	assert.False(t, (&Match{TeamAID: &teamA, TeamBID: &teamB}).IsBye())
}

func TestBracketInitialized(t *testing.T) {
	ref := int64(777)

	assert.False(t, (&Tournament{}).BracketInitialized())
	assert.True(t, (&Tournament{BracketChannelRef: &ref}).BracketInitialized())
}

func TestCapabilitySet(t *testing.T) {
	assert.True(t, NewCapabilitySet(CapabilityAdmin).IsStaff())
	assert.True(t, NewCapabilitySet(CapabilityOverwatch).IsStaff())
	assert.True(t, NewCapabilitySet(CapabilityStaff).IsStaff())
	assert.False(t, CapabilitySet{}.IsStaff())
	assert.False(t, NewCapabilitySet(CapabilityStaff).Has(CapabilityAdmin))
}
