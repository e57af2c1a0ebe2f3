package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openrange/rangex/pkg/db/models/league"
)

func member(entryID, athleteID uint64, division string, total float64, valid bool) league.MatchPerformance {
	return league.MatchPerformance{
		EntryID:       entryID,
		CompetitionID: 1,
		AthleteID:     athleteID,
		TeamID:        20,
		DisciplineID:  3,
		Division:      division,
		FinalTotal:    total,
		IsValidMatch:  valid,
	}
}

func testPolicies() map[string]league.DivisionPolicy {
	return PolicyTable([]league.DivisionPolicy{
		{Division: "Veteran"},
		{Division: "Senior"},
	}, DefaultOptions())
}

func TestComposeSquadFullSameDivision(t *testing.T) {
	members := []league.MatchPerformance{
		member(1, 101, "Veteran", 101.2, true),
		member(2, 102, "Veteran", 99.5, true),
		member(3, 103, "Veteran", 105.0, true),
		member(4, 104, "Veteran", 98.0, true),
	}

	squad, err := ComposeSquad(1, 20, 3, members, testPolicies(), DefaultOptions(), time.Now())
	require.NoError(t, err)

	assert.Equal(t, "Veteran", squad.SquadDivision)
	assert.False(t, squad.IsMixedDivision)
	assert.True(t, squad.IsCompleteSquad)
	assert.Zero(t, squad.GhostCount)
	assert.InDelta(t, 403.7, squad.SquadTotal, 1e-9)
	// Member slots are stored fastest-first.
	require.Len(t, squad.Members, 4)
	assert.Equal(t, uint64(104), squad.Members[0].AthleteID)
	assert.Equal(t, uint64(103), squad.Members[3].AthleteID)
}

func TestComposeSquadMixedDivisionReclassifiesToOpen(t *testing.T) {
	members := []league.MatchPerformance{
		member(1, 101, "Veteran", 101.2, true),
		member(2, 102, "Senior", 99.5, true),
		member(3, 103, "Veteran", 105.0, true),
		member(4, 104, "Veteran", 98.0, true),
	}

	squad, err := ComposeSquad(1, 20, 3, members, testPolicies(), DefaultOptions(), time.Now())
	require.NoError(t, err)

	assert.Equal(t, league.OpenDivision, squad.SquadDivision)
	assert.True(t, squad.IsMixedDivision)
	assert.True(t, squad.IsCompleteSquad)
}

func TestComposeSquadGhostSubstitution(t *testing.T) {
	// Spec example: two Rookie members at 101.2 and 99.5, two missing,
	// ghost default 100.0 → squad total 400.7, complete.
	members := []league.MatchPerformance{
		member(1, 101, "Rookie", 101.2, true),
		member(2, 102, "Rookie", 99.5, true),
	}

	squad, err := ComposeSquad(1, 20, 3, members, testPolicies(), DefaultOptions(), time.Now())
	require.NoError(t, err)

	assert.True(t, squad.IsCompleteSquad)
	assert.Equal(t, uint8(2), squad.GhostCount)
	assert.InDelta(t, 400.7, squad.SquadTotal, 1e-9)
	require.Len(t, squad.Members, 4)
	assert.True(t, squad.Members[2].IsGhost)
	assert.True(t, squad.Members[3].IsGhost)
	assert.Equal(t, uint64(0), squad.Members[2].AthleteID)
}

func TestComposeSquadInvalidMemberTriggersGhost(t *testing.T) {
	members := []league.MatchPerformance{
		member(1, 101, "Rookie", 101.2, true),
		member(2, 102, "Rookie", 99.5, true),
		member(3, 103, "Rookie", 105.0, true),
		member(4, 104, "Rookie", 0, false), // DNF'd out
	}

	squad, err := ComposeSquad(1, 20, 3, members, testPolicies(), DefaultOptions(), time.Now())
	require.NoError(t, err)

	assert.True(t, squad.IsCompleteSquad)
	assert.Equal(t, uint8(1), squad.GhostCount)
	assert.InDelta(t, 101.2+99.5+105.0+100.0, squad.SquadTotal, 1e-9)
}

func TestComposeSquadNonGhostDivisionShortIsIncomplete(t *testing.T) {
	// Spec §8: three valid Veteran members never get silently padded.
	members := []league.MatchPerformance{
		member(1, 101, "Veteran", 101.2, true),
		member(2, 102, "Veteran", 99.5, true),
		member(3, 103, "Veteran", 105.0, true),
	}

	squad, err := ComposeSquad(1, 20, 3, members, testPolicies(), DefaultOptions(), time.Now())
	require.NoError(t, err)

	assert.False(t, squad.IsCompleteSquad)
	assert.Zero(t, squad.GhostCount)
	require.Len(t, squad.Members, 3)
	assert.InDelta(t, 305.7, squad.SquadTotal, 1e-9)
}

func TestComposeSquadTooManyMissingEvenWithGhosts(t *testing.T) {
	members := []league.MatchPerformance{
		member(1, 101, "Rookie", 101.2, true),
	}

	squad, err := ComposeSquad(1, 20, 3, members, testPolicies(), DefaultOptions(), time.Now())
	require.NoError(t, err)

	assert.False(t, squad.IsCompleteSquad, "three missing members exceeds the two-ghost cap")
	assert.Zero(t, squad.GhostCount)
}

func TestComposeSquadUnknownDivision(t *testing.T) {
	members := []league.MatchPerformance{
		member(1, 101, "Outlaw", 101.2, true),
		member(2, 102, "Outlaw", 99.5, true),
		member(3, 103, "Outlaw", 105.0, true),
		member(4, 104, "Outlaw", 98.0, true),
	}

	_, err := ComposeSquad(1, 20, 3, members, testPolicies(), DefaultOptions(), time.Now())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownDivision)
}

func TestComposeSquadMixedUnknownDivisionsStillOpen(t *testing.T) {
	// Unknown member divisions reconcile to Open, which always has a policy
	// entry, so the squad composes rather than erroring.
	members := []league.MatchPerformance{
		member(1, 101, "Outlaw", 101.2, true),
		member(2, 102, "Veteran", 99.5, true),
		member(3, 103, "Outlaw", 105.0, true),
		member(4, 104, "Outlaw", 98.0, true),
	}

	squad, err := ComposeSquad(1, 20, 3, members, testPolicies(), DefaultOptions(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, league.OpenDivision, squad.SquadDivision)
	assert.True(t, squad.IsMixedDivision)
}

func TestComposeSquadMoreThanFourValidKeepsFastest(t *testing.T) {
	members := []league.MatchPerformance{
		member(1, 101, "Veteran", 101.2, true),
		member(2, 102, "Veteran", 99.5, true),
		member(3, 103, "Veteran", 105.0, true),
		member(4, 104, "Veteran", 98.0, true),
		member(5, 105, "Veteran", 110.0, true),
	}

	squad, err := ComposeSquad(1, 20, 3, members, testPolicies(), DefaultOptions(), time.Now())
	require.NoError(t, err)

	require.Len(t, squad.Members, 4)
	for _, m := range squad.Members {
		assert.NotEqual(t, uint64(105), m.AthleteID, "slowest surplus member is excluded")
	}
	assert.True(t, squad.IsCompleteSquad)
}

func TestComposeSquadStoredPolicyOverridesConfigDefault(t *testing.T) {
	// A stored row can revoke the config default for a ghost-eligible
	// division.
	policies := PolicyTable([]league.DivisionPolicy{
		{Division: "Rookie", AllowsGhostAthletes: false},
	}, DefaultOptions())

	members := []league.MatchPerformance{
		member(1, 101, "Rookie", 101.2, true),
		member(2, 102, "Rookie", 99.5, true),
		member(3, 103, "Rookie", 105.0, true),
	}

	squad, err := ComposeSquad(1, 20, 3, members, policies, DefaultOptions(), time.Now())
	require.NoError(t, err)
	assert.False(t, squad.IsCompleteSquad)
	assert.Zero(t, squad.GhostCount)
}

func TestComposeSquadNoMembers(t *testing.T) {
	_, err := ComposeSquad(1, 20, 3, nil, testPolicies(), DefaultOptions(), time.Now())
	require.Error(t, err)
}
