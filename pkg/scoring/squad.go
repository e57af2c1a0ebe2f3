package scoring

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/openrange/rangex/pkg/db/models/league"
)

// ErrUnknownDivision marks a squad whose division has no policy entry. The
// squad's composition is skipped with a diagnostic; the run continues.
var ErrUnknownDivision = errors.New("no division policy entry")

// PolicyTable merges the stored division policies over the configured
// defaults: every ghost-eligible division from Options allows ghosts unless
// a stored row says otherwise, and the Open division always has an entry.
func PolicyTable(rows []league.DivisionPolicy, opts Options) map[string]league.DivisionPolicy {
	policies := make(map[string]league.DivisionPolicy, len(rows)+len(opts.GhostEligibleDivisions)+1)
	for _, div := range opts.GhostEligibleDivisions {
		policies[div] = league.DivisionPolicy{Division: div, AllowsGhostAthletes: true}
	}
	policies[league.OpenDivision] = league.DivisionPolicy{Division: league.OpenDivision, IsOpenDivision: true}
	for _, row := range rows {
		policies[row.Division] = row
	}
	return policies
}

// ComposeSquad combines the match rows sharing (competition, team,
// discipline) into one SquadPerformance. Division reconciliation is an
// exact-string match: a squad spanning divisions reclassifies to Open.
// Missing valid members are ghost-substituted only in divisions whose policy
// allows it, and only up to MaxGhostsPerSquad; otherwise the squad is marked
// incomplete and excluded from rankings. Returns ErrUnknownDivision when the
// resolved squad division has no policy entry.
func ComposeSquad(competitionID, teamID, disciplineID uint64, members []league.MatchPerformance, policies map[string]league.DivisionPolicy, opts Options, now time.Time) (league.SquadPerformance, error) {
	opts = opts.Normalize()

	squad := league.SquadPerformance{
		CompetitionID: competitionID,
		TeamID:        teamID,
		DisciplineID:  disciplineID,
		UpdatedAt:     now,
	}

	if len(members) == 0 {
		return squad, fmt.Errorf("squad %d/%d/%d has no members", competitionID, teamID, disciplineID)
	}

	// Division reconciliation over every registered member, valid or not.
	squad.SquadDivision = members[0].Division
	for _, m := range members[1:] {
		if m.Division != squad.SquadDivision {
			squad.SquadDivision = league.OpenDivision
			squad.IsMixedDivision = true
			break
		}
	}

	policy, ok := policies[squad.SquadDivision]
	if !ok {
		return squad, fmt.Errorf("division %q: %w", squad.SquadDivision, ErrUnknownDivision)
	}

	valid := make([]league.MatchPerformance, 0, len(members))
	for _, m := range members {
		if m.IsValidMatch {
			valid = append(valid, m)
		}
	}
	// Member slots are stored fastest-first; a stable sort keeps entry order
	// deterministic for equal totals.
	sort.SliceStable(valid, func(i, j int) bool { return valid[i].FinalTotal < valid[j].FinalTotal })
	if len(valid) > opts.SquadSize {
		valid = valid[:opts.SquadSize]
	}

	for _, m := range valid {
		squad.Members = append(squad.Members, league.SquadMember{
			EntryID:    m.EntryID,
			AthleteID:  m.AthleteID,
			FinalTotal: m.FinalTotal,
		})
	}

	missing := opts.SquadSize - len(valid)
	switch {
	case missing == 0:
		squad.IsCompleteSquad = true
	case policy.AllowsGhostAthletes && missing <= opts.MaxGhostsPerSquad:
		for i := 0; i < missing; i++ {
			squad.Members = append(squad.Members, league.SquadMember{
				IsGhost:    true,
				FinalTotal: opts.GhostDefaultTime,
			})
		}
		squad.GhostCount = uint8(missing)
		squad.IsCompleteSquad = true
	default:
		// Too short, or the division does not permit padding. The squad row
		// is still recorded for reporting but never ranked.
		squad.IsCompleteSquad = false
	}

	for _, m := range squad.Members {
		squad.SquadTotal += m.FinalTotal
	}
	squad.MembersCount = uint8(len(squad.Members))

	return squad, nil
}
