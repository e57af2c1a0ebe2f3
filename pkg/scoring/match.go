package scoring

import (
	"time"

	"github.com/openrange/rangex/pkg/db/models/league"
)

// AggregateMatch reduces an entry's stage rows to one MatchPerformance.
// Totals are partial sums when stages are missing; a match is valid only
// when every stage is complete, the entry carries no DNF/DQ flag, and the
// final total is positive. Invalid matches are recorded, not errors;
// downstream stages simply exclude them.
func AggregateMatch(entry league.Entry, stages []league.StagePerformance, opts Options, now time.Time) league.MatchPerformance {
	opts = opts.Normalize()

	perf := league.MatchPerformance{
		EntryID:       entry.EntryID,
		CompetitionID: entry.CompetitionID,
		AthleteID:     entry.AthleteID,
		TeamID:        entry.TeamID,
		DisciplineID:  entry.DisciplineID,
		Division:      entry.Division,
		Class:         entry.Class,
		Gender:        entry.Gender,
		UpdatedAt:     now,
	}

	for _, st := range stages {
		perf.RawTotal += st.RawTotal
		perf.PenaltyTotal += st.PenaltyTotal
		perf.FinalTotal += st.FinalTotal
		if st.IsComplete {
			perf.StagesCompleted++
		}
	}

	perf.IsCompleteMatch = int(perf.StagesCompleted) == opts.StagesPerMatch
	perf.IsValidMatch = perf.IsCompleteMatch && !entry.DNF && !entry.DQ && perf.FinalTotal > 0

	return perf
}
