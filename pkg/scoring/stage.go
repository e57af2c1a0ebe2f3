package scoring

import (
	"time"

	"github.com/openrange/rangex/pkg/db/models/league"
)

// AggregateStage reduces a string selection to one StagePerformance row for
// (entryID, stageNo). Raw and penalty totals sum over the kept strings only;
// the final total is their sum recomputed from components.
func AggregateStage(competitionID, entryID uint64, stageNo uint8, sel Selection, now time.Time) league.StagePerformance {
	perf := league.StagePerformance{
		CompetitionID: competitionID,
		EntryID:       entryID,
		StageNo:       stageNo,
		KeptTimes:     sel.KeptTotals,
		StringsKept:   uint8(len(sel.Kept)),
		IsComplete:    sel.IsComplete,
		UpdatedAt:     now,
	}

	for _, r := range sel.Kept {
		perf.RawTotal += r.RawTime
		perf.PenaltyTotal += r.Penalty
	}
	perf.FinalTotal = perf.RawTotal + perf.PenaltyTotal

	if sel.Dropped != nil {
		dropped := sel.DroppedTotal
		stringNo := sel.Dropped.StringNo
		perf.DroppedTime = &dropped
		perf.DroppedStringNo = &stringNo
	}

	return perf
}
