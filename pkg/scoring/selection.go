package scoring

import (
	"math"
	"sort"

	"github.com/openrange/rangex/pkg/db/models/league"
)

// totalTolerance is how far a stored total may drift from raw + penalty
// before the record counts as an upstream inconsistency. One millisecond.
const totalTolerance = 0.001

// Selection is the outcome of drop-slowest string selection for one
// (entry, stage) pair.
type Selection struct {
	// Kept holds the scoring strings ordered by recomputed total, ascending.
	Kept []league.StringRecord
	// KeptTotals are the recomputed totals of Kept, same order.
	KeptTotals []float64
	// Dropped is the slowest valid string excluded by selection, nil when
	// nothing was dropped (fewer valid strings than KeepCount).
	Dropped *league.StringRecord
	// DroppedTotal is the recomputed total of Dropped.
	DroppedTotal float64
	// ExtraDropped counts surplus valid strings beyond the single expected
	// drop (upstream noise: more than StringsPerStage attempts recorded).
	ExtraDropped int
	// InvalidCount counts strings with non-positive or non-finite totals.
	InvalidCount int
	// InconsistentCount counts strings whose stored total disagreed with
	// raw + penalty; the engine scores from components regardless.
	InconsistentCount int
	// IsComplete is true when exactly KeepCount valid strings were kept.
	IsComplete bool
}

// RecordTotal recomputes a string's total from its components. The stored
// total is never trusted.
func RecordTotal(r league.StringRecord) float64 {
	return r.RawTime + r.Penalty
}

// validTotal reports whether a recomputed total can be ranked. Non-positive
// totals mark unattempted or voided strings; NaN/Inf guard against source
// corruption.
func validTotal(t float64) bool {
	return t > 0 && !math.IsNaN(t) && !math.IsInf(t, 0)
}

// SelectStrings picks which of an entry's attempts count toward a stage
// score: the KeepCount smallest valid recomputed totals, stably sorted so
// ties at the selection boundary keep the first-seen record. The remainder
// is the dropped slowest string. Fewer than KeepCount valid strings marks
// the selection incomplete but still scores what remains.
func SelectStrings(records []league.StringRecord, opts Options) Selection {
	opts = opts.Normalize()

	var sel Selection

	type scored struct {
		rec   league.StringRecord
		total float64
	}
	valid := make([]scored, 0, len(records))
	for _, r := range records {
		total := RecordTotal(r)
		if r.TotalTime != 0 && math.Abs(r.TotalTime-total) > totalTolerance {
			sel.InconsistentCount++
		}
		if !validTotal(total) {
			sel.InvalidCount++
			continue
		}
		valid = append(valid, scored{rec: r, total: total})
	}

	// Stable: equal totals keep insertion order, which makes the boundary
	// tie-break reproducible across runs.
	sort.SliceStable(valid, func(i, j int) bool { return valid[i].total < valid[j].total })

	keep := opts.KeepCount
	if keep > len(valid) {
		keep = len(valid)
	}

	sel.Kept = make([]league.StringRecord, 0, keep)
	sel.KeptTotals = make([]float64, 0, keep)
	for _, s := range valid[:keep] {
		sel.Kept = append(sel.Kept, s.rec)
		sel.KeptTotals = append(sel.KeptTotals, s.total)
	}

	if rest := valid[keep:]; len(rest) > 0 {
		slowest := rest[len(rest)-1]
		sel.Dropped = &slowest.rec
		sel.DroppedTotal = slowest.total
		sel.ExtraDropped = len(rest) - 1
	}

	sel.IsComplete = len(sel.Kept) == opts.KeepCount
	return sel
}
