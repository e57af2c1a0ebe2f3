package scoring

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openrange/rangex/pkg/db/models/league"
)

func stringRec(stringNo uint8, raw, penalty float64) league.StringRecord {
	return league.StringRecord{
		CompetitionID: 1,
		EntryID:       10,
		StageNo:       1,
		StringNo:      stringNo,
		RawTime:       raw,
		Penalty:       penalty,
		TotalTime:     raw + penalty,
	}
}

func TestSelectStringsDropsSingleSlowest(t *testing.T) {
	// Spec example: [12.1, 11.8, 13.4, 12.0, 11.9] keeps the four fastest
	// and drops 13.4.
	records := []league.StringRecord{
		stringRec(1, 12.1, 0),
		stringRec(2, 11.8, 0),
		stringRec(3, 13.4, 0),
		stringRec(4, 12.0, 0),
		stringRec(5, 11.9, 0),
	}

	sel := SelectStrings(records, DefaultOptions())

	require.Len(t, sel.Kept, 4)
	assert.Equal(t, []float64{11.8, 11.9, 12.0, 12.1}, sel.KeptTotals)
	require.NotNil(t, sel.Dropped)
	assert.Equal(t, uint8(3), sel.Dropped.StringNo)
	assert.InDelta(t, 13.4, sel.DroppedTotal, 1e-9)
	assert.True(t, sel.IsComplete)
	assert.Zero(t, sel.ExtraDropped)
}

func TestSelectStringsPenaltiesCountTowardTotal(t *testing.T) {
	// String 2 has the lowest raw time but penalties make it the slowest.
	records := []league.StringRecord{
		stringRec(1, 12.0, 0),
		stringRec(2, 10.0, 5.0),
		stringRec(3, 12.5, 0),
		stringRec(4, 12.2, 0),
		stringRec(5, 12.3, 0),
	}

	sel := SelectStrings(records, DefaultOptions())

	require.NotNil(t, sel.Dropped)
	assert.Equal(t, uint8(2), sel.Dropped.StringNo)
}

func TestSelectStringsBoundaryTieKeepsFirstSeen(t *testing.T) {
	// Strings 2 and 5 tie at the selection boundary; the stable sort keeps
	// the first-seen record and drops the later one.
	records := []league.StringRecord{
		stringRec(1, 11.0, 0),
		stringRec(2, 12.5, 0),
		stringRec(3, 11.5, 0),
		stringRec(4, 11.7, 0),
		stringRec(5, 12.5, 0),
	}

	sel := SelectStrings(records, DefaultOptions())

	require.NotNil(t, sel.Dropped)
	assert.Equal(t, uint8(5), sel.Dropped.StringNo)
	kept := make([]uint8, 0, 4)
	for _, r := range sel.Kept {
		kept = append(kept, r.StringNo)
	}
	assert.Equal(t, []uint8{1, 3, 4, 2}, kept)
}

func TestSelectStringsInvalidTotalsSortLast(t *testing.T) {
	records := []league.StringRecord{
		stringRec(1, 12.0, 0),
		stringRec(2, 0, 0),     // unattempted
		stringRec(3, -1.0, 0),  // voided
		stringRec(4, 11.5, 0),
		stringRec(5, 11.9, 0),
	}

	sel := SelectStrings(records, DefaultOptions())

	require.Len(t, sel.Kept, 3)
	assert.Equal(t, 2, sel.InvalidCount)
	assert.Nil(t, sel.Dropped, "nothing valid left over to drop")
	assert.False(t, sel.IsComplete, "fewer than keepCount valid strings")
	assert.Equal(t, []float64{11.5, 11.9, 12.0}, sel.KeptTotals)
}

func TestSelectStringsRecomputesInconsistentTotals(t *testing.T) {
	records := []league.StringRecord{
		stringRec(1, 12.1, 0),
		stringRec(2, 11.8, 0),
		stringRec(3, 13.4, 0),
		stringRec(4, 12.0, 0),
		stringRec(5, 11.9, 0),
	}
	// Upstream stored a total that disagrees with raw + penalty; the engine
	// must score from components and flag the record.
	records[1].TotalTime = 99.9

	sel := SelectStrings(records, DefaultOptions())

	assert.Equal(t, 1, sel.InconsistentCount)
	assert.Equal(t, []float64{11.8, 11.9, 12.0, 12.1}, sel.KeptTotals)
}

func TestSelectStringsNaNTotalIsInvalid(t *testing.T) {
	records := []league.StringRecord{
		stringRec(1, math.NaN(), 0),
		stringRec(2, 11.8, 0),
		stringRec(3, 12.0, 0),
		stringRec(4, 12.1, 0),
		stringRec(5, 11.9, 0),
	}

	sel := SelectStrings(records, DefaultOptions())

	assert.Equal(t, 1, sel.InvalidCount)
	require.Len(t, sel.Kept, 4)
	assert.True(t, sel.IsComplete)
	assert.Nil(t, sel.Dropped)
}

func TestSelectStringsSurplusRecords(t *testing.T) {
	// Six valid attempts where five are expected: the slowest is the
	// dropped string, the surplus is counted for diagnostics.
	records := []league.StringRecord{
		stringRec(1, 11.0, 0),
		stringRec(2, 11.2, 0),
		stringRec(3, 11.4, 0),
		stringRec(4, 11.6, 0),
		stringRec(5, 11.8, 0),
		stringRec(6, 12.0, 0),
	}

	sel := SelectStrings(records, DefaultOptions())

	require.Len(t, sel.Kept, 4)
	require.NotNil(t, sel.Dropped)
	assert.Equal(t, uint8(6), sel.Dropped.StringNo)
	assert.Equal(t, 1, sel.ExtraDropped)
}

func TestSelectStringsEmptyInput(t *testing.T) {
	sel := SelectStrings(nil, DefaultOptions())

	assert.Empty(t, sel.Kept)
	assert.Nil(t, sel.Dropped)
	assert.False(t, sel.IsComplete)
}

func TestSelectStringsDeterministic(t *testing.T) {
	records := []league.StringRecord{
		stringRec(1, 12.0, 0),
		stringRec(2, 12.0, 0),
		stringRec(3, 12.0, 0),
		stringRec(4, 12.0, 0),
		stringRec(5, 12.0, 0),
	}

	first := SelectStrings(records, DefaultOptions())
	second := SelectStrings(records, DefaultOptions())

	assert.Equal(t, first.KeptTotals, second.KeptTotals)
	require.NotNil(t, first.Dropped)
	require.NotNil(t, second.Dropped)
	assert.Equal(t, first.Dropped.StringNo, second.Dropped.StringNo)
	assert.Equal(t, uint8(5), first.Dropped.StringNo, "all-tied stage drops the last-seen string")
}
