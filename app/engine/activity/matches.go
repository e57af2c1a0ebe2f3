package activity

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/puzpuzpuz/xsync/v4"
	"go.uber.org/zap"

	"github.com/openrange/rangex/app/engine/types"
	"github.com/openrange/rangex/pkg/db/models/league"
	"github.com/openrange/rangex/pkg/scoring"
)

// ComputeMatches rolls every entry's stage rows into one match row. Entries
// with no stage rows at all still get a row (zero stages completed, invalid)
// so squad composition can distinguish a registered-but-absent member from
// an unregistered one.
func (c *Context) ComputeMatches(ctx context.Context, in types.RecomputeInput) (types.ComputeMatchesOutput, error) {
	start := time.Now()

	entries, err := c.Store.ListEntries(ctx, in.CompetitionID)
	if err != nil {
		return types.ComputeMatchesOutput{}, err
	}
	if len(entries) == 0 {
		return types.ComputeMatchesOutput{
			DurationMs: float64(time.Since(start).Microseconds()) / 1000.0,
		}, nil
	}

	stages, err := c.Store.ListStagePerformances(ctx, in.CompetitionID)
	if err != nil {
		return types.ComputeMatchesOutput{}, err
	}

	stagesByEntry := make(map[uint64][]league.StagePerformance, len(entries))
	for _, st := range stages {
		stagesByEntry[st.EntryID] = append(stagesByEntry[st.EntryID], *st)
	}

	results := xsync.NewMap[uint64, *league.MatchPerformance]()
	var valid atomic.Int64
	now := time.Now().UTC()

	pool := c.computeBatchPool(len(entries))
	group := pool.NewGroupContext(ctx)
	groupCtx := group.Context()

	for _, e := range entries {
		entry := *e
		group.Submit(func() {
			if err := groupCtx.Err(); err != nil {
				return
			}
			perf := scoring.AggregateMatch(entry, stagesByEntry[entry.EntryID], c.Options, now)
			results.Store(entry.EntryID, &perf)
			if perf.IsValidMatch {
				valid.Add(1)
			}
		})
	}

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, pond.ErrGroupStopped) {
		return types.ComputeMatchesOutput{}, fmt.Errorf("match aggregation pool: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return types.ComputeMatchesOutput{}, err
	}

	rows := make([]*league.MatchPerformance, 0, len(entries))
	for _, e := range entries {
		if perf, ok := results.Load(e.EntryID); ok {
			rows = append(rows, perf)
		}
	}

	if err := c.Store.InsertMatchPerformances(ctx, rows); err != nil {
		return types.ComputeMatchesOutput{}, err
	}

	durationMs := float64(time.Since(start).Microseconds()) / 1000.0
	c.Logger.Info("Match aggregation complete",
		zap.Uint64("competition_id", in.CompetitionID),
		zap.Int("matches_written", len(rows)),
		zap.Int64("valid_matches", valid.Load()),
		zap.Float64("duration_ms", durationMs))

	return types.ComputeMatchesOutput{
		MatchesWritten: uint32(len(rows)),
		ValidMatches:   uint32(valid.Load()),
		DurationMs:     durationMs,
	}, nil
}
