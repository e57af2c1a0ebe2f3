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

// stageKey identifies one (entry, stage) selection unit.
type stageKey struct {
	EntryID uint64
	StageNo uint8
}

// ComputeStages runs string selection and stage aggregation for every
// (entry, stage) pair in the competition. Pairs are independent, so they fan
// out on the shared compute pool; the full output is collected in memory and
// written in one batch so no partial stage row ever lands.
func (c *Context) ComputeStages(ctx context.Context, in types.RecomputeInput) (types.ComputeStagesOutput, error) {
	start := time.Now()

	records, err := c.Store.ListStringRecords(ctx, in.CompetitionID)
	if err != nil {
		return types.ComputeStagesOutput{}, err
	}
	if len(records) == 0 {
		c.Logger.Info("No string records to aggregate",
			zap.Uint64("competition_id", in.CompetitionID))
		return types.ComputeStagesOutput{
			DurationMs: float64(time.Since(start).Microseconds()) / 1000.0,
		}, nil
	}

	// Group by (entry, stage), preserving the store's string_no ordering
	// inside each group. keys keeps the group iteration deterministic.
	groups := make(map[stageKey][]league.StringRecord, len(records)/scoring.DefaultStringsPerStage+1)
	keys := make([]stageKey, 0, len(records)/scoring.DefaultStringsPerStage+1)
	for _, r := range records {
		k := stageKey{EntryID: r.EntryID, StageNo: r.StageNo}
		if _, ok := groups[k]; !ok {
			keys = append(keys, k)
		}
		groups[k] = append(groups[k], *r)
	}

	results := xsync.NewMap[stageKey, *league.StagePerformance]()
	var incomplete, inconsistent atomic.Int64
	now := time.Now().UTC()

	pool := c.computeBatchPool(len(keys))
	group := pool.NewGroupContext(ctx)
	groupCtx := group.Context()

	for _, k := range keys {
		key := k
		recs := groups[k]
		group.Submit(func() {
			if err := groupCtx.Err(); err != nil {
				return
			}
			sel := scoring.SelectStrings(recs, c.Options)
			perf := scoring.AggregateStage(in.CompetitionID, key.EntryID, key.StageNo, sel, now)
			results.Store(key, &perf)
			if !sel.IsComplete {
				incomplete.Add(1)
			}
			inconsistent.Add(int64(sel.InconsistentCount))
		})
	}

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, pond.ErrGroupStopped) {
		return types.ComputeStagesOutput{}, fmt.Errorf("stage aggregation pool: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return types.ComputeStagesOutput{}, err
	}

	rows := make([]*league.StagePerformance, 0, len(keys))
	for _, k := range keys {
		if perf, ok := results.Load(k); ok {
			rows = append(rows, perf)
		}
	}

	if err := c.Store.InsertStagePerformances(ctx, rows); err != nil {
		return types.ComputeStagesOutput{}, err
	}

	durationMs := float64(time.Since(start).Microseconds()) / 1000.0
	c.Logger.Info("Stage aggregation complete",
		zap.Uint64("competition_id", in.CompetitionID),
		zap.Int("stages_written", len(rows)),
		zap.Int64("incomplete", incomplete.Load()),
		zap.Int64("inconsistent_strings", inconsistent.Load()),
		zap.Float64("duration_ms", durationMs))

	return types.ComputeStagesOutput{
		StagesWritten:       uint32(len(rows)),
		IncompleteStages:    uint32(incomplete.Load()),
		InconsistentStrings: uint32(inconsistent.Load()),
		DurationMs:          durationMs,
	}, nil
}
