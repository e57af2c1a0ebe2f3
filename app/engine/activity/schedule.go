package activity

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/alitto/pond/v2"
	"go.temporal.io/api/enums/v1"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"
	sdktemporal "go.temporal.io/sdk/temporal"
	"go.uber.org/zap"

	"github.com/openrange/rangex/app/engine/types"
	engineworkflow "github.com/openrange/rangex/pkg/temporal/engine"
)

// ListCompetitions builds the recompute-all worklist from the entry roster.
func (c *Context) ListCompetitions(ctx context.Context) (types.ListCompetitionsOutput, error) {
	start := time.Now()

	ids, err := c.Store.ListCompetitions(ctx)
	if err != nil {
		return types.ListCompetitionsOutput{}, err
	}

	durationMs := float64(time.Since(start).Microseconds()) / 1000.0
	c.Logger.Info("Competition worklist built",
		zap.Int("competitions", len(ids)),
		zap.Float64("duration_ms", durationMs))

	return types.ListCompetitionsOutput{
		CompetitionIDs: ids,
		DurationMs:     durationMs,
	}, nil
}

// ScheduleRecomputes fans out one RecomputeCompetitionWorkflow per
// competition. Deterministic workflow IDs make the fan-out idempotent, a
// competition whose recompute is already running is counted as scheduled.
func (c *Context) ScheduleRecomputes(ctx context.Context, in types.ScheduleRecomputesInput) (types.ScheduleRecomputesOutput, error) {
	start := time.Now()

	if len(in.CompetitionIDs) == 0 {
		return types.ScheduleRecomputesOutput{}, nil
	}

	var scheduled atomic.Int32
	var failed atomic.Int32

	pool := c.computeBatchPool(len(in.CompetitionIDs))
	group := pool.NewGroupContext(ctx)
	groupCtx := group.Context()

	for _, competitionID := range in.CompetitionIDs {
		id := competitionID

		group.Submit(func() {
			if err := groupCtx.Err(); err != nil {
				return
			}

			options := client.StartWorkflowOptions{
				ID:        c.TemporalClient.GetRecomputeWorkflowID(id),
				TaskQueue: c.TemporalClient.GetRecomputeQueue(),
				// If a recompute for this competition is already running,
				// attach to it instead of starting a duplicate.
				WorkflowIDConflictPolicy: enums.WORKFLOW_ID_CONFLICT_POLICY_USE_EXISTING,
				WorkflowIDReusePolicy:    enums.WORKFLOW_ID_REUSE_POLICY_ALLOW_DUPLICATE_FAILED_ONLY,
				RetryPolicy: &sdktemporal.RetryPolicy{
					InitialInterval:    time.Second,
					BackoffCoefficient: 1.2,
					MaximumInterval:    5 * time.Second,
					MaximumAttempts:    0,
				},
			}

			_, err := c.TemporalClient.TClient.ExecuteWorkflow(groupCtx, options,
				engineworkflow.RecomputeCompetitionWorkflowName, types.RecomputeInput{
					CompetitionID: id,
					Rebuild:       in.Rebuild,
				})
			if err != nil {
				var alreadyStarted *serviceerror.WorkflowExecutionAlreadyStarted
				if errors.As(err, &alreadyStarted) {
					scheduled.Add(1)
					return
				}
				c.Logger.Warn("Failed to schedule recompute workflow",
					zap.Uint64("competition_id", id),
					zap.Error(err))
				failed.Add(1)
				return
			}
			scheduled.Add(1)
		})
	}

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, pond.ErrGroupStopped) {
		c.Logger.Warn("Recompute fan-out group encountered error", zap.Error(err))
	}

	durationMs := float64(time.Since(start).Microseconds()) / 1000.0
	c.Logger.Info("Recompute fan-out completed",
		zap.Int32("scheduled", scheduled.Load()),
		zap.Int32("failed", failed.Load()),
		zap.Float64("duration_ms", durationMs))

	return types.ScheduleRecomputesOutput{
		Scheduled:  uint32(scheduled.Load()),
		Failed:     uint32(failed.Load()),
		DurationMs: durationMs,
	}, nil
}
