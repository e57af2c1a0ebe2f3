package workflow

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/openrange/rangex/app/engine/types"
)

// RecomputeAllWorkflow sweeps the whole league: it lists every competition
// with entries and schedules one RecomputeCompetitionWorkflow per
// competition. Deterministic per-competition workflow IDs keep overlapping
// sweeps idempotent.
func (wc *Context) RecomputeAllWorkflow(ctx workflow.Context, in types.RecomputeAllInput) error {
	logger := workflow.GetLogger(ctx)

	ao := workflow.ActivityOptions{
		StartToCloseTimeout: 5 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    time.Second,
			BackoffCoefficient: 1.5,
			MaximumInterval:    30 * time.Second,
			MaximumAttempts:    5,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, ao)

	var listOut types.ListCompetitionsOutput
	if err := workflow.ExecuteActivity(ctx, wc.ActivityContext.ListCompetitions).Get(ctx, &listOut); err != nil {
		return err
	}

	if len(listOut.CompetitionIDs) == 0 {
		logger.Info("No competitions to recompute")
		return nil
	}

	var schedOut types.ScheduleRecomputesOutput
	if err := workflow.ExecuteActivity(ctx, wc.ActivityContext.ScheduleRecomputes, types.ScheduleRecomputesInput{
		CompetitionIDs: listOut.CompetitionIDs,
		Rebuild:        in.Rebuild,
	}).Get(ctx, &schedOut); err != nil {
		return err
	}

	logger.Info("Recompute sweep scheduled",
		"competitions", len(listOut.CompetitionIDs),
		"scheduled", schedOut.Scheduled,
		"failed", schedOut.Failed)

	return nil
}
