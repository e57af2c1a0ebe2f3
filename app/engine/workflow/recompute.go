package workflow

import (
	"encoding/json"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/openrange/rangex/app/engine/types"
	"github.com/openrange/rangex/pkg/db/models/league"
)

// RecomputeCompetitionWorkflow recomputes every derived table for one
// competition and records the run. It tracks the execution time of each
// activity and persists the timings as the run's detail blob.
//
// Phase order follows the data dependencies: stages feed matches, matches
// feed squads and the individual rankings, squads feed the squad rankings.
// Squad composition and individual rankings both depend only on matches, so
// they run in parallel.
func (wc *Context) RecomputeCompetitionWorkflow(ctx workflow.Context, in types.RecomputeInput) error {
	start := workflow.Now(ctx)

	retry := &temporal.RetryPolicy{
		InitialInterval:    time.Second,
		BackoffCoefficient: 1.5,
		MaximumInterval:    30 * time.Second,
		MaximumAttempts:    5,
	}

	ao := workflow.ActivityOptions{
		// Recomputing a large competition is batch work, give each phase room.
		StartToCloseTimeout: 10 * time.Minute,
		RetryPolicy:         retry,
	}
	ctx = workflow.WithActivityOptions(ctx, ao)

	// Collect timing data for each activity
	timings := make(map[string]float64)
	var summary types.RunSummary

	// 1. Prepare - rebuild cleanup and worklist sizing
	var prepareOut types.PrepareOutput
	if err := workflow.ExecuteActivity(ctx, wc.ActivityContext.PrepareRecompute, in).Get(ctx, &prepareOut); err != nil {
		return err
	}
	timings["prepare_ms"] = prepareOut.DurationMs
	summary.EntriesProcessed = prepareOut.EntryCount

	// 2. Stage aggregation - raw strings into stage performances
	var stagesOut types.ComputeStagesOutput
	if err := workflow.ExecuteActivity(ctx, wc.ActivityContext.ComputeStages, in).Get(ctx, &stagesOut); err != nil {
		return err
	}
	timings["compute_stages_ms"] = stagesOut.DurationMs
	summary.StagesWritten = stagesOut.StagesWritten
	summary.IncompleteStages = stagesOut.IncompleteStages
	summary.InconsistentStrings = stagesOut.InconsistentStrings

	// 3. Match aggregation - stage performances into match performances
	var matchesOut types.ComputeMatchesOutput
	if err := workflow.ExecuteActivity(ctx, wc.ActivityContext.ComputeMatches, in).Get(ctx, &matchesOut); err != nil {
		return err
	}
	timings["compute_matches_ms"] = matchesOut.DurationMs
	summary.MatchesWritten = matchesOut.MatchesWritten
	summary.ValidMatches = matchesOut.ValidMatches

	// 4. Squad composition and individual rankings, both read only matches
	squadsFuture := workflow.ExecuteActivity(ctx, wc.ActivityContext.ComposeSquads, in)
	individualFuture := workflow.ExecuteActivity(ctx, wc.ActivityContext.ComputeRankings, types.ComputeRankingsInput{
		CompetitionID: in.CompetitionID,
		Stream:        league.StreamIndividual,
	})

	var squadsOut types.ComposeSquadsOutput
	if err := squadsFuture.Get(ctx, &squadsOut); err != nil {
		return err
	}
	timings["compose_squads_ms"] = squadsOut.DurationMs
	summary.SquadsWritten = squadsOut.SquadsWritten
	summary.SquadsIncomplete = squadsOut.SquadsIncomplete
	summary.SquadsSkipped = squadsOut.SquadsSkipped
	summary.MixedDivisions = squadsOut.MixedDivisions

	var individualOut types.ComputeRankingsOutput
	if err := individualFuture.Get(ctx, &individualOut); err != nil {
		return err
	}
	timings["rank_individual_ms"] = individualOut.DurationMs
	summary.RankingsWritten += individualOut.RankingsWritten

	// 5. Squad rankings, after composition has written the squad rows
	var squadRankOut types.ComputeRankingsOutput
	if err := workflow.ExecuteActivity(ctx, wc.ActivityContext.ComputeRankings, types.ComputeRankingsInput{
		CompetitionID: in.CompetitionID,
		Stream:        league.StreamSquad,
	}).Get(ctx, &squadRankOut); err != nil {
		return err
	}
	timings["rank_squad_ms"] = squadRankOut.DurationMs
	summary.RankingsWritten += squadRankOut.RankingsWritten

	// 6. Record the run and publish the completion event
	detailBytes, _ := json.Marshal(timings)
	recordInput := types.RecordRunInput{
		CompetitionID: in.CompetitionID,
		Rebuild:       in.Rebuild,
		Summary:       summary,
		DurationMs:    float64(workflow.Now(ctx).Sub(start).Microseconds()) / 1000.0,
		Detail:        string(detailBytes),
	}
	return workflow.ExecuteActivity(ctx, wc.ActivityContext.RecordRun, recordInput).Get(ctx, nil)
}
