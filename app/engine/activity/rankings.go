package activity

import (
	"context"
	"fmt"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.uber.org/zap"

	"github.com/openrange/rangex/app/engine/types"
	"github.com/openrange/rangex/pkg/db/models/league"
	"github.com/openrange/rangex/pkg/scoring"
)

// ComputeRankings recomputes one ranking stream for the competition. The
// individual stream reads match rows, the squad stream reads squad rows;
// each run fully replaces the stream's rankings for the competition.
func (c *Context) ComputeRankings(ctx context.Context, in types.ComputeRankingsInput) (types.ComputeRankingsOutput, error) {
	start := time.Now()
	now := time.Now().UTC()

	var entries []league.RankingEntry
	switch in.Stream {
	case league.StreamIndividual:
		matches, err := c.Store.ListMatchPerformances(ctx, in.CompetitionID)
		if err != nil {
			return types.ComputeRankingsOutput{}, err
		}
		values := make([]league.MatchPerformance, 0, len(matches))
		for _, m := range matches {
			values = append(values, *m)
		}
		entries = scoring.RankIndividuals(in.CompetitionID, values, now)

	case league.StreamSquad:
		squads, err := c.Store.ListSquadPerformances(ctx, in.CompetitionID)
		if err != nil {
			return types.ComputeRankingsOutput{}, err
		}
		values := make([]league.SquadPerformance, 0, len(squads))
		for _, s := range squads {
			values = append(values, *s)
		}
		entries = scoring.RankSquads(in.CompetitionID, values, now)

	default:
		return types.ComputeRankingsOutput{}, temporal.NewNonRetryableApplicationError(
			fmt.Sprintf("unknown ranking stream %q", in.Stream), "bad_stream", nil)
	}

	rows := make([]*league.RankingEntry, 0, len(entries))
	for i := range entries {
		rows = append(rows, &entries[i])
	}

	if err := c.Store.InsertRankings(ctx, rows); err != nil {
		return types.ComputeRankingsOutput{}, err
	}

	durationMs := float64(time.Since(start).Microseconds()) / 1000.0
	c.Logger.Info("Ranking stream complete",
		zap.Uint64("competition_id", in.CompetitionID),
		zap.String("stream", in.Stream),
		zap.Int("rankings_written", len(rows)),
		zap.Float64("duration_ms", durationMs))

	return types.ComputeRankingsOutput{
		RankingsWritten: uint32(len(rows)),
		DurationMs:      durationMs,
	}, nil
}
