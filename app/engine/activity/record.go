package activity

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/openrange/rangex/app/engine/types"
	"github.com/openrange/rangex/pkg/db/models/league"
	"github.com/openrange/rangex/pkg/redis"
)

// RecordRun appends the run's bookkeeping row and publishes the completion
// event. The publish is best effort, a dead broker never fails the run.
func (c *Context) RecordRun(ctx context.Context, in types.RecordRunInput) error {
	row := &league.RecomputeLog{
		CompetitionID:       in.CompetitionID,
		RunAt:               time.Now().UTC(),
		Rebuild:             in.Rebuild,
		DurationMs:          in.DurationMs,
		EntriesProcessed:    in.Summary.EntriesProcessed,
		StagesWritten:       in.Summary.StagesWritten,
		MatchesWritten:      in.Summary.MatchesWritten,
		ValidMatches:        in.Summary.ValidMatches,
		SquadsWritten:       in.Summary.SquadsWritten,
		SquadsIncomplete:    in.Summary.SquadsIncomplete,
		SquadsSkipped:       in.Summary.SquadsSkipped,
		RankingsWritten:     in.Summary.RankingsWritten,
		InconsistentStrings: in.Summary.InconsistentStrings,
		Detail:              in.Detail,
	}

	if err := c.Store.InsertRecomputeLog(ctx, row); err != nil {
		return err
	}

	if c.RedisClient != nil {
		payload, err := json.Marshal(row)
		if err != nil {
			c.Logger.Warn("Failed to encode recompute event", zap.Error(err))
		} else {
			c.RedisClient.Publish(ctx, redis.RecomputeChannel, payload)
		}
	}

	c.Logger.Info("Recompute run recorded",
		zap.Uint64("competition_id", in.CompetitionID),
		zap.Bool("rebuild", in.Rebuild),
		zap.Float64("duration_ms", in.DurationMs))

	return nil
}
