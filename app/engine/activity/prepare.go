package activity

import (
	"context"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.uber.org/zap"

	"github.com/openrange/rangex/app/engine/types"
)

// PrepareRecompute readies one competition's run: on rebuild it deletes every
// derived row for the competition first, then sizes the worklist. A
// competition with zero entries is not an error, the run simply writes
// nothing.
func (c *Context) PrepareRecompute(ctx context.Context, in types.RecomputeInput) (types.PrepareOutput, error) {
	start := time.Now()

	if in.Rebuild {
		if err := c.Store.DeleteDerivedRows(ctx, in.CompetitionID); err != nil {
			return types.PrepareOutput{}, temporal.NewApplicationErrorWithCause(
				"unable to delete derived rows for rebuild", "rebuild_delete_error", err)
		}
	}

	entries, err := c.Store.ListEntries(ctx, in.CompetitionID)
	if err != nil {
		return types.PrepareOutput{}, err
	}

	c.Logger.Info("Prepared recompute",
		zap.Uint64("competition_id", in.CompetitionID),
		zap.Bool("rebuild", in.Rebuild),
		zap.Int("entries", len(entries)))

	durationMs := float64(time.Since(start).Microseconds()) / 1000.0
	return types.PrepareOutput{
		EntryCount: uint32(len(entries)),
		DurationMs: durationMs,
	}, nil
}
