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

// squadKey identifies one (team, discipline) squad within a competition.
type squadKey struct {
	TeamID       uint64
	DisciplineID uint64
}

// ComposeSquads builds every squad row for the competition from the match
// rows. Entries without a team are individual-only and never form squads. A
// squad whose division has no policy entry is skipped with a diagnostic and
// the run continues; that is configuration, not data, and fixing it only
// needs a re-run.
func (c *Context) ComposeSquads(ctx context.Context, in types.RecomputeInput) (types.ComposeSquadsOutput, error) {
	start := time.Now()

	matches, err := c.Store.ListMatchPerformances(ctx, in.CompetitionID)
	if err != nil {
		return types.ComposeSquadsOutput{}, err
	}

	policyRows, err := c.Store.ListDivisionPolicies(ctx)
	if err != nil {
		return types.ComposeSquadsOutput{}, err
	}
	policyValues := make([]league.DivisionPolicy, 0, len(policyRows))
	for _, p := range policyRows {
		policyValues = append(policyValues, *p)
	}
	policies := scoring.PolicyTable(policyValues, c.Options)

	groups := make(map[squadKey][]league.MatchPerformance)
	keys := make([]squadKey, 0)
	for _, m := range matches {
		if m.TeamID == 0 {
			continue
		}
		k := squadKey{TeamID: m.TeamID, DisciplineID: m.DisciplineID}
		if _, ok := groups[k]; !ok {
			keys = append(keys, k)
		}
		groups[k] = append(groups[k], *m)
	}

	if len(keys) == 0 {
		return types.ComposeSquadsOutput{
			DurationMs: float64(time.Since(start).Microseconds()) / 1000.0,
		}, nil
	}

	results := xsync.NewMap[squadKey, *league.SquadPerformance]()
	var incomplete, skipped, mixed atomic.Int64
	now := time.Now().UTC()

	pool := c.computeBatchPool(len(keys))
	group := pool.NewGroupContext(ctx)
	groupCtx := group.Context()

	for _, k := range keys {
		key := k
		members := groups[k]
		group.Submit(func() {
			if err := groupCtx.Err(); err != nil {
				return
			}
			squad, composeErr := scoring.ComposeSquad(
				in.CompetitionID, key.TeamID, key.DisciplineID, members, policies, c.Options, now)
			if composeErr != nil {
				if errors.Is(composeErr, scoring.ErrUnknownDivision) {
					c.Logger.Warn("Skipping squad with unknown division",
						zap.Uint64("competition_id", in.CompetitionID),
						zap.Uint64("team_id", key.TeamID),
						zap.Uint64("discipline_id", key.DisciplineID),
						zap.String("division", squad.SquadDivision),
						zap.Error(composeErr))
					skipped.Add(1)
					return
				}
				c.Logger.Warn("Skipping uncomposable squad",
					zap.Uint64("competition_id", in.CompetitionID),
					zap.Uint64("team_id", key.TeamID),
					zap.Uint64("discipline_id", key.DisciplineID),
					zap.Error(composeErr))
				skipped.Add(1)
				return
			}
			results.Store(key, &squad)
			if !squad.IsCompleteSquad {
				incomplete.Add(1)
			}
			if squad.IsMixedDivision {
				mixed.Add(1)
			}
		})
	}

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, pond.ErrGroupStopped) {
		return types.ComposeSquadsOutput{}, fmt.Errorf("squad composition pool: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return types.ComposeSquadsOutput{}, err
	}

	rows := make([]*league.SquadPerformance, 0, len(keys))
	for _, k := range keys {
		if squad, ok := results.Load(k); ok {
			rows = append(rows, squad)
		}
	}

	if err := c.Store.InsertSquadPerformances(ctx, rows); err != nil {
		return types.ComposeSquadsOutput{}, err
	}

	durationMs := float64(time.Since(start).Microseconds()) / 1000.0
	c.Logger.Info("Squad composition complete",
		zap.Uint64("competition_id", in.CompetitionID),
		zap.Int("squads_written", len(rows)),
		zap.Int64("incomplete", incomplete.Load()),
		zap.Int64("skipped", skipped.Load()),
		zap.Int64("mixed_division", mixed.Load()),
		zap.Float64("duration_ms", durationMs))

	return types.ComposeSquadsOutput{
		SquadsWritten:    uint32(len(rows)),
		SquadsIncomplete: uint32(incomplete.Load()),
		SquadsSkipped:    uint32(skipped.Load()),
		MixedDivisions:   uint32(mixed.Load()),
		DurationMs:       durationMs,
	}, nil
}
