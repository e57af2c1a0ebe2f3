package workflow

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/testsuite"
	"go.uber.org/zap/zaptest"

	"github.com/openrange/rangex/app/engine/activity"
	"github.com/openrange/rangex/app/engine/types"
	"github.com/openrange/rangex/pkg/db/models/league"
	"github.com/openrange/rangex/pkg/scoring"
)

// wfFakeStore is an in-memory Store backing the workflow tests.
type wfFakeStore struct {
	mu sync.Mutex

	competitions []uint64
	entries      []*league.Entry
	strings      []*league.StringRecord
	policies     []*league.DivisionPolicy

	stagePerfs []*league.StagePerformance
	matchPerfs []*league.MatchPerformance
	squadPerfs []*league.SquadPerformance
	rankings   []*league.RankingEntry
	logs       []*league.RecomputeLog

	deleteCalls int
}

func (f *wfFakeStore) DatabaseName() string               { return "rangex_league_test" }
func (f *wfFakeStore) GetConnection() driver.Conn         { return nil }
func (f *wfFakeStore) Close() error                       { return nil }
func (f *wfFakeStore) InitializeDB(context.Context) error { return nil }

func (f *wfFakeStore) ListCompetitions(context.Context) ([]uint64, error) {
	return f.competitions, nil
}

func (f *wfFakeStore) ListEntries(_ context.Context, id uint64) ([]*league.Entry, error) {
	var out []*league.Entry
	for _, e := range f.entries {
		if e.CompetitionID == id {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *wfFakeStore) ListStringRecords(_ context.Context, id uint64) ([]*league.StringRecord, error) {
	var out []*league.StringRecord
	for _, r := range f.strings {
		if r.CompetitionID == id {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *wfFakeStore) ListDivisionPolicies(context.Context) ([]*league.DivisionPolicy, error) {
	return f.policies, nil
}

func (f *wfFakeStore) InsertStagePerformances(_ context.Context, rows []*league.StagePerformance) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stagePerfs = append(f.stagePerfs, rows...)
	return nil
}

func (f *wfFakeStore) InsertMatchPerformances(_ context.Context, rows []*league.MatchPerformance) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.matchPerfs = append(f.matchPerfs, rows...)
	return nil
}

func (f *wfFakeStore) InsertSquadPerformances(_ context.Context, rows []*league.SquadPerformance) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.squadPerfs = append(f.squadPerfs, rows...)
	return nil
}

func (f *wfFakeStore) InsertRankings(_ context.Context, rows []*league.RankingEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rankings = append(f.rankings, rows...)
	return nil
}

func (f *wfFakeStore) InsertRecomputeLog(_ context.Context, row *league.RecomputeLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logs = append(f.logs, row)
	return nil
}

func (f *wfFakeStore) ListStagePerformances(_ context.Context, id uint64) ([]*league.StagePerformance, error) {
	var out []*league.StagePerformance
	for _, r := range f.stagePerfs {
		if r.CompetitionID == id {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *wfFakeStore) ListMatchPerformances(_ context.Context, id uint64) ([]*league.MatchPerformance, error) {
	var out []*league.MatchPerformance
	for _, r := range f.matchPerfs {
		if r.CompetitionID == id {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *wfFakeStore) ListSquadPerformances(_ context.Context, id uint64) ([]*league.SquadPerformance, error) {
	var out []*league.SquadPerformance
	for _, r := range f.squadPerfs {
		if r.CompetitionID == id {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *wfFakeStore) ListRankings(_ context.Context, id uint64, stream string) ([]*league.RankingEntry, error) {
	var out []*league.RankingEntry
	for _, r := range f.rankings {
		if r.CompetitionID == id && (stream == "" || r.Stream == stream) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *wfFakeStore) GetLastRecomputeLog(_ context.Context, id uint64) (*league.RecomputeLog, error) {
	for i := len(f.logs) - 1; i >= 0; i-- {
		if f.logs[i].CompetitionID == id {
			return f.logs[i], nil
		}
	}
	return nil, nil
}

func (f *wfFakeStore) DeleteDerivedRows(_ context.Context, _ uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCalls++
	f.stagePerfs = nil
	f.matchPerfs = nil
	f.squadPerfs = nil
	f.rankings = nil
	return nil
}

// seedStore loads competition 7: a full team-5 squad of two Production
// shooters and one teamless athlete, every stage shot completely.
func seedStore() *wfFakeStore {
	store := &wfFakeStore{
		competitions: []uint64{7},
		entries: []*league.Entry{
			{EntryID: 101, CompetitionID: 7, AthleteID: 1, TeamID: 5, DisciplineID: 3, Division: "Production", Class: "A", Gender: "male"},
			{EntryID: 102, CompetitionID: 7, AthleteID: 2, TeamID: 5, DisciplineID: 3, Division: "Production", Class: "A", Gender: "male"},
			{EntryID: 103, CompetitionID: 7, AthleteID: 3, TeamID: 0, DisciplineID: 3, Division: "Production", Class: "B", Gender: "female"},
		},
		policies: []*league.DivisionPolicy{
			{Division: "Production"},
			{Division: "Rookie", AllowsGhostAthletes: true},
		},
	}
	base := map[uint64]float64{101: 10.0, 102: 12.0, 103: 9.0}
	for entryID, t0 := range base {
		for stageNo := uint8(1); stageNo <= 2; stageNo++ {
			for stringNo := uint8(1); stringNo <= 3; stringNo++ {
				store.strings = append(store.strings, &league.StringRecord{
					CompetitionID: 7, EntryID: entryID, StageNo: stageNo, StringNo: stringNo,
					RawTime:   t0 + float64(stringNo-1),
					TotalTime: t0 + float64(stringNo-1),
				})
			}
		}
	}
	return store
}

func testActivityContext(t *testing.T, store *wfFakeStore) *activity.Context {
	t.Helper()
	return &activity.Context{
		Logger: zaptest.NewLogger(t),
		Store:  store,
		Options: scoring.Options{
			StringsPerStage:        3,
			KeepCount:              2,
			StagesPerMatch:         2,
			SquadSize:              2,
			GhostDefaultTime:       100.0,
			MaxGhostsPerSquad:      1,
			GhostEligibleDivisions: []string{"Rookie"},
		},
	}
}

func TestRecomputeCompetitionWorkflowHappyPath(t *testing.T) {
	suite := testsuite.WorkflowTestSuite{}
	env := suite.NewTestWorkflowEnvironment()

	store := seedStore()
	activityCtx := testActivityContext(t, store)
	wfCtx := Context{ActivityContext: activityCtx}

	env.RegisterWorkflow(wfCtx.RecomputeCompetitionWorkflow)
	env.RegisterActivity(activityCtx.PrepareRecompute)
	env.RegisterActivity(activityCtx.ComputeStages)
	env.RegisterActivity(activityCtx.ComputeMatches)
	env.RegisterActivity(activityCtx.ComposeSquads)
	env.RegisterActivity(activityCtx.ComputeRankings)
	env.RegisterActivity(activityCtx.RecordRun)

	env.ExecuteWorkflow(wfCtx.RecomputeCompetitionWorkflow, types.RecomputeInput{CompetitionID: 7})

	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	require.Len(t, store.stagePerfs, 6)
	require.Len(t, store.matchPerfs, 3)
	require.Len(t, store.squadPerfs, 1)
	// 3 individual rows plus 1 squad row
	require.Len(t, store.rankings, 4)

	require.Len(t, store.logs, 1)
	logRow := store.logs[0]
	require.Equal(t, uint64(7), logRow.CompetitionID)
	require.False(t, logRow.Rebuild)
	require.Equal(t, uint32(3), logRow.EntriesProcessed)
	require.Equal(t, uint32(6), logRow.StagesWritten)
	require.Equal(t, uint32(3), logRow.MatchesWritten)
	require.Equal(t, uint32(3), logRow.ValidMatches)
	require.Equal(t, uint32(1), logRow.SquadsWritten)
	require.Equal(t, uint32(4), logRow.RankingsWritten)

	// Detail carries per-phase timings
	var timings map[string]float64
	require.NoError(t, json.Unmarshal([]byte(logRow.Detail), &timings))
	for _, phase := range []string{
		"prepare_ms", "compute_stages_ms", "compute_matches_ms",
		"compose_squads_ms", "rank_individual_ms", "rank_squad_ms",
	} {
		require.Contains(t, timings, phase)
	}
}

func TestRecomputeCompetitionWorkflowRebuild(t *testing.T) {
	suite := testsuite.WorkflowTestSuite{}
	env := suite.NewTestWorkflowEnvironment()

	store := seedStore()
	// Stale derived rows from a previous run that the rebuild must clear.
	store.stagePerfs = append(store.stagePerfs, &league.StagePerformance{CompetitionID: 7, EntryID: 999, StageNo: 9})
	activityCtx := testActivityContext(t, store)
	wfCtx := Context{ActivityContext: activityCtx}

	env.RegisterWorkflow(wfCtx.RecomputeCompetitionWorkflow)
	env.RegisterActivity(activityCtx.PrepareRecompute)
	env.RegisterActivity(activityCtx.ComputeStages)
	env.RegisterActivity(activityCtx.ComputeMatches)
	env.RegisterActivity(activityCtx.ComposeSquads)
	env.RegisterActivity(activityCtx.ComputeRankings)
	env.RegisterActivity(activityCtx.RecordRun)

	env.ExecuteWorkflow(wfCtx.RecomputeCompetitionWorkflow, types.RecomputeInput{CompetitionID: 7, Rebuild: true})

	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())
	require.Equal(t, 1, store.deleteCalls)
	require.Len(t, store.stagePerfs, 6, "stale rows must not survive a rebuild")
	require.True(t, store.logs[0].Rebuild)
}

func TestRecomputeAllWorkflowFansOut(t *testing.T) {
	suite := testsuite.WorkflowTestSuite{}
	env := suite.NewTestWorkflowEnvironment()

	store := seedStore()
	store.competitions = []uint64{3, 7}
	activityCtx := testActivityContext(t, store)
	wfCtx := Context{ActivityContext: activityCtx}

	env.RegisterWorkflow(wfCtx.RecomputeAllWorkflow)
	env.RegisterActivity(activityCtx.ListCompetitions)
	env.RegisterActivity(activityCtx.ScheduleRecomputes)

	// The fan-out talks to the Temporal server, so it is mocked here; the
	// scheduling behavior itself is covered by the activity tests.
	env.OnActivity(activityCtx.ScheduleRecomputes, mock.Anything, types.ScheduleRecomputesInput{
		CompetitionIDs: []uint64{3, 7},
		Rebuild:        true,
	}).Return(types.ScheduleRecomputesOutput{Scheduled: 2}, nil)

	env.ExecuteWorkflow(wfCtx.RecomputeAllWorkflow, types.RecomputeAllInput{Rebuild: true})

	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())
	env.AssertExpectations(t)
}

func TestRecomputeAllWorkflowEmptyLeague(t *testing.T) {
	suite := testsuite.WorkflowTestSuite{}
	env := suite.NewTestWorkflowEnvironment()

	store := &wfFakeStore{}
	activityCtx := testActivityContext(t, store)
	wfCtx := Context{ActivityContext: activityCtx}

	env.RegisterWorkflow(wfCtx.RecomputeAllWorkflow)
	env.RegisterActivity(activityCtx.ListCompetitions)
	env.RegisterActivity(activityCtx.ScheduleRecomputes)

	env.ExecuteWorkflow(wfCtx.RecomputeAllWorkflow, types.RecomputeAllInput{})

	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())
}
