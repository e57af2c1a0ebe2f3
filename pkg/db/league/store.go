package league

import (
	"context"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/openrange/rangex/pkg/db/models/league"
)

// Store describes the league database operations required by the recompute
// activities. All derived tables carry overwrite-by-key semantics, so the
// insert methods are safe to re-run for the same competition.
type Store interface {
	DatabaseName() string
	GetConnection() driver.Conn
	Close() error

	// --- Init

	InitializeDB(ctx context.Context) error

	// --- Input reads

	ListCompetitions(ctx context.Context) ([]uint64, error)
	ListEntries(ctx context.Context, competitionID uint64) ([]*league.Entry, error)
	ListStringRecords(ctx context.Context, competitionID uint64) ([]*league.StringRecord, error)
	ListDivisionPolicies(ctx context.Context) ([]*league.DivisionPolicy, error)

	// --- Derived writes (one batch per call)

	InsertStagePerformances(ctx context.Context, rows []*league.StagePerformance) error
	InsertMatchPerformances(ctx context.Context, rows []*league.MatchPerformance) error
	InsertSquadPerformances(ctx context.Context, rows []*league.SquadPerformance) error
	InsertRankings(ctx context.Context, rows []*league.RankingEntry) error
	InsertRecomputeLog(ctx context.Context, row *league.RecomputeLog) error

	// --- Derived reads (FINAL, latest version per key)

	ListStagePerformances(ctx context.Context, competitionID uint64) ([]*league.StagePerformance, error)
	ListMatchPerformances(ctx context.Context, competitionID uint64) ([]*league.MatchPerformance, error)
	ListSquadPerformances(ctx context.Context, competitionID uint64) ([]*league.SquadPerformance, error)
	ListRankings(ctx context.Context, competitionID uint64, stream string) ([]*league.RankingEntry, error)
	GetLastRecomputeLog(ctx context.Context, competitionID uint64) (*league.RecomputeLog, error)

	// --- Rebuild

	DeleteDerivedRows(ctx context.Context, competitionID uint64) error
}
