package league

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"go.uber.org/zap"

	"github.com/openrange/rangex/pkg/db/clickhouse"
	"github.com/openrange/rangex/pkg/db/models/league"
)

// DefaultDBName is the default database name for the engine.
const DefaultDBName = "rangex_league"

// DB is the ClickHouse-backed league store. One database holds the input
// tables (raw_strings, entries, division_policy) and every derived table the
// recompute pipeline produces. It implements Store.
type DB struct {
	clickhouse.Client
	Name string
}

// New creates a league DB, connecting to ClickHouse and ensuring the
// database and all tables exist.
func New(ctx context.Context, logger *zap.Logger, dbName string) (*DB, error) {
	sanitizedName := clickhouse.SanitizeName(dbName)

	client, err := clickhouse.New(ctx, logger.With(zap.String("db", sanitizedName)), sanitizedName)
	if err != nil {
		return nil, err
	}

	db := &DB{
		Client: client,
		Name:   sanitizedName,
	}

	if err := db.InitializeDB(ctx); err != nil {
		return nil, err
	}

	return db, nil
}

// Close terminates the underlying ClickHouse connection.
func (db *DB) Close() error {
	return db.Db.Close()
}

// GetConnection returns the underlying ClickHouse driver connection.
func (db *DB) GetConnection() driver.Conn {
	return db.Db
}

// DatabaseName returns the ClickHouse database backing this store.
func (db *DB) DatabaseName() string {
	return db.Name
}

// InitializeDB creates all tables if they do not already exist. Table
// creation runs in parallel, one goroutine per table.
func (db *DB) InitializeDB(ctx context.Context) error {
	initStart := time.Now()

	db.Logger.Info("Creating all league tables in parallel",
		zap.String("database", db.Name))

	initOps := []struct {
		name string
		fn   func(context.Context) error
	}{
		{league.RawStringsTableName, db.initRawStrings},
		{league.EntriesTableName, db.initEntries},
		{league.DivisionPolicyTableName, db.initDivisionPolicy},
		{league.StagePerformanceTableName, db.initStagePerformance},
		{league.MatchPerformanceTableName, db.initMatchPerformance},
		{league.SquadPerformanceTableName, db.initSquadPerformance},
		{league.RankingsTableName, db.initRankings},
		{league.RecomputeLogTableName, db.initRecomputeLog},
	}

	var wg sync.WaitGroup
	errChan := make(chan error, len(initOps))

	for _, op := range initOps {
		wg.Add(1)
		go func(name string, fn func(context.Context) error) {
			defer wg.Done()
			if err := fn(ctx); err != nil {
				errChan <- fmt.Errorf("init %s: %w", name, err)
			}
		}(op.name, op.fn)
	}

	wg.Wait()
	close(errChan)

	for err := range errChan {
		return err
	}

	db.Logger.Info("League database initialization complete",
		zap.String("database", db.Name),
		zap.Duration("total_duration", time.Since(initStart)))

	return nil
}

// derivedTables lists every table the pipeline writes, in rebuild order.
var derivedTables = []string{
	league.StagePerformanceTableName,
	league.MatchPerformanceTableName,
	league.SquadPerformanceTableName,
	league.RankingsTableName,
}

// DeleteDerivedRows removes every derived row for one competition. Used by
// rebuild runs so stale keys from deleted source rows do not survive a
// recompute. The recompute_log table is append-only history and is not
// touched.
func (db *DB) DeleteDerivedRows(ctx context.Context, competitionID uint64) error {
	db.Logger.Warn("Deleting derived rows for competition",
		zap.String("database", db.Name),
		zap.Uint64("competition_id", competitionID))

	startTime := time.Now()

	var wg sync.WaitGroup
	errChan := make(chan error, len(derivedTables))

	for _, tableName := range derivedTables {
		wg.Add(1)
		go func(table string) {
			defer wg.Done()

			query := fmt.Sprintf(
				`DELETE FROM "%s"."%s" WHERE competition_id = ?`,
				db.Name, table,
			)
			if err := db.Exec(ctx, query, competitionID); err != nil {
				errChan <- fmt.Errorf("delete competition %d rows from %s: %w", competitionID, table, err)
			}
		}(tableName)
	}

	wg.Wait()
	close(errChan)

	var errs []error
	for err := range errChan {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("failed to delete derived rows for competition %d: %d errors, first: %w",
			competitionID, len(errs), errs[0])
	}

	db.Logger.Info("Deleted derived rows for competition",
		zap.String("database", db.Name),
		zap.Uint64("competition_id", competitionID),
		zap.Int("tables", len(derivedTables)),
		zap.Duration("duration", time.Since(startTime)))

	return nil
}
