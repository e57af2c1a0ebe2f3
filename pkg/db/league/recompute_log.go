package league

import (
	"context"
	"fmt"
	"strings"

	"github.com/openrange/rangex/pkg/db/clickhouse"
	"github.com/openrange/rangex/pkg/db/models/league"
)

// initRecomputeLog initializes the append-only recompute_log table.
func (db *DB) initRecomputeLog(ctx context.Context) error {
	schemaSQL := league.ColumnsToSchemaSQL(league.RecomputeLogColumns)

	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS "%s"."%s" (
			%s
		) ENGINE = MergeTree
		ORDER BY (competition_id, run_at)
	`, db.Name, league.RecomputeLogTableName, schemaSQL)

	return db.Exec(ctx, query)
}

// InsertRecomputeLog appends one run record.
func (db *DB) InsertRecomputeLog(ctx context.Context, row *league.RecomputeLog) error {
	if row == nil {
		return nil
	}

	query := fmt.Sprintf(`INSERT INTO "%s"."%s" (%s) VALUES`,
		db.Name, league.RecomputeLogTableName,
		strings.Join(league.ColumnsToNameList(league.RecomputeLogColumns), ", "))

	batch, err := db.PrepareBatch(ctx, query)
	if err != nil {
		return err
	}
	defer func() { _ = batch.Close() }()

	err = batch.Append(
		row.CompetitionID,
		row.RunAt,
		row.Rebuild,
		row.DurationMs,
		row.EntriesProcessed,
		row.StagesWritten,
		row.MatchesWritten,
		row.ValidMatches,
		row.SquadsWritten,
		row.SquadsIncomplete,
		row.SquadsSkipped,
		row.RankingsWritten,
		row.InconsistentStrings,
		row.Detail,
	)
	if err != nil {
		_ = batch.Abort()
		return err
	}

	return batch.Send()
}

// GetLastRecomputeLog retrieves the most recent run record for one
// competition, or nil when the competition has never been recomputed.
func (db *DB) GetLastRecomputeLog(ctx context.Context, competitionID uint64) (*league.RecomputeLog, error) {
	query := fmt.Sprintf(`
		SELECT *
		FROM "%s"."%s"
		WHERE competition_id = ?
		ORDER BY run_at DESC
		LIMIT 1
	`, db.Name, league.RecomputeLogTableName)

	var log league.RecomputeLog
	err := db.QueryRow(ctx, query, competitionID).ScanStruct(&log)
	if err != nil {
		if clickhouse.IsNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get last recompute log for competition %d: %w", competitionID, err)
	}

	return &log, nil
}
