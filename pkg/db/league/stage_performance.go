package league

import (
	"context"
	"fmt"
	"strings"

	"github.com/openrange/rangex/pkg/db/clickhouse"
	"github.com/openrange/rangex/pkg/db/models/league"
)

// initStagePerformance initializes the stage_performance table. Keyed by
// (entry_id, stage_no) so recomputes overwrite rather than accumulate.
func (db *DB) initStagePerformance(ctx context.Context) error {
	schemaSQL := league.ColumnsToSchemaSQL(league.StagePerformanceColumns)

	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS "%s"."%s" (
			%s
		) ENGINE = %s
		ORDER BY (competition_id, entry_id, stage_no)
	`, db.Name, league.StagePerformanceTableName, schemaSQL, clickhouse.Engine(clickhouse.ReplacingMergeTree, "updated_at"))

	return db.Exec(ctx, query)
}

// InsertStagePerformances persists stage rows in a single batch.
func (db *DB) InsertStagePerformances(ctx context.Context, rows []*league.StagePerformance) error {
	if len(rows) == 0 {
		return nil
	}

	query := fmt.Sprintf(`INSERT INTO "%s"."%s" (%s) VALUES`,
		db.Name, league.StagePerformanceTableName,
		strings.Join(league.ColumnsToNameList(league.StagePerformanceColumns), ", "))

	batch, err := db.PrepareBatch(ctx, query)
	if err != nil {
		return err
	}
	defer func() { _ = batch.Close() }()

	for _, r := range rows {
		err = batch.Append(
			r.CompetitionID,
			r.EntryID,
			r.StageNo,
			r.KeptTimes,
			r.DroppedTime,
			r.DroppedStringNo,
			r.RawTotal,
			r.PenaltyTotal,
			r.FinalTotal,
			r.StringsKept,
			r.IsComplete,
			r.UpdatedAt,
		)
		if err != nil {
			_ = batch.Abort()
			return err
		}
	}

	return batch.Send()
}

// ListStagePerformances retrieves every stage row for one competition,
// latest version per key.
func (db *DB) ListStagePerformances(ctx context.Context, competitionID uint64) ([]*league.StagePerformance, error) {
	query := fmt.Sprintf(`
		SELECT *
		FROM "%s"."%s" FINAL
		WHERE competition_id = ?
		ORDER BY entry_id ASC, stage_no ASC
	`, db.Name, league.StagePerformanceTableName)

	rows, err := db.Query(ctx, query, competitionID)
	if err != nil {
		return nil, fmt.Errorf("list stage performances for competition %d: %w", competitionID, err)
	}
	defer func() { _ = rows.Close() }()

	var result []*league.StagePerformance
	for rows.Next() {
		var sp league.StagePerformance
		if err := rows.ScanStruct(&sp); err != nil {
			return nil, err
		}
		result = append(result, &sp)
	}

	return result, rows.Err()
}
