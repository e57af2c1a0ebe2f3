package league

import (
	"context"
	"fmt"
	"strings"

	"github.com/openrange/rangex/pkg/db/clickhouse"
	"github.com/openrange/rangex/pkg/db/models/league"
)

// initMatchPerformance initializes the match_performance table. Keyed by
// entry_id, one row per athlete per competition-discipline.
func (db *DB) initMatchPerformance(ctx context.Context) error {
	schemaSQL := league.ColumnsToSchemaSQL(league.MatchPerformanceColumns)

	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS "%s"."%s" (
			%s
		) ENGINE = %s
		ORDER BY (competition_id, entry_id)
	`, db.Name, league.MatchPerformanceTableName, schemaSQL, clickhouse.Engine(clickhouse.ReplacingMergeTree, "updated_at"))

	return db.Exec(ctx, query)
}

// InsertMatchPerformances persists match rows in a single batch.
func (db *DB) InsertMatchPerformances(ctx context.Context, rows []*league.MatchPerformance) error {
	if len(rows) == 0 {
		return nil
	}

	query := fmt.Sprintf(`INSERT INTO "%s"."%s" (%s) VALUES`,
		db.Name, league.MatchPerformanceTableName,
		strings.Join(league.ColumnsToNameList(league.MatchPerformanceColumns), ", "))

	batch, err := db.PrepareBatch(ctx, query)
	if err != nil {
		return err
	}
	defer func() { _ = batch.Close() }()

	for _, r := range rows {
		err = batch.Append(
			r.EntryID,
			r.CompetitionID,
			r.AthleteID,
			r.TeamID,
			r.DisciplineID,
			r.Division,
			r.Class,
			r.Gender,
			r.RawTotal,
			r.PenaltyTotal,
			r.FinalTotal,
			r.StagesCompleted,
			r.IsCompleteMatch,
			r.IsValidMatch,
			r.UpdatedAt,
		)
		if err != nil {
			_ = batch.Abort()
			return err
		}
	}

	return batch.Send()
}

// ListMatchPerformances retrieves every match row for one competition,
// latest version per key. Callers filter on IsValidMatch themselves: squad
// composition needs invalid rows too to distinguish absent from invalid
// members.
func (db *DB) ListMatchPerformances(ctx context.Context, competitionID uint64) ([]*league.MatchPerformance, error) {
	query := fmt.Sprintf(`
		SELECT *
		FROM "%s"."%s" FINAL
		WHERE competition_id = ?
		ORDER BY entry_id ASC
	`, db.Name, league.MatchPerformanceTableName)

	rows, err := db.Query(ctx, query, competitionID)
	if err != nil {
		return nil, fmt.Errorf("list match performances for competition %d: %w", competitionID, err)
	}
	defer func() { _ = rows.Close() }()

	var result []*league.MatchPerformance
	for rows.Next() {
		var mp league.MatchPerformance
		if err := rows.ScanStruct(&mp); err != nil {
			return nil, err
		}
		result = append(result, &mp)
	}

	return result, rows.Err()
}
