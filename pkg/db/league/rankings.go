package league

import (
	"context"
	"fmt"
	"strings"

	"github.com/openrange/rangex/pkg/db/clickhouse"
	"github.com/openrange/rangex/pkg/db/models/league"
)

// initRankings initializes the rankings table. Keyed by
// (stream, category_key, subject_id) within a competition.
func (db *DB) initRankings(ctx context.Context) error {
	schemaSQL := league.ColumnsToSchemaSQL(league.RankingColumns)

	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS "%s"."%s" (
			%s
		) ENGINE = %s
		ORDER BY (competition_id, stream, category_key, subject_id)
	`, db.Name, league.RankingsTableName, schemaSQL, clickhouse.Engine(clickhouse.ReplacingMergeTree, "updated_at"))

	return db.Exec(ctx, query)
}

// InsertRankings persists ranking rows in a single batch.
func (db *DB) InsertRankings(ctx context.Context, rows []*league.RankingEntry) error {
	if len(rows) == 0 {
		return nil
	}

	query := fmt.Sprintf(`INSERT INTO "%s"."%s" (%s) VALUES`,
		db.Name, league.RankingsTableName,
		strings.Join(league.ColumnsToNameList(league.RankingColumns), ", "))

	batch, err := db.PrepareBatch(ctx, query)
	if err != nil {
		return err
	}
	defer func() { _ = batch.Close() }()

	for _, r := range rows {
		err = batch.Append(
			r.CompetitionID,
			r.Stream,
			r.CategoryKey,
			r.CategoryName,
			r.SubjectID,
			r.FinalTotal,
			r.Rank,
			r.TotalInCategory,
			r.Percentile,
			r.AwardLevel,
			r.IsWinner,
			r.UpdatedAt,
		)
		if err != nil {
			_ = batch.Abort()
			return err
		}
	}

	return batch.Send()
}

// ListRankings retrieves one competition's ranking rows, optionally filtered
// to a single stream. Pass an empty stream for both.
func (db *DB) ListRankings(ctx context.Context, competitionID uint64, stream string) ([]*league.RankingEntry, error) {
	query := fmt.Sprintf(`
		SELECT *
		FROM "%s"."%s" FINAL
		WHERE competition_id = ?
	`, db.Name, league.RankingsTableName)

	args := []interface{}{competitionID}
	if stream != "" {
		query += " AND stream = ?"
		args = append(args, stream)
	}
	query += " ORDER BY stream ASC, category_key ASC, rank ASC, subject_id ASC"

	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list rankings for competition %d: %w", competitionID, err)
	}
	defer func() { _ = rows.Close() }()

	var result []*league.RankingEntry
	for rows.Next() {
		var re league.RankingEntry
		if err := rows.ScanStruct(&re); err != nil {
			return nil, err
		}
		result = append(result, &re)
	}

	return result, rows.Err()
}
