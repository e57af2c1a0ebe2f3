package league

import (
	"context"
	"fmt"

	"github.com/openrange/rangex/pkg/db/clickhouse"
	"github.com/openrange/rangex/pkg/db/models/league"
)

// initEntries initializes the entries dimension table. Ingestion upserts
// rows here; ReplacingMergeTree keyed on entry_id keeps the latest version.
func (db *DB) initEntries(ctx context.Context) error {
	schemaSQL := league.ColumnsToSchemaSQL(league.EntryColumns)

	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS "%s"."%s" (
			%s
		) ENGINE = %s
		ORDER BY (entry_id)
	`, db.Name, league.EntriesTableName, schemaSQL, clickhouse.Engine(clickhouse.ReplacingMergeTree, ""))

	return db.Exec(ctx, query)
}

// ListCompetitions returns the distinct competition ids present in the
// entries table, ascending. Used by the recompute-all worklist.
func (db *DB) ListCompetitions(ctx context.Context) ([]uint64, error) {
	query := fmt.Sprintf(`
		SELECT DISTINCT competition_id
		FROM "%s"."%s" FINAL
		ORDER BY competition_id ASC
	`, db.Name, league.EntriesTableName)

	rows, err := db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list competitions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var ids []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// ListEntries retrieves every entry registered in one competition.
func (db *DB) ListEntries(ctx context.Context, competitionID uint64) ([]*league.Entry, error) {
	query := fmt.Sprintf(`
		SELECT *
		FROM "%s"."%s" FINAL
		WHERE competition_id = ?
		ORDER BY entry_id ASC
	`, db.Name, league.EntriesTableName)

	rows, err := db.Query(ctx, query, competitionID)
	if err != nil {
		return nil, fmt.Errorf("list entries for competition %d: %w", competitionID, err)
	}
	defer func() { _ = rows.Close() }()

	var entries []*league.Entry
	for rows.Next() {
		var e league.Entry
		if err := rows.ScanStruct(&e); err != nil {
			return nil, err
		}
		entries = append(entries, &e)
	}

	return entries, rows.Err()
}
