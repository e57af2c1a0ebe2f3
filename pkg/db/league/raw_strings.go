package league

import (
	"context"
	"fmt"

	"github.com/openrange/rangex/pkg/db/models/league"
)

// initRawStrings initializes the raw_strings input table. The ingestion
// collaborator owns its contents; the engine creates the schema so a fresh
// database is usable end to end.
func (db *DB) initRawStrings(ctx context.Context) error {
	schemaSQL := league.ColumnsToSchemaSQL(league.RawStringColumns)

	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS "%s"."%s" (
			%s
		) ENGINE = MergeTree
		ORDER BY (competition_id, entry_id, stage_no, string_no)
	`, db.Name, league.RawStringsTableName, schemaSQL)

	return db.Exec(ctx, query)
}

// ListStringRecords retrieves every string row for one competition, ordered
// by (entry_id, stage_no, string_no). The string_no ordering is what makes
// boundary ties deterministic across runs.
func (db *DB) ListStringRecords(ctx context.Context, competitionID uint64) ([]*league.StringRecord, error) {
	query := fmt.Sprintf(`
		SELECT *
		FROM "%s"."%s"
		WHERE competition_id = ?
		ORDER BY entry_id ASC, stage_no ASC, string_no ASC
	`, db.Name, league.RawStringsTableName)

	rows, err := db.Query(ctx, query, competitionID)
	if err != nil {
		return nil, fmt.Errorf("list string records for competition %d: %w", competitionID, err)
	}
	defer func() { _ = rows.Close() }()

	var records []*league.StringRecord
	for rows.Next() {
		var r league.StringRecord
		if err := rows.ScanStruct(&r); err != nil {
			return nil, err
		}
		records = append(records, &r)
	}

	return records, rows.Err()
}
