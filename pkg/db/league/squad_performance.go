package league

import (
	"context"
	"fmt"
	"strings"

	"github.com/openrange/rangex/pkg/db/clickhouse"
	"github.com/openrange/rangex/pkg/db/models/league"
)

// initSquadPerformance initializes the squad_performance table. Keyed by
// (competition_id, team_id, discipline_id); member slots live in parallel
// array columns.
func (db *DB) initSquadPerformance(ctx context.Context) error {
	schemaSQL := league.ColumnsToSchemaSQL(league.SquadPerformanceColumns)

	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS "%s"."%s" (
			%s
		) ENGINE = %s
		ORDER BY (competition_id, team_id, discipline_id)
	`, db.Name, league.SquadPerformanceTableName, schemaSQL, clickhouse.Engine(clickhouse.ReplacingMergeTree, "updated_at"))

	return db.Exec(ctx, query)
}

// InsertSquadPerformances persists squad rows in a single batch, flattening
// member slots into the parallel-array columns.
func (db *DB) InsertSquadPerformances(ctx context.Context, rows []*league.SquadPerformance) error {
	if len(rows) == 0 {
		return nil
	}

	query := fmt.Sprintf(`INSERT INTO "%s"."%s" (%s) VALUES`,
		db.Name, league.SquadPerformanceTableName,
		strings.Join(league.ColumnsToNameList(league.SquadPerformanceColumns), ", "))

	batch, err := db.PrepareBatch(ctx, query)
	if err != nil {
		return err
	}
	defer func() { _ = batch.Close() }()

	for _, r := range rows {
		entryIDs, athleteIDs, ghosts, totals := r.MemberArrays()
		err = batch.Append(
			r.CompetitionID,
			r.TeamID,
			r.DisciplineID,
			r.SquadDivision,
			r.IsMixedDivision,
			r.GhostCount,
			entryIDs,
			athleteIDs,
			ghosts,
			totals,
			r.MembersCount,
			r.SquadTotal,
			r.IsCompleteSquad,
			r.UpdatedAt,
		)
		if err != nil {
			_ = batch.Abort()
			return err
		}
	}

	return batch.Send()
}

// ListSquadPerformances retrieves every squad row for one competition,
// latest version per key, rebuilding member slots from the array columns.
func (db *DB) ListSquadPerformances(ctx context.Context, competitionID uint64) ([]*league.SquadPerformance, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM "%s"."%s" FINAL
		WHERE competition_id = ?
		ORDER BY team_id ASC, discipline_id ASC
	`, strings.Join(league.ColumnsToNameList(league.SquadPerformanceColumns), ", "),
		db.Name, league.SquadPerformanceTableName)

	rows, err := db.Query(ctx, query, competitionID)
	if err != nil {
		return nil, fmt.Errorf("list squad performances for competition %d: %w", competitionID, err)
	}
	defer func() { _ = rows.Close() }()

	var result []*league.SquadPerformance
	for rows.Next() {
		var (
			sp         league.SquadPerformance
			entryIDs   []uint64
			athleteIDs []uint64
			ghosts     []bool
			totals     []float64
		)
		err := rows.Scan(
			&sp.CompetitionID,
			&sp.TeamID,
			&sp.DisciplineID,
			&sp.SquadDivision,
			&sp.IsMixedDivision,
			&sp.GhostCount,
			&entryIDs,
			&athleteIDs,
			&ghosts,
			&totals,
			&sp.MembersCount,
			&sp.SquadTotal,
			&sp.IsCompleteSquad,
			&sp.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		sp.SetMemberArrays(entryIDs, athleteIDs, ghosts, totals)
		result = append(result, &sp)
	}

	return result, rows.Err()
}
