package league

import (
	"context"
	"fmt"

	"github.com/openrange/rangex/pkg/db/clickhouse"
	"github.com/openrange/rangex/pkg/db/models/league"
)

// initDivisionPolicy initializes the division_policy table. Rows here
// override the engine's configured defaults for ghost eligibility.
func (db *DB) initDivisionPolicy(ctx context.Context) error {
	schemaSQL := league.ColumnsToSchemaSQL(league.DivisionPolicyColumns)

	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS "%s"."%s" (
			%s
		) ENGINE = %s
		ORDER BY (division)
	`, db.Name, league.DivisionPolicyTableName, schemaSQL, clickhouse.Engine(clickhouse.ReplacingMergeTree, ""))

	return db.Exec(ctx, query)
}

// ListDivisionPolicies retrieves every stored division policy row.
func (db *DB) ListDivisionPolicies(ctx context.Context) ([]*league.DivisionPolicy, error) {
	query := fmt.Sprintf(`
		SELECT *
		FROM "%s"."%s" FINAL
		ORDER BY division ASC
	`, db.Name, league.DivisionPolicyTableName)

	rows, err := db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list division policies: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var policies []*league.DivisionPolicy
	for rows.Next() {
		var p league.DivisionPolicy
		if err := rows.ScanStruct(&p); err != nil {
			return nil, err
		}
		policies = append(policies, &p)
	}

	return policies, rows.Err()
}
