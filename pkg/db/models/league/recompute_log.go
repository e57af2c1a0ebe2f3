package league

import "time"

const RecomputeLogTableName = "recompute_log"

// RecomputeLogColumns defines the schema for the recompute_log table.
// Append-only: one row per completed run per competition.
var RecomputeLogColumns = []ColumnDef{
	{Name: "competition_id", Type: "UInt64", Codec: "Delta, ZSTD(3)"},
	{Name: "run_at", Type: "DateTime64(6)", Codec: "DoubleDelta, LZ4"},
	{Name: "rebuild", Type: "Bool"},
	{Name: "duration_ms", Type: "Float64"},
	{Name: "entries_processed", Type: "UInt32"},
	{Name: "stages_written", Type: "UInt32"},
	{Name: "matches_written", Type: "UInt32"},
	{Name: "valid_matches", Type: "UInt32"},
	{Name: "squads_written", Type: "UInt32"},
	{Name: "squads_incomplete", Type: "UInt32"},
	{Name: "squads_skipped", Type: "UInt32"},
	{Name: "rankings_written", Type: "UInt32"},
	{Name: "inconsistent_strings", Type: "UInt32"},
	{Name: "detail", Type: "String", Codec: "ZSTD(3)"},
}

// RecomputeLog records the outcome of one pipeline run: counters for every
// phase plus a JSON detail blob with per-phase timings and the skipped-entity
// diagnostics surfaced to the caller.
type RecomputeLog struct {
	CompetitionID       uint64    `ch:"competition_id" json:"competition_id"`
	RunAt               time.Time `ch:"run_at" json:"run_at"`
	Rebuild             bool      `ch:"rebuild" json:"rebuild"`
	DurationMs          float64   `ch:"duration_ms" json:"duration_ms"`
	EntriesProcessed    uint32    `ch:"entries_processed" json:"entries_processed"`
	StagesWritten       uint32    `ch:"stages_written" json:"stages_written"`
	MatchesWritten      uint32    `ch:"matches_written" json:"matches_written"`
	ValidMatches        uint32    `ch:"valid_matches" json:"valid_matches"`
	SquadsWritten       uint32    `ch:"squads_written" json:"squads_written"`
	SquadsIncomplete    uint32    `ch:"squads_incomplete" json:"squads_incomplete"`
	SquadsSkipped       uint32    `ch:"squads_skipped" json:"squads_skipped"`
	RankingsWritten     uint32    `ch:"rankings_written" json:"rankings_written"`
	InconsistentStrings uint32    `ch:"inconsistent_strings" json:"inconsistent_strings"`
	Detail              string    `ch:"detail" json:"detail"`
}
