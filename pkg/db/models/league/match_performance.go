package league

import "time"

const MatchPerformanceTableName = "match_performance"

// MatchPerformanceColumns defines the schema for the match_performance table.
// Keyed by entry_id: one row per athlete per competition-discipline.
var MatchPerformanceColumns = []ColumnDef{
	{Name: "entry_id", Type: "UInt64", Codec: "Delta, ZSTD(3)"},
	{Name: "competition_id", Type: "UInt64", Codec: "Delta, ZSTD(3)"},
	{Name: "athlete_id", Type: "UInt64", Codec: "Delta, ZSTD(3)"},
	{Name: "team_id", Type: "UInt64", Codec: "Delta, ZSTD(3)"},
	{Name: "discipline_id", Type: "UInt64"},
	{Name: "division", Type: "LowCardinality(String)"},
	{Name: "class", Type: "LowCardinality(String)"},
	{Name: "gender", Type: "LowCardinality(String)"},
	{Name: "raw_total", Type: "Float64"},
	{Name: "penalty_total", Type: "Float64"},
	{Name: "final_total", Type: "Float64"},
	{Name: "stages_completed", Type: "UInt8"},
	{Name: "is_complete_match", Type: "Bool"},
	{Name: "is_valid_match", Type: "Bool"},
	{Name: "updated_at", Type: "DateTime64(6)", Codec: "DoubleDelta, LZ4"},
}

// MatchPerformance is one entry's full four-stage result. Partial totals are
// recorded when stages are missing but only IsValidMatch rows participate in
// rankings and squad composition.
type MatchPerformance struct {
	EntryID         uint64    `ch:"entry_id" json:"entry_id"`
	CompetitionID   uint64    `ch:"competition_id" json:"competition_id"`
	AthleteID       uint64    `ch:"athlete_id" json:"athlete_id"`
	TeamID          uint64    `ch:"team_id" json:"team_id"`
	DisciplineID    uint64    `ch:"discipline_id" json:"discipline_id"`
	Division        string    `ch:"division" json:"division"`
	Class           string    `ch:"class" json:"class"`
	Gender          string    `ch:"gender" json:"gender"`
	RawTotal        float64   `ch:"raw_total" json:"raw_total"`
	PenaltyTotal    float64   `ch:"penalty_total" json:"penalty_total"`
	FinalTotal      float64   `ch:"final_total" json:"final_total"`
	StagesCompleted uint8     `ch:"stages_completed" json:"stages_completed"`
	IsCompleteMatch bool      `ch:"is_complete_match" json:"is_complete_match"`
	IsValidMatch    bool      `ch:"is_valid_match" json:"is_valid_match"`
	UpdatedAt       time.Time `ch:"updated_at" json:"updated_at"`
}
