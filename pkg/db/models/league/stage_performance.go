package league

import "time"

const StagePerformanceTableName = "stage_performance"

// StagePerformanceColumns defines the schema for the stage_performance table.
// Keyed by (entry_id, stage_no); ReplacingMergeTree(updated_at) gives
// overwrite-by-key semantics on recompute.
var StagePerformanceColumns = []ColumnDef{
	{Name: "competition_id", Type: "UInt64", Codec: "Delta, ZSTD(3)"},
	{Name: "entry_id", Type: "UInt64", Codec: "Delta, ZSTD(3)"},
	{Name: "stage_no", Type: "UInt8"},
	{Name: "kept_times", Type: "Array(Float64)"},
	{Name: "dropped_time", Type: "Nullable(Float64)"},
	{Name: "dropped_string_no", Type: "Nullable(UInt8)"},
	{Name: "raw_total", Type: "Float64"},
	{Name: "penalty_total", Type: "Float64"},
	{Name: "final_total", Type: "Float64"},
	{Name: "strings_kept", Type: "UInt8"},
	{Name: "is_complete", Type: "Bool"},
	{Name: "updated_at", Type: "DateTime64(6)", Codec: "DoubleDelta, LZ4"},
}

// StagePerformance is one entry's score for one stage after drop-slowest
// selection. KeptTimes holds the recomputed totals of the kept strings in
// ascending order; exactly KeepCount of them when IsComplete.
type StagePerformance struct {
	CompetitionID   uint64    `ch:"competition_id" json:"competition_id"`
	EntryID         uint64    `ch:"entry_id" json:"entry_id"`
	StageNo         uint8     `ch:"stage_no" json:"stage_no"`
	KeptTimes       []float64 `ch:"kept_times" json:"kept_times"`
	DroppedTime     *float64  `ch:"dropped_time" json:"dropped_time"`
	DroppedStringNo *uint8    `ch:"dropped_string_no" json:"dropped_string_no"`
	RawTotal        float64   `ch:"raw_total" json:"raw_total"`
	PenaltyTotal    float64   `ch:"penalty_total" json:"penalty_total"`
	FinalTotal      float64   `ch:"final_total" json:"final_total"`
	StringsKept     uint8     `ch:"strings_kept" json:"strings_kept"`
	IsComplete      bool      `ch:"is_complete" json:"is_complete"`
	UpdatedAt       time.Time `ch:"updated_at" json:"updated_at"`
}
