package league

const RawStringsTableName = "raw_strings"

// RawStringColumns defines the schema for the raw_strings input table.
// The ingestion collaborator owns its contents; the engine only reads it,
// but creates the schema so a fresh database is usable end to end.
var RawStringColumns = []ColumnDef{
	{Name: "competition_id", Type: "UInt64", Codec: "Delta, ZSTD(3)"},
	{Name: "entry_id", Type: "UInt64", Codec: "Delta, ZSTD(3)"},
	{Name: "stage_no", Type: "UInt8"},
	{Name: "string_no", Type: "UInt8"},
	{Name: "raw_time", Type: "Float64"},
	{Name: "penalty", Type: "Float64"},
	{Name: "total_time", Type: "Float64"},
}

// StringRecord is one timed attempt for an entry within a stage. Immutable
// input. TotalTime is expected to equal RawTime + Penalty but the engine
// recomputes from components rather than trusting it.
type StringRecord struct {
	CompetitionID uint64  `ch:"competition_id" json:"competition_id"`
	EntryID       uint64  `ch:"entry_id" json:"entry_id"`
	StageNo       uint8   `ch:"stage_no" json:"stage_no"`
	StringNo      uint8   `ch:"string_no" json:"string_no"`
	RawTime       float64 `ch:"raw_time" json:"raw_time"`
	Penalty       float64 `ch:"penalty" json:"penalty"`
	TotalTime     float64 `ch:"total_time" json:"total_time"`
}
