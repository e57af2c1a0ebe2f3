package league

const EntriesTableName = "entries"

// EntryColumns defines the schema for the entries dimension table.
var EntryColumns = []ColumnDef{
	{Name: "entry_id", Type: "UInt64", Codec: "Delta, ZSTD(3)"},
	{Name: "competition_id", Type: "UInt64", Codec: "Delta, ZSTD(3)"},
	{Name: "athlete_id", Type: "UInt64", Codec: "Delta, ZSTD(3)"},
	{Name: "team_id", Type: "UInt64", Codec: "Delta, ZSTD(3)"},
	{Name: "discipline_id", Type: "UInt64"},
	{Name: "division", Type: "LowCardinality(String)"},
	{Name: "class", Type: "LowCardinality(String)"},
	{Name: "gender", Type: "LowCardinality(String)"},
	{Name: "dnf", Type: "Bool"},
	{Name: "dq", Type: "Bool"},
}

// Entry is the resolved dimension row for one athlete's participation in one
// competition-discipline. DNF/DQ flags originate from the entry-level source
// data and pass through the engine untouched.
type Entry struct {
	EntryID       uint64 `ch:"entry_id" json:"entry_id"`
	CompetitionID uint64 `ch:"competition_id" json:"competition_id"`
	AthleteID     uint64 `ch:"athlete_id" json:"athlete_id"`
	TeamID        uint64 `ch:"team_id" json:"team_id"`
	DisciplineID  uint64 `ch:"discipline_id" json:"discipline_id"`
	Division      string `ch:"division" json:"division"`
	Class         string `ch:"class" json:"class"`
	Gender        string `ch:"gender" json:"gender"`
	DNF           bool   `ch:"dnf" json:"dnf"`
	DQ            bool   `ch:"dq" json:"dq"`
}
