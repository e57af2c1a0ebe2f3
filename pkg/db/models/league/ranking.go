package league

import "time"

const RankingsTableName = "rankings"

// Ranking streams. Individual rankings subject athletes, squad rankings
// subject teams; the stream column keeps their keys from colliding.
const (
	StreamIndividual = "individual"
	StreamSquad      = "squad"
)

// Award levels for the top three ranks. Rows below third place carry an
// empty award level.
const (
	AwardFirstPlace  = "1st Place"
	AwardSecondPlace = "2nd Place"
	AwardThirdPlace  = "3rd Place"
)

// RankingColumns defines the schema for the rankings table.
// Keyed by (stream, category_key, subject_id) within a competition.
var RankingColumns = []ColumnDef{
	{Name: "competition_id", Type: "UInt64", Codec: "Delta, ZSTD(3)"},
	{Name: "stream", Type: "LowCardinality(String)"},
	{Name: "category_key", Type: "String", Codec: "ZSTD(1)"},
	{Name: "category_name", Type: "String", Codec: "ZSTD(1)"},
	{Name: "subject_id", Type: "UInt64", Codec: "Delta, ZSTD(3)"},
	{Name: "final_total", Type: "Float64"},
	{Name: "rank", Type: "UInt32"},
	{Name: "total_in_category", Type: "UInt32"},
	{Name: "percentile", Type: "Float64"},
	{Name: "award_level", Type: "LowCardinality(String)"},
	{Name: "is_winner", Type: "Bool"},
	{Name: "updated_at", Type: "DateTime64(6)", Codec: "DoubleDelta, LZ4"},
}

// RankingEntry is one subject's rank within one category. Ranks follow
// standard competition ranking: tied totals share a rank and the next
// distinct total skips by the tie-group size.
type RankingEntry struct {
	CompetitionID   uint64    `ch:"competition_id" json:"competition_id"`
	Stream          string    `ch:"stream" json:"stream"`
	CategoryKey     string    `ch:"category_key" json:"category_key"`
	CategoryName    string    `ch:"category_name" json:"category_name"`
	SubjectID       uint64    `ch:"subject_id" json:"subject_id"`
	FinalTotal      float64   `ch:"final_total" json:"final_total"`
	Rank            uint32    `ch:"rank" json:"rank"`
	TotalInCategory uint32    `ch:"total_in_category" json:"total_in_category"`
	Percentile      float64   `ch:"percentile" json:"percentile"`
	AwardLevel      string    `ch:"award_level" json:"award_level"`
	IsWinner        bool      `ch:"is_winner" json:"is_winner"`
	UpdatedAt       time.Time `ch:"updated_at" json:"updated_at"`
}
