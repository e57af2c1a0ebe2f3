package league

import "time"

const SquadPerformanceTableName = "squad_performance"

// SquadPerformanceColumns defines the schema for the squad_performance table.
// Keyed by (competition_id, team_id, discipline_id). Member slots are stored
// as parallel arrays ordered by member final total.
var SquadPerformanceColumns = []ColumnDef{
	{Name: "competition_id", Type: "UInt64", Codec: "Delta, ZSTD(3)"},
	{Name: "team_id", Type: "UInt64", Codec: "Delta, ZSTD(3)"},
	{Name: "discipline_id", Type: "UInt64"},
	{Name: "squad_division", Type: "LowCardinality(String)"},
	{Name: "is_mixed_division", Type: "Bool"},
	{Name: "ghost_count", Type: "UInt8"},
	{Name: "member_entry_ids", Type: "Array(UInt64)"},
	{Name: "member_athlete_ids", Type: "Array(UInt64)"},
	{Name: "member_is_ghost", Type: "Array(Bool)"},
	{Name: "member_totals", Type: "Array(Float64)"},
	{Name: "members_count", Type: "UInt8"},
	{Name: "squad_total", Type: "Float64"},
	{Name: "is_complete_squad", Type: "Bool"},
	{Name: "updated_at", Type: "DateTime64(6)", Codec: "DoubleDelta, LZ4"},
}

// SquadMember is one resolved squad slot: a real athlete's match result or a
// ghost placeholder carrying the configured default time.
type SquadMember struct {
	EntryID    uint64  `json:"entry_id"`
	AthleteID  uint64  `json:"athlete_id"`
	IsGhost    bool    `json:"is_ghost"`
	FinalTotal float64 `json:"final_total"`
}

// SquadPerformance is one team's combined result for one discipline in one
// competition. Incomplete squads keep their real members recorded but are
// excluded from squad rankings.
type SquadPerformance struct {
	CompetitionID   uint64        `ch:"competition_id" json:"competition_id"`
	TeamID          uint64        `ch:"team_id" json:"team_id"`
	DisciplineID    uint64        `ch:"discipline_id" json:"discipline_id"`
	SquadDivision   string        `ch:"squad_division" json:"squad_division"`
	IsMixedDivision bool          `ch:"is_mixed_division" json:"is_mixed_division"`
	GhostCount      uint8         `ch:"ghost_count" json:"ghost_count"`
	Members         []SquadMember `json:"members"`
	MembersCount    uint8         `ch:"members_count" json:"members_count"`
	SquadTotal      float64       `ch:"squad_total" json:"squad_total"`
	IsCompleteSquad bool          `ch:"is_complete_squad" json:"is_complete_squad"`
	UpdatedAt       time.Time     `ch:"updated_at" json:"updated_at"`
}

// MemberArrays flattens the member slots into the parallel-array columns.
func (s *SquadPerformance) MemberArrays() (entryIDs, athleteIDs []uint64, ghosts []bool, totals []float64) {
	for _, m := range s.Members {
		entryIDs = append(entryIDs, m.EntryID)
		athleteIDs = append(athleteIDs, m.AthleteID)
		ghosts = append(ghosts, m.IsGhost)
		totals = append(totals, m.FinalTotal)
	}
	return entryIDs, athleteIDs, ghosts, totals
}

// SetMemberArrays rebuilds the member slots from the parallel-array columns.
func (s *SquadPerformance) SetMemberArrays(entryIDs, athleteIDs []uint64, ghosts []bool, totals []float64) {
	s.Members = s.Members[:0]
	for i := range totals {
		m := SquadMember{FinalTotal: totals[i]}
		if i < len(entryIDs) {
			m.EntryID = entryIDs[i]
		}
		if i < len(athleteIDs) {
			m.AthleteID = athleteIDs[i]
		}
		if i < len(ghosts) {
			m.IsGhost = ghosts[i]
		}
		s.Members = append(s.Members, m)
	}
}
