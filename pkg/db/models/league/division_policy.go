package league

const DivisionPolicyTableName = "division_policy"

// OpenDivision is the canonical name a mixed-division squad reclassifies to.
const OpenDivision = "Open"

// DivisionPolicyColumns defines the schema for the division_policy table.
var DivisionPolicyColumns = []ColumnDef{
	{Name: "division", Type: "LowCardinality(String)"},
	{Name: "allows_ghost_athletes", Type: "Bool"},
	{Name: "is_open_division", Type: "Bool"},
}

// DivisionPolicy maps a canonical division name to its capability flags.
// New divisions are added here, not as code branches.
type DivisionPolicy struct {
	Division            string `ch:"division" json:"division"`
	AllowsGhostAthletes bool   `ch:"allows_ghost_athletes" json:"allows_ghost_athletes"`
	IsOpenDivision      bool   `ch:"is_open_division" json:"is_open_division"`
}
