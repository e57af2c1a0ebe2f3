package scoring

import (
	"fmt"
	"strings"

	"github.com/openrange/rangex/pkg/db/models/league"
)

// classification picks the individual category's first component: the
// athlete's class when present, else division, else Open. Mirrors how the
// league falls back when classification data is sparse.
func classification(m league.MatchPerformance) string {
	if m.Class != "" {
		return m.Class
	}
	if m.Division != "" {
		return m.Division
	}
	return league.OpenDivision
}

// IndividualCategory derives the grouping key and display name for the
// individual ranking stream: class (or division) + gender + discipline.
func IndividualCategory(m league.MatchPerformance) (key, name string) {
	cls := classification(m)
	gender := strings.ToLower(strings.TrimSpace(m.Gender))
	if gender == "" {
		gender = "unspecified"
	}
	key = fmt.Sprintf("%s|%s|%d", cls, gender, m.DisciplineID)
	name = fmt.Sprintf("%s %s Discipline %d", cls, titleCase(gender), m.DisciplineID)
	return key, name
}

// SquadCategory derives the grouping key and display name for the squad
// ranking stream: squad division + discipline.
func SquadCategory(s league.SquadPerformance) (key, name string) {
	div := s.SquadDivision
	if div == "" {
		div = league.OpenDivision
	}
	key = fmt.Sprintf("%s|%d", div, s.DisciplineID)
	name = fmt.Sprintf("%s Division Discipline %d", div, s.DisciplineID)
	return key, name
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
