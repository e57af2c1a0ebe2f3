package scoring

import (
	"sort"
	"time"

	"github.com/openrange/rangex/pkg/db/models/league"
)

// subject is one ranked row before rank assignment.
type subject struct {
	id           uint64
	total        float64
	categoryKey  string
	categoryName string
}

// RankIndividuals computes the individual ranking stream for one
// competition from its valid match rows. Invalid matches are filtered here
// as well, so callers may pass the full set.
func RankIndividuals(competitionID uint64, matches []league.MatchPerformance, now time.Time) []league.RankingEntry {
	subjects := make([]subject, 0, len(matches))
	for _, m := range matches {
		if !m.IsValidMatch {
			continue
		}
		key, name := IndividualCategory(m)
		subjects = append(subjects, subject{
			id:           m.AthleteID,
			total:        m.FinalTotal,
			categoryKey:  key,
			categoryName: name,
		})
	}
	return rankStream(competitionID, league.StreamIndividual, subjects, now)
}

// RankSquads computes the squad ranking stream for one competition from its
// complete squad rows. Incomplete squads are filtered here as well.
func RankSquads(competitionID uint64, squads []league.SquadPerformance, now time.Time) []league.RankingEntry {
	subjects := make([]subject, 0, len(squads))
	for _, s := range squads {
		if !s.IsCompleteSquad {
			continue
		}
		key, name := SquadCategory(s)
		subjects = append(subjects, subject{
			id:           s.TeamID,
			total:        s.SquadTotal,
			categoryKey:  key,
			categoryName: name,
		})
	}
	return rankStream(competitionID, league.StreamSquad, subjects, now)
}

// rankStream groups subjects into categories and assigns standard
// competition ranks within each: tied totals share a rank and the next
// distinct total's rank skips by the tie-group size. Lower time wins.
func rankStream(competitionID uint64, stream string, subjects []subject, now time.Time) []league.RankingEntry {
	byCategory := make(map[string][]subject)
	for _, s := range subjects {
		byCategory[s.categoryKey] = append(byCategory[s.categoryKey], s)
	}

	// Deterministic output order: categories sorted by key, subjects by
	// total then id.
	keys := make([]string, 0, len(byCategory))
	for k := range byCategory {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	entries := make([]league.RankingEntry, 0, len(subjects))
	for _, key := range keys {
		group := byCategory[key]
		sort.Slice(group, func(i, j int) bool {
			if group[i].total != group[j].total {
				return group[i].total < group[j].total
			}
			return group[i].id < group[j].id
		})

		total := len(group)
		rank := 0
		for i, s := range group {
			if i == 0 || s.total != group[i-1].total {
				rank = i + 1
			}
			entries = append(entries, league.RankingEntry{
				CompetitionID:   competitionID,
				Stream:          stream,
				CategoryKey:     s.categoryKey,
				CategoryName:    s.categoryName,
				SubjectID:       s.id,
				FinalTotal:      s.total,
				Rank:            uint32(rank),
				TotalInCategory: uint32(total),
				Percentile:      percentile(rank, total),
				AwardLevel:      awardLevel(rank),
				IsWinner:        rank == 1,
				UpdatedAt:       now,
			})
		}
	}

	return entries
}

// percentile maps rank 1 of N to the category's maximum percentile and the
// last rank to 0, clamped to [0, 100].
func percentile(rank, total int) float64 {
	if total <= 0 {
		return 0
	}
	p := 100 * float64(total-rank) / float64(total)
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

func awardLevel(rank int) string {
	switch rank {
	case 1:
		return league.AwardFirstPlace
	case 2:
		return league.AwardSecondPlace
	case 3:
		return league.AwardThirdPlace
	default:
		return ""
	}
}
