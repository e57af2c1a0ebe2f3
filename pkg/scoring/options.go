// Package scoring implements the league's aggregation and ranking rules as
// pure functions over value types: string selection (drop slowest), stage and
// match aggregation, squad composition, and category rankings. Nothing in
// this package touches storage; the engine activities feed it rows and
// persist what it returns.
package scoring

import (
	"github.com/openrange/rangex/pkg/utils"
)

// Defaults for the scoring configuration.
const (
	DefaultStringsPerStage   = 5
	DefaultKeepCount         = 4
	DefaultStagesPerMatch    = 4
	DefaultSquadSize         = 4
	DefaultGhostTime         = 100.0
	DefaultMaxGhostsPerSquad = 2
)

// Options carries the tunable scoring constants. The zero value is not
// usable; build one with DefaultOptions or FromEnv.
type Options struct {
	// StringsPerStage is the expected attempt count per stage.
	StringsPerStage int
	// KeepCount is how many of the fastest valid strings score.
	KeepCount int
	// StagesPerMatch is the stage count a complete match requires.
	StagesPerMatch int
	// SquadSize is the member count of a full squad.
	SquadSize int
	// GhostDefaultTime is the fixed final total a ghost member carries.
	GhostDefaultTime float64
	// MaxGhostsPerSquad caps ghost substitution in eligible divisions.
	MaxGhostsPerSquad int
	// GhostEligibleDivisions seeds the division policy table: divisions
	// listed here allow ghost athletes unless the stored policy says
	// otherwise.
	GhostEligibleDivisions []string
}

// DefaultOptions returns the league's standard configuration.
func DefaultOptions() Options {
	return Options{
		StringsPerStage:        DefaultStringsPerStage,
		KeepCount:              DefaultKeepCount,
		StagesPerMatch:         DefaultStagesPerMatch,
		SquadSize:              DefaultSquadSize,
		GhostDefaultTime:       DefaultGhostTime,
		MaxGhostsPerSquad:      DefaultMaxGhostsPerSquad,
		GhostEligibleDivisions: []string{"Rookie"},
	}
}

// FromEnv builds Options from environment variables, falling back to the
// defaults for anything unset or invalid.
func FromEnv() Options {
	return Options{
		StringsPerStage:        utils.EnvInt("STRINGS_PER_STAGE", DefaultStringsPerStage),
		KeepCount:              utils.EnvInt("KEEP_COUNT", DefaultKeepCount),
		StagesPerMatch:         utils.EnvInt("STAGES_PER_MATCH", DefaultStagesPerMatch),
		SquadSize:              utils.EnvInt("SQUAD_SIZE", DefaultSquadSize),
		GhostDefaultTime:       utils.EnvFloat("GHOST_DEFAULT_TIME", DefaultGhostTime),
		MaxGhostsPerSquad:      utils.EnvInt("MAX_GHOSTS_PER_SQUAD", DefaultMaxGhostsPerSquad),
		GhostEligibleDivisions: utils.EnvCSV("GHOST_ELIGIBLE_DIVISIONS", []string{"Rookie"}),
	}
}

// Normalize clamps nonsensical values back to the defaults so a stray env
// var cannot produce a pipeline that keeps zero strings or negative ghosts.
func (o Options) Normalize() Options {
	if o.StringsPerStage <= 0 {
		o.StringsPerStage = DefaultStringsPerStage
	}
	if o.KeepCount <= 0 || o.KeepCount > o.StringsPerStage {
		o.KeepCount = DefaultKeepCount
	}
	if o.StagesPerMatch <= 0 {
		o.StagesPerMatch = DefaultStagesPerMatch
	}
	if o.SquadSize <= 0 {
		o.SquadSize = DefaultSquadSize
	}
	if o.GhostDefaultTime <= 0 {
		o.GhostDefaultTime = DefaultGhostTime
	}
	if o.MaxGhostsPerSquad < 0 {
		o.MaxGhostsPerSquad = DefaultMaxGhostsPerSquad
	}
	return o
}
