package types

// RecomputeInput starts one competition's recompute run. Rebuild deletes
// every derived row for the competition before recomputing, so keys whose
// source rows disappeared do not survive.
type RecomputeInput struct {
	CompetitionID uint64 `json:"competitionId"`
	Rebuild       bool   `json:"rebuild"`
}

// RunSummary aggregates the per-phase counters of one recompute run. The
// workflow merges the activity outputs into it, the record activity persists
// it and publishes it.
type RunSummary struct {
	EntriesProcessed    uint32 `json:"entriesProcessed"`
	StagesWritten       uint32 `json:"stagesWritten"`
	IncompleteStages    uint32 `json:"incompleteStages"`
	InconsistentStrings uint32 `json:"inconsistentStrings"`
	MatchesWritten      uint32 `json:"matchesWritten"`
	ValidMatches        uint32 `json:"validMatches"`
	SquadsWritten       uint32 `json:"squadsWritten"`
	SquadsIncomplete    uint32 `json:"squadsIncomplete"`
	SquadsSkipped       uint32 `json:"squadsSkipped"`
	MixedDivisions      uint32 `json:"mixedDivisions"`
	RankingsWritten     uint32 `json:"rankingsWritten"`
}

// PrepareOutput reports the rebuild cleanup and the competition's worklist
// size.
type PrepareOutput struct {
	EntryCount uint32  `json:"entryCount"`
	DurationMs float64 `json:"durationMs"`
}

// ComputeStagesOutput reports the stage aggregation phase.
type ComputeStagesOutput struct {
	StagesWritten       uint32  `json:"stagesWritten"`
	IncompleteStages    uint32  `json:"incompleteStages"`
	InconsistentStrings uint32  `json:"inconsistentStrings"`
	DurationMs          float64 `json:"durationMs"`
}

// ComputeMatchesOutput reports the match aggregation phase.
type ComputeMatchesOutput struct {
	MatchesWritten uint32  `json:"matchesWritten"`
	ValidMatches   uint32  `json:"validMatches"`
	DurationMs     float64 `json:"durationMs"`
}

// ComposeSquadsOutput reports the squad composition phase.
type ComposeSquadsOutput struct {
	SquadsWritten    uint32  `json:"squadsWritten"`
	SquadsIncomplete uint32  `json:"squadsIncomplete"`
	SquadsSkipped    uint32  `json:"squadsSkipped"`
	MixedDivisions   uint32  `json:"mixedDivisions"`
	DurationMs       float64 `json:"durationMs"`
}

// ComputeRankingsInput selects which ranking stream to recompute.
type ComputeRankingsInput struct {
	CompetitionID uint64 `json:"competitionId"`
	Stream        string `json:"stream"`
}

// ComputeRankingsOutput reports one ranking stream phase.
type ComputeRankingsOutput struct {
	RankingsWritten uint32  `json:"rankingsWritten"`
	DurationMs      float64 `json:"durationMs"`
}

// RecordRunInput persists the run's bookkeeping row and publishes the
// completion event. Detail carries the per-phase timings as JSON.
type RecordRunInput struct {
	CompetitionID uint64     `json:"competitionId"`
	Rebuild       bool       `json:"rebuild"`
	Summary       RunSummary `json:"summary"`
	DurationMs    float64    `json:"durationMs"`
	Detail        string     `json:"detail"`
}

// ListCompetitionsOutput is the recompute-all worklist.
type ListCompetitionsOutput struct {
	CompetitionIDs []uint64 `json:"competitionIds"`
	DurationMs     float64  `json:"durationMs"`
}

// ScheduleRecomputesInput fans out per-competition workflows.
type ScheduleRecomputesInput struct {
	CompetitionIDs []uint64 `json:"competitionIds"`
	Rebuild        bool     `json:"rebuild"`
}

// ScheduleRecomputesOutput reports the fan-out.
type ScheduleRecomputesOutput struct {
	Scheduled  uint32  `json:"scheduled"`
	Failed     uint32  `json:"failed"`
	DurationMs float64 `json:"durationMs"`
}

// RecomputeAllInput starts a full-league sweep.
type RecomputeAllInput struct {
	Rebuild bool `json:"rebuild"`
}
