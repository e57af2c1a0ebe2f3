package engine

// Workflow names registered by the recompute engine workers. Activities
// schedule by name so they never import the workflow package.
const (
	RecomputeCompetitionWorkflowName = "RecomputeCompetitionWorkflow"
	RecomputeAllWorkflowName         = "RecomputeAllWorkflow"
)
