package domain

// MaxPlanSteps caps the action plan carried in a Judgment.
const MaxPlanSteps = 5

// Judgment is the structured verdict extracted from a feasibility oracle's
// free-text response. Field names match the JSON keys the oracle is asked
// to produce.
type Judgment struct {
	Feasible    bool     `json:"feasible"`
	EffortHours float64  `json:"effort_hours"`
	Plan        []string `json:"plan"` // ordered, at most MaxPlanSteps entries
	Summary     string   `json:"summary"`
}
