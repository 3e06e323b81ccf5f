package domain

// ClaimPolicy decides when a run escalates its top opportunity to an
// on-chain claim record.
type ClaimPolicy string

const (
	// ClaimFeasible records a claim only when an oracle judgment exists
	// and says the bounty is feasible.
	ClaimFeasible ClaimPolicy = "feasible"

	// ClaimAlways records a claim for the top actionable opportunity of
	// every run.
	ClaimAlways ClaimPolicy = "always"

	// ClaimNever disables claim records.
	ClaimNever ClaimPolicy = "never"
)

// String returns the string representation of the policy.
func (p ClaimPolicy) String() string {
	return string(p)
}

// IsValid checks if the policy is one of the recognized values.
func (p ClaimPolicy) IsValid() bool {
	switch p {
	case ClaimFeasible, ClaimAlways, ClaimNever:
		return true
	default:
		return false
	}
}
