package evaluate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"bountyledger/internal/domain"
)

// Reward tier boundaries in quote currency units.
var (
	tierHigh = decimal.NewFromInt(500)
	tierGood = decimal.NewFromInt(100)

	// DefaultMinReward is the floor below which a reward contributes nothing.
	DefaultMinReward = decimal.NewFromInt(25)
)

// DefaultActionableScore is the score threshold for the actionable flag.
const DefaultActionableScore = 2

// Evaluator scores, ranks, and partitions opportunities. Scoring is a pure
// deterministic function of the opportunity itself.
type Evaluator struct {
	MinReward       decimal.Decimal
	ActionableScore int
}

// NewEvaluator creates an evaluator with the default thresholds.
func NewEvaluator() *Evaluator {
	return &Evaluator{
		MinReward:       DefaultMinReward,
		ActionableScore: DefaultActionableScore,
	}
}

// Score returns a copy of o with Score, MatchReasons, and Actionable
// populated. The input is not mutated.
func (e *Evaluator) Score(o domain.Opportunity) domain.Opportunity {
	score := 0
	var reasons []string

	// Reward tier
	switch {
	case o.Reward.GreaterThanOrEqual(tierHigh):
		score += 3
		reasons = append(reasons, fmt.Sprintf("High reward: $%s", o.Reward))
	case o.Reward.GreaterThanOrEqual(tierGood):
		score += 2
		reasons = append(reasons, fmt.Sprintf("Good reward: $%s", o.Reward))
	case o.Reward.GreaterThanOrEqual(e.MinReward):
		score++
		reasons = append(reasons, fmt.Sprintf("Min reward: $%s", o.Reward))
	default:
		reasons = append(reasons, fmt.Sprintf("Low/unknown reward: $%s", o.Reward))
	}

	// Capability match: one point per distinct keyword in the title
	titleLower := strings.ToLower(o.Title)
	var matches []string
	for _, kw := range CapabilityKeywords {
		if strings.Contains(titleLower, kw) {
			matches = append(matches, kw)
		}
	}
	if len(matches) > 0 {
		score += len(matches)
		shown := matches
		if len(shown) > 3 {
			shown = shown[:3]
		}
		reasons = append(reasons, fmt.Sprintf("Capability match: %s", strings.Join(shown, ", ")))
	}

	o.Score = score
	o.MatchReasons = reasons
	o.Actionable = score >= e.ActionableScore
	return o
}

// Rank scores every opportunity and returns a new slice sorted descending by
// score. The sort is stable: equal scores keep their discovery order.
func (e *Evaluator) Rank(opps []domain.Opportunity) []domain.Opportunity {
	ranked := make([]domain.Opportunity, len(opps))
	for i, o := range opps {
		ranked[i] = e.Score(o)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}
