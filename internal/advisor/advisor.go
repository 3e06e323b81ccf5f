package advisor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"bountyledger/internal/domain"
)

// Oracle call bounds. The configured timeout is clamped to the minimum so a
// misconfigured value cannot make the oracle effectively un-callable.
const (
	DefaultTimeout = 60 * time.Second
	MinTimeout     = 30 * time.Second
)

// Advisor asks an external oracle whether one opportunity is worth
// pursuing. The oracle is fallible and rate limited, so the advisor is
// invoked for at most one opportunity per scan and absorbs every fault:
// the only failure signal is the false tag on the result.
type Advisor struct {
	oracle  Oracle
	timeout time.Duration
	log     zerolog.Logger
}

// NewAdvisor creates an advisor over the given oracle.
func NewAdvisor(oracle Oracle) *Advisor {
	return &Advisor{
		oracle:  oracle,
		timeout: DefaultTimeout,
		log:     zerolog.Nop(),
	}
}

// WithTimeout sets the per-call oracle deadline, clamped to MinTimeout.
func (a *Advisor) WithTimeout(d time.Duration) *Advisor {
	if d < MinTimeout {
		d = MinTimeout
	}
	a.timeout = d
	return a
}

// WithLogger sets the diagnostic logger.
func (a *Advisor) WithLogger(log zerolog.Logger) *Advisor {
	a.log = log
	return a
}

// OracleName identifies the configured oracle.
func (a *Advisor) OracleName() string {
	return a.oracle.Name()
}

// Advise requests a feasibility judgment for o. Oracle failure, timeout,
// and unparsable output all yield (zero, false); nothing propagates.
func (a *Advisor) Advise(ctx context.Context, o domain.Opportunity) (domain.Judgment, bool) {
	callCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	start := time.Now()
	reply, err := a.oracle.Ask(callCtx, buildPrompt(o))
	if err != nil {
		a.log.Warn().Err(err).
			Str("oracle", a.oracle.Name()).
			Dur("elapsed", time.Since(start)).
			Msg("oracle call failed")
		return domain.Judgment{}, false
	}

	judgment, ok := ExtractJudgment(reply)
	if !ok {
		a.log.Warn().
			Str("oracle", a.oracle.Name()).
			Int("reply_len", len(reply)).
			Msg("no judgment found in oracle reply")
		return domain.Judgment{}, false
	}

	a.log.Info().
		Str("oracle", a.oracle.Name()).
		Bool("feasible", judgment.Feasible).
		Float64("effort_hours", judgment.EffortHours).
		Msg("judgment received")
	return judgment, true
}

// buildPrompt renders the feasibility question for one opportunity.
func buildPrompt(o domain.Opportunity) string {
	var sb strings.Builder

	sb.WriteString("Assess whether a small autonomous coding agent should attempt this bounty.\n\n")
	sb.WriteString("Bounty:\n")
	fmt.Fprintf(&sb, "- Platform: %s\n", o.Platform)
	fmt.Fprintf(&sb, "- Title: %s\n", o.Title)
	if o.RewardKnown() {
		fmt.Fprintf(&sb, "- Reward: $%s %s\n", o.Reward, o.Currency)
	} else {
		sb.WriteString("- Reward: unstated\n")
	}
	if o.URL != "" {
		fmt.Fprintf(&sb, "- URL: %s\n", o.URL)
	}

	sb.WriteString("\nReply with a single JSON object and nothing else:\n")
	sb.WriteString(`{"feasible": true or false, "effort_hours": number, "plan": ["step", ...], "summary": "one sentence"}`)
	sb.WriteString("\nKeep the plan to at most five steps.\n")
	return sb.String()
}
