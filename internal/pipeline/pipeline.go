// Package pipeline wires one full hunt: scan the platforms, score and
// rank what came back, optionally consult the feasibility oracle for
// the top target, and record the outcome on the ledger.
package pipeline

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"bountyledger/internal/advisor"
	"bountyledger/internal/domain"
	"bountyledger/internal/evaluate"
	"bountyledger/internal/ledger"
	"bountyledger/internal/observability"
	"bountyledger/internal/scan"
)

// ActionBountyScan tags the per-run activity record.
const ActionBountyScan = "bounty_scan"

// Result is the outcome of one pipeline run.
type Result struct {
	// Scan holds the ranked opportunities and the run summary.
	Scan domain.ScanResult

	// Advised is the opportunity sent to the oracle, if any.
	Advised *domain.Opportunity

	// Judgment is the oracle's verdict, nil when none was obtained.
	Judgment *domain.Judgment

	// ActivityTx is the hash of the confirmed scan-summary record,
	// empty when not recorded.
	ActivityTx string

	// ClaimTx is the hash of the confirmed claim record, empty when no
	// claim was made.
	ClaimTx string
}

// Pipeline runs the scan → evaluate → advise → record sequence.
type Pipeline struct {
	aggregator  *scan.Aggregator
	evaluator   *evaluate.Evaluator
	advisor     *advisor.Advisor
	recorder    ledger.Recorder
	submitter   Submitter
	policy      domain.ClaimPolicy
	ledgerChain string
	log         zerolog.Logger
	clock       func() time.Time
}

// New creates a pipeline over the given stages. The advisor is off
// until set; the claim policy defaults to feasible.
func New(aggregator *scan.Aggregator, evaluator *evaluate.Evaluator, recorder ledger.Recorder) *Pipeline {
	return &Pipeline{
		aggregator:  aggregator,
		evaluator:   evaluator,
		recorder:    recorder,
		submitter:   NewLogSubmitter(zerolog.Nop()),
		policy:      domain.ClaimFeasible,
		ledgerChain: "opbnb",
		log:         zerolog.Nop(),
		clock:       func() time.Time { return time.Now().UTC() },
	}
}

// WithAdvisor enables oracle consultation for the top actionable
// opportunity of each run.
func (p *Pipeline) WithAdvisor(a *advisor.Advisor) *Pipeline {
	p.advisor = a
	return p
}

// WithClaimPolicy sets when claims are recorded.
func (p *Pipeline) WithClaimPolicy(policy domain.ClaimPolicy) *Pipeline {
	if policy.IsValid() {
		p.policy = policy
	}
	return p
}

// WithSubmitter replaces the stand-in platform submitter.
func (p *Pipeline) WithSubmitter(s Submitter) *Pipeline {
	if s != nil {
		p.submitter = s
	}
	return p
}

// WithLedgerChain overrides the chain tag on activity records.
func (p *Pipeline) WithLedgerChain(chain string) *Pipeline {
	p.ledgerChain = chain
	return p
}

// WithLogger sets the pipeline logger.
func (p *Pipeline) WithLogger(log zerolog.Logger) *Pipeline {
	p.log = log
	return p
}

// WithClock overrides the time source.
func (p *Pipeline) WithClock(clock func() time.Time) *Pipeline {
	p.clock = clock
	return p
}

// Run executes one full pass. External faults are absorbed by the
// stages themselves; the only error returned is context cancellation.
func (p *Pipeline) Run(ctx context.Context) (Result, error) {
	started := p.clock()

	opportunities, summary := p.aggregator.Run(ctx)
	ranked := p.evaluator.Rank(opportunities)
	result := Result{Scan: domain.ScanResult{Opportunities: ranked, Summary: summary}}

	actionable := result.Scan.Actionable()
	for platform, count := range countByPlatform(ranked) {
		observability.RecordOpportunities(platform, count)
	}
	observability.RecordActionable(len(actionable))
	p.log.Info().
		Str("run_id", summary.RunID).
		Int("found", len(ranked)).
		Int("actionable", len(actionable)).
		Msg("scan evaluated")

	var top *domain.Opportunity
	if len(actionable) > 0 {
		top = &actionable[0]
	}

	if p.advisor != nil && top != nil {
		result.Advised = top
		askStarted := time.Now()
		judgment, ok := p.advisor.Advise(ctx, *top)
		observability.RecordOracleCall(p.advisor.OracleName(), ok, time.Since(askStarted).Seconds())
		if ok {
			result.Judgment = &judgment
		}
	}

	if ctx.Err() != nil {
		return result, ctx.Err()
	}

	details := map[string]any{
		"run_id":      summary.RunID,
		"platforms":   summary.PlatformsQueried,
		"total_found": len(ranked),
		"actionable":  len(actionable),
	}
	activityTx, recorded := p.recorder.RecordActivity(ctx, p.ledgerChain, ActionBountyScan, details)
	if p.recorder.Enabled() {
		observability.RecordLedgerSubmission(ledger.MethodLogActivity, recorded)
	}
	result.ActivityTx = activityTx

	if top != nil && p.shouldClaim(result.Judgment) {
		claimTx, claimed := p.recorder.RecordClaim(ctx, top.Platform, top.ExternalID, top.Title, top.Reward)
		if p.recorder.Enabled() {
			observability.RecordLedgerSubmission(ledger.MethodRecordClaim, claimed)
		}
		result.ClaimTx = claimTx
		if err := p.submitter.Submit(ctx, *top, result.Judgment); err != nil {
			p.log.Warn().Err(err).Str("platform", top.Platform).Msg("platform submission failed")
		}
	}

	p.log.Info().
		Str("run_id", summary.RunID).
		Dur("elapsed", p.clock().Sub(started)).
		Bool("activity_recorded", result.ActivityTx != "").
		Bool("claim_recorded", result.ClaimTx != "").
		Msg("run complete")
	return result, nil
}

func (p *Pipeline) shouldClaim(judgment *domain.Judgment) bool {
	switch p.policy {
	case domain.ClaimAlways:
		return true
	case domain.ClaimNever:
		return false
	default:
		return judgment != nil && judgment.Feasible
	}
}

func countByPlatform(opportunities []domain.Opportunity) map[string]int {
	counts := make(map[string]int)
	for _, o := range opportunities {
		counts[o.Platform]++
	}
	return counts
}
