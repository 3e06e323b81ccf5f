package advisor

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"bountyledger/internal/domain"
)

// stubOracle returns a canned reply, an error, or blocks until ctx expires.
type stubOracle struct {
	reply  string
	err    error
	blocks bool

	prompts []string
}

func (s *stubOracle) Name() string { return "stub" }

func (s *stubOracle) Ask(ctx context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	if s.blocks {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return s.reply, s.err
}

func topOpportunity() domain.Opportunity {
	return domain.Opportunity{
		Platform:   "bountycaster",
		ExternalID: "17",
		Title:      "Build a Solidity bounty bot",
		Reward:     decimal.NewFromInt(600),
		Currency:   "USDC",
		URL:        "https://example.com/17",
	}
}

func TestAdvise_JudgmentExtracted(t *testing.T) {
	oracle := &stubOracle{reply: `Here you go:
{"feasible": true, "effort_hours": 8, "plan": ["clone", "build", "submit"], "summary": "straightforward"}`}

	j, ok := NewAdvisor(oracle).Advise(context.Background(), topOpportunity())
	if !ok {
		t.Fatal("expected a judgment")
	}
	if !j.Feasible || j.EffortHours != 8 {
		t.Errorf("unexpected judgment: %+v", j)
	}

	if len(oracle.prompts) != 1 {
		t.Fatalf("expected one oracle call, got %d", len(oracle.prompts))
	}
	prompt := oracle.prompts[0]
	for _, want := range []string{"Build a Solidity bounty bot", "$600 USDC", `"feasible"`} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestAdvise_OracleErrorYieldsNothing(t *testing.T) {
	oracle := &stubOracle{err: errors.New("exec: not found")}

	j, ok := NewAdvisor(oracle).Advise(context.Background(), topOpportunity())
	if ok {
		t.Error("expected no judgment on oracle error")
	}
	if j.Feasible || j.EffortHours != 0 || j.Plan != nil || j.Summary != "" {
		t.Errorf("expected zero judgment, got %+v", j)
	}
}

func TestAdvise_UnparsableReplyYieldsNothing(t *testing.T) {
	oracle := &stubOracle{reply: "I could not decide, sorry."}

	if _, ok := NewAdvisor(oracle).Advise(context.Background(), topOpportunity()); ok {
		t.Error("expected no judgment for unparsable reply")
	}
}

func TestAdvise_TimeoutYieldsNothing(t *testing.T) {
	oracle := &stubOracle{blocks: true}

	advisor := NewAdvisor(oracle).WithTimeout(MinTimeout)
	// Parent deadline keeps the test fast; the advisor's own clamp still
	// applies but the sooner deadline wins.
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, ok := advisor.Advise(ctx, topOpportunity())
	if ok {
		t.Error("expected no judgment on timeout")
	}
	if time.Since(start) > 5*time.Second {
		t.Error("advise did not return promptly after ctx expiry")
	}
}

func TestWithTimeout_ClampedToMinimum(t *testing.T) {
	a := NewAdvisor(&stubOracle{}).WithTimeout(time.Second)
	if a.timeout != MinTimeout {
		t.Errorf("expected clamp to %v, got %v", MinTimeout, a.timeout)
	}
}
