package evaluate

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"bountyledger/internal/domain"
)

func TestScore_RewardTiers(t *testing.T) {
	evaluator := NewEvaluator()

	// Step function over the tier boundaries. Empty title keeps keyword
	// contribution at zero so the score is the tier alone.
	cases := []struct {
		reward int64
		want   int
	}{
		{0, 0},
		{24, 0},
		{25, 1},
		{99, 1},
		{100, 2},
		{499, 2},
		{500, 3},
		{10000, 3},
	}

	for _, tc := range cases {
		o := evaluator.Score(domain.Opportunity{
			Platform:   "test",
			ExternalID: "1",
			Reward:     decimal.NewFromInt(tc.reward),
		})
		if o.Score != tc.want {
			t.Errorf("reward %d: expected score %d, got %d", tc.reward, tc.want, o.Score)
		}
	}
}

func TestScore_CapabilityKeywords(t *testing.T) {
	evaluator := NewEvaluator()

	// Distinct hits: code, python, bot, build
	o := evaluator.Score(domain.Opportunity{
		Platform:   "test",
		ExternalID: "1",
		Title:      "Build a Python bot to refactor code",
	})
	if o.Score < 4 {
		t.Errorf("expected keyword contribution >= 4, got score %d", o.Score)
	}
	if !o.Actionable {
		t.Error("four keyword hits should be actionable")
	}

	// Two-word keyword counts as one hit
	o = evaluator.Score(domain.Opportunity{
		Platform:   "test",
		ExternalID: "2",
		Title:      "Audit this smart contract",
	})
	if o.Score != 1 {
		t.Errorf("expected exactly 1 keyword hit, got score %d", o.Score)
	}
}

func TestScore_RepeatedKeywordCountsOnce(t *testing.T) {
	evaluator := NewEvaluator()

	o := evaluator.Score(domain.Opportunity{
		Platform:   "test",
		ExternalID: "1",
		Title:      "bot bot bot bot",
	})
	if o.Score != 1 {
		t.Errorf("repeated keyword should count once, got score %d", o.Score)
	}
}

func TestScore_ActionableThreshold(t *testing.T) {
	evaluator := NewEvaluator()

	// Score 1 (min-reward tier only) is not actionable
	o := evaluator.Score(domain.Opportunity{
		Platform:   "test",
		ExternalID: "1",
		Reward:     decimal.NewFromInt(30),
	})
	if o.Score != 1 {
		t.Fatalf("expected score 1, got %d", o.Score)
	}
	if o.Actionable {
		t.Error("score 1 must not be actionable")
	}

	// Score 2 (good-reward tier) is actionable
	o = evaluator.Score(domain.Opportunity{
		Platform:   "test",
		ExternalID: "2",
		Reward:     decimal.NewFromInt(150),
	})
	if o.Score != 2 {
		t.Fatalf("expected score 2, got %d", o.Score)
	}
	if !o.Actionable {
		t.Error("score 2 must be actionable")
	}
}

func TestScore_Reasons(t *testing.T) {
	evaluator := NewEvaluator()

	o := evaluator.Score(domain.Opportunity{
		Platform:   "test",
		ExternalID: "1",
		Title:      "Build a Solidity bounty bot",
		Reward:     decimal.NewFromInt(600),
	})

	joined := strings.Join(o.MatchReasons, "; ")
	if !strings.Contains(joined, "High reward: $600") {
		t.Errorf("expected high reward reason, got %q", joined)
	}
	if !strings.Contains(joined, "Capability match:") {
		t.Errorf("expected capability reason, got %q", joined)
	}

	// Capability reason lists at most the first three matches
	o = evaluator.Score(domain.Opportunity{
		Platform:   "test",
		ExternalID: "2",
		Title:      "Develop a Python script to analyze data and fix bugs",
	})
	var capReason string
	for _, r := range o.MatchReasons {
		if strings.HasPrefix(r, "Capability match:") {
			capReason = r
		}
	}
	if capReason == "" {
		t.Fatal("expected a capability reason")
	}
	listed := strings.Split(strings.TrimPrefix(capReason, "Capability match: "), ", ")
	if len(listed) > 3 {
		t.Errorf("capability reason should list at most 3 keywords, got %d: %q", len(listed), capReason)
	}
}

func TestRank_StableDescending(t *testing.T) {
	evaluator := NewEvaluator()

	// Three zero-score entries interleaved with scored ones. Equal scores
	// must keep their discovery order.
	input := []domain.Opportunity{
		{Platform: "a", ExternalID: "1", Title: "first plain"},
		{Platform: "a", ExternalID: "2", Title: "Build a bot", Reward: decimal.NewFromInt(600)},
		{Platform: "b", ExternalID: "3", Title: "second plain"},
		{Platform: "b", ExternalID: "4", Title: "Fix a bug", Reward: decimal.NewFromInt(150)},
		{Platform: "b", ExternalID: "5", Title: "third plain"},
	}

	ranked := evaluator.Rank(input)

	for i := 1; i < len(ranked); i++ {
		if ranked[i-1].Score < ranked[i].Score {
			t.Fatalf("rank %d score %d < rank %d score %d", i-1, ranked[i-1].Score, i, ranked[i].Score)
		}
	}

	var zeroIDs []string
	for _, o := range ranked {
		if o.Score == 0 {
			zeroIDs = append(zeroIDs, o.ExternalID)
		}
	}
	if strings.Join(zeroIDs, ",") != "1,3,5" {
		t.Errorf("equal-score entries reordered: %v", zeroIDs)
	}

	// Input slice is untouched
	if input[0].Score != 0 || input[0].MatchReasons != nil {
		t.Error("Rank mutated its input")
	}
}

func TestRank_Deterministic(t *testing.T) {
	evaluator := NewEvaluator()

	input := []domain.Opportunity{
		{Platform: "a", ExternalID: "1", Title: "Build a Python bot", Reward: decimal.NewFromInt(600)},
		{Platform: "b", ExternalID: "2", Title: "Update README", Reward: decimal.NewFromInt(5)},
	}

	first := evaluator.Rank(input)
	for run := 0; run < 5; run++ {
		again := evaluator.Rank(input)
		if len(again) != len(first) {
			t.Fatalf("run %d: length mismatch", run)
		}
		for i := range again {
			if again[i].Score != first[i].Score || again[i].ExternalID != first[i].ExternalID {
				t.Errorf("run %d: position %d differs", run, i)
			}
			if strings.Join(again[i].MatchReasons, ";") != strings.Join(first[i].MatchReasons, ";") {
				t.Errorf("run %d: reasons differ at %d", run, i)
			}
		}
	}
}
