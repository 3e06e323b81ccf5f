package report

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"bountyledger/internal/domain"
)

func sampleResult() domain.ScanResult {
	return domain.ScanResult{
		Opportunities: []domain.Opportunity{
			{
				Platform:     "bountycaster",
				ExternalID:   "bc-1",
				Title:        "Build a Solidity bounty bot",
				Reward:       decimal.RequireFromString("600"),
				Currency:     "USDC",
				URL:          "https://bounty.example/1",
				Score:        5,
				MatchReasons: []string{"High reward: $600", "Capability match: bot, build"},
				Actionable:   true,
				Raw:          map[string]any{"secret": "internal"},
			},
			{
				Platform:   "github",
				ExternalID: "gh-2",
				Title:      "Update README",
				Reward:     decimal.RequireFromString("5"),
				Currency:   "USD",
				URL:        "https://github.example/2",
				Score:      0,
			},
		},
		Summary: domain.ScanSummary{RunID: "abc", PlatformsQueried: []string{"bountycaster", "github"}, RawCount: 2},
	}
}

func TestWriteTextListsActionable(t *testing.T) {
	var buf strings.Builder
	now := time.Date(2026, 8, 24, 9, 30, 0, 0, time.UTC)
	if err := WriteText(&buf, sampleResult(), now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"BOUNTY HUNTER REPORT — 2026-08-24 09:30 UTC",
		"ACTIONABLE (1):",
		"[bountycaster] Build a Solidity bounty bot",
		"Reward: $600 USDC | Score: 5",
		"URL: https://bounty.example/1",
		"Why: High reward: $600; Capability match: bot, build",
		"SKIPPED: 1 (low reward or poor match)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected report to contain %q\ngot:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Update README") {
		t.Error("expected skipped entry to be omitted from the listing")
	}
}

func TestWriteTextNegotiableReward(t *testing.T) {
	result := domain.ScanResult{
		Opportunities: []domain.Opportunity{
			{Platform: "github", Title: "Fix the build", Score: 4, Actionable: true},
		},
	}
	var buf strings.Builder
	if err := WriteText(&buf, result, time.Now()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "Reward: negotiable") {
		t.Errorf("expected negotiable reward label, got:\n%s", buf.String())
	}
}

func TestWriteTextNoActionable(t *testing.T) {
	result := domain.ScanResult{
		Opportunities: []domain.Opportunity{
			{Platform: "github", Title: "Update README", Score: 0},
		},
	}
	var buf strings.Builder
	if err := WriteText(&buf, result, time.Now()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "No actionable bounties found this scan.") {
		t.Errorf("expected empty-scan message, got:\n%s", out)
	}
	if !strings.Contains(out, "SKIPPED: 1") {
		t.Errorf("expected skipped count, got:\n%s", out)
	}
}

func TestWriteTextClipsLongTitles(t *testing.T) {
	long := strings.Repeat("a", 80)
	result := domain.ScanResult{
		Opportunities: []domain.Opportunity{
			{Platform: "github", Title: long, Score: 3, Actionable: true},
		},
	}
	var buf strings.Builder
	if err := WriteText(&buf, result, time.Now()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(buf.String(), long) {
		t.Error("expected title to be clipped")
	}
	if !strings.Contains(buf.String(), strings.Repeat("a", 55)+"\n") {
		t.Error("expected 55-character title prefix")
	}
}

func TestWriteJSONActionableOnly(t *testing.T) {
	var buf strings.Builder
	if err := WriteJSON(&buf, sampleResult()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var decoded []map[string]any
	if err := json.Unmarshal([]byte(buf.String()), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(decoded) != 1 {
		t.Fatalf("expected 1 actionable entry, got %d", len(decoded))
	}
	if decoded[0]["platform"] != "bountycaster" {
		t.Errorf("unexpected entry: %v", decoded[0])
	}
	if strings.Contains(buf.String(), "secret") {
		t.Error("expected raw payload fields to be excluded")
	}
}

func TestWriteJSONEmpty(t *testing.T) {
	var buf strings.Builder
	if err := WriteJSON(&buf, domain.ScanResult{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimSpace(buf.String()) != "[]" {
		t.Errorf("expected empty array, got %q", buf.String())
	}
}
