// Package report renders scan results for humans and machines. Both
// writers are pure: they format what they are given and touch nothing
// else.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"bountyledger/internal/domain"
)

const (
	headerWidth   = 60
	maxTitleWidth = 55
	timeLayout    = "2006-01-02 15:04 UTC"
)

// WriteText renders the line-oriented report: actionable entries with
// reward, score, url, and reasons, followed by the skipped count.
func WriteText(w io.Writer, result domain.ScanResult, now time.Time) error {
	actionable := result.Actionable()
	skipped := result.Skipped()

	var b strings.Builder
	rule := strings.Repeat("=", headerWidth)
	fmt.Fprintf(&b, "\n%s\n", rule)
	fmt.Fprintf(&b, "  BOUNTY HUNTER REPORT — %s\n", now.UTC().Format(timeLayout))
	fmt.Fprintf(&b, "%s\n\n", rule)

	if len(actionable) > 0 {
		fmt.Fprintf(&b, "  ACTIONABLE (%d):\n\n", len(actionable))
		for _, o := range actionable {
			fmt.Fprintf(&b, "  [%s] %s\n", o.Platform, clipTitle(o.Title))
			fmt.Fprintf(&b, "    Reward: %s | Score: %d\n", rewardLabel(o), o.Score)
			fmt.Fprintf(&b, "    URL: %s\n", o.URL)
			fmt.Fprintf(&b, "    Why: %s\n\n", strings.Join(o.MatchReasons, "; "))
		}
	} else {
		b.WriteString("  No actionable bounties found this scan.\n\n")
	}
	fmt.Fprintf(&b, "  SKIPPED: %d (low reward or poor match)\n\n", len(skipped))

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteJSON writes the actionable subset as indented JSON. Raw source
// payloads never appear in the output.
func WriteJSON(w io.Writer, result domain.ScanResult) error {
	actionable := result.Actionable()
	if actionable == nil {
		actionable = []domain.Opportunity{}
	}
	b, err := json.MarshalIndent(actionable, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	b = append(b, '\n')
	_, err = w.Write(b)
	return err
}

func rewardLabel(o domain.Opportunity) string {
	if !o.RewardKnown() {
		return "negotiable"
	}
	return fmt.Sprintf("$%s %s", o.Reward.StringFixed(0), o.Currency)
}

func clipTitle(title string) string {
	runes := []rune(title)
	if len(runes) <= maxTitleWidth {
		return title
	}
	return string(runes[:maxTitleWidth])
}
