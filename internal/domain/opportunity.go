package domain

import "github.com/shopspring/decimal"

// MaxTitleLen is the title length cap applied by scanners at normalization time.
const MaxTitleLen = 100

// Opportunity represents one bounty listing normalized into the common shape
// shared by every platform scanner.
type Opportunity struct {
	Platform   string          `json:"platform"`    // origin scanner, stable across runs
	ExternalID string          `json:"external_id"` // source-assigned id, unique within Platform
	Title      string          `json:"title"`       // truncated to MaxTitleLen
	Reward     decimal.Decimal `json:"reward"`      // zero means unknown, not literally zero
	Currency   string          `json:"currency"`
	URL        string          `json:"url"`

	// Populated by the evaluator; not part of raw identity.
	Score        int      `json:"score"`
	MatchReasons []string `json:"match_reasons"`
	Actionable   bool     `json:"actionable"`

	// Raw keeps the untouched source payload for operator debugging.
	// It is never serialized into reports or ledger records.
	Raw map[string]any `json:"-"`
}

// RewardKnown reports whether the source stated a reward amount.
func (o Opportunity) RewardKnown() bool {
	return !o.Reward.IsZero()
}
