package domain

import "time"

// ScanSummary describes one aggregation pass over the configured platforms.
type ScanSummary struct {
	RunID            string    `json:"run_id"`
	PlatformsQueried []string  `json:"platforms_queried"`
	RawCount         int       `json:"raw_count"`
	StartedAt        time.Time `json:"started_at"`
}

// ScanResult is the output of one full scan: opportunities ranked descending
// by score (discovery order preserved among equals) plus the summary of the
// pass that produced them. Results are never mutated after evaluation.
type ScanResult struct {
	Opportunities []Opportunity `json:"opportunities"`
	Summary       ScanSummary   `json:"summary"`
}

// Actionable returns the actionable subset in rank order.
func (r ScanResult) Actionable() []Opportunity {
	var out []Opportunity
	for _, o := range r.Opportunities {
		if o.Actionable {
			out = append(out, o)
		}
	}
	return out
}

// Skipped returns the non-actionable subset in rank order.
func (r ScanResult) Skipped() []Opportunity {
	var out []Opportunity
	for _, o := range r.Opportunities {
		if !o.Actionable {
			out = append(out, o)
		}
	}
	return out
}
