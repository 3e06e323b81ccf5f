package scan

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"bountyledger/internal/domain"
	"bountyledger/internal/idhash"
)

// Aggregator queries every configured source exactly once per run, one at a
// time, and concatenates results in source order. Sources already absorb
// their own faults; the aggregator additionally contains panics so one
// misbehaving source cannot stop the rest.
type Aggregator struct {
	sources []Source
	log     zerolog.Logger
	clock   func() time.Time
}

// NewAggregator creates an aggregator over the given sources.
func NewAggregator(sources ...Source) *Aggregator {
	return &Aggregator{
		sources: sources,
		log:     zerolog.Nop(),
		clock:   func() time.Time { return time.Now().UTC() },
	}
}

// WithLogger sets the diagnostic logger.
func (a *Aggregator) WithLogger(log zerolog.Logger) *Aggregator {
	a.log = log
	return a
}

// WithClock sets a custom clock function for deterministic run identifiers.
func (a *Aggregator) WithClock(clock func() time.Time) *Aggregator {
	a.clock = clock
	return a
}

// Run performs one scan pass and returns the concatenated raw opportunities
// plus the summary of the pass.
func (a *Aggregator) Run(ctx context.Context) ([]domain.Opportunity, domain.ScanSummary) {
	started := a.clock()

	var all []domain.Opportunity
	platforms := make([]string, 0, len(a.sources))
	rawTotal := 0

	for _, src := range a.sources {
		platforms = append(platforms, src.Platform())
		opps, raw := a.scanOne(ctx, src)
		all = append(all, opps...)
		rawTotal += raw
	}

	summary := domain.ScanSummary{
		RunID:            idhash.ComputeRunID(platforms, started),
		PlatformsQueried: platforms,
		RawCount:         rawTotal,
		StartedAt:        started,
	}
	return all, summary
}

// scanOne invokes a single source with panic containment.
func (a *Aggregator) scanOne(ctx context.Context, src Source) (opps []domain.Opportunity, raw int) {
	defer func() {
		if r := recover(); r != nil {
			a.log.Error().Str("platform", src.Platform()).Interface("panic", r).Msg("scanner panicked")
			opps, raw = nil, 0
		}
	}()

	a.log.Info().Str("platform", src.Platform()).Msg("scanning")
	opps, raw = src.Scan(ctx)
	a.log.Info().
		Str("platform", src.Platform()).
		Int("raw", raw).
		Int("normalized", len(opps)).
		Msg("scan complete")
	return opps, raw
}
