package pipeline

import (
	"context"

	"github.com/rs/zerolog"

	"bountyledger/internal/domain"
)

// Submitter delivers a claimed opportunity back to its platform. The
// browser automation that performs real submissions runs outside this
// process, so the bundled implementation only announces the intent.
type Submitter interface {
	Submit(ctx context.Context, opp domain.Opportunity, judgment *domain.Judgment) error
}

// NewLogSubmitter returns the stand-in Submitter: it logs what would be
// submitted and succeeds.
func NewLogSubmitter(log zerolog.Logger) Submitter {
	return logSubmitter{log: log}
}

type logSubmitter struct {
	log zerolog.Logger
}

func (s logSubmitter) Submit(_ context.Context, opp domain.Opportunity, judgment *domain.Judgment) error {
	ev := s.log.Info().
		Str("platform", opp.Platform).
		Str("external_id", opp.ExternalID).
		Str("title", opp.Title).
		Str("url", opp.URL)
	if judgment != nil {
		ev = ev.Float64("effort_hours", judgment.EffortHours)
	}
	ev.Msg("submission left to external tooling")
	return nil
}
