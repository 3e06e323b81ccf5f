package ledger

import (
	"context"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
)

// previewRecorder prints what would be submitted instead of touching
// the network. Operations report success so callers exercise their
// full paths during a dry run.
type previewRecorder struct {
	w io.Writer
}

// NewPreviewRecorder returns a dry-run Recorder writing to w.
func NewPreviewRecorder(w io.Writer) Recorder {
	return previewRecorder{w: w}
}

func (previewRecorder) Enabled() bool { return false }

func (p previewRecorder) RecordActivity(_ context.Context, chain, action string, details any) (string, bool) {
	detail, err := encodeDetails(details)
	if err != nil {
		return "", false
	}
	fmt.Fprintf(p.w, "[dry-run] %s/%s %s\n", chain, action, detail)
	return "dry-run", true
}

func (p previewRecorder) RecordClaim(_ context.Context, platform, externalID, title string, reward decimal.Decimal) (string, bool) {
	fmt.Fprintf(p.w, "[dry-run] claim %s/%s %q reward=%s\n", platform, externalID, title, reward)
	return "dry-run", true
}
