package advisor

import (
	"encoding/json"
	"strings"

	"bountyledger/internal/domain"
)

// ExtractJudgment scans free text for the smallest balanced-brace span
// containing a "feasible" field and decodes it. The boolean result is the
// not-found tag; a false never carries a usable judgment.
//
// Oracle replies wrap the judgment in prose, markdown fences, or larger
// objects, so the span is located structurally instead of trusting the
// whole response to be JSON.
func ExtractJudgment(text string) (domain.Judgment, bool) {
	field := strings.Index(text, `"feasible"`)
	if field == -1 {
		return domain.Judgment{}, false
	}

	// Walk candidate opening braces outward from the field. The nearest
	// opener whose balanced close lies past the field bounds the smallest
	// containing span; wider spans are tried only if a span fails to decode.
	for open := strings.LastIndex(text[:field], "{"); open != -1; open = strings.LastIndex(text[:open], "{") {
		end := matchingBrace(text, open)
		if end < field {
			continue
		}
		var j domain.Judgment
		if err := json.Unmarshal([]byte(text[open:end+1]), &j); err != nil {
			continue
		}
		if len(j.Plan) > domain.MaxPlanSteps {
			j.Plan = j.Plan[:domain.MaxPlanSteps]
		}
		return j, true
	}
	return domain.Judgment{}, false
}

// matchingBrace returns the index of the brace closing the one at open, or
// -1 when the text ends unbalanced.
func matchingBrace(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
