package advisor

import (
	"testing"
)

func TestExtractJudgment_BareObject(t *testing.T) {
	text := `{"feasible": true, "effort_hours": 6.5, "plan": ["read the issue", "write the fix"], "summary": "doable"}`

	j, ok := ExtractJudgment(text)
	if !ok {
		t.Fatal("expected a judgment")
	}
	if !j.Feasible {
		t.Error("expected feasible true")
	}
	if j.EffortHours != 6.5 {
		t.Errorf("expected 6.5 effort hours, got %v", j.EffortHours)
	}
	if len(j.Plan) != 2 || j.Plan[0] != "read the issue" {
		t.Errorf("unexpected plan: %v", j.Plan)
	}
	if j.Summary != "doable" {
		t.Errorf("unexpected summary: %q", j.Summary)
	}
}

func TestExtractJudgment_EmbeddedInProse(t *testing.T) {
	text := "Sure, I looked at the bounty. It seems feasible overall.\n\n" +
		"```json\n" +
		`{"feasible": false, "effort_hours": 40, "plan": [], "summary": "scope too large"}` +
		"\n```\n\nLet me know if you want more detail."

	j, ok := ExtractJudgment(text)
	if !ok {
		t.Fatal("expected a judgment inside the fenced block")
	}
	if j.Feasible {
		t.Error("expected feasible false")
	}
	if j.Summary != "scope too large" {
		t.Errorf("unexpected summary: %q", j.Summary)
	}
}

func TestExtractJudgment_SmallestSpan(t *testing.T) {
	// The judgment is nested in a larger object; the smallest balanced span
	// containing the field is the inner object.
	text := `{"meta": {"model": "x"}, "analysis": {"feasible": true, "summary": "inner"}}`

	j, ok := ExtractJudgment(text)
	if !ok {
		t.Fatal("expected a judgment")
	}
	if j.Summary != "inner" {
		t.Errorf("expected the inner object, got summary %q", j.Summary)
	}
}

func TestExtractJudgment_IgnoresStrayBraces(t *testing.T) {
	// A stray opening brace in leading prose must not hide the judgment.
	text := `prefix { not json ` + `{"feasible": true, "summary": "real"}`

	j, ok := ExtractJudgment(text)
	if !ok {
		t.Fatal("expected the judgment object to decode")
	}
	if j.Summary != "real" {
		t.Errorf("unexpected summary %q", j.Summary)
	}
}

func TestExtractJudgment_BracesInsideStrings(t *testing.T) {
	// Field values containing braces before the feasible key throw off the
	// nearest-span guess; extraction must widen to the enclosing object.
	text := `{"summary": "wrap it in {braces}", "feasible": true}`

	j, ok := ExtractJudgment(text)
	if !ok {
		t.Fatal("expected a judgment")
	}
	if !j.Feasible {
		t.Error("expected feasible true")
	}
	if j.Summary != "wrap it in {braces}" {
		t.Errorf("unexpected summary %q", j.Summary)
	}
}

func TestExtractJudgment_NoField(t *testing.T) {
	cases := []string{
		"",
		"no structure here at all",
		`{"verdict": "yes"}`,                // object without the field
		"the task is feasible in principle", // prose mention, not a field
		`{"feasible": tru`,                  // unterminated
	}
	for _, text := range cases {
		if _, ok := ExtractJudgment(text); ok {
			t.Errorf("expected no judgment for %q", text)
		}
	}
}

func TestExtractJudgment_PlanTruncated(t *testing.T) {
	text := `{"feasible": true, "plan": ["1", "2", "3", "4", "5", "6", "7"]}`

	j, ok := ExtractJudgment(text)
	if !ok {
		t.Fatal("expected a judgment")
	}
	if len(j.Plan) != 5 {
		t.Errorf("expected plan truncated to 5 steps, got %d", len(j.Plan))
	}
}
