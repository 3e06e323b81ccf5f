package idhash

import (
	"testing"
	"time"
)

func TestComputeRunID(t *testing.T) {
	start := time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)
	platforms := []string{"bountycaster", "clawquests", "github"}

	got := ComputeRunID(platforms, start)
	if len(got) != 64 {
		t.Errorf("ComputeRunID() length = %d, want 64", len(got))
	}

	// Same inputs should produce same output
	if got2 := ComputeRunID(platforms, start); got != got2 {
		t.Errorf("ComputeRunID() not deterministic: %s != %s", got, got2)
	}
}

func TestComputeRunID_DifferentInputs(t *testing.T) {
	start := time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)
	base := ComputeRunID([]string{"bountycaster", "github"}, start)

	// Different platform set should produce different hash
	if base == ComputeRunID([]string{"bountycaster"}, start) {
		t.Error("Different platform set should produce different hash")
	}

	// Different start time should produce different hash
	if base == ComputeRunID([]string{"bountycaster", "github"}, start.Add(time.Millisecond)) {
		t.Error("Different start time should produce different hash")
	}
}
