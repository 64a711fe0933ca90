package consensus_test

import (
	"testing"

	"github.com/geanlabs/gean/types"
)

func TestIsJustifiableAfter(t *testing.T) {
	tests := []struct {
		name      string
		finalized types.Slot
		candidate types.Slot
		expected  bool
	}{
		{"delta_0", 10, 10, true},
		{"delta_1", 10, 11, true},
		{"delta_5", 10, 15, true},
		{"delta_4_square", 10, 14, true},
		{"delta_9_square", 20, 29, true},
		{"delta_16_square", 50, 66, true},
		{"delta_6_pronic", 10, 16, true},
		{"delta_12_pronic", 20, 32, true},
		{"delta_20_pronic", 50, 70, true},
		{"delta_7_not_justifiable", 10, 17, false},
		{"delta_8_not_justifiable", 10, 18, false},
		{"delta_10_not_justifiable", 20, 30, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.candidate.IsJustifiableAfter(tt.finalized)
			if got != tt.expected {
				t.Errorf("Slot(%d).IsJustifiableAfter(%d) = %v, want %v", tt.candidate, tt.finalized, got, tt.expected)
			}
		})
	}
}

func TestIsJustifiableAfterCandidateBeforeFinalized(t *testing.T) {
	if types.Slot(9).IsJustifiableAfter(types.Slot(10)) {
		t.Error("expected false when candidate < finalized")
	}
}
