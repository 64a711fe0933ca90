package clock

import (
	"testing"
	"time"

	"github.com/geanlabs/gean/types"
)

func mockTime(unixSeconds int64) func() time.Time {
	return func() time.Time { return time.Unix(unixSeconds, 0) }
}

func TestCurrentSlotBeforeGenesis(t *testing.T) {
	c := NewWithTimeFunc(1000, mockTime(500))
	if slot := c.CurrentSlot(); slot != 0 {
		t.Errorf("CurrentSlot before genesis = %d, want 0", slot)
	}
	if !c.IsBeforeGenesis() {
		t.Error("IsBeforeGenesis should be true")
	}
}

func TestCurrentSlotAfterGenesis(t *testing.T) {
	tests := []struct {
		name     string
		nowTime  int64
		wantSlot types.Slot
	}{
		{"at genesis", 1000, 0},
		{"1 second after genesis", 1001, 0},
		{"3 seconds after genesis", 1003, 0},
		{"4 seconds after genesis (slot 1)", 1004, 1},
		{"8 seconds after genesis (slot 2)", 1008, 2},
		{"100 seconds after genesis (slot 25)", 1100, 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewWithTimeFunc(1000, mockTime(tt.nowTime))
			if slot := c.CurrentSlot(); slot != tt.wantSlot {
				t.Errorf("CurrentSlot = %d, want %d", slot, tt.wantSlot)
			}
		})
	}
}

func TestCurrentInterval(t *testing.T) {
	tests := []struct {
		nowTime      int64
		wantInterval uint64
	}{
		{1000, 0},
		{1001, 1},
		{1002, 2},
		{1003, 3},
		{1004, 0},
	}
	for _, tt := range tests {
		c := NewWithTimeFunc(1000, mockTime(tt.nowTime))
		if got := c.CurrentInterval(); got != tt.wantInterval {
			t.Errorf("CurrentInterval at %d = %d, want %d", tt.nowTime, got, tt.wantInterval)
		}
	}
}

func TestSlotStartTime(t *testing.T) {
	c := New(1000)
	if got := c.SlotStartTime(5); got != 1000+5*types.SecondsPerSlot {
		t.Errorf("SlotStartTime(5) = %d", got)
	}
}
