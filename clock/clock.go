// Package clock converts wall-clock time into the slot/interval time
// model the consensus core and fork-choice store operate on.
package clock

import (
	"time"

	"github.com/geanlabs/gean/types"
)

// SlotClock converts Unix timestamps to slots and intervals relative to
// a fixed genesis time.
type SlotClock struct {
	GenesisTime uint64
	now         func() time.Time
}

// New returns a SlotClock backed by the real wall clock.
func New(genesisTime uint64) *SlotClock {
	return &SlotClock{GenesisTime: genesisTime, now: time.Now}
}

// NewWithTimeFunc returns a SlotClock backed by an injectable time
// source, for deterministic tests.
func NewWithTimeFunc(genesisTime uint64, now func() time.Time) *SlotClock {
	return &SlotClock{GenesisTime: genesisTime, now: now}
}

// Now returns the current Unix timestamp from the clock's time source.
func (c *SlotClock) Now() uint64 { return uint64(c.now().Unix()) }

func (c *SlotClock) secondsSinceGenesis() uint64 {
	now := uint64(c.now().Unix())
	if now < c.GenesisTime {
		return 0
	}
	return now - c.GenesisTime
}

// CurrentSlot returns the slot containing the current wall-clock time.
func (c *SlotClock) CurrentSlot() types.Slot {
	return types.Slot(c.secondsSinceGenesis() / types.SecondsPerSlot)
}

// CurrentInterval returns the interval (0..IntervalsPerSlot-1) within
// the current slot.
func (c *SlotClock) CurrentInterval() uint64 {
	return (c.secondsSinceGenesis() % types.SecondsPerSlot) / types.SecondsPerInterval
}

// SlotStartTime returns the Unix timestamp at which slot begins.
func (c *SlotClock) SlotStartTime(slot types.Slot) uint64 {
	return c.GenesisTime + uint64(slot)*types.SecondsPerSlot
}

// IsBeforeGenesis reports whether the current wall-clock time precedes
// genesis.
func (c *SlotClock) IsBeforeGenesis() bool {
	return uint64(c.now().Unix()) < c.GenesisTime
}
