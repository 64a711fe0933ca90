package forkchoice

import "github.com/geanlabs/gean/types"

// CurrentSlot returns the slot implied by the store's last-seen time.
func (s *Store) CurrentSlot() types.Slot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return types.Slot(s.Time / types.IntervalsPerSlot)
}

// CurrentInterval returns the interval (0..IntervalsPerSlot-1) within
// the store's current slot.
func (s *Store) CurrentInterval() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Time % types.IntervalsPerSlot
}

// OnTick advances the store's clock to nowSeconds, replaying every
// interval boundary crossed so justification/safe-target bookkeeping
// stays in lockstep with wall time. hasProposal signals that the local
// node is about to (or just did) produce a block for the interval being
// entered, which triggers an early vote-acceptance pass so the
// freshly-produced block sees the most current vote set.
func (s *Store) OnTick(nowSeconds uint64, hasProposal bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if nowSeconds < s.Config.GenesisTime {
		return
	}
	target := (nowSeconds - s.Config.GenesisTime) / types.SecondsPerInterval
	for s.Time < target {
		signal := hasProposal && (s.Time+1) == target
		s.tickIntervalLocked(signal)
	}
}

func (s *Store) tickIntervalLocked(hasProposal bool) {
	s.Time++
	switch s.Time % types.IntervalsPerSlot {
	case 0:
		if hasProposal {
			s.acceptNewVotesLocked()
		}
	case 1:
		// validator attestation interval: no store action
	case 2:
		s.updateSafeTargetLocked()
	default:
		s.acceptNewVotesLocked()
	}
}

// advanceToSlotLocked ticks the store forward to the start of slot and
// folds in any pending new votes, so block production always sees a
// fully up-to-date vote set.
func (s *Store) advanceToSlotLocked(slot types.Slot) {
	slotTime := s.Config.GenesisTime + uint64(slot)*types.SecondsPerSlot
	target := (slotTime - s.Config.GenesisTime) / types.SecondsPerInterval
	for s.Time < target {
		signal := (s.Time + 1) == target
		s.tickIntervalLocked(signal)
	}
	s.acceptNewVotesLocked()
}
