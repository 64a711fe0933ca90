package forkchoice

import (
	"fmt"

	"github.com/geanlabs/gean/types"
)

// OnAttestation validates and ingests a gossip attestation (is_from_block
// is always false for attestations arriving off-chain).
func (s *Store) OnAttestation(signedVote *types.SignedVote) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.verifier != nil && !s.verifier.Verify(signedVote) {
		return fmt.Errorf("%w: signature rejected for validator %d", ErrInvalidAttestation, signedVote.Data.ValidatorID)
	}
	if err := s.validateAttestationLocked(signedVote); err != nil {
		return err
	}
	return s.processAttestationLocked(signedVote, false)
}

func (s *Store) validateAttestationLocked(signedVote *types.SignedVote) error {
	vote := signedVote.Data

	sourceBlock, exists := s.Blocks[vote.Source.Root]
	if !exists {
		return fmt.Errorf("%w: %w: source root %s", ErrInvalidAttestation, ErrSourceNotFound, vote.Source.Root.Short())
	}
	targetBlock, exists := s.Blocks[vote.Target.Root]
	if !exists {
		return fmt.Errorf("%w: %w: target root %s", ErrInvalidAttestation, ErrTargetNotFound, vote.Target.Root.Short())
	}

	if sourceBlock.Slot > targetBlock.Slot {
		return fmt.Errorf("%w: %w: source block slot %d > target block slot %d", ErrInvalidAttestation, ErrSlotMismatch, sourceBlock.Slot, targetBlock.Slot)
	}
	if vote.Source.Slot > vote.Target.Slot {
		return fmt.Errorf("%w: %w: source slot %d > target slot %d", ErrInvalidAttestation, ErrSlotMismatch, vote.Source.Slot, vote.Target.Slot)
	}
	if sourceBlock.Slot != vote.Source.Slot {
		return fmt.Errorf("%w: %w: source block slot %d != checkpoint slot %d", ErrInvalidAttestation, ErrSlotMismatch, sourceBlock.Slot, vote.Source.Slot)
	}
	if targetBlock.Slot != vote.Target.Slot {
		return fmt.Errorf("%w: %w: target block slot %d != checkpoint slot %d", ErrInvalidAttestation, ErrSlotMismatch, targetBlock.Slot, vote.Target.Slot)
	}

	currentSlot := types.Slot(s.Time / types.IntervalsPerSlot)
	if vote.Target.Slot > currentSlot+1 {
		return fmt.Errorf("%w: %w: target slot %d > current+1 (%d)", ErrInvalidAttestation, ErrFutureVote, vote.Target.Slot, currentSlot+1)
	}

	return nil
}

// processAttestationLocked merges a vote into the known or new vote map
// per the is_from_block rule: votes observed in a block supersede the
// new-vote entry for the same validator whenever the incoming target is
// not older, since the chain now carries that vote on-chain.
func (s *Store) processAttestationLocked(signedVote *types.SignedVote, isFromBlock bool) error {
	vote := signedVote.Data
	vid := types.ValidatorIndex(vote.ValidatorID)

	if isFromBlock {
		known, exists := s.LatestKnownVotes[vid]
		if !exists || known.Slot < vote.Target.Slot {
			s.LatestKnownVotes[vid] = vote.Target
		}
		if newVote, exists := s.LatestNewVotes[vid]; exists && newVote.Slot <= vote.Target.Slot {
			delete(s.LatestNewVotes, vid)
		}
		return nil
	}

	existing, exists := s.LatestNewVotes[vid]
	if !exists || existing.Slot < vote.Target.Slot {
		s.LatestNewVotes[vid] = vote.Target
	}
	return nil
}

// GetVoteTarget returns the checkpoint a local validator should include
// as the target of its next attestation.
func (s *Store) GetVoteTarget() types.Checkpoint {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getVoteTargetLocked()
}

func (s *Store) getVoteTargetLocked() types.Checkpoint {
	target := s.Head

	for i := 0; i < 3; i++ {
		if s.Blocks[target].Slot > s.Blocks[s.SafeTarget].Slot {
			target = s.Blocks[target].ParentRoot
		}
	}

	for !s.Blocks[target].Slot.IsJustifiableAfter(s.LatestFinalized.Slot) {
		target = s.Blocks[target].ParentRoot
	}

	return types.Checkpoint{Root: target, Slot: s.Blocks[target].Slot}
}
