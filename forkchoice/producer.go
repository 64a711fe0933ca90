package forkchoice

import (
	"fmt"
	"sort"

	"github.com/geanlabs/gean/consensus"
	"github.com/geanlabs/gean/types"
)

// ProduceBlock builds a block for slot proposed by validatorIndex: it
// iteratively grows the attestation set until a fixed point is reached
// (processing attestations can justify new checkpoints, which can make
// further known votes eligible), then inserts the result directly into
// the store and advances the head. This bypasses OnBlock's idempotency
// and re-validation path since the state root was already computed and
// verified here under the same lock.
func (s *Store) ProduceBlock(slot types.Slot, validatorIndex types.ValidatorIndex) (*types.Block, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	expectedProposer := uint64(slot) % s.Config.NumValidators
	if uint64(validatorIndex) != expectedProposer {
		return nil, fmt.Errorf("%w: validator %d is not proposer for slot %d (want %d)", ErrInvalidProposer, validatorIndex, slot, expectedProposer)
	}

	s.advanceToSlotLocked(slot)

	parent := s.Head
	baseState, exists := s.States[parent]
	if !exists {
		return nil, fmt.Errorf("%w: head state %s", ErrHeadNotFound, parent.Short())
	}

	advancedState, err := consensus.ProcessSlots(baseState, slot)
	if err != nil {
		return nil, fmt.Errorf("forkchoice: advance head state: %w", err)
	}

	knownVoteIDs := make([]types.ValidatorIndex, 0, len(s.LatestKnownVotes))
	for vid := range s.LatestKnownVotes {
		knownVoteIDs = append(knownVoteIDs, vid)
	}
	sort.Slice(knownVoteIDs, func(i, j int) bool { return knownVoteIDs[i] < knownVoteIDs[j] })

	var attestations []types.SignedVote
	for {
		trial := &types.Block{
			Slot:          slot,
			ProposerIndex: uint64(validatorIndex),
			ParentRoot:    parent,
			Body:          types.BlockBody{Attestations: attestations},
		}
		trialPost, err := consensus.ProcessBlock(consensus.Copy(advancedState), trial)
		if err != nil {
			return nil, fmt.Errorf("forkchoice: produce trial block: %w", err)
		}

		seen := make(map[uint64]bool, len(attestations))
		for _, a := range attestations {
			seen[a.Data.ValidatorID] = true
		}

		var fresh []types.SignedVote
		for _, vid := range knownVoteIDs {
			ckpt := s.LatestKnownVotes[vid]
			if ckpt.Root.IsZero() {
				continue
			}
			if _, exists := s.Blocks[ckpt.Root]; !exists {
				continue
			}
			if seen[uint64(vid)] {
				continue
			}
			fresh = append(fresh, types.SignedVote{Data: types.Vote{
				ValidatorID: uint64(vid),
				Slot:        ckpt.Slot,
				Head:        ckpt,
				Target:      ckpt,
				Source:      trialPost.LatestJustified,
			}})
		}

		if len(fresh) == 0 {
			break
		}
		attestations = append(attestations, fresh...)
	}

	final := &types.Block{
		Slot:          slot,
		ProposerIndex: uint64(validatorIndex),
		ParentRoot:    parent,
		Body:          types.BlockBody{Attestations: attestations},
	}
	finalPost, err := consensus.ProcessBlock(consensus.Copy(advancedState), final)
	if err != nil {
		return nil, fmt.Errorf("forkchoice: produce final block: %w", err)
	}
	stateRoot, err := finalPost.HashTreeRoot()
	if err != nil {
		return nil, fmt.Errorf("forkchoice: hash final state: %w", err)
	}
	final.SetStateRoot(stateRoot)

	blockRoot, err := final.HashTreeRoot()
	if err != nil {
		return nil, fmt.Errorf("forkchoice: hash final block: %w", err)
	}
	s.Blocks[blockRoot] = final
	s.States[blockRoot] = finalPost
	s.Head = blockRoot

	return final, nil
}
