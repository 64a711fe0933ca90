package consensus

import (
	"fmt"

	bitfield "github.com/OffchainLabs/go-bitfield"

	"github.com/geanlabs/gean/types"
)

// Copy returns a deep copy of s, safe to mutate independently of the
// original. Slice-typed fields are always re-sliced, never aliased.
func Copy(s *types.State) *types.State {
	cp := *s
	cp.HistoricalBlockHashes = append([]types.Root{}, s.HistoricalBlockHashes...)
	cp.JustifiedSlots = append([]byte{}, s.JustifiedSlots...)
	cp.Validators = append([]types.Validator{}, s.Validators...)
	cp.JustificationsRoots = append([]types.Root{}, s.JustificationsRoots...)
	cp.JustificationsValidators = append([]byte{}, s.JustificationsValidators...)
	return &cp
}

// ProcessSlot performs per-slot maintenance: if the cached header's
// state_root is still zero, fill it with the hash of the current state.
func ProcessSlot(s *types.State) (*types.State, error) {
	if s.LatestBlockHeader.StateRoot.IsZero() {
		stateRoot, err := s.HashTreeRoot()
		if err != nil {
			return nil, fmt.Errorf("consensus: hash state: %w", err)
		}
		newState := Copy(s)
		newState.LatestBlockHeader.SetStateRoot(stateRoot)
		return newState, nil
	}
	return s, nil
}

// ProcessSlots advances state through empty slots up to targetSlot.
func ProcessSlots(s *types.State, targetSlot types.Slot) (*types.State, error) {
	if s.Slot >= targetSlot {
		return nil, fmt.Errorf("%w: target slot %d must be greater than current slot %d", ErrInvalidSlot, targetSlot, s.Slot)
	}

	state := s
	var err error
	for state.Slot < targetSlot {
		state, err = ProcessSlot(state)
		if err != nil {
			return nil, err
		}
		newState := Copy(state)
		newState.Slot++
		state = newState
	}
	return state, nil
}

// ProcessBlockHeader validates block against state and replaces
// state.LatestBlockHeader with the header derived from block.
func ProcessBlockHeader(s *types.State, block *types.Block) (*types.State, error) {
	if block.Slot != s.Slot {
		return nil, fmt.Errorf("%w: block slot %d != state slot %d", ErrInvalidSlot, block.Slot, s.Slot)
	}
	if block.Slot <= s.LatestBlockHeader.Slot {
		return nil, fmt.Errorf("%w: block slot %d <= latest header slot %d", ErrInvalidSlot, block.Slot, s.LatestBlockHeader.Slot)
	}

	expectedProposer := uint64(block.Slot) % s.Config.NumValidators
	if block.ProposerIndex != expectedProposer {
		return nil, fmt.Errorf("%w: got %d for slot %d, want %d", ErrInvalidProposer, block.ProposerIndex, block.Slot, expectedProposer)
	}

	expectedParent, err := s.LatestBlockHeader.HashTreeRoot()
	if err != nil {
		return nil, fmt.Errorf("consensus: hash latest header: %w", err)
	}
	if block.ParentRoot != expectedParent {
		return nil, ErrParentRootMismatch
	}

	newState := Copy(s)

	isGenesisParent := s.LatestBlockHeader.Slot == 0
	if isGenesisParent {
		newState.LatestJustified.Root = block.ParentRoot
		newState.LatestFinalized.Root = block.ParentRoot
	}

	newState.HistoricalBlockHashes = append(newState.HistoricalBlockHashes, block.ParentRoot)
	newState.JustifiedSlots = appendBit(newState.JustifiedSlots, isGenesisParent)

	emptySlots := int(block.Slot - s.LatestBlockHeader.Slot - 1)
	for i := 0; i < emptySlots; i++ {
		newState.HistoricalBlockHashes = append(newState.HistoricalBlockHashes, types.Root{})
		newState.JustifiedSlots = appendBit(newState.JustifiedSlots, false)
	}

	bodyRoot, err := block.Body.HashTreeRoot()
	if err != nil {
		return nil, fmt.Errorf("consensus: hash body: %w", err)
	}
	newState.LatestBlockHeader = types.BlockHeader{
		Slot:          block.Slot,
		ProposerIndex: block.ProposerIndex,
		ParentRoot:    block.ParentRoot,
		StateRoot:     types.Root{},
		BodyRoot:      bodyRoot,
	}

	return newState, nil
}

// ProcessAttestations applies the justification/finalization rule for
// every attestation in a block body, reconstructing and reflattening the
// justifications map around the loop.
func ProcessAttestations(s *types.State, attestations []types.SignedVote) (*types.State, error) {
	newState := Copy(s)
	justifications := getJustifications(newState)
	numValidators := int(newState.Config.NumValidators)

	for _, signedVote := range attestations {
		vote := signedVote.Data
		sourceSlot := int(vote.Source.Slot)
		targetSlot := int(vote.Target.Slot)

		if sourceSlot >= len(newState.HistoricalBlockHashes) {
			return nil, fmt.Errorf("%w: %d", ErrInvalidSourceSlot, sourceSlot)
		}
		if targetSlot >= len(newState.HistoricalBlockHashes) {
			return nil, fmt.Errorf("%w: %d", ErrInvalidTargetSlot, targetSlot)
		}

		if !getBit(newState.JustifiedSlots, sourceSlot) {
			continue
		}
		if getBit(newState.JustifiedSlots, targetSlot) {
			continue
		}
		if vote.Source.Root != newState.HistoricalBlockHashes[sourceSlot] {
			continue
		}
		if vote.Target.Root != newState.HistoricalBlockHashes[targetSlot] {
			continue
		}
		if vote.Target.Slot <= vote.Source.Slot {
			continue
		}
		if !vote.Target.Slot.IsJustifiableAfter(newState.LatestFinalized.Slot) {
			continue
		}

		if int(vote.ValidatorID) >= numValidators {
			return nil, fmt.Errorf("%w: %d", ErrInvalidVoter, vote.ValidatorID)
		}

		if _, exists := justifications[vote.Target.Root]; !exists {
			justifications[vote.Target.Root] = make([]bool, numValidators)
		}
		justifications[vote.Target.Root][vote.ValidatorID] = true

		count := countVotes(justifications[vote.Target.Root])
		if 3*count >= 2*numValidators {
			newState.LatestJustified = vote.Target
			newState.JustifiedSlots = setBit(newState.JustifiedSlots, targetSlot, true)
			delete(justifications, vote.Target.Root)

			canFinalize := true
			for slot := vote.Source.Slot + 1; slot < vote.Target.Slot; slot++ {
				if slot.IsJustifiableAfter(newState.LatestFinalized.Slot) {
					canFinalize = false
					break
				}
			}
			if canFinalize {
				newState.LatestFinalized = vote.Source
			}
		}
	}

	setJustifications(newState, justifications)
	return newState, nil
}

// ProcessBlock applies header then attestation processing, in that order.
func ProcessBlock(s *types.State, block *types.Block) (*types.State, error) {
	state, err := ProcessBlockHeader(s, block)
	if err != nil {
		return nil, err
	}
	return ProcessAttestations(state, block.Body.Attestations)
}

func getBit(bits []byte, index int) bool {
	bl := bitfield.Bitlist(bits)
	if uint64(index) >= bl.Len() {
		return false
	}
	return bl.BitAt(uint64(index))
}

func setBit(bits []byte, index int, val bool) []byte {
	bl := bitfield.Bitlist(bits)
	idx := uint64(index)
	if idx >= bl.Len() {
		newBl := bitfield.NewBitlist(idx + 1)
		for i := uint64(0); i < bl.Len(); i++ {
			if bl.BitAt(i) {
				newBl.SetBitAt(i, true)
			}
		}
		bl = newBl
	}
	bl.SetBitAt(idx, val)
	return bl
}

// appendBit grows bits by exactly one logical slot and sets it to val.
func appendBit(bits []byte, val bool) []byte {
	bl := bitfield.Bitlist(bits)
	n := bl.Len()
	return setBit(bits, int(n), val)
}
