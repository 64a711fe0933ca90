package consensus

import (
	"fmt"

	"github.com/geanlabs/gean/types"
)

// StateTransition is the STF entry point: clone parentState, advance
// slots up to block.Slot, apply block, and optionally verify the
// resulting state hashes to block.StateRoot.
func StateTransition(block *types.Block, parentState *types.State, checkStateRoot bool) (*types.State, error) {
	state := Copy(parentState)

	advanced, err := ProcessSlots(state, block.Slot)
	if err != nil {
		return nil, err
	}

	post, err := ProcessBlock(advanced, block)
	if err != nil {
		return nil, err
	}

	if checkStateRoot {
		postRoot, err := post.HashTreeRoot()
		if err != nil {
			return nil, fmt.Errorf("consensus: hash post-state: %w", err)
		}
		if postRoot != block.StateRoot {
			return nil, ErrStateRootMismatch
		}
	}

	return post, nil
}
