package forkchoice

import "github.com/geanlabs/gean/types"

// GetHead runs LMD-GHOST from root: it walks down the fork tree, at each
// fork choosing the child with the greatest accumulated vote weight
// (ties broken by slot, then by root), restricted to blocks whose
// weight is at least minScore.
func GetHead(blocks map[types.Root]*types.Block, root types.Checkpoint, latestVotes map[types.ValidatorIndex]types.Checkpoint, minScore int) types.Root {
	if len(latestVotes) == 0 {
		return root.Root
	}

	rootSlot := root.Slot
	weights := make(map[types.Root]int)

	for _, vote := range latestVotes {
		if _, exists := blocks[vote.Root]; !exists {
			continue
		}
		hash := vote.Root
		for blocks[hash].Slot > rootSlot {
			weights[hash]++
			hash = blocks[hash].ParentRoot
		}
	}

	children := make(map[types.Root][]types.Root)
	for hash, block := range blocks {
		if block.Slot > rootSlot && weights[hash] >= minScore {
			children[block.ParentRoot] = append(children[block.ParentRoot], hash)
		}
	}

	current := root.Root
	for {
		kids := children[current]
		if len(kids) == 0 {
			return current
		}

		best := kids[0]
		bestWeight := weights[best]
		bestSlot := blocks[best].Slot
		for _, kid := range kids[1:] {
			weight := weights[kid]
			slot := blocks[kid].Slot
			if weight > bestWeight ||
				(weight == bestWeight && slot > bestSlot) ||
				(weight == bestWeight && slot == bestSlot && kid.Compare(best) > 0) {
				best = kid
				bestWeight = weight
				bestSlot = slot
			}
		}
		current = best
	}
}

// latestJustifiedCheckpoint returns the highest (slot, root) checkpoint
// appearing as latest_justified across states, breaking ties by root.
// If the winner's slot is 0, its root is replaced with genesisRoot: the
// genesis state's own latest_justified still points at the zero root
// before any block has made it canonical.
func latestJustifiedCheckpoint(states map[types.Root]*types.State, genesisRoot types.Root) types.Checkpoint {
	var best types.Checkpoint
	found := false
	for _, state := range states {
		cp := state.LatestJustified
		if !found || cp.Slot > best.Slot || (cp.Slot == best.Slot && cp.Root.Compare(best.Root) > 0) {
			best = cp
			found = true
		}
	}
	if best.Slot == 0 {
		best.Root = genesisRoot
	}
	return best
}
