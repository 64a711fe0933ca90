package consensus

import (
	"sort"

	bitfield "github.com/OffchainLabs/go-bitfield"

	"github.com/geanlabs/gean/types"
)

// getJustifications reconstructs the logical target-root -> per-validator
// vote bitvector map from the state's flattened encoding.
func getJustifications(s *types.State) map[types.Root][]bool {
	justifications := make(map[types.Root][]bool, len(s.JustificationsRoots))
	if len(s.JustificationsRoots) == 0 {
		return justifications
	}

	numValidators := int(s.Config.NumValidators)
	flatVotes := bitfield.Bitlist(s.JustificationsValidators)

	for i, root := range s.JustificationsRoots {
		startIdx := i * numValidators
		votes := make([]bool, numValidators)
		for j := 0; j < numValidators; j++ {
			idx := uint64(startIdx + j)
			if idx < flatVotes.Len() {
				votes[j] = flatVotes.BitAt(idx)
			}
		}
		justifications[root] = votes
	}
	return justifications
}

// setJustifications flattens justifications back into newState's
// (JustificationsRoots, JustificationsValidators) pair, sorted by root
// for a deterministic encoding independent of map iteration order.
func setJustifications(newState *types.State, justifications map[types.Root][]bool) {
	if len(justifications) == 0 {
		newState.JustificationsRoots = []types.Root{}
		newState.JustificationsValidators = bitfield.NewBitlist(0)
		return
	}

	roots := make([]types.Root, 0, len(justifications))
	for root := range justifications {
		roots = append(roots, root)
	}
	sortRoots(roots)

	numValidators := int(newState.Config.NumValidators)
	totalBits := len(roots) * numValidators
	flatVotes := bitfield.NewBitlist(uint64(totalBits))
	for i, root := range roots {
		for j, voted := range justifications[root] {
			if voted {
				flatVotes.SetBitAt(uint64(i*numValidators+j), true)
			}
		}
	}

	newState.JustificationsRoots = roots
	newState.JustificationsValidators = flatVotes
}

func sortRoots(roots []types.Root) {
	sort.Slice(roots, func(i, j int) bool {
		return roots[i].Compare(roots[j]) < 0
	})
}

func countVotes(votes []bool) int {
	count := 0
	for _, v := range votes {
		if v {
			count++
		}
	}
	return count
}
