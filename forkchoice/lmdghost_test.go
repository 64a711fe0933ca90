package forkchoice_test

import (
	"testing"

	"github.com/geanlabs/gean/forkchoice"
	"github.com/geanlabs/gean/types"
)

// chain builds three linked blocks G <- A <- B with trivial roots
// derived from their slot, for head-algorithm testing in isolation
// from the STF.
func buildChain() (blocks map[types.Root]*types.Block, g, a, b types.Root) {
	g = types.Root{1}
	a = types.Root{2}
	b = types.Root{3}
	blocks = map[types.Root]*types.Block{
		g: {Slot: 0, ParentRoot: types.Root{}},
		a: {Slot: 1, ParentRoot: g},
		b: {Slot: 2, ParentRoot: a},
	}
	return
}

func TestGetHeadNoVotes(t *testing.T) {
	blocks, g, _, _ := buildChain()
	root := types.Checkpoint{Root: g, Slot: 0}
	head := forkchoice.GetHead(blocks, root, nil, 0)
	if head != g {
		t.Errorf("head = %x, want genesis root", head)
	}
}

func TestGetHeadSingleVote(t *testing.T) {
	blocks, g, _, b := buildChain()
	root := types.Checkpoint{Root: g, Slot: 0}
	votes := map[types.ValidatorIndex]types.Checkpoint{
		0: {Root: b, Slot: 2},
	}
	head := forkchoice.GetHead(blocks, root, votes, 0)
	if head != b {
		t.Errorf("head = %x, want B", head)
	}
}

func TestGetHeadMinScoreExcludesVote(t *testing.T) {
	blocks, g, _, b := buildChain()
	root := types.Checkpoint{Root: g, Slot: 0}
	votes := map[types.ValidatorIndex]types.Checkpoint{
		0: {Root: b, Slot: 2},
	}
	head := forkchoice.GetHead(blocks, root, votes, 2)
	if head != g {
		t.Errorf("head = %x, want genesis root under min_score=2", head)
	}
}
