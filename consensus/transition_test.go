package consensus_test

import (
	"errors"
	"testing"

	"github.com/geanlabs/gean/consensus"
	"github.com/geanlabs/gean/types"
)

// buildBlock constructs a block at slot with the given proposer/parent,
// computing its state_root against parentState so the result is valid by
// construction; it returns the block and the resulting post-state.
func buildBlock(t *testing.T, parentState *types.State, slot types.Slot, proposerIndex uint64, parentRoot types.Root, attestations []types.SignedVote) (*types.Block, *types.State) {
	t.Helper()
	if attestations == nil {
		attestations = []types.SignedVote{}
	}
	trial := &types.Block{
		Slot:          slot,
		ProposerIndex: proposerIndex,
		ParentRoot:    parentRoot,
		Body:          types.BlockBody{Attestations: attestations},
	}
	post, err := consensus.StateTransition(trial, parentState, false)
	if err != nil {
		t.Fatalf("build block %d: %v", slot, err)
	}
	stateRoot, err := post.HashTreeRoot()
	if err != nil {
		t.Fatal(err)
	}
	trial.SetStateRoot(stateRoot)
	return trial, post
}

func TestOneBlockRoundtrip(t *testing.T) {
	config := types.Config{NumValidators: 2}
	genesisState, err := consensus.GenerateGenesisState(config, nil)
	if err != nil {
		t.Fatal(err)
	}
	genesisBlock, err := consensus.GenesisBlock(genesisState)
	if err != nil {
		t.Fatal(err)
	}
	parentRoot, err := genesisBlock.HashTreeRoot()
	if err != nil {
		t.Fatal(err)
	}

	block1, _ := buildBlock(t, genesisState, 1, 1, parentRoot, nil)

	if _, err := consensus.StateTransition(block1, genesisState, true); err != nil {
		t.Fatalf("expected success, got %v", err)
	}

	tampered := block1.StateRoot
	tampered[0] ^= 0xFF
	block1.SetStateRoot(tampered)
	if _, err := consensus.StateTransition(block1, genesisState, true); !errors.Is(err, consensus.ErrStateRootMismatch) {
		t.Fatalf("expected ErrStateRootMismatch, got %v", err)
	}
}

func TestSkipSlotFiller(t *testing.T) {
	config := types.Config{NumValidators: 2}
	genesisState, err := consensus.GenerateGenesisState(config, nil)
	if err != nil {
		t.Fatal(err)
	}
	genesisBlock, err := consensus.GenesisBlock(genesisState)
	if err != nil {
		t.Fatal(err)
	}
	genesisRoot, err := genesisBlock.HashTreeRoot()
	if err != nil {
		t.Fatal(err)
	}

	block1, state1 := buildBlock(t, genesisState, 1, 1, genesisRoot, nil)
	block1Root, err := block1.HashTreeRoot()
	if err != nil {
		t.Fatal(err)
	}

	_, state2 := buildBlock(t, state1, 4, 0, block1Root, nil)

	if len(state2.HistoricalBlockHashes) != 4 {
		t.Fatalf("HistoricalBlockHashes len = %d, want 4", len(state2.HistoricalBlockHashes))
	}
	if state2.HistoricalBlockHashes[0] != genesisRoot {
		t.Errorf("HistoricalBlockHashes[0] = %x, want genesis root", state2.HistoricalBlockHashes[0])
	}
	if state2.HistoricalBlockHashes[1] != block1Root {
		t.Errorf("HistoricalBlockHashes[1] = %x, want block1 root", state2.HistoricalBlockHashes[1])
	}
	if !state2.HistoricalBlockHashes[2].IsZero() || !state2.HistoricalBlockHashes[3].IsZero() {
		t.Errorf("HistoricalBlockHashes[2:4] should be zero-filled for skipped slots 2,3")
	}
}

func TestWrongSlotRejected(t *testing.T) {
	config := types.Config{NumValidators: 2}
	genesisState, _ := consensus.GenerateGenesisState(config, nil)
	genesisBlock, _ := consensus.GenesisBlock(genesisState)
	parentRoot, _ := genesisBlock.HashTreeRoot()

	// A block at the parent's own slot must be rejected.
	bad := &types.Block{Slot: 0, ProposerIndex: 0, ParentRoot: parentRoot}
	if _, err := consensus.StateTransition(bad, genesisState, false); err == nil {
		t.Fatal("expected an error for a block at the parent slot")
	}
}

func TestWrongProposerRejected(t *testing.T) {
	config := types.Config{NumValidators: 2}
	genesisState, _ := consensus.GenerateGenesisState(config, nil)
	genesisBlock, _ := consensus.GenesisBlock(genesisState)
	parentRoot, _ := genesisBlock.HashTreeRoot()

	bad := &types.Block{Slot: 1, ProposerIndex: 0, ParentRoot: parentRoot}
	_, err := consensus.StateTransition(bad, genesisState, false)
	if !errors.Is(err, consensus.ErrInvalidProposer) {
		t.Fatalf("expected ErrInvalidProposer, got %v", err)
	}
}

func TestFinalizationByTwoThirds(t *testing.T) {
	config := types.Config{NumValidators: 3}
	genesisState, err := consensus.GenerateGenesisState(config, nil)
	if err != nil {
		t.Fatal(err)
	}
	genesisBlock, err := consensus.GenesisBlock(genesisState)
	if err != nil {
		t.Fatal(err)
	}
	genesisRoot, err := genesisBlock.HashTreeRoot()
	if err != nil {
		t.Fatal(err)
	}

	// Block 1 makes genesis justified/finalized (genesis-parent special case)
	// and becomes itself a justifiable target slot.
	block1, state1 := buildBlock(t, genesisState, 1, 1, genesisRoot, nil)
	source := types.Checkpoint{Root: genesisRoot, Slot: 0}
	target := types.Checkpoint{Root: mustHash(t, block1), Slot: 1}

	votes := make([]types.SignedVote, 0, 3)
	for vid := uint64(0); vid < 3; vid++ {
		votes = append(votes, types.SignedVote{Data: types.Vote{
			ValidatorID: vid,
			Slot:        2,
			Head:        target,
			Target:      target,
			Source:      source,
		}})
	}

	block1Root, err := block1.HashTreeRoot()
	if err != nil {
		t.Fatal(err)
	}
	_, state2 := buildBlock(t, state1, 2, 2, block1Root, votes)

	if state2.LatestJustified.Root != target.Root {
		t.Errorf("LatestJustified.Root = %x, want %x", state2.LatestJustified.Root, target.Root)
	}
	if state2.LatestFinalized.Root != source.Root {
		t.Errorf("LatestFinalized.Root = %x, want %x", state2.LatestFinalized.Root, source.Root)
	}
}

func mustHash(t *testing.T, b *types.Block) types.Root {
	t.Helper()
	r, err := b.HashTreeRoot()
	if err != nil {
		t.Fatal(err)
	}
	return r
}
