package forkchoice_test

import (
	"testing"

	"github.com/geanlabs/gean/types"
)

func TestOnAttestationUnknownTarget(t *testing.T) {
	store := setupTestStore(t, 2)
	genesisRoot := store.HeadRoot()

	vote := types.SignedVote{Data: types.Vote{
		ValidatorID: 0,
		Slot:        1,
		Source:      types.Checkpoint{Root: genesisRoot, Slot: 0},
		Target:      types.Checkpoint{Root: types.Root{0xaa}, Slot: 1},
	}}
	if err := store.OnAttestation(&vote); err == nil {
		t.Error("expected invalid-attestation for unknown target")
	}
}

func TestOnAttestationAccepted(t *testing.T) {
	store := setupTestStore(t, 2)
	genesisRoot := store.HeadRoot()

	block := buildValidBlock(t, store, 1, nil)
	if err := store.OnBlock(block); err != nil {
		t.Fatal(err)
	}
	blockRoot, _ := block.HashTreeRoot()

	vote := types.SignedVote{Data: types.Vote{
		ValidatorID: 0,
		Slot:        1,
		Source:      types.Checkpoint{Root: genesisRoot, Slot: 0},
		Target:      types.Checkpoint{Root: blockRoot, Slot: 1},
		Head:        types.Checkpoint{Root: blockRoot, Slot: 1},
	}}
	if err := store.OnAttestation(&vote); err != nil {
		t.Fatalf("OnAttestation: %v", err)
	}
	if got, exists := store.LatestNewVotes[0]; !exists || got.Root != blockRoot {
		t.Errorf("LatestNewVotes[0] = %+v, want target", got)
	}
}

func TestGetVoteTargetReturnsHeadWhenJustifiable(t *testing.T) {
	store := setupTestStore(t, 2)
	target := store.GetVoteTarget()
	if target.Root != store.HeadRoot() {
		t.Errorf("GetVoteTarget = %x, want head %x", target.Root, store.HeadRoot())
	}
}
