package reqresp

import (
	"testing"

	"github.com/geanlabs/gean/consensus"
	"github.com/geanlabs/gean/forkchoice"
	"github.com/geanlabs/gean/types"
)

func setupTestStore(t *testing.T) *forkchoice.Store {
	t.Helper()
	state, err := consensus.GenerateGenesisState(types.Config{NumValidators: 4, GenesisTime: 1000}, nil)
	if err != nil {
		t.Fatalf("generate genesis state: %v", err)
	}
	block, err := consensus.GenesisBlock(state)
	if err != nil {
		t.Fatalf("genesis block: %v", err)
	}
	store, err := forkchoice.NewStore(state, block)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return store
}

func TestGetStatus(t *testing.T) {
	store := setupTestStore(t)
	handler := NewHandler(store)

	status := handler.GetStatus()
	if status == nil {
		t.Fatal("GetStatus returned nil")
	}
	if status.Finalized.Slot != 0 {
		t.Errorf("Finalized.Slot = %d, want 0", status.Finalized.Slot)
	}
	if status.Head.Root != store.HeadRoot() {
		t.Error("Head.Root does not match store head")
	}
}

func TestHandleBlocksByRoot(t *testing.T) {
	store := setupTestStore(t)
	handler := NewHandler(store)

	request := &BlocksByRootRequest{Roots: []types.Root{store.HeadRoot()}}
	blocks := handler.HandleBlocksByRoot(request)

	if len(blocks) != 1 {
		t.Fatalf("expected 1 block, got %d", len(blocks))
	}
	if blocks[0].Slot != 0 {
		t.Errorf("block slot = %d, want 0", blocks[0].Slot)
	}
}

func TestHandleBlocksByRootUnknown(t *testing.T) {
	store := setupTestStore(t)
	handler := NewHandler(store)

	request := &BlocksByRootRequest{Roots: []types.Root{{1, 2, 3}}}
	if blocks := handler.HandleBlocksByRoot(request); len(blocks) != 0 {
		t.Errorf("expected 0 blocks for unknown root, got %d", len(blocks))
	}
}

func TestValidatePeerStatus(t *testing.T) {
	store := setupTestStore(t)
	handler := NewHandler(store)

	valid := &Status{
		Finalized: types.Checkpoint{Root: types.Root{}, Slot: 0},
		Head:      types.Checkpoint{Root: store.HeadRoot(), Slot: 0},
	}
	if err := handler.ValidatePeerStatus(valid); err != nil {
		t.Errorf("ValidatePeerStatus failed for valid status: %v", err)
	}

	inconsistent := &Status{
		Finalized: types.Checkpoint{Root: store.HeadRoot(), Slot: 7},
	}
	if err := handler.ValidatePeerStatus(inconsistent); err == nil {
		t.Error("expected error for inconsistent finalized slot")
	}
}

func TestStatusRoundTrip(t *testing.T) {
	original := &Status{
		Finalized: types.Checkpoint{Root: types.Root{0xaa}, Slot: 12},
		Head:      types.Checkpoint{Root: types.Root{0xbb}, Slot: 34},
	}
	data, err := original.MarshalSSZ()
	if err != nil {
		t.Fatal(err)
	}
	var decoded Status
	if err := decoded.UnmarshalSSZ(data); err != nil {
		t.Fatal(err)
	}
	if decoded != *original {
		t.Error("status round trip mismatch")
	}
}

func TestBlocksByRootRequestRoundTrip(t *testing.T) {
	original := &BlocksByRootRequest{Roots: []types.Root{{1}, {2}, {3}}}
	data, err := original.MarshalSSZ()
	if err != nil {
		t.Fatal(err)
	}
	var decoded BlocksByRootRequest
	if err := decoded.UnmarshalSSZ(data); err != nil {
		t.Fatal(err)
	}
	if len(decoded.Roots) != 3 {
		t.Fatalf("expected 3 roots, got %d", len(decoded.Roots))
	}
	for i := range original.Roots {
		if decoded.Roots[i] != original.Roots[i] {
			t.Errorf("root %d mismatch", i)
		}
	}
}
