package types

import (
	"bytes"
	"testing"

	bitfield "github.com/OffchainLabs/go-bitfield"
)

func TestCheckpointRoundTrip(t *testing.T) {
	c := Checkpoint{Root: Root{1, 2, 3}, Slot: 42}
	buf, err := c.MarshalSSZ()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if len(buf) != c.SizeSSZ() {
		t.Fatalf("size mismatch: got %d want %d", len(buf), c.SizeSSZ())
	}
	var got Checkpoint
	if err := got.UnmarshalSSZ(buf); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got != c {
		t.Fatalf("roundtrip mismatch: got %+v want %+v", got, c)
	}
}

func TestCheckpointHashDeterministic(t *testing.T) {
	c := Checkpoint{Root: Root{9}, Slot: 7}
	r1, err := c.HashTreeRoot()
	if err != nil {
		t.Fatal(err)
	}
	r2, err := c.HashTreeRoot()
	if err != nil {
		t.Fatal(err)
	}
	if r1 != r2 {
		t.Fatal("hash_tree_root not deterministic")
	}
	other := Checkpoint{Root: Root{9}, Slot: 8}
	r3, err := other.HashTreeRoot()
	if err != nil {
		t.Fatal(err)
	}
	if r1 == r3 {
		t.Fatal("different checkpoints hashed to the same root")
	}
}

func TestVoteRoundTrip(t *testing.T) {
	v := Vote{
		ValidatorID: 3,
		Slot:        10,
		Head:        Checkpoint{Root: Root{1}, Slot: 10},
		Target:      Checkpoint{Root: Root{2}, Slot: 8},
		Source:      Checkpoint{Root: Root{3}, Slot: 4},
	}
	buf, err := v.MarshalSSZ()
	if err != nil {
		t.Fatal(err)
	}
	var got Vote
	if err := got.UnmarshalSSZ(buf); err != nil {
		t.Fatal(err)
	}
	if got != v {
		t.Fatalf("roundtrip mismatch: got %+v want %+v", got, v)
	}
}

func TestSignedVoteRoundTrip(t *testing.T) {
	sv := SignedVote{Data: Vote{ValidatorID: 1, Slot: 1}}
	sv.Signature[0] = 0xAB
	sv.Signature[SignatureSize-1] = 0xCD

	buf, err := sv.MarshalSSZ()
	if err != nil {
		t.Fatal(err)
	}
	if len(buf) != SignatureSize+136 {
		t.Fatalf("unexpected size: %d", len(buf))
	}
	var got SignedVote
	if err := got.UnmarshalSSZ(buf); err != nil {
		t.Fatal(err)
	}
	if got.Data != sv.Data || got.Signature != sv.Signature {
		t.Fatalf("roundtrip mismatch")
	}
}

func TestValidatorRoundTrip(t *testing.T) {
	var v Validator
	v.Pubkey[0] = 1
	v.Pubkey[PubkeySize-1] = 2
	buf, err := v.MarshalSSZ()
	if err != nil {
		t.Fatal(err)
	}
	var got Validator
	if err := got.UnmarshalSSZ(buf); err != nil {
		t.Fatal(err)
	}
	if got != v {
		t.Fatal("roundtrip mismatch")
	}
}

func TestBlockHeaderRoundTripAndCache(t *testing.T) {
	h := BlockHeader{Slot: 5, ProposerIndex: 2, ParentRoot: Root{1}, StateRoot: Root{2}, BodyRoot: Root{3}}
	buf, err := h.MarshalSSZ()
	if err != nil {
		t.Fatal(err)
	}
	var got BlockHeader
	if err := got.UnmarshalSSZ(buf); err != nil {
		t.Fatal(err)
	}
	if got.Slot != h.Slot || got.ProposerIndex != h.ProposerIndex || got.ParentRoot != h.ParentRoot ||
		got.StateRoot != h.StateRoot || got.BodyRoot != h.BodyRoot {
		t.Fatalf("roundtrip mismatch")
	}

	r1, err := h.HashTreeRoot()
	if err != nil {
		t.Fatal(err)
	}
	h.StateRoot = Root{99} // direct mutation must NOT be visible through the cache
	r2, err := h.HashTreeRoot()
	if err != nil {
		t.Fatal(err)
	}
	if r1 != r2 {
		t.Fatal("cached root changed despite not going through SetStateRoot")
	}

	h.SetStateRoot(Root{100})
	r3, err := h.HashTreeRoot()
	if err != nil {
		t.Fatal(err)
	}
	if r3 == r2 {
		t.Fatal("SetStateRoot did not invalidate the cached root")
	}
}

func TestBlockBodyRoundTrip(t *testing.T) {
	body := BlockBody{Attestations: []SignedVote{
		{Data: Vote{ValidatorID: 1}},
		{Data: Vote{ValidatorID: 2}},
	}}
	buf, err := body.MarshalSSZ()
	if err != nil {
		t.Fatal(err)
	}
	var got BlockBody
	if err := got.UnmarshalSSZ(buf); err != nil {
		t.Fatal(err)
	}
	if len(got.Attestations) != 2 || got.Attestations[0].Data.ValidatorID != 1 || got.Attestations[1].Data.ValidatorID != 2 {
		t.Fatalf("roundtrip mismatch: %+v", got)
	}
}

func TestBlockRoundTripAndClone(t *testing.T) {
	b := Block{
		Slot:          3,
		ProposerIndex: 1,
		ParentRoot:    Root{1},
		StateRoot:     Root{2},
		Body: BlockBody{Attestations: []SignedVote{
			{Data: Vote{ValidatorID: 5}},
		}},
	}
	buf, err := b.MarshalSSZ()
	if err != nil {
		t.Fatal(err)
	}
	var got Block
	if err := got.UnmarshalSSZ(buf); err != nil {
		t.Fatal(err)
	}
	if got.Slot != b.Slot || got.ParentRoot != b.ParentRoot || len(got.Body.Attestations) != 1 {
		t.Fatalf("roundtrip mismatch: %+v", got)
	}

	clone := b.Clone()
	clone.Body.Attestations[0].Data.ValidatorID = 99
	if b.Body.Attestations[0].Data.ValidatorID == 99 {
		t.Fatal("Clone aliased the Attestations slice")
	}
}

func TestBlockHeaderDerivedFromBlock(t *testing.T) {
	b := Block{Slot: 1, ProposerIndex: 0, ParentRoot: Root{7}, StateRoot: Root{8}}
	hdr, err := b.Header()
	if err != nil {
		t.Fatal(err)
	}
	bodyRoot, err := b.Body.HashTreeRoot()
	if err != nil {
		t.Fatal(err)
	}
	if hdr.BodyRoot != bodyRoot {
		t.Fatal("Header().BodyRoot does not match Body.HashTreeRoot()")
	}
	if hdr.ParentRoot != b.ParentRoot || hdr.StateRoot != b.StateRoot {
		t.Fatal("Header() dropped fixed fields")
	}
}

func TestStateRoundTrip(t *testing.T) {
	bits := bitfield.NewBitlist(3)
	bits.SetBitAt(0, true)
	bits.SetBitAt(2, true)

	justBits := bitfield.NewBitlist(2)
	justBits.SetBitAt(1, true)

	s := State{
		Config:            Config{NumValidators: 4, GenesisTime: 1000},
		Slot:              9,
		LatestBlockHeader: BlockHeader{Slot: 8, ParentRoot: Root{1}},
		LatestJustified:   Checkpoint{Root: Root{2}, Slot: 4},
		LatestFinalized:   Checkpoint{Root: Root{3}, Slot: 0},
		HistoricalBlockHashes: []Root{
			{10}, {11}, {12},
		},
		JustifiedSlots: bits,
		Validators: []Validator{
			{Pubkey: Pubkey{1}},
			{Pubkey: Pubkey{2}},
		},
		JustificationsRoots:      []Root{{20}, {21}},
		JustificationsValidators: justBits,
	}

	buf, err := s.MarshalSSZ()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if len(buf) != s.SizeSSZ() {
		t.Fatalf("size mismatch: got %d want %d", len(buf), s.SizeSSZ())
	}

	var got State
	if err := got.UnmarshalSSZ(buf); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Config != s.Config || got.Slot != s.Slot {
		t.Fatalf("fixed fields mismatch: %+v", got)
	}
	if len(got.HistoricalBlockHashes) != 3 || got.HistoricalBlockHashes[2] != (Root{12}) {
		t.Fatalf("HistoricalBlockHashes mismatch: %+v", got.HistoricalBlockHashes)
	}
	if !bytes.Equal(got.JustifiedSlots, []byte(s.JustifiedSlots)) {
		t.Fatalf("JustifiedSlots mismatch: %x vs %x", got.JustifiedSlots, []byte(s.JustifiedSlots))
	}
	if len(got.Validators) != 2 || got.Validators[1].Pubkey != (Pubkey{2}) {
		t.Fatalf("Validators mismatch: %+v", got.Validators)
	}
	if len(got.JustificationsRoots) != 2 {
		t.Fatalf("JustificationsRoots mismatch: %+v", got.JustificationsRoots)
	}
	if !bytes.Equal(got.JustificationsValidators, []byte(s.JustificationsValidators)) {
		t.Fatalf("JustificationsValidators mismatch")
	}

	r1, err := s.HashTreeRoot()
	if err != nil {
		t.Fatal(err)
	}
	r2, err := got.HashTreeRoot()
	if err != nil {
		t.Fatal(err)
	}
	if r1 != r2 {
		t.Fatal("hash_tree_root changed across a roundtrip")
	}
}

func TestStateHashChangesOnMutation(t *testing.T) {
	s := State{Config: Config{NumValidators: 1}, Slot: 1}
	r1, err := s.HashTreeRoot()
	if err != nil {
		t.Fatal(err)
	}
	s.Slot = 2
	r2, err := s.HashTreeRoot()
	if err != nil {
		t.Fatal(err)
	}
	if r1 == r2 {
		t.Fatal("hash_tree_root did not change after mutating Slot")
	}
}

func TestEmptyListsHashDeterministically(t *testing.T) {
	s := State{Config: Config{NumValidators: 0}}
	r1, err := s.HashTreeRoot()
	if err != nil {
		t.Fatal(err)
	}
	r2, err := s.HashTreeRoot()
	if err != nil {
		t.Fatal(err)
	}
	if r1 != r2 {
		t.Fatal("empty-state hash not deterministic")
	}
}
