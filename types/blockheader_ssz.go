package types

import (
	fastssz "github.com/ferranbt/fastssz"

	"github.com/geanlabs/gean/ssz"
)

func (h *BlockHeader) SizeSSZ() int { return 8 + 8 + 32 + 32 + 32 }

func (h *BlockHeader) MarshalSSZ() ([]byte, error) {
	return h.MarshalSSZTo(make([]byte, 0, h.SizeSSZ()))
}

func (h *BlockHeader) MarshalSSZTo(dst []byte) ([]byte, error) {
	dst = fastssz.MarshalUint64(dst, uint64(h.Slot))
	dst = fastssz.MarshalUint64(dst, h.ProposerIndex)
	dst = append(dst, h.ParentRoot[:]...)
	dst = append(dst, h.StateRoot[:]...)
	dst = append(dst, h.BodyRoot[:]...)
	return dst, nil
}

func (h *BlockHeader) UnmarshalSSZ(buf []byte) error {
	if len(buf) != h.SizeSSZ() {
		return fastssz.ErrSize
	}
	h.Slot = Slot(fastssz.UnmarshallUint64(buf[0:8]))
	h.ProposerIndex = fastssz.UnmarshallUint64(buf[8:16])
	copy(h.ParentRoot[:], buf[16:48])
	copy(h.StateRoot[:], buf[48:80])
	copy(h.BodyRoot[:], buf[80:112])
	return nil
}

// HashTreeRoot computes h's Merkle root, memoizing the result. The cache
// is invalidated whenever StateRoot changes through SetStateRoot, the
// only in-place mutation the state transition performs on a cached
// header.
func (h *BlockHeader) HashTreeRoot() (ssz.Root, error) {
	if h.cachedRoot != nil {
		return ssz.Root(*h.cachedRoot), nil
	}
	root := ssz.Merkleize([]ssz.Root{
		uint64Root(uint64(h.Slot)),
		uint64Root(h.ProposerIndex),
		h.ParentRoot,
		h.StateRoot,
		h.BodyRoot,
	}, 0)
	h.cachedRoot = (*Root)(&root)
	return root, nil
}

// SetStateRoot mutates h.StateRoot and invalidates the cached hash, the
// pattern ProcessSlot relies on to fill in a parent header's state root
// lazily.
func (h *BlockHeader) SetStateRoot(root Root) {
	h.StateRoot = root
	h.cachedRoot = nil
}

// Header derives the canonical BlockHeader projection of b, with
// BodyRoot computed from b.Body. StateRoot is copied as-is; callers that
// need it zeroed for state-root validation do so explicitly.
func (b *Block) Header() (BlockHeader, error) {
	bodyRoot, err := b.Body.HashTreeRoot()
	if err != nil {
		return BlockHeader{}, err
	}
	return BlockHeader{
		Slot:          b.Slot,
		ProposerIndex: b.ProposerIndex,
		ParentRoot:    b.ParentRoot,
		StateRoot:     b.StateRoot,
		BodyRoot:      bodyRoot,
	}, nil
}
