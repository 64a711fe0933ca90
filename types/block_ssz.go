package types

import (
	fastssz "github.com/ferranbt/fastssz"

	"github.com/geanlabs/gean/ssz"
)

// blockFixedSize is Slot+ProposerIndex+ParentRoot+StateRoot plus the
// 4-byte offset pointing at the variable-size Body.
const blockFixedSize = 8 + 8 + 32 + 32 + 4

func (b *Block) SizeSSZ() int {
	return blockFixedSize + b.Body.SizeSSZ()
}

func (b *Block) MarshalSSZ() ([]byte, error) {
	return b.MarshalSSZTo(make([]byte, 0, b.SizeSSZ()))
}

func (b *Block) MarshalSSZTo(dst []byte) ([]byte, error) {
	dst = fastssz.MarshalUint64(dst, uint64(b.Slot))
	dst = fastssz.MarshalUint64(dst, b.ProposerIndex)
	dst = append(dst, b.ParentRoot[:]...)
	dst = append(dst, b.StateRoot[:]...)
	dst = fastssz.WriteOffset(dst, blockFixedSize)
	bodyBytes, err := b.Body.MarshalSSZ()
	if err != nil {
		return nil, err
	}
	dst = append(dst, bodyBytes...)
	return dst, nil
}

func (b *Block) UnmarshalSSZ(buf []byte) error {
	if len(buf) < blockFixedSize {
		return fastssz.ErrSize
	}
	b.Slot = Slot(fastssz.UnmarshallUint64(buf[0:8]))
	b.ProposerIndex = fastssz.UnmarshallUint64(buf[8:16])
	copy(b.ParentRoot[:], buf[16:48])
	copy(b.StateRoot[:], buf[48:80])
	offset := fastssz.ReadOffset(buf[80:84])
	if int(offset) != blockFixedSize {
		return fastssz.ErrOffset
	}
	b.cachedRoot = nil
	return b.Body.UnmarshalSSZ(buf[blockFixedSize:])
}

// HashTreeRoot computes b's Merkle root, memoizing the result on first
// call. Use SetStateRoot to mutate the cached state root and invalidate
// the memoized value, rather than assigning b.StateRoot directly.
func (b *Block) HashTreeRoot() (ssz.Root, error) {
	if b.cachedRoot != nil {
		return ssz.Root(*b.cachedRoot), nil
	}
	bodyRoot, err := b.Body.HashTreeRoot()
	if err != nil {
		return ssz.Root{}, err
	}
	root := ssz.Merkleize([]ssz.Root{
		uint64Root(uint64(b.Slot)),
		uint64Root(b.ProposerIndex),
		b.ParentRoot,
		b.StateRoot,
		bodyRoot,
	}, 0)
	b.cachedRoot = (*Root)(&root)
	return root, nil
}

// SetStateRoot mutates b.StateRoot and invalidates the cached hash.
func (b *Block) SetStateRoot(root Root) {
	b.StateRoot = root
	b.cachedRoot = nil
}

// Clone returns a deep copy of b with an un-memoized hash cache, safe to
// mutate independently of the original.
func (b *Block) Clone() *Block {
	cp := &Block{
		Slot:          b.Slot,
		ProposerIndex: b.ProposerIndex,
		ParentRoot:    b.ParentRoot,
		StateRoot:     b.StateRoot,
		Body:          BlockBody{Attestations: append([]SignedVote{}, b.Body.Attestations...)},
	}
	return cp
}
