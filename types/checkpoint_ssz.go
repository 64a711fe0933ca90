package types

import (
	fastssz "github.com/ferranbt/fastssz"

	"github.com/geanlabs/gean/ssz"
)

// SizeSSZ returns the fixed-size encoding length of a Checkpoint.
func (c *Checkpoint) SizeSSZ() int { return 40 }

// MarshalSSZ encodes c as a 32-byte root followed by an 8-byte
// little-endian slot.
func (c *Checkpoint) MarshalSSZ() ([]byte, error) {
	return c.MarshalSSZTo(make([]byte, 0, c.SizeSSZ()))
}

func (c *Checkpoint) MarshalSSZTo(dst []byte) ([]byte, error) {
	dst = append(dst, c.Root[:]...)
	dst = fastssz.MarshalUint64(dst, uint64(c.Slot))
	return dst, nil
}

func (c *Checkpoint) UnmarshalSSZ(buf []byte) error {
	if len(buf) != c.SizeSSZ() {
		return fastssz.ErrSize
	}
	copy(c.Root[:], buf[0:32])
	c.Slot = Slot(fastssz.UnmarshallUint64(buf[32:40]))
	return nil
}

// HashTreeRoot computes the Merkle root of a Checkpoint: two 32-byte
// chunks (root, slot) Merkleized with no declared capacity.
func (c *Checkpoint) HashTreeRoot() (ssz.Root, error) {
	return ssz.Merkleize([]ssz.Root{c.Root, uint64Root(uint64(c.Slot))}, 0), nil
}
