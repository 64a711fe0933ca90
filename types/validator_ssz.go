package types

import (
	fastssz "github.com/ferranbt/fastssz"

	"github.com/geanlabs/gean/ssz"
)

func (v *Validator) SizeSSZ() int { return PubkeySize }

func (v *Validator) MarshalSSZ() ([]byte, error) {
	return v.MarshalSSZTo(make([]byte, 0, v.SizeSSZ()))
}

func (v *Validator) MarshalSSZTo(dst []byte) ([]byte, error) {
	dst = append(dst, v.Pubkey[:]...)
	return dst, nil
}

func (v *Validator) UnmarshalSSZ(buf []byte) error {
	if len(buf) != v.SizeSSZ() {
		return fastssz.ErrSize
	}
	copy(v.Pubkey[:], buf)
	return nil
}

func (v *Validator) HashTreeRoot() (ssz.Root, error) {
	return ssz.Merkleize(ssz.Chunk(v.Pubkey[:]), 0), nil
}
