package types

import (
	"github.com/geanlabs/gean/ssz"
)

const maxAttestations = int(ValidatorRegistryLimit)

// signedVoteSize is the fixed encoded size of every SignedVote element;
// BlockBody.Attestations is a list of fixed-size items, so no per-element
// offsets are needed.
var signedVoteSize = (&SignedVote{}).SizeSSZ()

func (b *BlockBody) SizeSSZ() int { return len(b.Attestations) * signedVoteSize }

func (b *BlockBody) MarshalSSZ() ([]byte, error) {
	return b.MarshalSSZTo(make([]byte, 0, b.SizeSSZ()))
}

func (b *BlockBody) MarshalSSZTo(dst []byte) ([]byte, error) {
	if len(b.Attestations) > maxAttestations {
		return nil, errListTooBig("BlockBody.Attestations", len(b.Attestations), maxAttestations)
	}
	for i := range b.Attestations {
		var err error
		if dst, err = b.Attestations[i].MarshalSSZTo(dst); err != nil {
			return nil, err
		}
	}
	return dst, nil
}

func (b *BlockBody) UnmarshalSSZ(buf []byte) error {
	if len(buf)%signedVoteSize != 0 {
		return errBadLength("BlockBody", len(buf))
	}
	n := len(buf) / signedVoteSize
	if n > maxAttestations {
		return errListTooBig("BlockBody.Attestations", n, maxAttestations)
	}
	b.Attestations = make([]SignedVote, n)
	for i := 0; i < n; i++ {
		if err := b.Attestations[i].UnmarshalSSZ(buf[i*signedVoteSize : (i+1)*signedVoteSize]); err != nil {
			return err
		}
	}
	return nil
}

// HashTreeRoot hashes each attestation, Merkleizes the roots under the
// validator-registry limit, and mixes in the actual count.
func (b *BlockBody) HashTreeRoot() (ssz.Root, error) {
	roots := make([]ssz.Root, len(b.Attestations))
	for i := range b.Attestations {
		r, err := b.Attestations[i].HashTreeRoot()
		if err != nil {
			return ssz.Root{}, err
		}
		roots[i] = r
	}
	return ssz.HashTreeRootList(roots, maxAttestations), nil
}
