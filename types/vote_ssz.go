package types

import (
	fastssz "github.com/ferranbt/fastssz"

	"github.com/geanlabs/gean/ssz"
)

func (v *Vote) SizeSSZ() int { return 8 + 8 + 40 + 40 + 40 }

func (v *Vote) MarshalSSZ() ([]byte, error) {
	return v.MarshalSSZTo(make([]byte, 0, v.SizeSSZ()))
}

func (v *Vote) MarshalSSZTo(dst []byte) ([]byte, error) {
	dst = fastssz.MarshalUint64(dst, v.ValidatorID)
	dst = fastssz.MarshalUint64(dst, uint64(v.Slot))
	var err error
	if dst, err = v.Head.MarshalSSZTo(dst); err != nil {
		return nil, err
	}
	if dst, err = v.Target.MarshalSSZTo(dst); err != nil {
		return nil, err
	}
	if dst, err = v.Source.MarshalSSZTo(dst); err != nil {
		return nil, err
	}
	return dst, nil
}

func (v *Vote) UnmarshalSSZ(buf []byte) error {
	if len(buf) != v.SizeSSZ() {
		return fastssz.ErrSize
	}
	v.ValidatorID = fastssz.UnmarshallUint64(buf[0:8])
	v.Slot = Slot(fastssz.UnmarshallUint64(buf[8:16]))
	if err := v.Head.UnmarshalSSZ(buf[16:56]); err != nil {
		return err
	}
	if err := v.Target.UnmarshalSSZ(buf[56:96]); err != nil {
		return err
	}
	if err := v.Source.UnmarshalSSZ(buf[96:136]); err != nil {
		return err
	}
	return nil
}

func (v *Vote) HashTreeRoot() (ssz.Root, error) {
	headRoot, err := v.Head.HashTreeRoot()
	if err != nil {
		return ssz.Root{}, err
	}
	targetRoot, err := v.Target.HashTreeRoot()
	if err != nil {
		return ssz.Root{}, err
	}
	sourceRoot, err := v.Source.HashTreeRoot()
	if err != nil {
		return ssz.Root{}, err
	}
	return ssz.Merkleize([]ssz.Root{
		uint64Root(v.ValidatorID),
		uint64Root(uint64(v.Slot)),
		headRoot,
		targetRoot,
		sourceRoot,
	}, 0), nil
}

func (sv *SignedVote) SizeSSZ() int { return (&Vote{}).SizeSSZ() + SignatureSize }

func (sv *SignedVote) MarshalSSZ() ([]byte, error) {
	return sv.MarshalSSZTo(make([]byte, 0, sv.SizeSSZ()))
}

func (sv *SignedVote) MarshalSSZTo(dst []byte) ([]byte, error) {
	dst, err := sv.Data.MarshalSSZTo(dst)
	if err != nil {
		return nil, err
	}
	dst = append(dst, sv.Signature[:]...)
	return dst, nil
}

func (sv *SignedVote) UnmarshalSSZ(buf []byte) error {
	if len(buf) != sv.SizeSSZ() {
		return fastssz.ErrSize
	}
	voteSize := (&Vote{}).SizeSSZ()
	if err := sv.Data.UnmarshalSSZ(buf[:voteSize]); err != nil {
		return err
	}
	copy(sv.Signature[:], buf[voteSize:])
	return nil
}

func (sv *SignedVote) HashTreeRoot() (ssz.Root, error) {
	dataRoot, err := sv.Data.HashTreeRoot()
	if err != nil {
		return ssz.Root{}, err
	}
	sigChunks := ssz.Chunk(sv.Signature[:])
	sigRoot := ssz.Merkleize(sigChunks, 0)
	return ssz.Merkleize([]ssz.Root{dataRoot, sigRoot}, 0), nil
}
