package types

import (
	fastssz "github.com/ferranbt/fastssz"

	"github.com/geanlabs/gean/ssz"
)

const (
	maxHistoricalRoots         = int(HistoricalRootsLimit)
	maxValidators              = int(ValidatorRegistryLimit)
	maxJustificationValidators = HistoricalRootsLimit * ValidatorRegistryLimit
)

// stateFixedSize is every fixed-size field (Config, Slot,
// LatestBlockHeader, LatestJustified, LatestFinalized) plus one 4-byte
// offset per variable-size field, in field order.
const stateFixedSize = 16 + 8 + 112 + 40 + 40 + 4*5

func (s *State) SizeSSZ() int {
	return stateFixedSize +
		len(s.HistoricalBlockHashes)*32 +
		len(s.JustifiedSlots) +
		len(s.Validators)*52 +
		len(s.JustificationsRoots)*32 +
		len(s.JustificationsValidators)
}

func (s *State) MarshalSSZ() ([]byte, error) {
	return s.MarshalSSZTo(make([]byte, 0, s.SizeSSZ()))
}

func (s *State) MarshalSSZTo(dst []byte) ([]byte, error) {
	if len(s.HistoricalBlockHashes) > maxHistoricalRoots {
		return nil, errListTooBig("State.HistoricalBlockHashes", len(s.HistoricalBlockHashes), maxHistoricalRoots)
	}
	if len(s.Validators) > maxValidators {
		return nil, errListTooBig("State.Validators", len(s.Validators), maxValidators)
	}
	if len(s.JustificationsRoots) > maxHistoricalRoots {
		return nil, errListTooBig("State.JustificationsRoots", len(s.JustificationsRoots), maxHistoricalRoots)
	}

	var err error
	if dst, err = s.Config.MarshalSSZTo(dst); err != nil {
		return nil, err
	}
	dst = fastssz.MarshalUint64(dst, uint64(s.Slot))
	if dst, err = s.LatestBlockHeader.MarshalSSZTo(dst); err != nil {
		return nil, err
	}
	if dst, err = s.LatestJustified.MarshalSSZTo(dst); err != nil {
		return nil, err
	}
	if dst, err = s.LatestFinalized.MarshalSSZTo(dst); err != nil {
		return nil, err
	}

	offset := stateFixedSize
	dst = fastssz.WriteOffset(dst, offset)
	offset += len(s.HistoricalBlockHashes) * 32
	dst = fastssz.WriteOffset(dst, offset)
	offset += len(s.JustifiedSlots)
	dst = fastssz.WriteOffset(dst, offset)
	offset += len(s.Validators) * 52
	dst = fastssz.WriteOffset(dst, offset)
	offset += len(s.JustificationsRoots) * 32
	dst = fastssz.WriteOffset(dst, offset)

	for _, r := range s.HistoricalBlockHashes {
		dst = append(dst, r[:]...)
	}
	dst = append(dst, s.JustifiedSlots...)
	for i := range s.Validators {
		if dst, err = s.Validators[i].MarshalSSZTo(dst); err != nil {
			return nil, err
		}
	}
	for _, r := range s.JustificationsRoots {
		dst = append(dst, r[:]...)
	}
	dst = append(dst, s.JustificationsValidators...)

	return dst, nil
}

func (s *State) UnmarshalSSZ(buf []byte) error {
	if len(buf) < stateFixedSize {
		return fastssz.ErrSize
	}
	if err := s.Config.UnmarshalSSZ(buf[0:16]); err != nil {
		return err
	}
	s.Slot = Slot(fastssz.UnmarshallUint64(buf[16:24]))
	if err := s.LatestBlockHeader.UnmarshalSSZ(buf[24:136]); err != nil {
		return err
	}
	if err := s.LatestJustified.UnmarshalSSZ(buf[136:176]); err != nil {
		return err
	}
	if err := s.LatestFinalized.UnmarshalSSZ(buf[176:216]); err != nil {
		return err
	}

	o1 := int(fastssz.ReadOffset(buf[216:220]))
	o2 := int(fastssz.ReadOffset(buf[220:224]))
	o3 := int(fastssz.ReadOffset(buf[224:228]))
	o4 := int(fastssz.ReadOffset(buf[228:232]))
	o5 := int(fastssz.ReadOffset(buf[232:236]))
	if !(stateFixedSize <= o1 && o1 <= o2 && o2 <= o3 && o3 <= o4 && o4 <= o5 && o5 <= len(buf)) {
		return fastssz.ErrOffset
	}

	hashesBuf := buf[o1:o2]
	if len(hashesBuf)%32 != 0 {
		return errBadLength("State.HistoricalBlockHashes", len(hashesBuf))
	}
	s.HistoricalBlockHashes = make([]Root, len(hashesBuf)/32)
	for i := range s.HistoricalBlockHashes {
		copy(s.HistoricalBlockHashes[i][:], hashesBuf[i*32:(i+1)*32])
	}

	s.JustifiedSlots = append([]byte{}, buf[o2:o3]...)

	validatorsBuf := buf[o3:o4]
	if len(validatorsBuf)%52 != 0 {
		return errBadLength("State.Validators", len(validatorsBuf))
	}
	s.Validators = make([]Validator, len(validatorsBuf)/52)
	for i := range s.Validators {
		if err := s.Validators[i].UnmarshalSSZ(validatorsBuf[i*52 : (i+1)*52]); err != nil {
			return err
		}
	}

	rootsBuf := buf[o4:o5]
	if len(rootsBuf)%32 != 0 {
		return errBadLength("State.JustificationsRoots", len(rootsBuf))
	}
	s.JustificationsRoots = make([]Root, len(rootsBuf)/32)
	for i := range s.JustificationsRoots {
		copy(s.JustificationsRoots[i][:], rootsBuf[i*32:(i+1)*32])
	}

	s.JustificationsValidators = append([]byte{}, buf[o5:]...)

	return nil
}

// HashTreeRoot computes the Merkle root of the full State container.
func (s *State) HashTreeRoot() (ssz.Root, error) {
	configRoot, err := s.Config.HashTreeRoot()
	if err != nil {
		return ssz.Root{}, err
	}
	headerRoot, err := s.LatestBlockHeader.HashTreeRoot()
	if err != nil {
		return ssz.Root{}, err
	}
	justifiedRoot, err := s.LatestJustified.HashTreeRoot()
	if err != nil {
		return ssz.Root{}, err
	}
	finalizedRoot, err := s.LatestFinalized.HashTreeRoot()
	if err != nil {
		return ssz.Root{}, err
	}

	historicalRoots := make([]ssz.Root, len(s.HistoricalBlockHashes))
	for i, r := range s.HistoricalBlockHashes {
		historicalRoots[i] = r
	}
	historicalRoot := ssz.HashTreeRootList(historicalRoots, maxHistoricalRoots)

	justifiedSlotsRoot := ssz.HashTreeRootBitlist(s.JustifiedSlots, HistoricalRootsLimit)

	validatorRoots := make([]ssz.Root, len(s.Validators))
	for i := range s.Validators {
		r, err := s.Validators[i].HashTreeRoot()
		if err != nil {
			return ssz.Root{}, err
		}
		validatorRoots[i] = r
	}
	validatorsRoot := ssz.HashTreeRootList(validatorRoots, maxValidators)

	justificationsRootsList := make([]ssz.Root, len(s.JustificationsRoots))
	for i, r := range s.JustificationsRoots {
		justificationsRootsList[i] = r
	}
	justificationsRootsRoot := ssz.HashTreeRootList(justificationsRootsList, maxHistoricalRoots)

	justificationsValidatorsRoot := ssz.HashTreeRootBitlist(s.JustificationsValidators, maxJustificationValidators)

	return ssz.Merkleize([]ssz.Root{
		configRoot,
		uint64Root(uint64(s.Slot)),
		headerRoot,
		justifiedRoot,
		finalizedRoot,
		historicalRoot,
		justifiedSlotsRoot,
		validatorsRoot,
		justificationsRootsRoot,
		justificationsValidatorsRoot,
	}, 0), nil
}
