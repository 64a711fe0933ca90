package types

import (
	fastssz "github.com/ferranbt/fastssz"

	"github.com/geanlabs/gean/ssz"
)

func (c *Config) SizeSSZ() int { return 16 }

func (c *Config) MarshalSSZ() ([]byte, error) {
	return c.MarshalSSZTo(make([]byte, 0, c.SizeSSZ()))
}

func (c *Config) MarshalSSZTo(dst []byte) ([]byte, error) {
	dst = fastssz.MarshalUint64(dst, c.NumValidators)
	dst = fastssz.MarshalUint64(dst, c.GenesisTime)
	return dst, nil
}

func (c *Config) UnmarshalSSZ(buf []byte) error {
	if len(buf) != c.SizeSSZ() {
		return fastssz.ErrSize
	}
	c.NumValidators = fastssz.UnmarshallUint64(buf[0:8])
	c.GenesisTime = fastssz.UnmarshallUint64(buf[8:16])
	return nil
}

func (c *Config) HashTreeRoot() (ssz.Root, error) {
	return ssz.Merkleize([]ssz.Root{uint64Root(c.NumValidators), uint64Root(c.GenesisTime)}, 0), nil
}
