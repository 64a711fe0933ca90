package types

import (
	"encoding/binary"

	"github.com/geanlabs/gean/ssz"
)

// uint64Root packs a uint64 into the first 8 bytes of a zero-padded SSZ
// chunk, the standard "basic type" Merkle leaf.
func uint64Root(v uint64) ssz.Root {
	var out ssz.Root
	binary.LittleEndian.PutUint64(out[:8], v)
	return out
}
