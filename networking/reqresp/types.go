// Package reqresp implements the request/response protocols (Status
// handshake, BlocksByRoot sync) that let a peer backfill missing
// ancestors before handing blocks to the fork-choice store.
package reqresp

import (
	fastssz "github.com/ferranbt/fastssz"

	"github.com/geanlabs/gean/types"
)

const (
	StatusProtocolV1       = "/leanconsensus/req/status/1/"
	BlocksByRootProtocolV1 = "/leanconsensus/req/blocks_by_root/1/"
	MaxRequestBlocks       = 1024
)

// Status is the handshake message exchanged upon connection. It lets
// nodes verify compatibility and determine sync status.
type Status struct {
	Finalized types.Checkpoint
	Head      types.Checkpoint
}

func (s *Status) SizeSSZ() int { return 80 }

func (s *Status) MarshalSSZ() ([]byte, error) {
	dst := make([]byte, 0, s.SizeSSZ())
	dst, err := s.Finalized.MarshalSSZTo(dst)
	if err != nil {
		return nil, err
	}
	return s.Head.MarshalSSZTo(dst)
}

func (s *Status) UnmarshalSSZ(buf []byte) error {
	if len(buf) != s.SizeSSZ() {
		return fastssz.ErrSize
	}
	if err := s.Finalized.UnmarshalSSZ(buf[0:40]); err != nil {
		return err
	}
	return s.Head.UnmarshalSSZ(buf[40:80])
}

// BlocksByRootRequest asks a peer for the blocks matching the given
// hash-tree-roots.
type BlocksByRootRequest struct {
	Roots []types.Root `ssz-max:"1024" ssz-size:"?,32"`
}

func (r *BlocksByRootRequest) SizeSSZ() int { return 4 + 32*len(r.Roots) }

func (r *BlocksByRootRequest) MarshalSSZ() ([]byte, error) {
	if len(r.Roots) > MaxRequestBlocks {
		return nil, fastssz.ErrListTooBig
	}
	dst := make([]byte, 0, r.SizeSSZ())
	dst = fastssz.WriteOffset(dst, 4)
	for i := range r.Roots {
		dst = append(dst, r.Roots[i][:]...)
	}
	return dst, nil
}

func (r *BlocksByRootRequest) UnmarshalSSZ(buf []byte) error {
	if len(buf) < 4 {
		return fastssz.ErrSize
	}
	if fastssz.ReadOffset(buf[0:4]) != 4 {
		return fastssz.ErrOffset
	}
	rest := buf[4:]
	if len(rest)%32 != 0 {
		return fastssz.ErrSize
	}
	n := len(rest) / 32
	if n > MaxRequestBlocks {
		return fastssz.ErrListTooBig
	}
	r.Roots = make([]types.Root, n)
	for i := 0; i < n; i++ {
		copy(r.Roots[i][:], rest[i*32:])
	}
	return nil
}
