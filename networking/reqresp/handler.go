package reqresp

import (
	"errors"

	"github.com/geanlabs/gean/types"
)

// ErrInvalidStatus reports a peer handshake inconsistent with the local
// block store.
var ErrInvalidStatus = errors.New("reqresp: peer status inconsistent with local chain")

// BlockReader provides read access to the block store. Satisfied by
// forkchoice.Store without modification.
type BlockReader interface {
	HeadRoot() types.Root
	GetBlock(root types.Root) (*types.Block, bool)
	GetLatestFinalized() types.Checkpoint
}

// Handler answers request/response protocol messages from the local
// store's view of the chain.
type Handler struct {
	store BlockReader
}

// NewHandler creates a request/response handler over store.
func NewHandler(store BlockReader) *Handler {
	return &Handler{store: store}
}

// GetStatus returns the node's current status for the handshake
// protocol.
func (h *Handler) GetStatus() *Status {
	headRoot := h.store.HeadRoot()
	var headSlot types.Slot
	if headBlock, exists := h.store.GetBlock(headRoot); exists {
		headSlot = headBlock.Slot
	}
	return &Status{
		Finalized: h.store.GetLatestFinalized(),
		Head:      types.Checkpoint{Root: headRoot, Slot: headSlot},
	}
}

// HandleBlocksByRoot responds to a BlocksByRoot request with the blocks
// the local store knows, in request order, capped at MaxRequestBlocks.
func (h *Handler) HandleBlocksByRoot(request *BlocksByRootRequest) []*types.Block {
	var blocks []*types.Block
	for _, root := range request.Roots {
		if len(blocks) >= MaxRequestBlocks {
			break
		}
		if block, exists := h.store.GetBlock(root); exists {
			blocks = append(blocks, block)
		}
	}
	return blocks
}

// ValidatePeerStatus checks that a peer's claimed finalized checkpoint
// is consistent with our block store: if we have the peer's finalized
// block, its slot must match the claimed slot.
func (h *Handler) ValidatePeerStatus(peerStatus *Status) error {
	if peerStatus.Finalized.Slot > 0 {
		if block, exists := h.store.GetBlock(peerStatus.Finalized.Root); exists {
			if block.Slot != peerStatus.Finalized.Slot {
				return ErrInvalidStatus
			}
		}
	}
	return nil
}
