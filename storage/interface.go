// Package storage defines the persistence boundary for blocks and
// states keyed by their SSZ hash-tree-root. The fork-choice store
// itself is purely in-memory (per its spec); Store holds durable
// snapshots of the node's head blocks and states. The node writes to it
// but does not load from it at startup.
package storage

import "github.com/geanlabs/gean/types"

// Store persists blocks and post-states by root.
type Store interface {
	GetBlock(root types.Root) (*types.Block, bool)
	PutBlock(root types.Root, block *types.Block) error
	GetState(root types.Root) (*types.State, bool)
	PutState(root types.Root, state *types.State) error
	Close() error
}
