// Package memory is an in-memory storage.Store, useful for tests and
// for nodes that accept replaying gossip from genesis on restart.
package memory

import (
	"sync"

	"github.com/geanlabs/gean/types"
)

// Store is a mutex-guarded map-backed storage.Store.
type Store struct {
	mu     sync.RWMutex
	blocks map[types.Root]*types.Block
	states map[types.Root]*types.State
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		blocks: make(map[types.Root]*types.Block),
		states: make(map[types.Root]*types.State),
	}
}

func (s *Store) GetBlock(root types.Root) (*types.Block, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.blocks[root]
	return b, ok
}

func (s *Store) PutBlock(root types.Root, block *types.Block) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blocks[root] = block
	return nil
}

func (s *Store) GetState(root types.Root) (*types.State, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.states[root]
	return st, ok
}

func (s *Store) PutState(root types.Root, state *types.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[root] = state
	return nil
}

func (s *Store) Close() error { return nil }
