// Package pebbledb persists blocks and states in a Pebble LSM-tree,
// keyed by a one-byte kind prefix followed by the SSZ hash-tree-root.
package pebbledb

import (
	"fmt"

	"github.com/cockroachdb/pebble"

	"github.com/geanlabs/gean/types"
)

const (
	prefixBlock byte = 'b'
	prefixState byte = 's'
)

// Store is a storage.Store backed by a Pebble database directory.
type Store struct {
	db *pebble.DB
}

// Open opens (creating if absent) a Pebble database at dir.
func Open(dir string) (*Store, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("pebbledb: open %s: %w", dir, err)
	}
	return &Store{db: db}, nil
}

func key(prefix byte, root types.Root) []byte {
	k := make([]byte, 1+len(root))
	k[0] = prefix
	copy(k[1:], root[:])
	return k
}

func (s *Store) GetBlock(root types.Root) (*types.Block, bool) {
	data, closer, err := s.db.Get(key(prefixBlock, root))
	if err != nil {
		return nil, false
	}
	defer closer.Close()

	block := &types.Block{}
	if err := block.UnmarshalSSZ(append([]byte(nil), data...)); err != nil {
		return nil, false
	}
	return block, true
}

func (s *Store) PutBlock(root types.Root, block *types.Block) error {
	data, err := block.MarshalSSZ()
	if err != nil {
		return fmt.Errorf("pebbledb: marshal block: %w", err)
	}
	return s.db.Set(key(prefixBlock, root), data, pebble.Sync)
}

func (s *Store) GetState(root types.Root) (*types.State, bool) {
	data, closer, err := s.db.Get(key(prefixState, root))
	if err != nil {
		return nil, false
	}
	defer closer.Close()

	state := &types.State{}
	if err := state.UnmarshalSSZ(append([]byte(nil), data...)); err != nil {
		return nil, false
	}
	return state, true
}

func (s *Store) PutState(root types.Root, state *types.State) error {
	data, err := state.MarshalSSZ()
	if err != nil {
		return fmt.Errorf("pebbledb: marshal state: %w", err)
	}
	return s.db.Set(key(prefixState, root), data, pebble.Sync)
}

func (s *Store) Close() error {
	return s.db.Close()
}
