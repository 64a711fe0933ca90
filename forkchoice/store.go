package forkchoice

import (
	"fmt"
	"sync"

	"github.com/geanlabs/gean/consensus"
	"github.com/geanlabs/gean/types"
)

// Store is the in-memory fork-choice store: the single logical owner of
// the local block tree, its derived states, and both vote maps. All
// exported methods are safe for concurrent use; each takes the lock
// once and delegates to an unexported "Locked" helper that assumes it
// is already held.
type Store struct {
	mu sync.RWMutex

	Config types.Config
	Time   uint64

	anchorRoot types.Root
	verifier   consensus.Verifier

	Blocks map[types.Root]*types.Block
	States map[types.Root]*types.State

	LatestKnownVotes map[types.ValidatorIndex]types.Checkpoint
	LatestNewVotes   map[types.ValidatorIndex]types.Checkpoint

	Head            types.Root
	SafeTarget      types.Root
	LatestJustified types.Checkpoint
	LatestFinalized types.Checkpoint
}

// Option configures optional collaborators of a Store.
type Option func(*Store)

// WithVerifier installs a signature verifier consulted before any
// gossip attestation is admitted. Without one, every structurally
// valid attestation is accepted.
func WithVerifier(v consensus.Verifier) Option {
	return func(s *Store) { s.verifier = v }
}

// NewStore builds a store from an anchor (state, block) pair, per the
// lifecycle rule: the anchor becomes head, safe target, latest
// justified, and latest finalized, all at once.
func NewStore(anchorState *types.State, anchorBlock *types.Block, opts ...Option) (*Store, error) {
	stateRoot, err := anchorState.HashTreeRoot()
	if err != nil {
		return nil, fmt.Errorf("forkchoice: hash anchor state: %w", err)
	}
	if anchorBlock.StateRoot != stateRoot {
		return nil, fmt.Errorf("forkchoice: anchor block state root mismatch")
	}

	anchorRoot, err := anchorBlock.HashTreeRoot()
	if err != nil {
		return nil, fmt.Errorf("forkchoice: hash anchor block: %w", err)
	}

	s := &Store{
		Config:           anchorState.Config,
		Time:             uint64(anchorBlock.Slot) * types.IntervalsPerSlot,
		anchorRoot:       anchorRoot,
		Blocks:           map[types.Root]*types.Block{anchorRoot: anchorBlock},
		States:           map[types.Root]*types.State{anchorRoot: anchorState},
		LatestKnownVotes: make(map[types.ValidatorIndex]types.Checkpoint),
		LatestNewVotes:   make(map[types.ValidatorIndex]types.Checkpoint),
		Head:             anchorRoot,
		SafeTarget:       anchorRoot,
		LatestJustified:  anchorState.LatestJustified,
		LatestFinalized:  anchorState.LatestFinalized,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// HasBlock reports whether root is already known to the store.
func (s *Store) HasBlock(root types.Root) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, exists := s.Blocks[root]
	return exists
}

// GetBlock returns the block stored under root, if any.
func (s *Store) GetBlock(root types.Root) (*types.Block, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, exists := s.Blocks[root]
	return b, exists
}

// GetBlockSlot returns the slot of the block stored under root.
func (s *Store) GetBlockSlot(root types.Root) (types.Slot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, exists := s.Blocks[root]
	if !exists {
		return 0, false
	}
	return b.Slot, true
}

// GetState returns the post-state stored under root, if any.
func (s *Store) GetState(root types.Root) (*types.State, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, exists := s.States[root]
	return st, exists
}

// HeadRoot returns the current fork-choice head.
func (s *Store) HeadRoot() types.Root {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Head
}

// HeadSlot returns the slot of the current fork-choice head.
func (s *Store) HeadSlot() types.Slot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Blocks[s.Head].Slot
}

// GetLatestJustified returns the store's current justified checkpoint.
func (s *Store) GetLatestJustified() types.Checkpoint {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.LatestJustified
}

// GetLatestFinalized returns the store's current finalized checkpoint.
func (s *Store) GetLatestFinalized() types.Checkpoint {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.LatestFinalized
}

// OnBlock ingests a new block: idempotent on an already-known hash,
// requires the parent to already be present, applies the STF with
// state-root checking enabled, then folds in the block's own
// attestations and updates the head.
func (s *Store) OnBlock(block *types.Block) error {
	blockRoot, err := block.HashTreeRoot()
	if err != nil {
		return fmt.Errorf("forkchoice: hash block: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.Blocks[blockRoot]; exists {
		return nil
	}

	parentState, exists := s.States[block.ParentRoot]
	if !exists {
		return fmt.Errorf("%w: parent root %s", ErrUnknownParent, block.ParentRoot.Short())
	}

	postState, err := consensus.StateTransition(block, parentState, true)
	if err != nil {
		return err
	}

	s.Blocks[blockRoot] = block
	s.States[blockRoot] = postState

	for i := range block.Body.Attestations {
		if err := s.processAttestationLocked(&block.Body.Attestations[i], true); err != nil {
			return err
		}
	}

	s.updateHeadLocked()
	return nil
}

func (s *Store) updateHeadLocked() {
	s.LatestJustified = latestJustifiedCheckpoint(s.States, s.anchorRoot)
	s.Head = GetHead(s.Blocks, s.LatestJustified, s.LatestKnownVotes, 0)
	if state, exists := s.States[s.Head]; exists {
		s.LatestFinalized = state.LatestFinalized
		if s.LatestFinalized.Slot == 0 {
			s.LatestFinalized.Root = s.anchorRoot
		}
	}
}

func (s *Store) updateSafeTargetLocked() {
	minScore := int((s.Config.NumValidators*2 + 2) / 3) // ceil(2n/3)
	s.SafeTarget = GetHead(s.Blocks, s.LatestJustified, s.LatestNewVotes, minScore)
}

func (s *Store) acceptNewVotesLocked() {
	for vid, cp := range s.LatestNewVotes {
		s.LatestKnownVotes[vid] = cp
	}
	s.LatestNewVotes = make(map[types.ValidatorIndex]types.Checkpoint)
	s.updateHeadLocked()
}
