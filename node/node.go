// Package node implements the top-level consensus node.
//
// The node orchestrates all subsystems:
//   - consensus: the state transition function, reached through forkchoice
//   - forkchoice: block tree, vote tracking, LMD-GHOST head selection
//   - networking: gossipsub for blocks/votes, req/resp for chain sync
//   - storage: durable block/state snapshots keyed by root
//
// A 1-second ticker drives slot progression. At each tick:
//   - Interval 0: the assigned proposer produces a block
//   - Interval 1: local validators produce attestation votes
//   - Intervals 2-3: handled inside the store (safe target, vote acceptance)
package node

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/libp2p/go-libp2p/core/peer"

	"github.com/geanlabs/gean/clock"
	"github.com/geanlabs/gean/consensus"
	"github.com/geanlabs/gean/forkchoice"
	"github.com/geanlabs/gean/networking"
	"github.com/geanlabs/gean/networking/reqresp"
	"github.com/geanlabs/gean/storage"
	"github.com/geanlabs/gean/types"
)

// Config carries everything needed to assemble a node.
type Config struct {
	GenesisTime      uint64
	NumValidators    uint64
	ValidatorIndices []uint64 // local validator indices this node runs duties for
	ValidatorPubkeys []types.Pubkey
	ListenAddrs      []string
	Bootnodes        []string
	NodeKeyPath      string // empty means an ephemeral identity
	Storage          storage.Store // nil means no persistence
	Logger           *slog.Logger
}

// Node wires clock, storage, networking, and the fork-choice store
// together.
type Node struct {
	config  *Config
	store   *forkchoice.Store
	net     *networking.Service
	streams *reqresp.StreamHandler
	db      storage.Store
	clock   *clock.SlotClock
	duties  *ValidatorDuties
	logger  *slog.Logger

	ctx              context.Context
	cancel           context.CancelFunc
	wg               sync.WaitGroup
	lastProposedSlot types.Slot // last slot we proposed or saw a block for
}

// New creates a node from cfg, anchored at the genesis derived from the
// configured validator set.
func New(ctx context.Context, cfg *Config) (*Node, error) {
	ctx, cancel := context.WithCancel(ctx)

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	genesisState, err := consensus.GenerateGenesisState(
		types.Config{NumValidators: cfg.NumValidators, GenesisTime: cfg.GenesisTime},
		cfg.ValidatorPubkeys,
	)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("node: generate genesis state: %w", err)
	}
	genesisBlock, err := consensus.GenesisBlock(genesisState)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("node: genesis block: %w", err)
	}

	store, err := forkchoice.NewStore(genesisState, genesisBlock, forkchoice.WithVerifier(consensus.AcceptAll{}))
	if err != nil {
		cancel()
		return nil, fmt.Errorf("node: create store: %w", err)
	}

	hostCfg := networking.HostConfig{ListenAddrs: cfg.ListenAddrs}
	if cfg.NodeKeyPath != "" {
		hostCfg.PrivateKey, err = networking.LoadOrGenerateNodeKey(cfg.NodeKeyPath)
		if err != nil {
			cancel()
			return nil, fmt.Errorf("node: node key: %w", err)
		}
	}
	host, err := networking.NewHost(ctx, hostCfg)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("node: create host: %w", err)
	}

	n := &Node{
		config: cfg,
		store:  store,
		db:     cfg.Storage,
		clock:  clock.New(cfg.GenesisTime),
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}

	netSvc, err := networking.NewService(ctx, networking.ServiceConfig{
		Host: host,
		Handlers: &networking.Handlers{
			OnBlock:       n.handleBlock,
			OnAttestation: n.handleAttestation,
		},
		Bootnodes: networking.ParseBootnodes(cfg.Bootnodes),
		Logger:    logger,
	})
	if err != nil {
		cancel()
		host.Close()
		return nil, fmt.Errorf("node: create networking service: %w", err)
	}
	n.net = netSvc

	streams := reqresp.NewStreamHandler(host, reqresp.NewHandler(store))
	streams.RegisterProtocols()
	n.streams = streams

	n.duties = &ValidatorDuties{
		Indices: cfg.ValidatorIndices,
		Store:   store,
		Publish: netSvc,
		Logger:  logger,
	}

	return n, nil
}

// Start begins node operation.
func (n *Node) Start() {
	n.net.Start()

	n.wg.Add(1)
	go n.slotTicker()

	n.logger.Info("node started",
		"genesis_time", n.config.GenesisTime,
		"validators", n.config.NumValidators,
		"local_indices", n.config.ValidatorIndices,
	)
}

// Stop gracefully shuts down the node.
func (n *Node) Stop() {
	n.cancel()
	n.wg.Wait()
	n.net.Stop()
	if n.db != nil {
		if err := n.db.Close(); err != nil {
			n.logger.Warn("close storage", "error", err)
		}
	}
	n.logger.Info("node stopped")
}

func (n *Node) slotTicker() {
	defer n.wg.Done()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-n.ctx.Done():
			return
		case <-ticker.C:
			n.onTick()
		}
	}
}

// onTick is called every second to drive the slot pipeline.
func (n *Node) onTick() {
	if n.clock.IsBeforeGenesis() {
		return
	}

	slot := n.clock.CurrentSlot()
	n.store.OnTick(n.clock.Now(), n.duties.HasProposal(slot))

	interval := n.store.CurrentInterval()

	if interval == 0 {
		finalized := n.store.GetLatestFinalized()
		n.logger.Debug("slot",
			"slot", slot,
			"head", n.store.HeadRoot().Short(),
			"justified", n.store.GetLatestJustified().Slot,
			"finalized", finalized.Slot,
			"peers", n.PeerCount(),
		)
	}

	// Slot 0 is genesis; there is nothing to propose or attest on yet.
	if slot == 0 {
		return
	}

	switch interval {
	case 0:
		if slot <= n.lastProposedSlot {
			return
		}
		if n.duties.HasProposal(slot) {
			n.lastProposedSlot = slot
			block := n.duties.Propose(n.ctx, slot)
			if block != nil {
				n.persistHead()
			}
		}
	case 1:
		n.duties.Attest(n.ctx, slot)
	}
}

// handleBlock processes an incoming block from gossip, backfilling
// missing ancestors over req/resp when the parent is unknown.
func (n *Node) handleBlock(ctx context.Context, block *types.Block, from peer.ID) error {
	err := n.store.OnBlock(block)
	if errors.Is(err, forkchoice.ErrUnknownParent) {
		if syncErr := n.syncAncestors(ctx, block, from); syncErr != nil {
			return fmt.Errorf("node: sync ancestors: %w (after %w)", syncErr, err)
		}
		err = n.store.OnBlock(block)
	}
	if err != nil {
		return fmt.Errorf("node: process block: %w", err)
	}

	if block.Slot > n.lastProposedSlot {
		n.lastProposedSlot = block.Slot
	}
	n.persistHead()

	n.logger.Info("processed block", "slot", block.Slot, "proposer", block.ProposerIndex)
	return nil
}

// handleAttestation processes an incoming gossip attestation.
func (n *Node) handleAttestation(ctx context.Context, vote *types.SignedVote) error {
	if err := n.store.OnAttestation(vote); err != nil {
		return fmt.Errorf("node: process attestation: %w", err)
	}
	n.logger.Debug("processed attestation",
		"slot", vote.Data.Slot,
		"validator", vote.Data.ValidatorID,
	)
	return nil
}

// maxAncestorFetch bounds a single backfill walk. For a deeper gap the
// oldest fetched block still has an unknown parent, so the sync fails
// and none of the fetched blocks are ingested.
const maxAncestorFetch = reqresp.MaxRequestBlocks

// syncAncestors walks parent pointers backwards from block, fetching
// each missing ancestor from the sending peer, then applies the fetched
// chain oldest-first so every OnBlock call sees its parent.
func (n *Node) syncAncestors(ctx context.Context, block *types.Block, from peer.ID) error {
	var chain []*types.Block
	cursor := block.ParentRoot

	for i := 0; i < maxAncestorFetch; i++ {
		if n.store.HasBlock(cursor) {
			break
		}
		fetched, err := n.streams.RequestBlocksByRoot(ctx, from, []types.Root{cursor})
		if err != nil {
			return err
		}
		if len(fetched) == 0 {
			return fmt.Errorf("node: peer %s has no block %s", from, cursor.Short())
		}
		chain = append(chain, fetched[0])
		cursor = fetched[0].ParentRoot
	}

	for i := len(chain) - 1; i >= 0; i-- {
		if err := n.store.OnBlock(chain[i]); err != nil {
			return err
		}
	}
	return nil
}

// persistHead snapshots the current head block and post-state into
// durable storage, if configured.
func (n *Node) persistHead() {
	if n.db == nil {
		return
	}
	headRoot := n.store.HeadRoot()
	block, ok := n.store.GetBlock(headRoot)
	if !ok {
		return
	}
	state, ok := n.store.GetState(headRoot)
	if !ok {
		return
	}
	if err := n.db.PutBlock(headRoot, block); err != nil {
		n.logger.Warn("persist block", "root", headRoot.Short(), "error", err)
		return
	}
	if err := n.db.PutState(headRoot, state); err != nil {
		n.logger.Warn("persist state", "root", headRoot.Short(), "error", err)
	}
}

// CurrentSlot returns the store's current slot.
func (n *Node) CurrentSlot() types.Slot { return n.store.CurrentSlot() }

// PeerCount returns the number of connected peers.
func (n *Node) PeerCount() int { return n.net.PeerCount() }
