package node

import (
	"context"
	"log/slog"

	"github.com/geanlabs/gean/forkchoice"
	"github.com/geanlabs/gean/types"
)

// Publisher gossips produced blocks and attestations. Satisfied by
// networking.Service.
type Publisher interface {
	PublishBlock(ctx context.Context, block *types.Block) error
	PublishAttestation(ctx context.Context, vote *types.SignedVote) error
}

// ValidatorDuties runs proposer and attester duties for the validator
// indices this node controls.
type ValidatorDuties struct {
	Indices []uint64
	Store   *forkchoice.Store
	Publish Publisher
	Logger  *slog.Logger
}

// HasProposal reports whether one of the local indices proposes at slot.
func (v *ValidatorDuties) HasProposal(slot types.Slot) bool {
	numValidators := v.Store.Config.NumValidators
	for _, idx := range v.Indices {
		if idx == uint64(slot)%numValidators {
			return true
		}
	}
	return false
}

// Propose produces, ingests, and gossips a block for slot if one of the
// local indices is the assigned proposer. Returns the produced block,
// or nil when this node has no proposal or production failed.
func (v *ValidatorDuties) Propose(ctx context.Context, slot types.Slot) *types.Block {
	numValidators := v.Store.Config.NumValidators
	for _, idx := range v.Indices {
		if idx != uint64(slot)%numValidators {
			continue
		}
		block, err := v.Store.ProduceBlock(slot, types.ValidatorIndex(idx))
		if err != nil {
			v.Logger.Warn("produce block failed", "slot", slot, "proposer", idx, "error", err)
			return nil
		}
		if err := v.Publish.PublishBlock(ctx, block); err != nil {
			v.Logger.Error("publish block failed", "slot", slot, "error", err)
		} else {
			v.Logger.Info("proposed block",
				"slot", slot,
				"proposer", idx,
				"attestations", len(block.Body.Attestations),
			)
		}
		return block
	}
	return nil
}

// Attest builds, gossips, and locally ingests an attestation for every
// local validator index.
func (v *ValidatorDuties) Attest(ctx context.Context, slot types.Slot) {
	headRoot := v.Store.HeadRoot()
	headSlot, ok := v.Store.GetBlockSlot(headRoot)
	if !ok {
		return
	}
	target := v.Store.GetVoteTarget()
	source := v.Store.GetLatestJustified()

	for _, idx := range v.Indices {
		vote := &types.SignedVote{Data: types.Vote{
			ValidatorID: idx,
			Slot:        slot,
			Head:        types.Checkpoint{Root: headRoot, Slot: headSlot},
			Target:      target,
			Source:      source,
		}}

		if err := v.Publish.PublishAttestation(ctx, vote); err != nil {
			v.Logger.Error("publish attestation failed", "slot", slot, "validator", idx, "error", err)
			continue
		}
		if err := v.Store.OnAttestation(vote); err != nil {
			v.Logger.Error("process own attestation failed", "slot", slot, "validator", idx, "error", err)
			continue
		}
		v.Logger.Debug("published attestation",
			"slot", slot,
			"validator", idx,
			"target_slot", target.Slot,
		)
	}
}
