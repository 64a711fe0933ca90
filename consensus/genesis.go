package consensus

import (
	bitfield "github.com/OffchainLabs/go-bitfield"

	"github.com/geanlabs/gean/types"
)

// GenerateGenesisState builds the genesis state for a chain with the
// given config and initial validator set.
func GenerateGenesisState(config types.Config, pubkeys []types.Pubkey) (*types.State, error) {
	emptyBody := types.BlockBody{Attestations: []types.SignedVote{}}
	bodyRoot, err := emptyBody.HashTreeRoot()
	if err != nil {
		return nil, err
	}

	genesisHeader := types.BlockHeader{
		Slot:          0,
		ProposerIndex: 0,
		ParentRoot:    types.Root{},
		StateRoot:     types.Root{},
		BodyRoot:      bodyRoot,
	}
	genesisCheckpoint := types.Checkpoint{Root: types.Root{}, Slot: 0}

	validators := make([]types.Validator, len(pubkeys))
	for i, pk := range pubkeys {
		validators[i] = types.Validator{Pubkey: pk}
	}

	return &types.State{
		Config:                   config,
		Slot:                     0,
		LatestBlockHeader:        genesisHeader,
		LatestJustified:          genesisCheckpoint,
		LatestFinalized:          genesisCheckpoint,
		HistoricalBlockHashes:    []types.Root{},
		JustifiedSlots:           bitfield.NewBitlist(0),
		Validators:               validators,
		JustificationsRoots:      []types.Root{},
		JustificationsValidators: bitfield.NewBitlist(0),
	}, nil
}

// GenesisBlock derives the genesis block from its state: the header
// fields verbatim, an empty body, and state_root set to hash(state).
func GenesisBlock(state *types.State) (*types.Block, error) {
	stateRoot, err := state.HashTreeRoot()
	if err != nil {
		return nil, err
	}
	return &types.Block{
		Slot:          state.LatestBlockHeader.Slot,
		ProposerIndex: state.LatestBlockHeader.ProposerIndex,
		ParentRoot:    state.LatestBlockHeader.ParentRoot,
		StateRoot:     stateRoot,
		Body:          types.BlockBody{Attestations: []types.SignedVote{}},
	}, nil
}
