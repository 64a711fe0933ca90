package types

//go:generate go run github.com/ferranbt/fastssz/sszgen --path=. --objs=Checkpoint,Config,Vote,SignedVote,Validator,BlockHeader,BlockBody,Block,State

// SSZ containers for the consensus core. Field order is part of the
// wire format.

// Checkpoint names a specific block used as a justification or
// finalization anchor.
type Checkpoint struct {
	Root Root `ssz-size:"32"`
	Slot Slot
}

// Config holds the process-wide, immutable chain configuration.
type Config struct {
	NumValidators uint64
	GenesisTime   uint64
}

// Vote is the unsigned content of a validator's attestation.
type Vote struct {
	ValidatorID uint64
	Slot        Slot
	Head        Checkpoint
	Target      Checkpoint
	Source      Checkpoint
}

// SignedVote wraps a Vote with an opaque signature. Signature verification,
// when enabled, is delegated to a pluggable consensus.Verifier.
type SignedVote struct {
	Data      Vote
	Signature Signature `ssz-size:"3112"`
}

// Validator is a registry entry. Only the pubkey is part of consensus
// state; a validator's index is always its position in State.Validators.
type Validator struct {
	Pubkey Pubkey `ssz-size:"52"`
}

// BlockHeader is the fixed-size projection of a Block used for parent
// linking. StateRoot is zeroed until ProcessSlots caches it.
type BlockHeader struct {
	Slot          Slot
	ProposerIndex uint64
	ParentRoot    Root `ssz-size:"32"`
	StateRoot     Root `ssz-size:"32"`
	BodyRoot      Root `ssz-size:"32"`

	cachedRoot *Root
}

// BlockBody carries the block's variable-length payload.
type BlockBody struct {
	Attestations []SignedVote `ssz-max:"4096"` // VALIDATOR_REGISTRY_LIMIT
}

// Block is a consensus block. Its hash-tree-root is cached on first
// computation (see cachedRoot in block_ssz.go) and invalidated whenever
// StateRoot is mutated through SetStateRoot.
type Block struct {
	Slot          Slot
	ProposerIndex uint64
	ParentRoot    Root `ssz-size:"32"`
	StateRoot     Root `ssz-size:"32"`
	Body          BlockBody

	cachedRoot *Root
}

// State is the single object threaded through the state transition
// function.
type State struct {
	Config            Config
	Slot              Slot
	LatestBlockHeader BlockHeader

	LatestJustified Checkpoint
	LatestFinalized Checkpoint

	HistoricalBlockHashes []Root `ssz-max:"262144" ssz-size:"?,32"` // List[Root, HISTORICAL_ROOTS_LIMIT]
	JustifiedSlots        []byte `ssz-max:"262144" ssz:"bitlist"`   // Bitlist[HISTORICAL_ROOTS_LIMIT]

	Validators []Validator `ssz-max:"4096"` // List[Validator, VALIDATOR_REGISTRY_LIMIT]

	JustificationsRoots      []Root `ssz-max:"262144" ssz-size:"?,32"`   // List[Root, HISTORICAL_ROOTS_LIMIT]
	JustificationsValidators []byte `ssz-max:"1073741824" ssz:"bitlist"` // Bitlist[HISTORICAL_ROOTS_LIMIT * VALIDATOR_REGISTRY_LIMIT]
}
