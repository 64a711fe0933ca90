// Package consensus implements the state transition function: the pure,
// deterministic mapping from a parent state and a candidate block to a
// post-state or an error.
package consensus

import "errors"

var (
	ErrInvalidSlot        = errors.New("consensus: invalid slot")
	ErrInvalidProposer    = errors.New("consensus: invalid proposer")
	ErrParentRootMismatch = errors.New("consensus: parent root mismatch")
	ErrStateRootMismatch  = errors.New("consensus: state root mismatch")
	ErrInvalidSourceSlot  = errors.New("consensus: invalid source slot")
	ErrInvalidTargetSlot  = errors.New("consensus: invalid target slot")
	ErrInvalidVoter       = errors.New("consensus: invalid voter")
)
