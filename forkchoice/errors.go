// Package forkchoice implements the LMD-GHOST head algorithm and the
// in-memory fork-choice store built on top of the consensus state
// transition function.
package forkchoice

import "errors"

// Sentinel errors surfaced by the store. Callers use errors.Is to
// distinguish them.
var (
	ErrUnknownParent       = errors.New("forkchoice: unknown parent")
	ErrSourceNotFound      = errors.New("forkchoice: source root not found")
	ErrTargetNotFound      = errors.New("forkchoice: target root not found")
	ErrHeadNotFound        = errors.New("forkchoice: head root not found")
	ErrValidatorOutOfRange = errors.New("forkchoice: validator index out of range")
	ErrSlotMismatch        = errors.New("forkchoice: slot mismatch")
	ErrFutureVote          = errors.New("forkchoice: vote too far in the future")
	ErrInvalidAttestation  = errors.New("forkchoice: invalid attestation")
	ErrInvalidProposer     = errors.New("forkchoice: invalid proposer")
)
