// Package types defines the primitive and composite SSZ types shared by the
// consensus state transition function and the fork-choice store.
package types

import (
	"encoding/hex"
	"fmt"
	"math"
)

// Slot identifies a discrete unit of consensus time.
type Slot uint64

// ValidatorIndex identifies a validator's position in the registry.
type ValidatorIndex uint64

// Root is a 32-byte SSZ Merkle hash-tree-root.
type Root [32]byte

// Pubkey is a 52-byte opaque XMSS public key.
type Pubkey [52]byte

// Signature is a 3112-byte opaque signature container. The core never
// inspects its contents; verification is delegated to a pluggable
// Verifier (see consensus.Verifier).
type Signature [SignatureSize]byte

// IsZero reports whether r is the all-zero root.
func (r Root) IsZero() bool { return r == Root{} }

// Short returns the first 4 bytes of r, hex-encoded, for log lines.
func (r Root) Short() string { return hex.EncodeToString(r[:4]) }

// Compare returns -1, 0, or 1 as r is lexicographically less than, equal
// to, or greater than other.
func (r Root) Compare(other Root) int {
	for i := range r {
		if r[i] != other[i] {
			if r[i] < other[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

func (r Root) String() string { return fmt.Sprintf("0x%x", r[:]) }

// Protocol-wide timing and list-size constants.
const (
	SecondsPerSlot     uint64 = 4
	IntervalsPerSlot   uint64 = 4
	SlotDurationMS     uint64 = 4000
	SecondsPerInterval uint64 = SecondsPerSlot / IntervalsPerSlot

	HistoricalRootsLimit   uint64 = 1 << 18 // 262144
	ValidatorRegistryLimit uint64 = 1 << 12 // 4096

	SignatureSize = 3112
	PubkeySize    = 52
)

// isqrt returns floor(sqrt(n)) for n >= 0.
func isqrt(n uint64) uint64 {
	if n == 0 {
		return 0
	}
	x := uint64(math.Sqrt(float64(n)))
	for x*x > n {
		x--
	}
	for (x+1)*(x+1) <= n {
		x++
	}
	return x
}

// IsJustifiableSlot reports whether candidate is justifiable relative to
// finalizedSlot: the delta between them is small (<=5), a perfect
// square, or a pronic number (k^2+k).
//
// A candidate before finalizedSlot is never justifiable.
func IsJustifiableSlot(finalizedSlot, candidate Slot) bool {
	if candidate < finalizedSlot {
		return false
	}
	delta := uint64(candidate - finalizedSlot)
	if delta <= 5 {
		return true
	}
	if sq := isqrt(delta); sq*sq == delta {
		return true
	}
	// delta == k^2 + k  <=>  4*delta+1 is an odd perfect square
	v := 4*delta + 1
	sv := isqrt(v)
	return sv*sv == v && sv%2 == 1
}

// IsJustifiableAfter is a method-receiver convenience wrapper around
// IsJustifiableSlot.
func (s Slot) IsJustifiableAfter(finalizedSlot Slot) bool {
	return IsJustifiableSlot(finalizedSlot, s)
}
