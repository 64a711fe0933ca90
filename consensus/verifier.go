package consensus

import "github.com/geanlabs/gean/types"

// Verifier checks the signature of an attestation vote. The core never
// inspects signature bytes itself; a nil Verifier means every
// structurally valid attestation is accepted.
type Verifier interface {
	Verify(signedVote *types.SignedVote) bool
}

// AcceptAll is a Verifier that approves every signature. It is the
// default until XMSS verification is wired.
type AcceptAll struct{}

func (AcceptAll) Verify(*types.SignedVote) bool { return true }
