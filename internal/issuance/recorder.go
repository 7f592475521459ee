// ==============================================
// File: internal/issuance/recorder.go
// ==============================================
package issuance

import (
	"context"
	"sync"

	"github.com/gagliardetto/solana-go"

	"github.com/rovshanmuradov/edition-mint/internal/curve"
	"github.com/rovshanmuradov/edition-mint/internal/mint"
)

// IssuedUnit is one issuance recorded by the in-memory issuer.
type IssuedUnit struct {
	Collection solana.PublicKey
	Target     solana.PublicKey
	Credential curve.Credential
	Metadata   mint.EditionMetadata
}

// Recorder is the in-memory issuer for tests and the simulator backend:
// it just remembers what it was asked to issue.
type Recorder struct {
	mu     sync.Mutex
	issued []IssuedUnit
}

var _ mint.Issuer = (*Recorder)(nil)

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) IssueOne(_ context.Context, collection, target solana.PublicKey, cred curve.Credential, meta mint.EditionMetadata) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.issued = append(r.issued, IssuedUnit{Collection: collection, Target: target, Credential: cred, Metadata: meta})
	return nil
}

// Issued returns a copy of everything issued so far.
func (r *Recorder) Issued() []IssuedUnit {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]IssuedUnit, len(r.issued))
	copy(out, r.issued)
	return out
}
