// internal/mint/interfaces.go
package mint

import (
	"context"

	"github.com/gagliardetto/solana-go"

	"github.com/rovshanmuradov/edition-mint/internal/curve"
)

// PaymentBackend settles lamport transfers between parties. The engine
// calls Transfer at most once per mint attempt, plus at most one
// compensating reverse transfer when issuance fails after settlement.
type PaymentBackend interface {
	Transfer(ctx context.Context, from, to solana.PublicKey, lamports uint64) error
}

// Issuer mints exactly one unit of the collection to the target,
// authorized by the curve's own credential rather than the operator key.
type Issuer interface {
	IssueOne(ctx context.Context, collection, target solana.PublicKey, cred curve.Credential, meta EditionMetadata) error
}

// EditionMetadata is the display record attached to a minted edition.
type EditionMetadata struct {
	Name                 string
	Symbol               string
	URI                  string
	SellerFeeBasisPoints uint16
}
