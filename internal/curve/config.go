// ==============================================
// File: internal/curve/config.go
// ==============================================
package curve

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// ProgramID is the on-chain program that owns curve accounts; the curve
// credential PDA is derived against it.
var ProgramID = solana.MustPublicKeyFromBase58("6FJfw1jiB8enNmeRt5V2uFfTc6XS1gR8TpqXQ5rDJnCF")

var curveSeed = []byte("bonding_curve")

// Params holds the operator-supplied curve parameters at creation time.
type Params struct {
	Kind           Kind
	BasePrice      uint64
	PriceIncrement uint64
	MaxSupply      uint32
	PriceFloor     uint64
	PriceCeiling   uint64
}

// New validates params and creates a fresh config with zero supply and
// volume. The curve credential (PDA + bump) is derived here, once, from
// the collection mint — not from the operator's key.
func New(authority, collectionMint solana.PublicKey, p Params) (*Config, error) {
	if !p.Kind.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, p.Kind)
	}
	if p.MaxSupply == 0 {
		return nil, ErrZeroMaxSupply
	}
	if p.PriceCeiling < p.PriceFloor {
		return nil, fmt.Errorf("%w: floor=%d ceiling=%d", ErrCeilingBelowFloor, p.PriceFloor, p.PriceCeiling)
	}

	_, bump, err := solana.FindProgramAddress(
		[][]byte{curveSeed, collectionMint.Bytes()},
		ProgramID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to derive curve address: %w", err)
	}

	return &Config{
		Authority:      authority,
		CollectionMint: collectionMint,
		Kind:           p.Kind,
		BasePrice:      p.BasePrice,
		PriceIncrement: p.PriceIncrement,
		MaxSupply:      p.MaxSupply,
		CurrentSupply:  0,
		TotalVolume:    0,
		PriceFloor:     p.PriceFloor,
		PriceCeiling:   p.PriceCeiling,
		Bump:           bump,
	}, nil
}

// Credential returns the curve's delegated signing capability. The
// address is re-derived from the stored bump so the result is stable
// for the lifetime of the config.
func (c *Config) Credential() (Credential, error) {
	addr, err := solana.CreateProgramAddress(
		[][]byte{curveSeed, c.CollectionMint.Bytes(), {c.Bump}},
		ProgramID,
	)
	if err != nil {
		return Credential{}, fmt.Errorf("failed to rebuild curve address: %w", err)
	}
	return Credential{Address: addr, Bump: c.Bump}, nil
}

// CheckMint verifies that one more mint at the given price would commit
// cleanly, mutating nothing. Callers run this before settling payment so
// an accounting failure can never surface after the unit was issued.
func (c *Config) CheckMint(price uint64) error {
	if c.CurrentSupply >= c.MaxSupply {
		return ErrSupplyExhausted
	}
	_, err := checkedAdd(c.TotalVolume, price)
	return err
}

// ApplyMint commits one settled mint to the accounting: supply up by
// exactly one, volume up by exactly the price collected. The caller
// must have checked supply and settled payment first.
func (c *Config) ApplyMint(price uint64) error {
	if err := c.CheckMint(price); err != nil {
		return err
	}
	c.CurrentSupply++
	c.TotalVolume += price
	return nil
}

// Clone returns a deep copy; stores hand out clones so callers never
// share the mutable accounting fields.
func (c *Config) Clone() *Config {
	dup := *c
	return &dup
}
