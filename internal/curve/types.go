// ==============================================
// File: internal/curve/types.go
// ==============================================
package curve

import (
	"time"

	"github.com/gagliardetto/solana-go"
)

// Kind selects the pricing strategy of a curve. It is fixed at creation
// and never changes for the lifetime of the config.
type Kind uint8

const (
	KindLinear Kind = iota
	KindExponential
	KindLogarithmic
	KindLookupTable
)

func (k Kind) String() string {
	switch k {
	case KindLinear:
		return "linear"
	case KindExponential:
		return "exponential"
	case KindLogarithmic:
		return "logarithmic"
	case KindLookupTable:
		return "lookup_table"
	default:
		return "unknown"
	}
}

// Valid reports whether k is one of the four known curve kinds.
func (k Kind) Valid() bool {
	return k <= KindLookupTable
}

const (
	// BasisPointDenominator — знаменатель для расчетов в базисных пунктах (100% = 10000).
	BasisPointDenominator = 10000

	// MaxTableEntries bounds the size of a lookup table record.
	MaxTableEntries = 1000
)

// Config is the on-chain-shaped state of one collection's bonding curve:
// the pricing parameters plus the running supply/volume accounting.
// CurrentSupply and TotalVolume are only ever advanced through ApplyMint,
// inside the engine's per-curve lock.
type Config struct {
	Authority      solana.PublicKey
	CollectionMint solana.PublicKey
	Kind           Kind
	BasePrice      uint64 // lamports
	PriceIncrement uint64 // lamports or basis points, depending on Kind
	MaxSupply      uint32
	CurrentSupply  uint32
	TotalVolume    uint64 // lamports, exact sum of settled payments
	PriceFloor     uint64 // interpolated mode only
	PriceCeiling   uint64 // interpolated mode only
	Bump           uint8  // PDA bump of the curve credential
}

// NextEdition returns the 1-based index of the edition about to be minted.
func (c *Config) NextEdition() uint32 {
	return c.CurrentSupply + 1
}

// Credential is the delegated signing capability owned by the curve
// itself: the program-derived address that signs issuance, not the
// operator's personal key. Constructed once at config creation.
type Credential struct {
	Address solana.PublicKey
	Bump    uint8
}

// Seeds returns the PDA seed slices, bump included, in signer order.
func (cr Credential) Seeds(collectionMint solana.PublicKey) [][]byte {
	return [][]byte{curveSeed, collectionMint.Bytes(), {cr.Bump}}
}

// Table is the write-once precomputed price sequence for a lookup-table
// curve: Prices[i] is the price of edition i+1.
type Table struct {
	OwningCurve solana.PublicKey // collection mint of the owning config
	Prices      []uint64
}

// MintReceipt records one successful mint attempt.
type MintReceipt struct {
	ID         string
	Collection solana.PublicKey
	Buyer      solana.PublicKey
	Edition    uint32
	Price      uint64
	CreatedAt  time.Time
}
