// ==============================================
// File: internal/curve/lookup.go
// ==============================================
package curve

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// NewTable validates and builds the write-once price table for a
// lookup-table curve. Only the curve authority may create it, the
// owning curve must be of the table kind, and the sequence may not be
// longer than the supply cap (nor the hard record bound).
func NewTable(cfg *Config, caller solana.PublicKey, prices []uint64) (*Table, error) {
	if !caller.Equals(cfg.Authority) {
		return nil, ErrUnauthorized
	}
	if cfg.Kind != KindLookupTable {
		return nil, fmt.Errorf("%w: curve kind is %s", ErrKindMismatch, cfg.Kind)
	}
	if len(prices) > MaxTableEntries {
		return nil, fmt.Errorf("%w: %d entries, hard cap is %d", ErrTableTooLarge, len(prices), MaxTableEntries)
	}
	if uint64(len(prices)) > uint64(cfg.MaxSupply) {
		return nil, fmt.Errorf("%w: %d entries for max supply %d", ErrTableTooLarge, len(prices), cfg.MaxSupply)
	}

	stored := make([]uint64, len(prices))
	copy(stored, prices)

	return &Table{
		OwningCurve: cfg.CollectionMint,
		Prices:      stored,
	}, nil
}

// PriceAt returns the stored price for the 1-based edition index.
func (t *Table) PriceAt(editionIndex uint32) (uint64, error) {
	if editionIndex == 0 {
		return 0, ErrInvalidEdition
	}
	i := int(editionIndex) - 1
	if i >= len(t.Prices) {
		return 0, fmt.Errorf("%w %d: table has %d entries", ErrPriceNotFound, editionIndex, len(t.Prices))
	}
	return t.Prices[i], nil
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	dup := &Table{OwningCurve: t.OwningCurve, Prices: make([]uint64, len(t.Prices))}
	copy(dup.Prices, t.Prices)
	return dup
}
