// ==============================================
// File: internal/curve/governance.go
// ==============================================
package curve

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// ParamUpdate carries the optional parameter changes of a governance
// call; nil fields are left unchanged.
type ParamUpdate struct {
	BasePrice      *uint64
	PriceIncrement *uint64
	MaxSupply      *uint32
}

// UpdateParams применяет изменения параметров кривой. Только authority
// может менять параметры; новый лимит supply не может быть ниже уже
// выпущенного количества.
func (c *Config) UpdateParams(caller solana.PublicKey, upd ParamUpdate) error {
	if !caller.Equals(c.Authority) {
		return ErrUnauthorized
	}
	if upd.MaxSupply != nil && *upd.MaxSupply < c.CurrentSupply {
		return fmt.Errorf("%w: new cap %d, current supply %d", ErrInvalidMaxSupply, *upd.MaxSupply, c.CurrentSupply)
	}

	if upd.BasePrice != nil {
		c.BasePrice = *upd.BasePrice
	}
	if upd.PriceIncrement != nil {
		c.PriceIncrement = *upd.PriceIncrement
	}
	if upd.MaxSupply != nil {
		c.MaxSupply = *upd.MaxSupply
	}
	return nil
}

// AuthorizeClose checks whether caller may destroy this config: only
// the authority, and only while no edition has been issued. The actual
// record (and any companion lookup table) is reclaimed by the store.
func (c *Config) AuthorizeClose(caller solana.PublicKey) error {
	if !caller.Equals(c.Authority) {
		return ErrUnauthorized
	}
	if c.CurrentSupply != 0 {
		return fmt.Errorf("%w: current supply %d", ErrCurveNotEmpty, c.CurrentSupply)
	}
	return nil
}
