// ==============================================
// File: internal/curve/price.go
// ==============================================
package curve

import (
	"math/bits"
)

// checkedAdd возвращает a+b или ошибку переполнения.
func checkedAdd(a, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, &OverflowError{Op: "+", A: a, B: b}
	}
	return sum, nil
}

// checkedMul возвращает a*b или ошибку переполнения.
func checkedMul(a, b uint64) (uint64, error) {
	hi, lo := bits.Mul64(a, b)
	if hi != 0 {
		return 0, &OverflowError{Op: "*", A: a, B: b}
	}
	return lo, nil
}

// EvaluatePrice maps an edition index to its price under the given curve
// parameters. editionIndex is 1-based: the n-th mint is priced with
// editionIndex = n, computed from pre-increment supply.
//
// Every intermediate add and mul is checked; a failed check surfaces as
// an *OverflowError, distinct from the domain errors returned for
// invalid input.
func EvaluatePrice(kind Kind, basePrice, increment uint64, editionIndex uint32, floor, ceiling uint64, maxSupply uint32) (uint64, error) {
	if editionIndex == 0 {
		return 0, ErrInvalidEdition
	}

	switch kind {
	case KindLinear:
		// price = base + (index-1) * increment
		step, err := checkedMul(uint64(editionIndex-1), increment)
		if err != nil {
			return 0, err
		}
		return checkedAdd(basePrice, step)

	case KindExponential:
		// increment is basis points of growth per edition:
		// price = base + base * ((increment * (index-1)) / 10000),
		// integer division truncating toward zero.
		growthBps, err := checkedMul(increment, uint64(editionIndex-1))
		if err != nil {
			return 0, err
		}
		bump, err := checkedMul(basePrice, growthBps/BasisPointDenominator)
		if err != nil {
			return 0, err
		}
		return checkedAdd(basePrice, bump)

	case KindLogarithmic:
		// price = base + increment * floor(log2(index)); log2(1) = 0.
		log2 := uint64(bits.Len32(editionIndex) - 1)
		step, err := checkedMul(increment, log2)
		if err != nil {
			return 0, err
		}
		return checkedAdd(basePrice, step)

	case KindLookupTable:
		// Interpolated fallback for table curves without a stored table:
		// progress is 0..10000 across the full supply.
		if maxSupply == 0 {
			return 0, ErrZeroMaxSupply
		}
		if ceiling < floor {
			return 0, ErrCeilingBelowFloor
		}
		scaled, err := checkedMul(uint64(editionIndex), BasisPointDenominator)
		if err != nil {
			return 0, err
		}
		progress := scaled / uint64(maxSupply)
		span, err := checkedMul(ceiling-floor, progress)
		if err != nil {
			return 0, err
		}
		return checkedAdd(floor, span/BasisPointDenominator)

	default:
		return 0, ErrUnknownKind
	}
}

// NextPrice quotes the price of the edition about to be minted against
// this config. For lookup-table curves the stored table wins; the
// interpolated formula only applies while no table exists yet.
func (c *Config) NextPrice(table *Table) (uint64, error) {
	if c.Kind == KindLookupTable && table != nil {
		return table.PriceAt(c.NextEdition())
	}
	return EvaluatePrice(c.Kind, c.BasePrice, c.PriceIncrement, c.NextEdition(), c.PriceFloor, c.PriceCeiling, c.MaxSupply)
}
