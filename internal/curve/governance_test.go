package curve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func linearCurve(t *testing.T) *Config {
	t.Helper()
	cfg, err := New(testKey(t), testKey(t), Params{
		Kind:           KindLinear,
		BasePrice:      1000,
		PriceIncrement: 100,
		MaxSupply:      10,
	})
	require.NoError(t, err)
	return cfg
}

func uptr64(v uint64) *uint64 { return &v }
func uptr32(v uint32) *uint32 { return &v }

func TestUpdateParams(t *testing.T) {
	cfg := linearCurve(t)

	err := cfg.UpdateParams(cfg.Authority, ParamUpdate{
		BasePrice: uptr64(2000),
		MaxSupply: uptr32(20),
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(2000), cfg.BasePrice)
	assert.Equal(t, uint64(100), cfg.PriceIncrement, "omitted field stays unchanged")
	assert.Equal(t, uint32(20), cfg.MaxSupply)
}

func TestUpdateParams_Unauthorized(t *testing.T) {
	cfg := linearCurve(t)
	err := cfg.UpdateParams(testKey(t), ParamUpdate{BasePrice: uptr64(1)})
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, uint64(1000), cfg.BasePrice, "no field applied on failure")
}

func TestUpdateParams_CapBelowSupply(t *testing.T) {
	cfg := linearCurve(t)
	require.NoError(t, cfg.ApplyMint(1000))
	require.NoError(t, cfg.ApplyMint(1100))

	err := cfg.UpdateParams(cfg.Authority, ParamUpdate{MaxSupply: uptr32(1)})
	assert.ErrorIs(t, err, ErrInvalidMaxSupply)
	assert.Equal(t, uint32(10), cfg.MaxSupply)

	// Ровно до текущего supply — допустимо
	err = cfg.UpdateParams(cfg.Authority, ParamUpdate{MaxSupply: uptr32(2)})
	require.NoError(t, err)
	assert.Equal(t, uint32(2), cfg.MaxSupply)
}

func TestAuthorizeClose(t *testing.T) {
	cfg := linearCurve(t)

	assert.ErrorIs(t, cfg.AuthorizeClose(testKey(t)), ErrUnauthorized)
	require.NoError(t, cfg.AuthorizeClose(cfg.Authority))

	require.NoError(t, cfg.ApplyMint(1000))
	assert.ErrorIs(t, cfg.AuthorizeClose(cfg.Authority), ErrCurveNotEmpty)
}

func TestApplyMint(t *testing.T) {
	cfg := linearCurve(t)

	require.NoError(t, cfg.ApplyMint(1000))
	require.NoError(t, cfg.ApplyMint(1100))
	assert.Equal(t, uint32(2), cfg.CurrentSupply)
	assert.Equal(t, uint64(2100), cfg.TotalVolume)
}

func TestApplyMint_SupplyCap(t *testing.T) {
	cfg, err := New(testKey(t), testKey(t), Params{Kind: KindLinear, BasePrice: 1, MaxSupply: 1})
	require.NoError(t, err)

	require.NoError(t, cfg.ApplyMint(1))
	err = cfg.ApplyMint(1)
	assert.ErrorIs(t, err, ErrSupplyExhausted)
	assert.Equal(t, uint32(1), cfg.CurrentSupply)
	assert.Equal(t, uint64(1), cfg.TotalVolume)
}

func TestApplyMint_VolumeOverflow(t *testing.T) {
	cfg := linearCurve(t)
	cfg.TotalVolume = ^uint64(0)

	err := cfg.ApplyMint(1)
	require.Error(t, err)
	assert.True(t, IsOverflow(err))
	assert.Equal(t, uint32(0), cfg.CurrentSupply, "accounting untouched on overflow")
}

func TestNew_Validation(t *testing.T) {
	_, err := New(testKey(t), testKey(t), Params{Kind: Kind(9), MaxSupply: 1})
	assert.ErrorIs(t, err, ErrUnknownKind)

	_, err = New(testKey(t), testKey(t), Params{Kind: KindLinear, MaxSupply: 0})
	assert.ErrorIs(t, err, ErrZeroMaxSupply)

	_, err = New(testKey(t), testKey(t), Params{Kind: KindLookupTable, MaxSupply: 5, PriceFloor: 10, PriceCeiling: 9})
	assert.ErrorIs(t, err, ErrCeilingBelowFloor)
}

func TestCredentialStable(t *testing.T) {
	cfg := linearCurve(t)

	first, err := cfg.Credential()
	require.NoError(t, err)
	second, err := cfg.Credential()
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.False(t, first.Address.Equals(cfg.Authority), "credential is curve-owned, not the operator key")
}
