package curve

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluatePrice_Linear(t *testing.T) {
	// Базовый сценарий: base=1000, increment=100
	tests := []struct {
		edition uint32
		want    uint64
	}{
		{1, 1000},
		{2, 1100},
		{3, 1200},
		{11, 2000},
	}
	for _, tt := range tests {
		got, err := EvaluatePrice(KindLinear, 1000, 100, tt.edition, 0, 0, 100)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "edition %d", tt.edition)
	}
}

func TestEvaluatePrice_Exponential(t *testing.T) {
	// increment в базисных пунктах: 10000 bps = +100% за каждое издание
	got, err := EvaluatePrice(KindExponential, 1000, 10000, 1, 0, 0, 100)
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), got)

	got, err = EvaluatePrice(KindExponential, 1000, 10000, 3, 0, 0, 100)
	require.NoError(t, err)
	assert.Equal(t, uint64(3000), got) // base + base*2

	// Деление усекается: 500 bps * 5 = 2500 / 10000 = 0
	got, err = EvaluatePrice(KindExponential, 1000, 500, 6, 0, 0, 100)
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), got)
}

func TestEvaluatePrice_Logarithmic(t *testing.T) {
	tests := []struct {
		edition uint32
		want    uint64
	}{
		{1, 1000},  // log2(1) = 0
		{2, 1100},  // log2(2) = 1
		{3, 1100},  // floor(log2(3)) = 1
		{4, 1200},  // log2(4) = 2
		{8, 1300},  // log2(8) = 3
		{15, 1300}, // floor(log2(15)) = 3
		{16, 1400},
	}
	for _, tt := range tests {
		got, err := EvaluatePrice(KindLogarithmic, 1000, 100, tt.edition, 0, 0, 100)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "edition %d", tt.edition)
	}
}

func TestEvaluatePrice_Interpolated(t *testing.T) {
	// floor=1000 ceiling=11000, max=100: издание 50 -> прогресс 5000 bps
	got, err := EvaluatePrice(KindLookupTable, 0, 0, 50, 1000, 11000, 100)
	require.NoError(t, err)
	assert.Equal(t, uint64(6000), got)

	// Последнее издание достигает потолка
	got, err = EvaluatePrice(KindLookupTable, 0, 0, 100, 1000, 11000, 100)
	require.NoError(t, err)
	assert.Equal(t, uint64(11000), got)

	_, err = EvaluatePrice(KindLookupTable, 0, 0, 1, 5000, 4000, 100)
	assert.ErrorIs(t, err, ErrCeilingBelowFloor)

	_, err = EvaluatePrice(KindLookupTable, 0, 0, 1, 0, 0, 0)
	assert.ErrorIs(t, err, ErrZeroMaxSupply)
}

func TestEvaluatePrice_DomainErrors(t *testing.T) {
	_, err := EvaluatePrice(KindLinear, 1000, 100, 0, 0, 0, 100)
	assert.ErrorIs(t, err, ErrInvalidEdition)

	_, err = EvaluatePrice(Kind(42), 1000, 100, 1, 0, 0, 100)
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestEvaluatePrice_Overflow(t *testing.T) {
	// Линейная: шаг переполняет умножение
	_, err := EvaluatePrice(KindLinear, 0, math.MaxUint64, 3, 0, 0, 100)
	require.Error(t, err)
	assert.True(t, IsOverflow(err))
	assert.NotErrorIs(t, err, ErrInvalidEdition)

	// Линейная: переполнение финального сложения
	_, err = EvaluatePrice(KindLinear, math.MaxUint64, 1, 2, 0, 0, 100)
	assert.True(t, IsOverflow(err))

	// Экспоненциальная: переполнение множителя роста
	_, err = EvaluatePrice(KindExponential, 2, math.MaxUint64, 3, 0, 0, 100)
	assert.True(t, IsOverflow(err))

	// Логарифмическая: переполнение сложения
	_, err = EvaluatePrice(KindLogarithmic, math.MaxUint64, math.MaxUint64, 2, 0, 0, 100)
	assert.True(t, IsOverflow(err))

	var oe *OverflowError
	_, err = EvaluatePrice(KindLinear, math.MaxUint64, 1, 2, 0, 0, 100)
	require.ErrorAs(t, err, &oe)
	assert.Equal(t, "+", oe.Op)
}

// Цена никогда не убывает с ростом номера издания.
func TestEvaluatePrice_Monotonic(t *testing.T) {
	kinds := []Kind{KindLinear, KindExponential, KindLogarithmic, KindLookupTable}
	for _, kind := range kinds {
		var prev uint64
		for edition := uint32(1); edition <= 500; edition++ {
			price, err := EvaluatePrice(kind, 1000, 250, edition, 1000, 500000, 500)
			require.NoError(t, err, "kind %s edition %d", kind, edition)
			assert.GreaterOrEqual(t, price, prev, "kind %s edition %d", kind, edition)
			prev = price
		}
	}
}

func TestNextPrice_PrefersStoredTable(t *testing.T) {
	authority := testKey(t)
	cfg, err := New(authority, testKey(t), Params{
		Kind:         KindLookupTable,
		MaxSupply:    3,
		PriceFloor:   100,
		PriceCeiling: 300,
	})
	require.NoError(t, err)

	table, err := NewTable(cfg, authority, []uint64{7, 8, 9})
	require.NoError(t, err)

	price, err := cfg.NextPrice(table)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), price)

	// Без таблицы работает интерполяция
	price, err = cfg.NextPrice(nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(166), price) // 100 + 200*3333/10000
}
