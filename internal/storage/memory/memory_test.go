package memory

import (
	"context"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rovshanmuradov/edition-mint/internal/curve"
	"github.com/rovshanmuradov/edition-mint/internal/storage"
)

func newCurve(t *testing.T, kind curve.Kind) *curve.Config {
	t.Helper()
	cfg, err := curve.New(solana.NewWallet().PublicKey(), solana.NewWallet().PublicKey(), curve.Params{
		Kind:           kind,
		BasePrice:      1000,
		PriceIncrement: 100,
		MaxSupply:      5,
		PriceCeiling:   2000,
	})
	require.NoError(t, err)
	return cfg
}

func TestCurveLifecycle(t *testing.T) {
	ctx := context.Background()
	s := New()
	cfg := newCurve(t, curve.KindLinear)

	require.NoError(t, s.CreateCurve(ctx, cfg))
	assert.ErrorIs(t, s.CreateCurve(ctx, cfg), storage.ErrAlreadyExists)

	got, err := s.GetCurve(ctx, cfg.CollectionMint)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)

	// Хранилище отдает копию: мутация снаружи не видна внутри
	got.CurrentSupply = 3
	again, err := s.GetCurve(ctx, cfg.CollectionMint)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), again.CurrentSupply)

	require.NoError(t, cfg.ApplyMint(1000))
	require.NoError(t, s.SaveCurve(ctx, cfg))
	saved, err := s.GetCurve(ctx, cfg.CollectionMint)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), saved.CurrentSupply)

	require.NoError(t, s.DeleteCurve(ctx, cfg.CollectionMint))
	_, err = s.GetCurve(ctx, cfg.CollectionMint)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.ErrorIs(t, s.DeleteCurve(ctx, cfg.CollectionMint), storage.ErrNotFound)
}

func TestTableLifecycle(t *testing.T) {
	ctx := context.Background()
	s := New()
	cfg := newCurve(t, curve.KindLookupTable)

	table, err := curve.NewTable(cfg, cfg.Authority, []uint64{1, 2, 3})
	require.NoError(t, err)

	// Таблица без кривой не сохраняется
	assert.ErrorIs(t, s.CreateTable(ctx, table), storage.ErrNotFound)

	require.NoError(t, s.CreateCurve(ctx, cfg))
	require.NoError(t, s.CreateTable(ctx, table))
	assert.ErrorIs(t, s.CreateTable(ctx, table), storage.ErrAlreadyExists)

	got, err := s.GetTable(ctx, cfg.CollectionMint)
	require.NoError(t, err)
	assert.Equal(t, table, got)

	// Удаление кривой забирает таблицу
	require.NoError(t, s.DeleteCurve(ctx, cfg.CollectionMint))
	_, err = s.GetTable(ctx, cfg.CollectionMint)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestReceipts(t *testing.T) {
	ctx := context.Background()
	s := New()
	collection := solana.NewWallet().PublicKey()

	for i := 1; i <= 5; i++ {
		require.NoError(t, s.SaveReceipt(ctx, &curve.MintReceipt{
			ID:         uuid.NewString(),
			Collection: collection,
			Buyer:      solana.NewWallet().PublicKey(),
			Edition:    uint32(i),
			Price:      uint64(1000 + i*100),
			CreatedAt:  time.Now().UTC(),
		}))
	}

	page, err := s.ListReceipts(ctx, collection, 2, 1)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, uint32(2), page[0].Edition)
	assert.Equal(t, uint32(3), page[1].Edition)

	none, err := s.ListReceipts(ctx, collection, 10, 99)
	require.NoError(t, err)
	assert.Empty(t, none)

	// Отрицательный offset читается с начала
	head, err := s.ListReceipts(ctx, collection, 2, -7)
	require.NoError(t, err)
	require.Len(t, head, 2)
	assert.Equal(t, uint32(1), head[0].Edition)
}

func TestReceiptsSurviveCurveDeletion(t *testing.T) {
	ctx := context.Background()
	s := New()
	cfg := newCurve(t, curve.KindLinear)

	require.NoError(t, s.CreateCurve(ctx, cfg))
	require.NoError(t, s.SaveReceipt(ctx, &curve.MintReceipt{
		ID:         uuid.NewString(),
		Collection: cfg.CollectionMint,
		Buyer:      solana.NewWallet().PublicKey(),
		Edition:    1,
		Price:      1000,
		CreatedAt:  time.Now().UTC(),
	}))

	// Квитанции — история минтов, закрытие кривой их не трогает
	require.NoError(t, s.DeleteCurve(ctx, cfg.CollectionMint))
	kept, err := s.ListReceipts(ctx, cfg.CollectionMint, 10, 0)
	require.NoError(t, err)
	require.Len(t, kept, 1)
	assert.Equal(t, uint32(1), kept[0].Edition)
}
