// ==============================================
// File: internal/mint/engine_test.go
// ==============================================
package mint_test

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rovshanmuradov/edition-mint/internal/curve"
	"github.com/rovshanmuradov/edition-mint/internal/issuance"
	"github.com/rovshanmuradov/edition-mint/internal/mint"
	"github.com/rovshanmuradov/edition-mint/internal/settlement"
	"github.com/rovshanmuradov/edition-mint/internal/storage/memory"
)

// failingIssuer fails the first n issue attempts, then delegates.
type failingIssuer struct {
	mu       sync.Mutex
	failures int
	inner    mint.Issuer
}

func (f *failingIssuer) IssueOne(ctx context.Context, collection, target solana.PublicKey, cred curve.Credential, meta mint.EditionMetadata) error {
	f.mu.Lock()
	fail := f.failures > 0
	if fail {
		f.failures--
	}
	f.mu.Unlock()
	if fail {
		return errors.New("issuance backend unavailable")
	}
	return f.inner.IssueOne(ctx, collection, target, cred, meta)
}

type fixture struct {
	store    *memory.Store
	ledger   *settlement.Ledger
	recorder *issuance.Recorder
	engine   *mint.Engine

	authority  solana.PublicKey
	collection solana.PublicKey
	buyer      solana.PublicKey
}

func newFixture(t *testing.T, params curve.Params) *fixture {
	t.Helper()

	f := &fixture{
		store:      memory.New(),
		ledger:     settlement.NewLedger(),
		recorder:   issuance.NewRecorder(),
		authority:  solana.NewWallet().PublicKey(),
		collection: solana.NewWallet().PublicKey(),
		buyer:      solana.NewWallet().PublicKey(),
	}
	f.engine = mint.NewEngine(f.store, f.ledger, f.recorder, nil, zap.NewNop())

	cfg, err := curve.New(f.authority, f.collection, params)
	require.NoError(t, err)
	require.NoError(t, f.store.CreateCurve(context.Background(), cfg))

	return f
}

func linearParams() curve.Params {
	return curve.Params{
		Kind:           curve.KindLinear,
		BasePrice:      1000,
		PriceIncrement: 100,
		MaxSupply:      3,
	}
}

func (f *fixture) mint(t *testing.T) (*curve.MintReceipt, error) {
	t.Helper()
	return f.engine.Mint(context.Background(), mint.Request{
		Collection: f.collection,
		Buyer:      f.buyer,
		Metadata:   mint.EditionMetadata{Name: "Edition", Symbol: "ED", URI: "https://example.com/ed.json"},
	})
}

func TestMintSequence(t *testing.T) {
	f := newFixture(t, linearParams())
	f.ledger.Credit(f.buyer, 10_000)

	// Три успешных минта по нарастающей цене
	wantPrices := []uint64{1000, 1100, 1200}
	for i, want := range wantPrices {
		receipt, err := f.mint(t)
		require.NoError(t, err)
		assert.Equal(t, uint32(i+1), receipt.Edition)
		assert.Equal(t, want, receipt.Price)
		assert.Equal(t, f.collection, receipt.Collection)
		assert.NotEmpty(t, receipt.ID)
	}

	// Четвертая попытка упирается в supply
	_, err := f.mint(t)
	require.ErrorIs(t, err, curve.ErrSupplyExhausted)

	cfg, err := f.store.GetCurve(context.Background(), f.collection)
	require.NoError(t, err)
	assert.Equal(t, uint32(3), cfg.CurrentSupply)
	assert.Equal(t, uint64(3300), cfg.TotalVolume)

	// Оплата дошла до authority, ровно одна единица на минт
	assert.Equal(t, uint64(3300), f.ledger.BalanceOf(f.authority))
	assert.Equal(t, uint64(10_000-3300), f.ledger.BalanceOf(f.buyer))
	assert.Len(t, f.recorder.Issued(), 3)

	receipts, err := f.store.ListReceipts(context.Background(), f.collection, 10, 0)
	require.NoError(t, err)
	require.Len(t, receipts, 3)
	assert.Equal(t, uint32(1), receipts[0].Edition)
}

func TestMintPaymentFailureLeavesStateUntouched(t *testing.T) {
	f := newFixture(t, linearParams())
	// Намеренно не хватает на первую цену
	f.ledger.Credit(f.buyer, 500)

	_, err := f.mint(t)
	require.ErrorIs(t, err, settlement.ErrInsufficientFunds)

	cfg, getErr := f.store.GetCurve(context.Background(), f.collection)
	require.NoError(t, getErr)
	assert.Equal(t, uint32(0), cfg.CurrentSupply)
	assert.Equal(t, uint64(0), cfg.TotalVolume)
	assert.Equal(t, uint64(500), f.ledger.BalanceOf(f.buyer))
	assert.Empty(t, f.recorder.Issued())
}

func TestMintIssuanceFailureRefundsBuyer(t *testing.T) {
	f := newFixture(t, linearParams())
	f.ledger.Credit(f.buyer, 10_000)

	f.engine = mint.NewEngine(
		f.store,
		f.ledger,
		&failingIssuer{failures: 1, inner: f.recorder},
		nil,
		zap.NewNop(),
	)

	_, err := f.mint(t)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "issuance failed")

	// Компенсация: деньги вернулись, учет не сдвинулся
	assert.Equal(t, uint64(10_000), f.ledger.BalanceOf(f.buyer))
	assert.Equal(t, uint64(0), f.ledger.BalanceOf(f.authority))

	cfg, getErr := f.store.GetCurve(context.Background(), f.collection)
	require.NoError(t, getErr)
	assert.Equal(t, uint32(0), cfg.CurrentSupply)

	// Следующая попытка проходит с той же ценой первого издания
	receipt, err := f.mint(t)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), receipt.Edition)
	assert.Equal(t, uint64(1000), receipt.Price)
}

// brokenSaveStore отклоняет каждую запись кривой, всё остальное
// делегирует памяти.
type brokenSaveStore struct {
	*memory.Store

	mu    sync.Mutex
	saves int
}

func (s *brokenSaveStore) SaveCurve(ctx context.Context, cfg *curve.Config) error {
	s.mu.Lock()
	s.saves++
	s.mu.Unlock()
	return errors.New("connection reset by peer")
}

func TestMintVolumeOverflowFailsBeforePayment(t *testing.T) {
	f := newFixture(t, linearParams())
	f.ledger.Credit(f.buyer, 10_000)

	// Накопленный объем уже на пределе: следующая фиксация переполнила бы
	cfg, err := f.store.GetCurve(context.Background(), f.collection)
	require.NoError(t, err)
	cfg.TotalVolume = math.MaxUint64
	require.NoError(t, f.store.SaveCurve(context.Background(), cfg))

	_, err = f.mint(t)
	require.ErrorIs(t, err, curve.ErrOverflow)

	// Отказ случился до оплаты и выпуска: ни перевода, ни единицы
	assert.Equal(t, uint64(10_000), f.ledger.BalanceOf(f.buyer))
	assert.Equal(t, uint64(0), f.ledger.BalanceOf(f.authority))
	assert.Empty(t, f.recorder.Issued())

	saved, err := f.store.GetCurve(context.Background(), f.collection)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), saved.CurrentSupply)
	assert.Equal(t, uint64(math.MaxUint64), saved.TotalVolume)
}

func TestMintStorageCommitFailureKeepsPaymentAndUnit(t *testing.T) {
	f := newFixture(t, linearParams())
	f.ledger.Credit(f.buyer, 10_000)

	broken := &brokenSaveStore{Store: f.store}
	f.engine = mint.NewEngine(broken, f.ledger, f.recorder, nil, zap.NewNop())

	_, err := f.mint(t)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accounting commit failed")

	// Единица уже у покупателя, поэтому оплата не возвращается
	assert.Equal(t, uint64(10_000-1000), f.ledger.BalanceOf(f.buyer))
	assert.Equal(t, uint64(1000), f.ledger.BalanceOf(f.authority))
	require.Len(t, f.recorder.Issued(), 1)

	// Запись повторялась до исчерпания попыток
	broken.mu.Lock()
	saves := broken.saves
	broken.mu.Unlock()
	assert.Equal(t, 3, saves)
}

func TestQuotePriceDoesNotMutate(t *testing.T) {
	f := newFixture(t, linearParams())

	for i := 0; i < 5; i++ {
		price, err := f.engine.QuotePrice(context.Background(), f.collection)
		require.NoError(t, err)
		assert.Equal(t, uint64(1000), price)
	}

	cfg, err := f.store.GetCurve(context.Background(), f.collection)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), cfg.CurrentSupply)
}

func TestMintLookupTableCurve(t *testing.T) {
	params := curve.Params{
		Kind:         curve.KindLookupTable,
		MaxSupply:    3,
		PriceFloor:   100,
		PriceCeiling: 700,
	}
	f := newFixture(t, params)
	f.ledger.Credit(f.buyer, 10_000)

	cfg, err := f.store.GetCurve(context.Background(), f.collection)
	require.NoError(t, err)
	table, err := curve.NewTable(cfg, f.authority, []uint64{111, 222, 333})
	require.NoError(t, err)
	require.NoError(t, f.store.CreateTable(context.Background(), table))

	for _, want := range []uint64{111, 222, 333} {
		receipt, mintErr := f.mint(t)
		require.NoError(t, mintErr)
		assert.Equal(t, want, receipt.Price)
	}
}

func TestMintLookupCurveWithoutTableInterpolates(t *testing.T) {
	// Таблица не создана: действует интерполяция floor..ceiling
	params := curve.Params{
		Kind:         curve.KindLookupTable,
		MaxSupply:    4,
		PriceFloor:   100,
		PriceCeiling: 300,
	}
	f := newFixture(t, params)
	f.ledger.Credit(f.buyer, 10_000)

	receipt, err := f.mint(t)
	require.NoError(t, err)
	// progress = 1*10000/4 = 2500 → 100 + 200*2500/10000 = 150
	assert.Equal(t, uint64(150), receipt.Price)
}

func TestConcurrentMintsProduceDistinctEditions(t *testing.T) {
	const supply = 50

	f := newFixture(t, curve.Params{
		Kind:           curve.KindLinear,
		BasePrice:      1000,
		PriceIncrement: 100,
		MaxSupply:      supply,
	})

	buyers := make([]solana.PublicKey, supply)
	for i := range buyers {
		buyers[i] = solana.NewWallet().PublicKey()
		f.ledger.Credit(buyers[i], 1_000_000)
	}

	var g errgroup.Group
	for i := 0; i < supply; i++ {
		buyer := buyers[i]
		g.Go(func() error {
			_, err := f.engine.Mint(context.Background(), mint.Request{
				Collection: f.collection,
				Buyer:      buyer,
				Metadata:   mint.EditionMetadata{Name: "Edition", Symbol: "ED"},
			})
			return err
		})
	}
	require.NoError(t, g.Wait())

	cfg, err := f.store.GetCurve(context.Background(), f.collection)
	require.NoError(t, err)
	assert.Equal(t, uint32(supply), cfg.CurrentSupply)

	// Каждое издание выдано ровно один раз
	receipts, err := f.store.ListReceipts(context.Background(), f.collection, supply, 0)
	require.NoError(t, err)
	require.Len(t, receipts, supply)

	seen := make(map[uint32]bool, supply)
	var volume uint64
	for _, r := range receipts {
		assert.False(t, seen[r.Edition], "duplicate edition %d", r.Edition)
		seen[r.Edition] = true
		volume += r.Price
	}
	assert.Equal(t, cfg.TotalVolume, volume)
	assert.Equal(t, volume, f.ledger.BalanceOf(f.authority))
}
