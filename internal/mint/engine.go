// ==============================================
// File: internal/mint/engine.go
// ==============================================
package mint

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/edition-mint/internal/curve"
	"github.com/rovshanmuradov/edition-mint/internal/events"
	"github.com/rovshanmuradov/edition-mint/internal/storage"
)

// Engine executes the atomic mint sequence against one store: quote the
// next edition's price, settle payment, issue the unit, commit the
// accounting. Operations against the same curve are serialized by a
// per-collection lock; different curves proceed independently.
type Engine struct {
	store    storage.Store
	payments PaymentBackend
	issuer   Issuer
	bus      *events.Bus
	logger   *zap.Logger

	mu    sync.Mutex
	locks map[solana.PublicKey]*sync.Mutex
}

// Request describes one mint attempt.
type Request struct {
	Collection solana.PublicKey
	Buyer      solana.PublicKey
	Metadata   EditionMetadata
}

func NewEngine(store storage.Store, payments PaymentBackend, issuer Issuer, bus *events.Bus, logger *zap.Logger) *Engine {
	return &Engine{
		store:    store,
		payments: payments,
		issuer:   issuer,
		bus:      bus,
		logger:   logger.Named("mint"),
		locks:    make(map[solana.PublicKey]*sync.Mutex),
	}
}

// curveLock returns the mutex serializing mutation of one curve.
func (e *Engine) curveLock(collection solana.PublicKey) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	lock, ok := e.locks[collection]
	if !ok {
		lock = &sync.Mutex{}
		e.locks[collection] = lock
	}
	return lock
}

// LockCurve takes the per-curve mutex on behalf of a caller mutating the
// curve outside the mint path (governance, table creation). The returned
// func releases it.
func (e *Engine) LockCurve(collection solana.PublicKey) func() {
	lock := e.curveLock(collection)
	lock.Lock()
	return lock.Unlock
}

// QuotePrice returns the price the next mint would pay, without mutating
// any state.
func (e *Engine) QuotePrice(ctx context.Context, collection solana.PublicKey) (uint64, error) {
	cfg, table, err := e.loadCurve(ctx, collection)
	if err != nil {
		return 0, err
	}
	price, err := cfg.NextPrice(table)
	if err != nil {
		return 0, err
	}
	if e.bus != nil {
		e.bus.Publish(events.NewPriceUpdated(collection, cfg.NextEdition(), price))
	}
	return price, nil
}

// Mint runs the full quote → pay → issue → account sequence as one
// indivisible step. Failures before the unit leaves the issuer reverse
// a settled payment and leave the accounting untouched; once the unit
// is out, both the unit and the payment stand and only the storage
// commit is retried.
func (e *Engine) Mint(ctx context.Context, req Request) (*curve.MintReceipt, error) {
	lock := e.curveLock(req.Collection)
	lock.Lock()
	defer lock.Unlock()

	cfg, table, err := e.loadCurve(ctx, req.Collection)
	if err != nil {
		return nil, err
	}

	// Шаг 1: лимит supply
	if cfg.CurrentSupply >= cfg.MaxSupply {
		return nil, curve.ErrSupplyExhausted
	}

	// Шаг 2: цена издания до инкремента supply
	edition := cfg.NextEdition()
	price, err := cfg.NextPrice(table)
	if err != nil {
		return nil, err
	}

	// Пред-проверка учета: после выпуска фиксация уже не имеет права
	// упасть, поэтому переполнение total_volume ловим до оплаты
	if err := cfg.CheckMint(price); err != nil {
		return nil, err
	}

	cred, err := cfg.Credential()
	if err != nil {
		return nil, err
	}

	// Шаг 3: оплата от покупателя к authority
	if err := e.payments.Transfer(ctx, req.Buyer, cfg.Authority, price); err != nil {
		return nil, fmt.Errorf("payment failed: %w", err)
	}

	// Шаг 4: выпуск ровно одной единицы под креденшелом кривой
	if err := e.issuer.IssueOne(ctx, req.Collection, req.Buyer, cred, req.Metadata); err != nil {
		return nil, e.rollbackPayment(ctx, cfg, req.Buyer, price, fmt.Errorf("issuance failed: %w", err))
	}

	// Шаг 5: фиксация учета. Единица уже выпущена, поэтому оплату
	// не откатываем: пред-проверка исключила ошибки учета, а отказ
	// хранилища повторяется и при стойком сбое уходит на ручную сверку
	if err := cfg.ApplyMint(price); err != nil {
		return nil, fmt.Errorf("accounting commit failed: %w", err)
	}
	if err := e.saveCurveWithRetry(ctx, cfg); err != nil {
		e.logger.Error("Issued unit could not be reconciled with storage, manual reconciliation required",
			zap.String("collection", req.Collection.String()),
			zap.String("buyer", req.Buyer.String()),
			zap.Uint32("edition", edition),
			zap.Uint64("price_lamports", price),
			zap.Error(err))
		return nil, fmt.Errorf("accounting commit failed: %w", err)
	}

	receipt := &curve.MintReceipt{
		ID:         uuid.NewString(),
		Collection: req.Collection,
		Buyer:      req.Buyer,
		Edition:    edition,
		Price:      price,
		CreatedAt:  time.Now().UTC(),
	}
	if err := e.store.SaveReceipt(ctx, receipt); err != nil {
		// Учет уже зафиксирован; квитанция — производный артефакт
		e.logger.Warn("Failed to persist mint receipt",
			zap.String("collection", req.Collection.String()),
			zap.Uint32("edition", edition),
			zap.Error(err))
	}

	e.logger.Info("Edition minted",
		zap.String("collection", req.Collection.String()),
		zap.String("buyer", req.Buyer.String()),
		zap.Uint32("edition", edition),
		zap.Uint64("price_lamports", price),
		zap.Uint64("total_volume", cfg.TotalVolume))

	if e.bus != nil {
		e.bus.Publish(events.NewMintCompleted(receipt))
	}
	return receipt, nil
}

// saveCurveWithRetry повторяет запись учета с экспоненциальной
// задержкой: единица уже выпущена, и потеря записи дороже ожидания.
func (e *Engine) saveCurveWithRetry(ctx context.Context, cfg *curve.Config) error {
	backoffPolicy := backoff.NewExponentialBackOff()
	backoffPolicy.InitialInterval = 50 * time.Millisecond
	backoffPolicy.MaxInterval = time.Second

	notify := func(err error, duration time.Duration) {
		e.logger.Warn("Retrying accounting commit after storage error",
			zap.String("collection", cfg.CollectionMint.String()),
			zap.Error(err), zap.Duration("backoff", duration))
	}

	operation := func() (struct{}, error) {
		return struct{}{}, e.store.SaveCurve(ctx, cfg)
	}

	_, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoffPolicy),
		backoff.WithMaxTries(3),
		backoff.WithNotify(notify))
	return err
}

// rollbackPayment reverses an already-settled payment and returns cause,
// annotated if even the reversal failed.
func (e *Engine) rollbackPayment(ctx context.Context, cfg *curve.Config, buyer solana.PublicKey, price uint64, cause error) error {
	if err := e.payments.Transfer(ctx, cfg.Authority, buyer, price); err != nil {
		e.logger.Error("Payment rollback failed",
			zap.String("collection", cfg.CollectionMint.String()),
			zap.String("buyer", buyer.String()),
			zap.Uint64("price_lamports", price),
			zap.Error(err))
		return errors.Join(cause, fmt.Errorf("payment rollback failed: %w", err))
	}
	e.logger.Warn("Mint attempt rolled back",
		zap.String("collection", cfg.CollectionMint.String()),
		zap.Uint64("price_lamports", price),
		zap.Error(cause))
	return cause
}

// loadCurve fetches the config and, for table curves, the companion
// lookup table. A missing table is not an error: the interpolated
// formula covers that window.
func (e *Engine) loadCurve(ctx context.Context, collection solana.PublicKey) (*curve.Config, *curve.Table, error) {
	cfg, err := e.store.GetCurve(ctx, collection)
	if err != nil {
		return nil, nil, err
	}
	var table *curve.Table
	if cfg.Kind == curve.KindLookupTable {
		table, err = e.store.GetTable(ctx, collection)
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			return nil, nil, err
		}
	}
	return cfg, table, nil
}
