// ==============================================
// File: internal/engine/service.go
// ==============================================
package engine

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/edition-mint/internal/curve"
	"github.com/rovshanmuradov/edition-mint/internal/events"
	"github.com/rovshanmuradov/edition-mint/internal/export"
	"github.com/rovshanmuradov/edition-mint/internal/mint"
	"github.com/rovshanmuradov/edition-mint/internal/storage"
)

// Service is the operator-facing facade over the engine: curve and
// table creation, governance, quoting and minting against one store.
// Governance shares the engine's per-curve locks, so parameter changes
// never interleave with an in-flight mint on the same curve.
type Service struct {
	store    storage.Store
	engine   *mint.Engine
	bus      *events.Bus
	exporter *export.ReceiptExporter
	logger   *zap.Logger

	receiptPageSize int
	exportDir       string
}

// Options tunes the facade's paging and export defaults.
type Options struct {
	// ReceiptPageSize is the page size used when walking full mint
	// histories. Zero falls back to 100.
	ReceiptPageSize int
	// ExportDir is the directory exports land in when the caller does
	// not name one.
	ExportDir string
}

func NewService(store storage.Store, eng *mint.Engine, bus *events.Bus, opts Options, logger *zap.Logger) *Service {
	if opts.ReceiptPageSize <= 0 {
		opts.ReceiptPageSize = 100
	}
	return &Service{
		store:           store,
		engine:          eng,
		bus:             bus,
		exporter:        export.NewReceiptExporter(logger),
		logger:          logger.Named("engine"),
		receiptPageSize: opts.ReceiptPageSize,
		exportDir:       opts.ExportDir,
	}
}

// CreateCurve validates parameters, derives the curve credential and
// persists a fresh config with zero supply.
func (s *Service) CreateCurve(ctx context.Context, authority, collectionMint solana.PublicKey, params curve.Params) (*curve.Config, error) {
	cfg, err := curve.New(authority, collectionMint, params)
	if err != nil {
		return nil, err
	}
	if err := s.store.CreateCurve(ctx, cfg); err != nil {
		return nil, err
	}
	s.logger.Info("Curve created",
		zap.String("collection", collectionMint.String()),
		zap.String("authority", authority.String()),
		zap.String("kind", cfg.Kind.String()),
		zap.Uint64("base_price", cfg.BasePrice),
		zap.Uint32("max_supply", cfg.MaxSupply))
	return cfg, nil
}

// CreateLookupTable validates and persists the write-once price table
// for a lookup-table curve.
func (s *Service) CreateLookupTable(ctx context.Context, collection, caller solana.PublicKey, prices []uint64) (*curve.Table, error) {
	unlock := s.engine.LockCurve(collection)
	defer unlock()

	cfg, err := s.store.GetCurve(ctx, collection)
	if err != nil {
		return nil, err
	}
	table, err := curve.NewTable(cfg, caller, prices)
	if err != nil {
		return nil, err
	}
	if err := s.store.CreateTable(ctx, table); err != nil {
		return nil, err
	}
	s.logger.Info("Lookup table created",
		zap.String("collection", collection.String()),
		zap.Int("entries", len(prices)))
	return table, nil
}

// UpdateParams applies an authority-gated parameter change.
func (s *Service) UpdateParams(ctx context.Context, collection, caller solana.PublicKey, upd curve.ParamUpdate) error {
	unlock := s.engine.LockCurve(collection)
	defer unlock()

	cfg, err := s.store.GetCurve(ctx, collection)
	if err != nil {
		return err
	}
	if err := cfg.UpdateParams(caller, upd); err != nil {
		return err
	}
	if err := s.store.SaveCurve(ctx, cfg); err != nil {
		return err
	}
	s.logger.Info("Curve parameters updated",
		zap.String("collection", collection.String()),
		zap.Uint64("base_price", cfg.BasePrice),
		zap.Uint64("price_increment", cfg.PriceIncrement),
		zap.Uint32("max_supply", cfg.MaxSupply))
	return nil
}

// CloseCurve destroys an empty curve and reclaims its storage,
// companion lookup table included.
func (s *Service) CloseCurve(ctx context.Context, collection, caller solana.PublicKey) error {
	unlock := s.engine.LockCurve(collection)
	defer unlock()

	cfg, err := s.store.GetCurve(ctx, collection)
	if err != nil {
		return err
	}
	if err := cfg.AuthorizeClose(caller); err != nil {
		return err
	}
	if err := s.store.DeleteCurve(ctx, collection); err != nil {
		return err
	}
	s.logger.Info("Curve closed",
		zap.String("collection", collection.String()),
		zap.String("authority", caller.String()))
	if s.bus != nil {
		s.bus.Publish(events.NewCurveClosed(collection, cfg.Authority))
	}
	return nil
}

// QuotePrice returns the price the next mint would pay.
func (s *Service) QuotePrice(ctx context.Context, collection solana.PublicKey) (uint64, error) {
	return s.engine.QuotePrice(ctx, collection)
}

// Mint executes one atomic mint attempt.
func (s *Service) Mint(ctx context.Context, req mint.Request) (*curve.MintReceipt, error) {
	return s.engine.Mint(ctx, req)
}

// GetCurve returns a read-only snapshot of the config.
func (s *Service) GetCurve(ctx context.Context, collection solana.PublicKey) (*curve.Config, error) {
	return s.store.GetCurve(ctx, collection)
}

// ListReceipts pages through the mint history of a collection.
func (s *Service) ListReceipts(ctx context.Context, collection solana.PublicKey, limit, offset int) ([]*curve.MintReceipt, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive")
	}
	return s.store.ListReceipts(ctx, collection, limit, offset)
}

// ExportReceipts writes the collection's full mint history to a file
// under opts.OutputDir (falling back to the configured export
// directory) and returns the path.
func (s *Service) ExportReceipts(ctx context.Context, collection solana.PublicKey, opts export.ExportOptions) (string, error) {
	if opts.OutputDir == "" {
		opts.OutputDir = s.exportDir
	}

	var all []*curve.MintReceipt
	for offset := 0; ; offset += s.receiptPageSize {
		page, err := s.store.ListReceipts(ctx, collection, s.receiptPageSize, offset)
		if err != nil {
			return "", err
		}
		all = append(all, page...)
		if len(page) < s.receiptPageSize {
			break
		}
	}

	return s.exporter.ExportReceipts(all, opts)
}
