// internal/storage/memory/memory.go
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/gagliardetto/solana-go"

	"github.com/rovshanmuradov/edition-mint/internal/curve"
	"github.com/rovshanmuradov/edition-mint/internal/storage"
)

// Store is the in-memory storage.Store used by tests and the simulator
// backend. Records are cloned on the way in and out so callers never
// share mutable state with the store.
type Store struct {
	mu       sync.RWMutex
	curves   map[solana.PublicKey]*curve.Config
	tables   map[solana.PublicKey]*curve.Table
	receipts map[solana.PublicKey][]*curve.MintReceipt
}

var _ storage.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		curves:   make(map[solana.PublicKey]*curve.Config),
		tables:   make(map[solana.PublicKey]*curve.Table),
		receipts: make(map[solana.PublicKey][]*curve.MintReceipt),
	}
}

func (s *Store) CreateCurve(_ context.Context, cfg *curve.Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.curves[cfg.CollectionMint]; ok {
		return fmt.Errorf("curve for %s: %w", cfg.CollectionMint, storage.ErrAlreadyExists)
	}
	s.curves[cfg.CollectionMint] = cfg.Clone()
	return nil
}

func (s *Store) GetCurve(_ context.Context, collection solana.PublicKey) (*curve.Config, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cfg, ok := s.curves[collection]
	if !ok {
		return nil, fmt.Errorf("curve for %s: %w", collection, storage.ErrNotFound)
	}
	return cfg.Clone(), nil
}

func (s *Store) SaveCurve(_ context.Context, cfg *curve.Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.curves[cfg.CollectionMint]; !ok {
		return fmt.Errorf("curve for %s: %w", cfg.CollectionMint, storage.ErrNotFound)
	}
	s.curves[cfg.CollectionMint] = cfg.Clone()
	return nil
}

// DeleteCurve удаляет кривую вместе с таблицей. Квитанции остаются
// как история минтов.
func (s *Store) DeleteCurve(_ context.Context, collection solana.PublicKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.curves[collection]; !ok {
		return fmt.Errorf("curve for %s: %w", collection, storage.ErrNotFound)
	}
	delete(s.curves, collection)
	delete(s.tables, collection)
	return nil
}

func (s *Store) CreateTable(_ context.Context, table *curve.Table) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.curves[table.OwningCurve]; !ok {
		return fmt.Errorf("owning curve %s: %w", table.OwningCurve, storage.ErrNotFound)
	}
	if _, ok := s.tables[table.OwningCurve]; ok {
		return fmt.Errorf("table for %s: %w", table.OwningCurve, storage.ErrAlreadyExists)
	}
	s.tables[table.OwningCurve] = table.Clone()
	return nil
}

func (s *Store) GetTable(_ context.Context, collection solana.PublicKey) (*curve.Table, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	table, ok := s.tables[collection]
	if !ok {
		return nil, fmt.Errorf("table for %s: %w", collection, storage.ErrNotFound)
	}
	return table.Clone(), nil
}

func (s *Store) SaveReceipt(_ context.Context, receipt *curve.MintReceipt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	dup := *receipt
	s.receipts[receipt.Collection] = append(s.receipts[receipt.Collection], &dup)
	return nil
}

func (s *Store) ListReceipts(_ context.Context, collection solana.PublicKey, limit, offset int) ([]*curve.MintReceipt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := s.receipts[collection]
	if offset < 0 {
		offset = 0
	}
	if offset >= len(all) {
		return nil, nil
	}
	end := len(all)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	out := make([]*curve.MintReceipt, 0, end-offset)
	for _, r := range all[offset:end] {
		dup := *r
		out = append(out, &dup)
	}
	return out, nil
}

func (s *Store) Close() error { return nil }
