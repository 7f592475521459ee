// internal/storage/storage.go
package storage

import (
	"context"
	"errors"

	"github.com/gagliardetto/solana-go"

	"github.com/rovshanmuradov/edition-mint/internal/curve"
)

// Ошибки хранилища.
var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrAlreadyExists is returned when creating a record whose key is taken.
	ErrAlreadyExists = errors.New("record already exists")
)

// Store определяет интерфейс для работы с хранилищем кривых.
// Lookup-таблица живет рядом со своей кривой, и удаление кривой
// забирает ее с собой; квитанции остаются как история минтов.
type Store interface {
	// Кривые
	CreateCurve(ctx context.Context, cfg *curve.Config) error
	GetCurve(ctx context.Context, collection solana.PublicKey) (*curve.Config, error)
	SaveCurve(ctx context.Context, cfg *curve.Config) error
	DeleteCurve(ctx context.Context, collection solana.PublicKey) error

	// Lookup-таблицы
	CreateTable(ctx context.Context, table *curve.Table) error
	GetTable(ctx context.Context, collection solana.PublicKey) (*curve.Table, error)

	// Квитанции
	SaveReceipt(ctx context.Context, receipt *curve.MintReceipt) error
	ListReceipts(ctx context.Context, collection solana.PublicKey, limit, offset int) ([]*curve.MintReceipt, error)

	Close() error
}
