// internal/storage/postgres/postgres.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/edition-mint/internal/curve"
	"github.com/rovshanmuradov/edition-mint/internal/storage"
)

// Store implements storage.Store on PostgreSQL. Curve and table records
// are persisted in their fixed binary layout (same bytes as the on-chain
// account), with the collection mint as the key column.
type Store struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

var _ storage.Store = (*Store)(nil)

func New(ctx context.Context, dsn string, logger *zap.Logger) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	cfg.MaxConnLifetime = time.Hour

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &Store{pool: pool, logger: logger.Named("postgres")}, nil
}

// RunMigrations создает таблицы, если их еще нет. Блокировка advisory
// lock защищает от параллельных миграций.
func (s *Store) RunMigrations(ctx context.Context) error {
	var locked bool
	if err := s.pool.QueryRow(ctx, "SELECT pg_try_advisory_lock(101)").Scan(&locked); err != nil {
		return fmt.Errorf("failed to acquire migration lock: %w", err)
	}
	if !locked {
		return errors.New("another migration is in progress")
	}
	defer s.pool.Exec(ctx, "SELECT pg_advisory_unlock(101)")

	ddl := []string{
		`CREATE TABLE IF NOT EXISTS curves (
			collection  TEXT PRIMARY KEY,
			record      BYTEA NOT NULL,
			updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS lookup_tables (
			collection  TEXT PRIMARY KEY REFERENCES curves(collection) ON DELETE CASCADE,
			record      BYTEA NOT NULL,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS mint_receipts (
			id          TEXT PRIMARY KEY,
			collection  TEXT NOT NULL,
			buyer       TEXT NOT NULL,
			edition     BIGINT NOT NULL,
			price       NUMERIC(20,0) NOT NULL,
			created_at  TIMESTAMPTZ NOT NULL,
			UNIQUE (collection, edition)
		)`,
		`CREATE INDEX IF NOT EXISTS mint_receipts_collection_idx
			ON mint_receipts (collection, edition)`,
	}
	for _, stmt := range ddl {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}
	return nil
}

func (s *Store) CreateCurve(ctx context.Context, cfg *curve.Config) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO curves (collection, record) VALUES ($1, $2)`,
		cfg.CollectionMint.String(), curve.MarshalConfig(cfg))
	if isDuplicateKey(err) {
		return fmt.Errorf("curve for %s: %w", cfg.CollectionMint, storage.ErrAlreadyExists)
	}
	if err != nil {
		return fmt.Errorf("insert curve: %w", err)
	}
	return nil
}

func (s *Store) GetCurve(ctx context.Context, collection solana.PublicKey) (*curve.Config, error) {
	var record []byte
	err := s.pool.QueryRow(ctx,
		`SELECT record FROM curves WHERE collection = $1`,
		collection.String()).Scan(&record)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("curve for %s: %w", collection, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("select curve: %w", err)
	}
	return curve.UnmarshalConfig(record)
}

func (s *Store) SaveCurve(ctx context.Context, cfg *curve.Config) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE curves SET record = $2, updated_at = now() WHERE collection = $1`,
		cfg.CollectionMint.String(), curve.MarshalConfig(cfg))
	if err != nil {
		return fmt.Errorf("update curve: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("curve for %s: %w", cfg.CollectionMint, storage.ErrNotFound)
	}
	return nil
}

func (s *Store) DeleteCurve(ctx context.Context, collection solana.PublicKey) error {
	// Таблица удаляется каскадом, квитанции остаются как история
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM curves WHERE collection = $1`, collection.String())
	if err != nil {
		return fmt.Errorf("delete curve: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("curve for %s: %w", collection, storage.ErrNotFound)
	}
	return nil
}

func (s *Store) CreateTable(ctx context.Context, table *curve.Table) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO lookup_tables (collection, record) VALUES ($1, $2)`,
		table.OwningCurve.String(), curve.MarshalTable(table))
	if isDuplicateKey(err) {
		return fmt.Errorf("table for %s: %w", table.OwningCurve, storage.ErrAlreadyExists)
	}
	if isForeignKeyViolation(err) {
		return fmt.Errorf("owning curve %s: %w", table.OwningCurve, storage.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("insert lookup table: %w", err)
	}
	return nil
}

func (s *Store) GetTable(ctx context.Context, collection solana.PublicKey) (*curve.Table, error) {
	var record []byte
	err := s.pool.QueryRow(ctx,
		`SELECT record FROM lookup_tables WHERE collection = $1`,
		collection.String()).Scan(&record)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("table for %s: %w", collection, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("select lookup table: %w", err)
	}
	return curve.UnmarshalTable(record)
}

func (s *Store) SaveReceipt(ctx context.Context, receipt *curve.MintReceipt) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO mint_receipts (id, collection, buyer, edition, price, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		receipt.ID,
		receipt.Collection.String(),
		receipt.Buyer.String(),
		int64(receipt.Edition),
		strconv.FormatUint(receipt.Price, 10),
		receipt.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert receipt: %w", err)
	}
	return nil
}

func (s *Store) ListReceipts(ctx context.Context, collection solana.PublicKey, limit, offset int) ([]*curve.MintReceipt, error) {
	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, collection, buyer, edition, price, created_at
		 FROM mint_receipts WHERE collection = $1
		 ORDER BY edition ASC LIMIT $2 OFFSET $3`,
		collection.String(), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("select receipts: %w", err)
	}
	defer rows.Close()

	var out []*curve.MintReceipt
	for rows.Next() {
		var (
			r             curve.MintReceipt
			collectionStr string
			buyerStr      string
			edition       int64
			priceStr      string
		)
		if err := rows.Scan(&r.ID, &collectionStr, &buyerStr, &edition, &priceStr, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan receipt: %w", err)
		}
		r.Price, err = strconv.ParseUint(priceStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse receipt price: %w", err)
		}
		r.Collection, err = solana.PublicKeyFromBase58(collectionStr)
		if err != nil {
			return nil, fmt.Errorf("parse receipt collection: %w", err)
		}
		r.Buyer, err = solana.PublicKeyFromBase58(buyerStr)
		if err != nil {
			return nil, fmt.Errorf("parse receipt buyer: %w", err)
		}
		r.Edition = uint32(edition)
		out = append(out, &r)
	}
	return out, rows.Err()
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func isDuplicateKey(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}
