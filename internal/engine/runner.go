// internal/engine/runner.go
package engine

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/rovshanmuradov/edition-mint/internal/config"
	"github.com/rovshanmuradov/edition-mint/internal/events"
	"github.com/rovshanmuradov/edition-mint/internal/issuance"
	"github.com/rovshanmuradov/edition-mint/internal/mint"
	"github.com/rovshanmuradov/edition-mint/internal/settlement"
	"github.com/rovshanmuradov/edition-mint/internal/storage"
	"github.com/rovshanmuradov/edition-mint/internal/storage/memory"
	"github.com/rovshanmuradov/edition-mint/internal/storage/postgres"
	"github.com/rovshanmuradov/edition-mint/internal/wallet"
	solbc "github.com/rovshanmuradov/edition-mint/pkg/blockchain/solana"
)

// Runner assembles the full engine from config: store, payment backend,
// issuer, event bus, service. With wallets and RPC endpoints configured
// it settles on-chain; otherwise it runs against the in-memory
// simulator backends.
type Runner struct {
	logger     *zap.Logger
	config     *config.Config
	store      storage.Store
	bus        *events.Bus
	service    *Service
	shutdownCh chan os.Signal
}

func NewRunner(cfg *config.Config, logger *zap.Logger) *Runner {
	return &Runner{
		logger:     logger,
		config:     cfg,
		shutdownCh: make(chan os.Signal, 1),
	}
}

// Initialize builds every component the service needs. Postgres is used
// when a DSN is configured, the in-memory store otherwise.
func (r *Runner) Initialize(ctx context.Context) error {
	if r.config.PostgresURL != "" {
		pg, err := postgres.New(ctx, r.config.PostgresURL, r.logger)
		if err != nil {
			return fmt.Errorf("failed to open postgres store: %w", err)
		}
		if err := pg.RunMigrations(ctx); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		r.store = pg
		r.logger.Info("📦 Using postgres store")
	} else {
		r.store = memory.New()
		r.logger.Info("📦 Using in-memory store")
	}

	r.bus = events.NewBus(r.logger, r.config.EventBufferSize)

	payments, issuer, err := r.buildBackends()
	if err != nil {
		return err
	}

	eng := mint.NewEngine(r.store, payments, issuer, r.bus, r.logger)
	r.service = NewService(r.store, eng, r.bus, Options{
		ReceiptPageSize: r.config.ReceiptPageSize,
		ExportDir:       r.config.ExportDir,
	}, r.logger)
	return nil
}

// buildBackends picks on-chain or simulator settlement depending on
// whether signing wallets are available.
func (r *Runner) buildBackends() (mint.PaymentBackend, mint.Issuer, error) {
	byName, err := wallet.LoadWallets(r.config.WalletsFile)
	if err != nil || len(byName) == 0 {
		r.logger.Info("🧪 No signing wallets, running with simulator backends",
			zap.String("wallets_file", r.config.WalletsFile))
		return settlement.NewLedger(), issuance.NewRecorder(), nil
	}

	wallets := make([]*wallet.Wallet, 0, len(byName))
	for _, w := range byName {
		wallets = append(wallets, w)
	}

	client, err := solbc.NewClient(r.config.RPCList, r.logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create RPC client: %w", err)
	}

	if healthy := client.HealthyEndpoints(); healthy == 0 {
		r.logger.Warn("⚠️ No RPC endpoint answered the health check",
			zap.Int("rpc_endpoints", len(r.config.RPCList)))
	} else {
		r.logger.Info("RPC endpoints healthy",
			zap.Int("healthy", healthy),
			zap.Int("total", len(r.config.RPCList)))
	}

	r.logger.Info("🚀 Running with on-chain settlement",
		zap.Int("wallets", len(wallets)),
		zap.Int("rpc_endpoints", len(r.config.RPCList)))
	return settlement.NewSolanaBackend(client, wallets, r.logger),
		issuance.NewSolanaIssuer(client, wallets, r.logger),
		nil
}

// Service exposes the assembled engine facade.
func (r *Runner) Service() *Service {
	return r.service
}

// Run blocks until a shutdown signal arrives, then closes everything in
// reverse order.
func (r *Runner) Run(ctx context.Context) error {
	signal.Notify(r.shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	r.logger.Info("✅ Curve engine running")

	select {
	case sig := <-r.shutdownCh:
		r.logger.Info("📡 Signal received: " + sig.String())
	case <-ctx.Done():
		r.logger.Info("Context cancelled")
	}

	return r.Shutdown(context.Background())
}

// Shutdown flushes the event bus and closes the store.
func (r *Runner) Shutdown(ctx context.Context) error {
	handler := NewShutdownHandler(r.logger, 0)
	handler.AddFunc("store", r.store.Close)
	handler.AddFunc("event_bus", func() error {
		r.bus.Close()
		return nil
	})
	handler.Shutdown(ctx)

	if err := r.logger.Sync(); err != nil {
		if !os.IsNotExist(err) &&
			err.Error() != "sync /dev/stdout: invalid argument" &&
			err.Error() != "sync /dev/stderr: inappropriate ioctl for device" {
			fmt.Fprintf(os.Stderr, "failed to sync logger during shutdown: %v\n", err)
		}
	}
	return nil
}
