// ==============================================
// File: internal/settlement/solana.go
// ==============================================
package settlement

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/edition-mint/internal/wallet"
	solbc "github.com/rovshanmuradov/edition-mint/pkg/blockchain/solana"
)

// SolanaBackend settles payments as system-program transfers. It can
// only move funds out of accounts whose signing keys it holds, which
// covers both directions of a mint attempt: the buyer's payment and the
// authority-side rollback.
type SolanaBackend struct {
	client  *solbc.Client
	signers map[solana.PublicKey]*wallet.Wallet
	logger  *zap.Logger
}

func NewSolanaBackend(client *solbc.Client, signers []*wallet.Wallet, logger *zap.Logger) *SolanaBackend {
	byKey := make(map[solana.PublicKey]*wallet.Wallet, len(signers))
	for _, w := range signers {
		byKey[w.PublicKey] = w
	}
	return &SolanaBackend{
		client:  client,
		signers: byKey,
		logger:  logger.Named("settlement"),
	}
}

// Transfer строит, подписывает и отправляет system transfer. Вызывается
// не более одного раза за попытку минта.
func (b *SolanaBackend) Transfer(ctx context.Context, from, to solana.PublicKey, lamports uint64) error {
	signer, ok := b.signers[from]
	if !ok {
		return fmt.Errorf("no signing key for account %s", from)
	}

	// Проверка баланса до отправки; ошибка чтения не блокирует перевод,
	// последнее слово за сетью
	if balance, err := b.client.GetBalance(ctx, from); err == nil && balance < lamports {
		return fmt.Errorf("%w: account %s holds %d lamports, transfer needs %d",
			ErrInsufficientFunds, from, balance, lamports)
	}

	blockhash, err := b.client.GetLatestBlockhash(ctx)
	if err != nil {
		return fmt.Errorf("failed to get recent blockhash: %w", err)
	}

	ix := system.NewTransferInstruction(lamports, from, to).Build()
	tx, err := solana.NewTransaction(
		[]solana.Instruction{ix},
		blockhash,
		solana.TransactionPayer(from),
	)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	if err := signer.SignTransaction(tx); err != nil {
		return fmt.Errorf("failed to sign transaction: %w", err)
	}

	sig, err := b.client.SendTransaction(ctx, tx)
	if err != nil {
		return fmt.Errorf("transfer of %d lamports failed: %w", lamports, err)
	}

	b.logger.Info("Payment settled",
		zap.String("from", from.String()),
		zap.String("to", to.String()),
		zap.Uint64("lamports", lamports),
		zap.String("signature", sig.String()))
	return nil
}
