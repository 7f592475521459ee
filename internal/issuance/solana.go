// ==============================================
// File: internal/issuance/solana.go
// ==============================================
package issuance

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/edition-mint/internal/curve"
	"github.com/rovshanmuradov/edition-mint/internal/mint"
	"github.com/rovshanmuradov/edition-mint/internal/wallet"
	solbc "github.com/rovshanmuradov/edition-mint/pkg/blockchain/solana"
)

// SolanaIssuer submits the mint-edition instruction on-chain. The buyer
// pays the account rent, so the buyer's wallet co-signs; the on-chain
// program signs as the curve credential via its PDA seeds.
type SolanaIssuer struct {
	client       *solbc.Client
	buyerWallets map[solana.PublicKey]*wallet.Wallet
	logger       *zap.Logger
}

var _ mint.Issuer = (*SolanaIssuer)(nil)

func NewSolanaIssuer(client *solbc.Client, buyers []*wallet.Wallet, logger *zap.Logger) *SolanaIssuer {
	byKey := make(map[solana.PublicKey]*wallet.Wallet, len(buyers))
	for _, w := range buyers {
		byKey[w.PublicKey] = w
	}
	return &SolanaIssuer{
		client:       client,
		buyerWallets: byKey,
		logger:       logger.Named("issuance"),
	}
}

// IssueOne mints a fresh edition mint account to the target's ATA and
// attaches the metadata record, all in one transaction.
func (i *SolanaIssuer) IssueOne(ctx context.Context, collection, target solana.PublicKey, cred curve.Credential, meta mint.EditionMetadata) error {
	buyerWallet, ok := i.buyerWallets[target]
	if !ok {
		return fmt.Errorf("no signing key for buyer %s", target)
	}

	// Коллекционный mint должен существовать до выпуска
	info, err := i.client.GetAccountInfo(ctx, collection)
	if err != nil {
		return fmt.Errorf("failed to read collection mint %s: %w", collection, err)
	}
	if info.Value == nil {
		return fmt.Errorf("collection mint %s does not exist on chain", collection)
	}

	// Каждое издание — отдельный mint-аккаунт
	editionMint := solana.NewWallet()
	buyerATA, err := buyerWallet.GetATA(editionMint.PublicKey())
	if err != nil {
		return fmt.Errorf("failed to derive associated token account: %w", err)
	}

	blockhash, err := i.client.GetLatestBlockhash(ctx)
	if err != nil {
		return fmt.Errorf("failed to get recent blockhash: %w", err)
	}

	ix := BuildMintEditionInstruction(cred, collection, editionMint.PublicKey(), target, buyerATA, meta)
	tx, err := solana.NewTransaction(
		[]solana.Instruction{ix},
		blockhash,
		solana.TransactionPayer(target),
	)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	if err := buyerWallet.SignTransaction(tx); err != nil {
		return fmt.Errorf("failed to sign transaction: %w", err)
	}

	sig, err := i.client.SendTransaction(ctx, tx)
	if err != nil {
		return fmt.Errorf("issuance transaction failed: %w", err)
	}

	i.logger.Info("Edition issued",
		zap.String("target", target.String()),
		zap.String("edition_mint", editionMint.PublicKey().String()),
		zap.String("curve_credential", cred.Address.String()),
		zap.String("signature", sig.String()))
	return nil
}
