// pkg/blockchain/solana/client.go
package solana

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"
)

type Client struct {
	rpcPool *RPCPool
	logger  *zap.Logger
}

// NewClient создает новый экземпляр клиента Solana.
func NewClient(rpcList []string, logger *zap.Logger) (*Client, error) {
	if len(rpcList) == 0 {
		return nil, errors.New("empty RPC list")
	}

	for _, rpcURL := range rpcList {
		if _, err := url.Parse(rpcURL); err != nil {
			return nil, errors.New("invalid RPC URL: " + rpcURL)
		}
	}

	return &Client{
		rpcPool: NewRPCPool(rpcList),
		logger:  logger.Named("solana_client"),
	}, nil
}

// SendTransaction отправляет подписанную транзакцию. Никаких повторов:
// одна попытка — один вызов.
func (c *Client) SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	rpcClient := c.rpcPool.GetClient()
	txHash, err := rpcClient.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		SkipPreflight:       false,
		PreflightCommitment: rpc.CommitmentConfirmed,
	})
	if err != nil {
		c.logger.Error("Ошибка отправки транзакции", zap.Error(err))
		return solana.Signature{}, err
	}
	return txHash, nil
}

// GetLatestBlockhash возвращает свежий blockhash; read-only запрос,
// поэтому обернут в экспоненциальный retry.
func (c *Client) GetLatestBlockhash(ctx context.Context) (solana.Hash, error) {
	result, err := retryRead(ctx, c, func(rpcClient *rpc.Client) (*rpc.GetLatestBlockhashResult, error) {
		return rpcClient.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	})
	if err != nil {
		c.logger.Error("Ошибка получения blockhash", zap.Error(err))
		return solana.Hash{}, err
	}
	return result.Value.Blockhash, nil
}

// HealthyEndpoints опрашивает эндпоинты пула и возвращает число
// ответивших.
func (c *Client) HealthyEndpoints() int {
	return c.rpcPool.HealthyClients()
}

// GetAccountInfo читает аккаунт; read-only запрос с retry.
func (c *Client) GetAccountInfo(ctx context.Context, account solana.PublicKey) (*rpc.GetAccountInfoResult, error) {
	return retryRead(ctx, c, func(rpcClient *rpc.Client) (*rpc.GetAccountInfoResult, error) {
		return rpcClient.GetAccountInfo(ctx, account)
	})
}

// GetBalance возвращает баланс аккаунта в lamports.
func (c *Client) GetBalance(ctx context.Context, account solana.PublicKey) (uint64, error) {
	result, err := retryRead(ctx, c, func(rpcClient *rpc.Client) (*rpc.GetBalanceResult, error) {
		return rpcClient.GetBalance(ctx, account, rpc.CommitmentConfirmed)
	})
	if err != nil {
		return 0, err
	}
	return result.Value, nil
}

// retryRead повторяет read-only RPC-вызов с экспоненциальной задержкой,
// каждый раз через следующий клиент пула.
func retryRead[T any](ctx context.Context, c *Client, call func(*rpc.Client) (T, error)) (T, error) {
	backoffPolicy := backoff.NewExponentialBackOff()
	backoffPolicy.InitialInterval = 200 * time.Millisecond
	backoffPolicy.MaxInterval = 2 * time.Second

	notify := func(err error, duration time.Duration) {
		c.logger.Debug("Повтор RPC-запроса после ошибки",
			zap.Error(err), zap.Duration("backoff", duration))
	}

	operation := func() (T, error) {
		return call(c.rpcPool.GetClient())
	}

	return backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoffPolicy),
		backoff.WithMaxTries(3),
		backoff.WithNotify(notify))
}
