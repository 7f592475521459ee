// pkg/blockchain/solana/rpc_pool.go
package solana

import (
	"context"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go/rpc"
)

type RPCPool struct {
	clients []*rpc.Client
	mutex   sync.Mutex
	index   int
}

func NewRPCPool(rpcList []string) *RPCPool {
	// Создаем список RPC-клиентов из rpcList
	var clients []*rpc.Client
	for _, url := range rpcList {
		clients = append(clients, rpc.New(url))
	}

	return &RPCPool{
		clients: clients,
		index:   0,
	}
}

// GetClient возвращает следующий доступный RPC-клиент (круговой цикл).
func (p *RPCPool) GetClient() *rpc.Client {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	client := p.clients[p.index]
	p.index = (p.index + 1) % len(p.clients)
	return client
}

func (p *RPCPool) CheckClientHealth(client *rpc.Client) bool {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := client.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	return err == nil
}

// HealthyClients опрашивает все клиенты пула и возвращает число живых.
func (p *RPCPool) HealthyClients() int {
	healthy := 0
	for _, client := range p.clients {
		if p.CheckClientHealth(client) {
			healthy++
		}
	}
	return healthy
}
