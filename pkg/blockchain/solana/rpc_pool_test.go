// pkg/blockchain/solana/rpc_pool_test.go
package solana

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRPCPoolRoundRobin(t *testing.T) {
	pool := NewRPCPool([]string{
		"http://localhost:18899",
		"http://localhost:28899",
		"http://localhost:38899",
	})

	first := pool.GetClient()
	second := pool.GetClient()
	third := pool.GetClient()
	assert.NotSame(t, first, second)
	assert.NotSame(t, second, third)

	// Цикл замыкается на первом клиенте
	assert.Same(t, first, pool.GetClient())
}

func TestRPCPoolHealthCheck(t *testing.T) {
	// Поднимаем фальшивый RPC: один эндпоинт отвечает, второй мертв
	alive := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":{"context":{"slot":1},"value":{"blockhash":"EkSnNWid2cvwEVnVx9aBqawnmiCNiDgp3gUdkDPTKN1N","lastValidBlockHeight":1}}}`))
	}))
	defer alive.Close()

	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	dead.Close()

	pool := NewRPCPool([]string{alive.URL, dead.URL})
	assert.Equal(t, 1, pool.HealthyClients())
}

func TestHealthyEndpointsCountsAnswers(t *testing.T) {
	alive := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":{"context":{"slot":1},"value":{"blockhash":"EkSnNWid2cvwEVnVx9aBqawnmiCNiDgp3gUdkDPTKN1N","lastValidBlockHeight":1}}}`))
	}))
	defer alive.Close()

	client, err := NewClient([]string{alive.URL}, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 1, client.HealthyEndpoints())
}
