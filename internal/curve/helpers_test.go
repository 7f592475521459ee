package curve

import (
	"testing"

	"github.com/gagliardetto/solana-go"
)

func testKey(t *testing.T) solana.PublicKey {
	t.Helper()
	return solana.NewWallet().PublicKey()
}
