package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/sirupsen/logrus"
)

// Verifier confirms that a submitted transaction actually settled.
type Verifier interface {
	VerifyTransaction(ctx context.Context, txHash common.Hash) (bool, error)
}

// StubVerifier accepts any non-zero transaction hash. This is a placeholder
// policy for the simulated provider; production deployments configure a
// ChainVerifier instead.
type StubVerifier struct{}

func (StubVerifier) VerifyTransaction(ctx context.Context, txHash common.Hash) (bool, error) {
	return txHash != (common.Hash{}), nil
}

// ChainVerifier checks transaction finality against a JSON-RPC node.
type ChainVerifier struct {
	client *ethclient.Client
}

// NewChainVerifier dials the RPC endpoint.
func NewChainVerifier(rpcURL string) (*ChainVerifier, error) {
	client, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial chain RPC: %v", err)
	}
	return &ChainVerifier{client: client}, nil
}

// VerifyTransaction looks up the transaction receipt. A transaction that is
// unknown to the node is unverified, not an error.
func (v *ChainVerifier) VerifyTransaction(ctx context.Context, txHash common.Hash) (bool, error) {
	receipt, err := v.client.TransactionReceipt(ctx, txHash)
	if err != nil {
		if errors.Is(err, ethereum.NotFound) {
			logrus.WithField("txHash", txHash.Hex()).Warn("Transaction not found on chain")
			return false, nil
		}
		return false, fmt.Errorf("failed to fetch transaction receipt: %v", err)
	}

	return receipt.Status == types.ReceiptStatusSuccessful, nil
}
