// Package payment models the external micropayment collaborators: a provider
// that submits an x402-style USDC transfer and a verifier that confirms the
// resulting transaction. A successful attempt always carries a transaction
// hash; failure is an error. There is no "succeeded without a reference"
// state.
package payment

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"
)

// USDC contract address on Base.
const USDCContractAddress = "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913"

// DefaultRecipient receives premium subscription payments.
const DefaultRecipient = "0x742d35Cc6634C0532925a3b8D0Ea5c0b2c5d0B3e"

// DefaultAmount is $5 USDC (6 decimals).
var DefaultAmount = big.NewInt(5_000_000)

// Receipt is the outcome of a successful payment attempt.
type Receipt struct {
	TxHash    common.Hash    `json:"tx_hash"`
	Amount    *big.Int       `json:"amount"`
	Token     common.Address `json:"token"`
	Recipient common.Address `json:"recipient"`
	Timestamp time.Time      `json:"timestamp"`
}

// Provider submits a payment for a user. Implementations must honor context
// cancellation and deadlines; a cancelled submission returns ctx.Err().
type Provider interface {
	SubmitPayment(ctx context.Context, userID string) (*Receipt, error)
}

// SimulatedProvider stands in for the wallet round-trip. It waits a fixed
// delay and fabricates a transaction hash. Settlement against a real ledger
// is out of scope here.
type SimulatedProvider struct {
	Delay     time.Duration
	Amount    *big.Int
	Token     common.Address
	Recipient common.Address
}

// NewSimulatedProvider creates a provider with the default USDC-on-Base
// parameters and the given processing delay.
func NewSimulatedProvider(delay time.Duration) *SimulatedProvider {
	return &SimulatedProvider{
		Delay:     delay,
		Amount:    DefaultAmount,
		Token:     common.HexToAddress(USDCContractAddress),
		Recipient: common.HexToAddress(DefaultRecipient),
	}
}

// SubmitPayment simulates the transfer. It blocks for the configured delay or
// until the context is done, whichever comes first.
func (p *SimulatedProvider) SubmitPayment(ctx context.Context, userID string) (*Receipt, error) {
	logrus.WithFields(logrus.Fields{
		"userID":    userID,
		"amount":    p.Amount.String(),
		"token":     p.Token.Hex(),
		"recipient": p.Recipient.Hex(),
	}).Info("Submitting payment")

	timer := time.NewTimer(p.Delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
	}

	var raw [common.HashLength]byte
	if _, err := rand.Read(raw[:]); err != nil {
		return nil, fmt.Errorf("failed to generate transaction hash: %v", err)
	}

	receipt := &Receipt{
		TxHash:    common.BytesToHash(raw[:]),
		Amount:    new(big.Int).Set(p.Amount),
		Token:     p.Token,
		Recipient: p.Recipient,
		Timestamp: time.Now(),
	}

	logrus.WithField("txHash", receipt.TxHash.Hex()).Info("Payment submitted")
	return receipt, nil
}
