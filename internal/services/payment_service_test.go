package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/vistara-apps/healthsync/internal/models"
	"github.com/vistara-apps/healthsync/internal/payment"
)

var testTxHash = common.HexToHash("0x1d2c3b4a5f6e7d8c9b0a1d2c3b4a5f6e7d8c9b0a1d2c3b4a5f6e7d8c9b0a1d2c")

// instantProvider settles immediately with a fixed transaction hash.
type instantProvider struct{}

func (instantProvider) SubmitPayment(ctx context.Context, userID string) (*payment.Receipt, error) {
	return &payment.Receipt{TxHash: testTxHash, Amount: payment.DefaultAmount, Timestamp: time.Now()}, nil
}

// gatedProvider blocks until released, honoring context cancellation like the
// real wallet round-trip.
type gatedProvider struct {
	release chan struct{}
}

func (p *gatedProvider) SubmitPayment(ctx context.Context, userID string) (*payment.Receipt, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-p.release:
		return &payment.Receipt{TxHash: testTxHash, Amount: payment.DefaultAmount, Timestamp: time.Now()}, nil
	}
}

// failingProvider rejects every submission.
type failingProvider struct{ err error }

func (p failingProvider) SubmitPayment(ctx context.Context, userID string) (*payment.Receipt, error) {
	return nil, p.err
}

// verifierFunc adapts a function to the payment.Verifier interface.
type verifierFunc func(ctx context.Context, txHash common.Hash) (bool, error)

func (f verifierFunc) VerifyTransaction(ctx context.Context, txHash common.Hash) (bool, error) {
	return f(ctx, txHash)
}

func acceptAll(ctx context.Context, txHash common.Hash) (bool, error) { return true, nil }
func rejectAll(ctx context.Context, txHash common.Hash) (bool, error) { return false, nil }

func seedFreeUser(t *testing.T, users *fakeUserStore) *models.User {
	t.Helper()
	user := &models.User{
		Username:           "casey",
		Email:              "casey@example.com",
		Role:               "user",
		SelectedConditions: []string{"migraines"},
		SubscriptionStatus: models.SubscriptionFree,
	}
	created, err := users.CreateUser(context.Background(), user)
	require.NoError(t, err)
	return created
}

func waitForState(t *testing.T, svc *PaymentService, userID primitive.ObjectID, want FlowState) PaymentFlow {
	t.Helper()
	require.Eventually(t, func() bool {
		return svc.FlowStatus(userID).State == want
	}, 2*time.Second, 5*time.Millisecond)
	return svc.FlowStatus(userID)
}

func TestAttemptPaymentSuccess(t *testing.T) {
	users := newFakeUserStore()
	user := seedFreeUser(t, users)
	svc := NewPaymentService(users, instantProvider{}, verifierFunc(acceptAll), time.Second)

	flow, err := svc.AttemptPayment(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, FlowProcessing, flow.State)

	final := waitForState(t, svc, user.ID, FlowSuccess)
	assert.Equal(t, testTxHash.Hex(), final.TxHash)

	upgraded, err := users.GetUserByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionPremium, upgraded.SubscriptionStatus)
	assert.True(t, CanAccess(upgraded.SubscriptionStatus, true))

	// Only the subscription moved; the rest of the account is untouched.
	assert.Equal(t, user.Username, upgraded.Username)
	assert.Equal(t, user.Email, upgraded.Email)
	assert.Equal(t, user.SelectedConditions, upgraded.SelectedConditions)

	// Closing the modal clears the success state.
	svc.CancelPayment(user.ID)
	assert.Equal(t, FlowIdle, svc.FlowStatus(user.ID).State)
}

func TestAttemptPaymentSingleFlight(t *testing.T) {
	users := newFakeUserStore()
	user := seedFreeUser(t, users)
	provider := &gatedProvider{release: make(chan struct{})}
	svc := NewPaymentService(users, provider, verifierFunc(acceptAll), time.Second)

	_, err := svc.AttemptPayment(context.Background(), user.ID)
	require.NoError(t, err)

	_, err = svc.AttemptPayment(context.Background(), user.ID)
	require.ErrorIs(t, err, ErrPaymentInFlight)

	close(provider.release)
	waitForState(t, svc, user.ID, FlowSuccess)

	// Another user is unaffected by the first user's flight.
	other := seedFreeUser(t, users)
	assert.Equal(t, FlowIdle, svc.FlowStatus(other.ID).State)
}

func TestAttemptPaymentAlreadyPremium(t *testing.T) {
	users := newFakeUserStore()
	user := seedFreeUser(t, users)
	_, err := users.UpdateUser(context.Background(), user.ID, map[string]interface{}{
		"subscription_status": models.SubscriptionPremium,
	})
	require.NoError(t, err)

	svc := NewPaymentService(users, instantProvider{}, verifierFunc(acceptAll), time.Second)
	_, err = svc.AttemptPayment(context.Background(), user.ID)
	assert.ErrorIs(t, err, ErrAlreadyPremium)
}

func TestAttemptPaymentFailureLeavesUserUnchanged(t *testing.T) {
	users := newFakeUserStore()
	user := seedFreeUser(t, users)
	svc := NewPaymentService(users, failingProvider{err: errors.New("wallet rejected the transfer")}, verifierFunc(acceptAll), time.Second)

	_, err := svc.AttemptPayment(context.Background(), user.ID)
	require.NoError(t, err)

	final := waitForState(t, svc, user.ID, FlowError)
	assert.Equal(t, "wallet rejected the transfer", final.Reason)

	stored, err := users.GetUserByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionFree, stored.SubscriptionStatus)

	// A failed attempt does not block a retry.
	_, err = svc.AttemptPayment(context.Background(), user.ID)
	assert.NoError(t, err)
}

func TestAttemptPaymentVerificationFailed(t *testing.T) {
	users := newFakeUserStore()
	user := seedFreeUser(t, users)
	svc := NewPaymentService(users, instantProvider{}, verifierFunc(rejectAll), time.Second)

	_, err := svc.AttemptPayment(context.Background(), user.ID)
	require.NoError(t, err)

	final := waitForState(t, svc, user.ID, FlowError)
	assert.Equal(t, "payment verification failed", final.Reason)

	stored, err := users.GetUserByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionFree, stored.SubscriptionStatus)
}

func TestAttemptPaymentTimeout(t *testing.T) {
	users := newFakeUserStore()
	user := seedFreeUser(t, users)
	provider := &gatedProvider{release: make(chan struct{})}
	svc := NewPaymentService(users, provider, verifierFunc(acceptAll), 20*time.Millisecond)

	_, err := svc.AttemptPayment(context.Background(), user.ID)
	require.NoError(t, err)

	final := waitForState(t, svc, user.ID, FlowError)
	assert.Equal(t, "payment timed out", final.Reason)

	stored, err := users.GetUserByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionFree, stored.SubscriptionStatus)
}

func TestCancelPaymentDiscardsLateResult(t *testing.T) {
	users := newFakeUserStore()
	user := seedFreeUser(t, users)
	provider := &gatedProvider{release: make(chan struct{})}
	svc := NewPaymentService(users, provider, verifierFunc(acceptAll), time.Second)

	_, err := svc.AttemptPayment(context.Background(), user.ID)
	require.NoError(t, err)

	svc.CancelPayment(user.ID)
	assert.Equal(t, FlowIdle, svc.FlowStatus(user.ID).State)

	// Releasing the provider after cancellation must not resurrect the flow
	// or upgrade the user.
	close(provider.release)
	time.Sleep(50 * time.Millisecond)

	assert.Equal(t, FlowIdle, svc.FlowStatus(user.ID).State)
	stored, err := users.GetUserByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionFree, stored.SubscriptionStatus)
}

// gatedVerifier blocks until released, then verifies unconditionally. It
// deliberately ignores cancellation, like a verification round-trip whose
// result is already in transit.
type gatedVerifier struct {
	release chan struct{}
}

func (v *gatedVerifier) VerifyTransaction(ctx context.Context, txHash common.Hash) (bool, error) {
	<-v.release
	return true, nil
}

// ctxBlindUserStore commits writes regardless of the caller's context, the
// way a write that already reached the database does.
type ctxBlindUserStore struct {
	*fakeUserStore
}

func (s *ctxBlindUserStore) UpdateUser(ctx context.Context, id primitive.ObjectID, update map[string]interface{}) (*models.User, error) {
	return s.fakeUserStore.UpdateUser(context.Background(), id, update)
}

func TestCancelBeforeSubscriptionWriteDiscardsUpgrade(t *testing.T) {
	users := newFakeUserStore()
	user := seedFreeUser(t, users)
	verifier := &gatedVerifier{release: make(chan struct{})}
	svc := NewPaymentService(&ctxBlindUserStore{users}, instantProvider{}, verifier, time.Second)

	_, err := svc.AttemptPayment(context.Background(), user.ID)
	require.NoError(t, err)

	// Cancel while verification is still in flight, then let it complete.
	svc.CancelPayment(user.ID)
	close(verifier.release)
	time.Sleep(50 * time.Millisecond)

	assert.Equal(t, FlowIdle, svc.FlowStatus(user.ID).State)
	stored, err := users.GetUserByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionFree, stored.SubscriptionStatus)
}

func TestCancelPaymentWithoutAttempt(t *testing.T) {
	users := newFakeUserStore()
	user := seedFreeUser(t, users)
	svc := NewPaymentService(users, instantProvider{}, verifierFunc(acceptAll), time.Second)

	svc.CancelPayment(user.ID)
	assert.Equal(t, FlowIdle, svc.FlowStatus(user.ID).State)
}
