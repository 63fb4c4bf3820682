package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/vistara-apps/healthsync/internal/models"
	"github.com/vistara-apps/healthsync/internal/payment"
)

// FlowState is the payment modal's view of an attempt.
type FlowState string

const (
	FlowIdle       FlowState = "idle"
	FlowProcessing FlowState = "processing"
	FlowSuccess    FlowState = "success"
	FlowError      FlowState = "error"
)

// PaymentFlow is a snapshot of a user's payment attempt.
type PaymentFlow struct {
	State     FlowState `json:"state"`
	TxHash    string    `json:"tx_hash,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	StartedAt time.Time `json:"started_at,omitempty"`
}

type flight struct {
	flow   PaymentFlow
	ctx    context.Context
	cancel context.CancelFunc
}

// PaymentService runs the premium upgrade flow. Attempts are single-flight
// per user: while one is processing, further attempts for that user are
// rejected. The external submit and verify calls run under a bounded context;
// cancelling the flow discards any late result without mutating state. On a
// verified payment the user moves free -> premium, touching only the
// subscription status and the update timestamp.
type PaymentService struct {
	users    UserStore
	provider payment.Provider
	verifier payment.Verifier
	timeout  time.Duration

	mu      sync.Mutex
	flights map[primitive.ObjectID]*flight
}

func NewPaymentService(users UserStore, provider payment.Provider, verifier payment.Verifier, timeout time.Duration) *PaymentService {
	return &PaymentService{
		users:    users,
		provider: provider,
		verifier: verifier,
		timeout:  timeout,
		flights:  make(map[primitive.ObjectID]*flight),
	}
}

// AttemptPayment starts a payment attempt for the user and returns the
// initial processing snapshot. A second attempt while one is in flight gets
// ErrPaymentInFlight; retrying after an error starts a fresh attempt.
func (s *PaymentService) AttemptPayment(ctx context.Context, userID primitive.ObjectID) (PaymentFlow, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return PaymentFlow{State: FlowIdle}, err
	}
	if user.IsPremium() {
		return PaymentFlow{State: FlowIdle}, ErrAlreadyPremium
	}

	s.mu.Lock()
	if existing, ok := s.flights[userID]; ok && existing.flow.State == FlowProcessing {
		s.mu.Unlock()
		return existing.flow, ErrPaymentInFlight
	}

	// Detached from the request context: the HTTP call returns immediately
	// while the flow keeps running, bounded by the configured timeout.
	flowCtx, cancel := context.WithTimeout(context.Background(), s.timeout)
	f := &flight{
		flow:   PaymentFlow{State: FlowProcessing, StartedAt: time.Now()},
		ctx:    flowCtx,
		cancel: cancel,
	}
	s.flights[userID] = f
	snapshot := f.flow
	s.mu.Unlock()

	logrus.WithField("userID", userID.Hex()).Info("Payment attempt started")
	go s.run(flowCtx, userID)

	return snapshot, nil
}

func (s *PaymentService) run(ctx context.Context, userID primitive.ObjectID) {
	receipt, err := s.provider.SubmitPayment(ctx, userID.Hex())
	if err != nil {
		s.finishError(ctx, userID, failureReason(err))
		return
	}

	verified, err := s.verifier.VerifyTransaction(ctx, receipt.TxHash)
	if err != nil {
		s.finishError(ctx, userID, failureReason(err))
		return
	}
	if !verified {
		s.finishError(ctx, userID, "payment verification failed")
		return
	}

	// Last check before the durable write: a cancel that already landed must
	// not upgrade the user.
	s.mu.Lock()
	if errors.Is(ctx.Err(), context.Canceled) {
		s.mu.Unlock()
		logrus.WithField("userID", userID.Hex()).Info("Discarding verified payment after cancellation")
		return
	}
	s.mu.Unlock()

	update := map[string]interface{}{
		"subscription_status": models.SubscriptionPremium,
		"updated_at":          time.Now(),
	}
	if _, err := s.users.UpdateUser(ctx, userID, update); err != nil {
		s.finishError(ctx, userID, "payment verified but subscription update failed")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if errors.Is(ctx.Err(), context.Canceled) {
		// The flow was cancelled while the result was in transit; the state
		// stays wherever Cancel left it.
		logrus.WithField("userID", userID.Hex()).Info("Discarding payment result after cancellation")
		return
	}
	if f, ok := s.flights[userID]; ok {
		f.flow.State = FlowSuccess
		f.flow.TxHash = receipt.TxHash.Hex()
		f.flow.Reason = ""
	}
	logrus.WithFields(logrus.Fields{
		"userID": userID.Hex(),
		"txHash": receipt.TxHash.Hex(),
	}).Info("Payment verified, subscription upgraded")
}

func (s *PaymentService) finishError(ctx context.Context, userID primitive.ObjectID, reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if errors.Is(ctx.Err(), context.Canceled) {
		logrus.WithField("userID", userID.Hex()).Info("Discarding payment failure after cancellation")
		return
	}
	if f, ok := s.flights[userID]; ok {
		f.flow.State = FlowError
		f.flow.Reason = reason
	}
	logrus.WithFields(logrus.Fields{
		"userID": userID.Hex(),
		"reason": reason,
	}).Warn("Payment attempt failed")
}

func failureReason(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "payment timed out"
	}
	return err.Error()
}

// FlowStatus returns the user's current payment flow snapshot. A user with
// no attempt outstanding is idle.
func (s *PaymentService) FlowStatus(userID primitive.ObjectID) PaymentFlow {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f, ok := s.flights[userID]; ok {
		return f.flow
	}
	return PaymentFlow{State: FlowIdle}
}

// CancelPayment resets the user's flow to idle. An in-flight attempt is
// cancelled and its late result discarded; cancelling with nothing in flight
// is a no-op. This is also how a closed modal clears a success or error
// state before the next invocation.
func (s *PaymentService) CancelPayment(userID primitive.ObjectID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.flights[userID]
	if !ok {
		return
	}
	if f.cancel != nil {
		f.cancel()
	}
	delete(s.flights, userID)
	logrus.WithField("userID", userID.Hex()).Info("Payment flow reset")
}
