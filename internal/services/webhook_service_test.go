package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Dattaharshithreddy/wishlist2cart-sub000/internal/domain"
	"github.com/Dattaharshithreddy/wishlist2cart-sub000/internal/mocks"
	"github.com/Dattaharshithreddy/wishlist2cart-sub000/internal/payment"
	"github.com/Dattaharshithreddy/wishlist2cart-sub000/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func capturedBody(event, orderID string) []byte {
	return []byte(fmt.Sprintf(`{
  "entity": "event",
  "event": %q,
  "payload": {
    "payment": {"entity": {"id": %q, "order_id": %q, "amount": 49999, "currency": "INR", "status": "captured"}}
  }
}`, event, TestPaymentID, orderID))
}

func newWebhookService() (*WebhookService, *mocks.MockOrderRepository, *mocks.MockPublisher) {
	repo := new(mocks.MockOrderRepository)
	pub := new(mocks.MockPublisher)
	s := NewWebhookService(TestSecret, repo, pub, zap.NewNop())
	s.now = func() time.Time { return fixedNow }
	return s, repo, pub
}

var orderedChange = repository.StatusChange{To: domain.StatusOrdered, PaymentID: TestPaymentID, At: fixedNow}

func TestWebhookService_PaymentCaptured(t *testing.T) {
	s, repo, pub := newWebhookService()
	body := capturedBody(payment.EventPaymentCaptured, TestOrderID)

	repo.On("TransitionStatus", mock.Anything, TestOrderID, orderedChange).Return(true, nil)
	repo.On("FindByID", mock.Anything, TestOrderID).
		Return(CreateMockOrder(TestOrderID, domain.PaymentOnline, domain.StatusOrdered), nil)
	pub.On("Publish", mock.Anything, EventOrderPaid, domain.OrderPaidEvent{
		OrderID:   TestOrderID,
		UserID:    TestUserID,
		PaymentID: TestPaymentID,
		Total:     "499.99",
		Currency:  "INR",
		PaidAt:    fixedNow,
	}).Return(nil)

	res, err := s.HandlePaymentWebhook(context.Background(), body, payment.Sign(TestSecret, body))

	require.NoError(t, err)
	assert.Equal(t, OutcomeApplied, res.Outcome)
	assert.Equal(t, TestOrderID, res.OrderID)
	repo.AssertExpectations(t)
	pub.AssertExpectations(t)
}

func TestWebhookService_RedeliveryIsIdempotent(t *testing.T) {
	s, repo, pub := newWebhookService()
	body := capturedBody(payment.EventPaymentCaptured, TestOrderID)
	sig := payment.Sign(TestSecret, body)

	repo.On("TransitionStatus", mock.Anything, TestOrderID, orderedChange).Return(true, nil).Once()
	repo.On("TransitionStatus", mock.Anything, TestOrderID, orderedChange).Return(false, nil).Once()
	repo.On("FindByID", mock.Anything, TestOrderID).
		Return(CreateMockOrder(TestOrderID, domain.PaymentOnline, domain.StatusOrdered), nil)
	pub.On("Publish", mock.Anything, EventOrderPaid, mock.Anything).Return(nil).Once()

	first, err := s.HandlePaymentWebhook(context.Background(), body, sig)
	require.NoError(t, err)
	second, err := s.HandlePaymentWebhook(context.Background(), body, sig)
	require.NoError(t, err)

	assert.Equal(t, OutcomeApplied, first.Outcome)
	assert.Equal(t, OutcomeDuplicate, second.Outcome)
	repo.AssertNumberOfCalls(t, "TransitionStatus", 2)
	pub.AssertNumberOfCalls(t, "Publish", 1)
}

func TestWebhookService_SignatureRejected(t *testing.T) {
	body := capturedBody(payment.EventPaymentCaptured, TestOrderID)

	tests := []struct {
		name      string
		signature string
		wantErr   error
	}{
		{name: "missing", signature: "", wantErr: payment.ErrMissingSignature},
		{name: "wrong secret", signature: payment.Sign("other-secret", body), wantErr: payment.ErrInvalidSignature},
		{name: "not hex", signature: "zz-not-hex", wantErr: payment.ErrInvalidSignature},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, repo, pub := newWebhookService()

			res, err := s.HandlePaymentWebhook(context.Background(), body, tt.signature)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, res)
			repo.AssertNotCalled(t, "TransitionStatus", mock.Anything, mock.Anything, mock.Anything)
			repo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
			pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestWebhookService_EmptySecretRejectsEverything(t *testing.T) {
	repo := new(mocks.MockOrderRepository)
	pub := new(mocks.MockPublisher)
	s := NewWebhookService("", repo, pub, zap.NewNop())
	body := capturedBody(payment.EventPaymentCaptured, TestOrderID)

	res, err := s.HandlePaymentWebhook(context.Background(), body, payment.Sign("", body))

	assert.ErrorIs(t, err, payment.ErrMissingSecret)
	assert.Nil(t, res)
	repo.AssertNotCalled(t, "TransitionStatus", mock.Anything, mock.Anything, mock.Anything)
	pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
}

func TestWebhookService_TamperedBody(t *testing.T) {
	s, repo, _ := newWebhookService()
	body := capturedBody(payment.EventPaymentCaptured, TestOrderID)
	sig := payment.Sign(TestSecret, body)
	tampered := capturedBody(payment.EventPaymentCaptured, "order_someoneElse")

	_, err := s.HandlePaymentWebhook(context.Background(), tampered, sig)

	assert.ErrorIs(t, err, payment.ErrInvalidSignature)
	repo.AssertNotCalled(t, "TransitionStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestWebhookService_IgnoredEvents(t *testing.T) {
	tests := []struct {
		name string
		body []byte
	}{
		{name: "payment failed", body: capturedBody("payment.failed", TestOrderID)},
		{name: "payment authorized", body: capturedBody("payment.authorized", TestOrderID)},
		{name: "no order id", body: capturedBody(payment.EventPaymentCaptured, "")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, repo, pub := newWebhookService()

			res, err := s.HandlePaymentWebhook(context.Background(), tt.body, payment.Sign(TestSecret, tt.body))

			require.NoError(t, err)
			assert.Equal(t, OutcomeIgnored, res.Outcome)
			repo.AssertNotCalled(t, "TransitionStatus", mock.Anything, mock.Anything, mock.Anything)
			pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestWebhookService_NotApplied(t *testing.T) {
	tests := []struct {
		name     string
		stored   *domain.Order
		expected WebhookOutcome
	}{
		{name: "unknown order", stored: nil, expected: OutcomeUnknownOrder},
		{name: "cancelled order", stored: CreateMockOrder(TestOrderID, domain.PaymentOnline, domain.StatusCancelled), expected: OutcomeIgnored},
		{name: "already shipped", stored: CreateMockOrder(TestOrderID, domain.PaymentOnline, domain.StatusShipped), expected: OutcomeDuplicate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, repo, pub := newWebhookService()
			body := capturedBody(payment.EventOrderPaid, TestOrderID)
			repo.On("TransitionStatus", mock.Anything, TestOrderID, orderedChange).Return(false, nil)
			if tt.stored == nil {
				repo.On("FindByID", mock.Anything, TestOrderID).Return(nil, nil)
			} else {
				repo.On("FindByID", mock.Anything, TestOrderID).Return(tt.stored, nil)
			}

			res, err := s.HandlePaymentWebhook(context.Background(), body, payment.Sign(TestSecret, body))

			require.NoError(t, err)
			assert.Equal(t, tt.expected, res.Outcome)
			pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestWebhookService_Failures(t *testing.T) {
	t.Run("malformed body", func(t *testing.T) {
		s, repo, _ := newWebhookService()
		body := []byte(`{"event": "payment.captured", "payload":`)

		_, err := s.HandlePaymentWebhook(context.Background(), body, payment.Sign(TestSecret, body))

		require.Error(t, err)
		assert.NotErrorIs(t, err, payment.ErrInvalidSignature)
		repo.AssertNotCalled(t, "TransitionStatus", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("store unavailable", func(t *testing.T) {
		s, repo, pub := newWebhookService()
		body := capturedBody(payment.EventPaymentCaptured, TestOrderID)
		repo.On("TransitionStatus", mock.Anything, TestOrderID, orderedChange).Return(false, errors.New("i/o timeout"))

		_, err := s.HandlePaymentWebhook(context.Background(), body, payment.Sign(TestSecret, body))

		assert.EqualError(t, err, "i/o timeout")
		pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
	})
}
