package services

import (
	"context"
	"time"

	"github.com/Dattaharshithreddy/wishlist2cart-sub000/internal/domain"
	rabbit "github.com/Dattaharshithreddy/wishlist2cart-sub000/internal/infra/rabbitmq"
	"github.com/Dattaharshithreddy/wishlist2cart-sub000/internal/payment"
	"github.com/Dattaharshithreddy/wishlist2cart-sub000/internal/repository"
	"go.uber.org/zap"
)

type WebhookOutcome string

const (
	OutcomeApplied      WebhookOutcome = "applied"
	OutcomeDuplicate    WebhookOutcome = "duplicate"
	OutcomeIgnored      WebhookOutcome = "ignored"
	OutcomeUnknownOrder WebhookOutcome = "unknown_order"
)

type WebhookResult struct {
	OrderID string
	UserID  string
	Outcome WebhookOutcome
}

type WebhookService struct {
	secret    string
	repo      repository.OrderRepository
	publisher rabbit.PublisherInterface
	logger    *zap.Logger
	now       func() time.Time
}

func NewWebhookService(secret string, r repository.OrderRepository, pub rabbit.PublisherInterface, logger *zap.Logger) *WebhookService {
	return &WebhookService{
		secret:    secret,
		repo:      r,
		publisher: pub,
		logger:    logger,
		now:       time.Now,
	}
}

// HandlePaymentWebhook verifies body against signature and marks the order
// Ordered. Redeliveries are no-ops; only the delivery that moves the order
// publishes order.paid.
func (s *WebhookService) HandlePaymentWebhook(ctx context.Context, body []byte, signature string) (*WebhookResult, error) {
	if err := payment.VerifySignature(s.secret, body, signature); err != nil {
		s.logger.Warn("webhook signature rejected", zap.Int("body_bytes", len(body)), zap.Error(err))
		return nil, err
	}

	evt, err := payment.ParseWebhookEvent(body)
	if err != nil {
		s.logger.Error("webhook body unreadable", zap.Error(err))
		return nil, err
	}

	orderID := evt.OrderID()
	if !evt.ConfirmsPayment() || orderID == "" {
		s.logger.Info("webhook event ignored", zap.String("event", evt.Event), zap.String("order_id", orderID))
		return &WebhookResult{OrderID: orderID, Outcome: OutcomeIgnored}, nil
	}

	paidAt := s.now()
	applied, err := s.repo.TransitionStatus(ctx, orderID, repository.StatusChange{
		To:        domain.StatusOrdered,
		PaymentID: evt.PaymentID(),
		At:        paidAt,
	})
	if err != nil {
		s.logger.Error("webhook status update failed", zap.String("order_id", orderID), zap.Error(err))
		return nil, err
	}

	order, lookupErr := s.repo.FindByID(ctx, orderID)
	if !applied {
		if lookupErr != nil {
			return nil, lookupErr
		}
		return s.notApplied(orderID, order), nil
	}
	if lookupErr != nil {
		s.logger.Warn("paid order lookup failed", zap.String("order_id", orderID), zap.Error(lookupErr))
	}

	event := domain.OrderPaidEvent{
		OrderID:   orderID,
		PaymentID: evt.PaymentID(),
		PaidAt:    paidAt,
	}
	if order != nil {
		event.UserID = order.UserID
		event.Total = order.Total.StringFixed(2)
		event.Currency = order.Currency
	}
	if err := s.publisher.Publish(ctx, EventOrderPaid, event); err != nil {
		s.logger.Error("failed to publish event", zap.String("pattern", EventOrderPaid), zap.Error(err))
	}

	s.logger.Info("order paid",
		zap.String("order_id", orderID),
		zap.String("payment_id", evt.PaymentID()),
		zap.String("event", evt.Event))
	res := &WebhookResult{OrderID: orderID, Outcome: OutcomeApplied}
	if order != nil {
		res.UserID = order.UserID
	}
	return res, nil
}

func (s *WebhookService) notApplied(orderID string, order *domain.Order) *WebhookResult {
	switch {
	case order == nil:
		s.logger.Warn("webhook for unknown order", zap.String("order_id", orderID))
		return &WebhookResult{OrderID: orderID, Outcome: OutcomeUnknownOrder}
	case order.Status == domain.StatusCancelled:
		s.logger.Warn("payment received for cancelled order", zap.String("order_id", orderID))
		return &WebhookResult{OrderID: orderID, Outcome: OutcomeIgnored}
	default:
		s.logger.Info("duplicate payment webhook",
			zap.String("order_id", orderID),
			zap.String("status", string(order.Status)))
		return &WebhookResult{OrderID: orderID, Outcome: OutcomeDuplicate}
	}
}
