package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Dattaharshithreddy/wishlist2cart-sub000/internal/domain"
	rabbit "github.com/Dattaharshithreddy/wishlist2cart-sub000/internal/infra/rabbitmq"
	"github.com/Dattaharshithreddy/wishlist2cart-sub000/internal/payment"
	"github.com/Dattaharshithreddy/wishlist2cart-sub000/internal/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	ErrOrderNotFound  = errors.New("order not found")
	ErrInvalidAmount  = errors.New("amount must be greater than zero")
	ErrInvalidItems   = errors.New("order needs at least one item with quantity >= 1 and price >= 0")
	ErrGateway        = errors.New("payment gateway error")
	ErrStatusConflict = errors.New("order status changed concurrently")
)

const (
	EventOrderPaid          = "order.paid"
	EventOrderStatusChanged = "order.status_changed"
)

type OrderService struct {
	repo      repository.OrderRepository
	gateway   payment.Gateway
	publisher rabbit.PublisherInterface
	logger    *zap.Logger
	now       func() time.Time
}

func NewOrderService(r repository.OrderRepository, g payment.Gateway, pub rabbit.PublisherInterface, logger *zap.Logger) *OrderService {
	return &OrderService{
		repo:      r,
		gateway:   g,
		publisher: pub,
		logger:    logger,
		now:       time.Now,
	}
}

type CreatePaymentOrderInput struct {
	Amount   decimal.Decimal
	Currency string
	Receipt  string
	UserID   string
	Items    []domain.OrderItem
	Address  domain.Address
}

// CreatePaymentOrder opens a gateway order and stores the local order under
// the gateway's id, waiting for the payment webhook.
func (s *OrderService) CreatePaymentOrder(ctx context.Context, in CreatePaymentOrderInput) (*payment.GatewayOrder, error) {
	if !in.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if len(in.Items) > 0 {
		if err := validateItems(in.Items); err != nil {
			return nil, err
		}
	}

	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = "INR"
	}
	receipt := in.Receipt
	if receipt == "" {
		receipt = "rcpt_" + strings.ReplaceAll(uuid.New().String(), "-", "")[:16]
	}

	req := payment.OrderRequest{
		AmountMinor: domain.MinorUnits(in.Amount),
		Currency:    currency,
		Receipt:     receipt,
	}
	if in.UserID != "" {
		req.Notes = map[string]string{"userId": in.UserID}
	}

	gw, err := s.gateway.CreateOrder(ctx, req)
	if err != nil {
		s.logger.Error("gateway order creation failed",
			zap.Int64("amount_minor", req.AmountMinor),
			zap.String("receipt", receipt),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrGateway, err)
	}

	now := s.now()
	order := &domain.Order{
		ID:            gw.ID,
		UserID:        in.UserID,
		Items:         in.Items,
		Address:       in.Address,
		Total:         in.Amount,
		Currency:      currency,
		Receipt:       receipt,
		PaymentMethod: domain.PaymentOnline,
		Status:        domain.StatusPendingPayment,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.Save(ctx, order); err != nil {
		return nil, err
	}

	s.logger.Info("payment order created",
		zap.String("order_id", order.ID),
		zap.String("user_id", order.UserID),
		zap.Int64("amount_minor", req.AmountMinor))
	return gw, nil
}

type PlaceOrderInput struct {
	UserID  string
	Items   []domain.OrderItem
	Address domain.Address
	// Total is what the shopper pays after discounts. Zero means the sum of
	// the line items.
	Total decimal.Decimal
}

// PlaceCashOrder stores a cash-on-delivery order under a generated id.
func (s *OrderService) PlaceCashOrder(ctx context.Context, in PlaceOrderInput) (*domain.Order, error) {
	if err := validateItems(in.Items); err != nil {
		return nil, err
	}
	total := in.Total
	if total.IsZero() {
		for _, it := range in.Items {
			total = total.Add(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))))
		}
	}
	if total.IsNegative() {
		return nil, ErrInvalidAmount
	}

	now := s.now()
	order := &domain.Order{
		ID:            uuid.New().String(),
		UserID:        in.UserID,
		Items:         in.Items,
		Address:       in.Address,
		Total:         total,
		Currency:      "INR",
		PaymentMethod: domain.PaymentCOD,
		Status:        domain.StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.Save(ctx, order); err != nil {
		return nil, err
	}

	s.logger.Info("cash order placed", zap.String("order_id", order.ID), zap.String("user_id", order.UserID))
	return order, nil
}

func validateItems(items []domain.OrderItem) error {
	if len(items) == 0 {
		return ErrInvalidItems
	}
	for _, it := range items {
		if it.Quantity < 1 || it.UnitPrice.IsNegative() {
			return ErrInvalidItems
		}
	}
	return nil
}

func (s *OrderService) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	o, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, ErrOrderNotFound
	}
	return o, nil
}

// ListUserOrders never reports a user without orders as missing; the list
// is just empty.
func (s *OrderService) ListUserOrders(ctx context.Context, userID string) ([]domain.Order, error) {
	o, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		o = []domain.Order{}
	}
	return o, nil
}

// UpdateStatus is the admin status editor. Online orders only reach Ordered
// through a verified payment webhook.
func (s *OrderService) UpdateStatus(ctx context.Context, id string, next domain.OrderStatus) (*domain.Order, error) {
	order, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if next == domain.StatusOrdered && order.PaymentMethod == domain.PaymentOnline {
		return nil, fmt.Errorf("%w: online orders are confirmed by payment", domain.ErrIllegalTransition)
	}

	from := order.Status
	if err := domain.Transition(order, next, s.now()); err != nil {
		return nil, err
	}

	applied, err := s.repo.TransitionStatus(ctx, id, repository.StatusChange{To: next, At: order.UpdatedAt})
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, fmt.Errorf("%w: %s", ErrStatusConflict, id)
	}

	s.publish(ctx, EventOrderStatusChanged, domain.OrderStatusChangedEvent{
		OrderID:   id,
		From:      from,
		To:        next,
		ChangedAt: order.UpdatedAt,
	})
	s.logger.Info("order status changed",
		zap.String("order_id", id),
		zap.String("from", string(from)),
		zap.String("to", string(next)))
	return order, nil
}

func (s *OrderService) CancelOrder(ctx context.Context, id string) (*domain.Order, error) {
	return s.UpdateStatus(ctx, id, domain.StatusCancelled)
}

// publish never fails the caller; the order write already happened.
func (s *OrderService) publish(ctx context.Context, pattern string, evt any) {
	if err := s.publisher.Publish(ctx, pattern, evt); err != nil {
		s.logger.Error("failed to publish event", zap.String("pattern", pattern), zap.Error(err))
	}
}
