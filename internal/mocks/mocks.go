package mocks

import (
	"context"

	"github.com/Dattaharshithreddy/wishlist2cart-sub000/internal/domain"
	"github.com/Dattaharshithreddy/wishlist2cart-sub000/internal/infra/mailer"
	"github.com/Dattaharshithreddy/wishlist2cart-sub000/internal/payment"
	"github.com/Dattaharshithreddy/wishlist2cart-sub000/internal/repository"
	"github.com/stretchr/testify/mock"
)

type MockOrderRepository struct {
	mock.Mock
}

type MockGateway struct {
	mock.Mock
}

type MockPublisher struct {
	mock.Mock
}

type MockMailer struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, topic string, message interface{}) error {
	args := m.Called(ctx, topic, message)
	return args.Error(0)
}

func (m *MockGateway) CreateOrder(ctx context.Context, req payment.OrderRequest) (*payment.GatewayOrder, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.GatewayOrder), args.Error(1)
}

func (m *MockMailer) Send(ctx context.Context, msg mailer.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *MockOrderRepository) Save(ctx context.Context, order *domain.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByUserID(ctx context.Context, userID string) ([]domain.Order, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Order), args.Error(1)
}

func (m *MockOrderRepository) TransitionStatus(ctx context.Context, id string, change repository.StatusChange) (bool, error) {
	args := m.Called(ctx, id, change)
	return args.Bool(0), args.Error(1)
}
