package services

import (
	"time"

	"github.com/Dattaharshithreddy/wishlist2cart-sub000/internal/domain"
	"github.com/shopspring/decimal"
)

func CreateMockOrder(id string, method domain.PaymentMethod, status domain.OrderStatus) *domain.Order {
	return &domain.Order{
		ID:     id,
		UserID: TestUserID,
		Items: []domain.OrderItem{
			{Title: TestItemTitle, Quantity: 2, UnitPrice: decimal.RequireFromString("249.995")},
		},
		Address:       domain.Address{Name: "Asha Rao", Line1: "12 MG Road", City: "Bengaluru"},
		Total:         decimal.RequireFromString(TestTotal),
		Currency:      "INR",
		PaymentMethod: method,
		Status:        status,
		CreatedAt:     time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

const (
	TestOrderID   = "order_9A33XWu170gUtm"
	TestPaymentID = "pay_29QQoUBi66xm2f"
	TestUserID    = "user-42"
	TestItemTitle = "Steel Bottle"
	TestTotal     = "499.99"
	TestSecret    = "whsec_test"
)
