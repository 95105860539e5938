package domain

import "time"

type OrderPaidEvent struct {
	OrderID   string    `json:"orderId"`
	UserID    string    `json:"userId"`
	PaymentID string    `json:"paymentId"`
	Total     string    `json:"total"`
	Currency  string    `json:"currency"`
	PaidAt    time.Time `json:"paidAt"`
}

type OrderStatusChangedEvent struct {
	OrderID   string      `json:"orderId"`
	From      OrderStatus `json:"from"`
	To        OrderStatus `json:"to"`
	ChangedAt time.Time   `json:"changedAt"`
}
