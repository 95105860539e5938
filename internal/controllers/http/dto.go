package http

import (
	"time"

	"github.com/Dattaharshithreddy/wishlist2cart-sub000/internal/domain"
	"github.com/shopspring/decimal"
)

type OrderItemRequest struct {
	Title    string          `json:"title"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Image    string          `json:"image,omitempty"`
	Platform string          `json:"platform,omitempty"`
}

func toItems(in []OrderItemRequest) []domain.OrderItem {
	if len(in) == 0 {
		return nil
	}
	out := make([]domain.OrderItem, 0, len(in))
	for _, it := range in {
		out = append(out, domain.OrderItem{
			Title:     it.Title,
			Quantity:  it.Quantity,
			UnitPrice: it.Price,
			Image:     it.Image,
			Platform:  it.Platform,
		})
	}
	return out
}

type CreateOrderRequest struct {
	Amount   decimal.NullDecimal `json:"amount"`
	Currency string              `json:"currency"`
	Receipt  string              `json:"receipt"`
	UserID   string              `json:"userId"`
	Items    []OrderItemRequest  `json:"items"`
	Address  domain.Address      `json:"address"`
}

type PlaceOrderRequest struct {
	UserID  string              `json:"userId" binding:"required"`
	Items   []OrderItemRequest  `json:"items" binding:"required,min=1"`
	Address domain.Address      `json:"address"`
	Total   decimal.NullDecimal `json:"total"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// InvoiceOrder is the order as the checkout flow posts it to /send-invoice.
type InvoiceOrder struct {
	ID        string              `json:"id"`
	Items     []OrderItemRequest  `json:"items"`
	Address   domain.Address      `json:"address"`
	Total     decimal.NullDecimal `json:"total"`
	Currency  string              `json:"currency"`
	Status    string              `json:"status"`
	CreatedAt time.Time           `json:"createdAt"`
}

func (o InvoiceOrder) toDomain() domain.Order {
	return domain.Order{
		ID:        o.ID,
		Items:     toItems(o.Items),
		Address:   o.Address,
		Total:     o.Total.Decimal,
		Currency:  o.Currency,
		Status:    domain.OrderStatus(o.Status),
		CreatedAt: o.CreatedAt,
	}
}

type SendInvoiceRequest struct {
	Order *InvoiceOrder `json:"order"`
	Email string        `json:"email"`
}

type ScrapeResponse struct {
	Title    string  `json:"title"`
	Image    string  `json:"image"`
	Price    float64 `json:"price"`
	Platform string  `json:"platform"`
}
