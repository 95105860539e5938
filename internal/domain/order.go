package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var ErrIllegalTransition = errors.New("illegal order status transition")

type OrderStatus string

const (
	StatusPending        OrderStatus = "Pending"
	StatusPendingPayment OrderStatus = "Pending Payment"
	StatusOrdered        OrderStatus = "Ordered"
	StatusProcessing     OrderStatus = "Processing"
	StatusShipped        OrderStatus = "Shipped"
	StatusOutForDelivery OrderStatus = "Out For Delivery"
	StatusDelivered      OrderStatus = "Delivered"
	StatusCancelled      OrderStatus = "Cancelled"
)

// transitions is the only place order lifecycle rules live. Every writer,
// including the repositories' conditional updates, derives from it.
var transitions = map[OrderStatus][]OrderStatus{
	StatusPending:        {StatusOrdered, StatusCancelled},
	StatusPendingPayment: {StatusOrdered, StatusCancelled},
	StatusOrdered:        {StatusProcessing, StatusCancelled},
	StatusProcessing:     {StatusShipped, StatusCancelled},
	StatusShipped:        {StatusOutForDelivery},
	StatusOutForDelivery: {StatusDelivered},
	StatusDelivered:      nil,
	StatusCancelled:      nil,
}

// ParseOrderStatus accepts the canonical names case-insensitively.
func ParseOrderStatus(s string) (OrderStatus, error) {
	for st := range transitions {
		if strings.EqualFold(string(st), strings.TrimSpace(s)) {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown order status %q", s)
}

func (s OrderStatus) Valid() bool {
	_, ok := transitions[s]
	return ok
}

func (s OrderStatus) Terminal() bool {
	return s.Valid() && len(transitions[s]) == 0
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, to := range transitions[s] {
		if to == next {
			return true
		}
	}
	return false
}

// SourcesOf lists the statuses from which next is reachable in one step.
// The result is in a fixed order so conditional writes are reproducible.
func SourcesOf(next OrderStatus) []OrderStatus {
	var out []OrderStatus
	for _, from := range allStatuses {
		if from.CanTransitionTo(next) {
			out = append(out, from)
		}
	}
	return out
}

var allStatuses = []OrderStatus{
	StatusPending,
	StatusPendingPayment,
	StatusOrdered,
	StatusProcessing,
	StatusShipped,
	StatusOutForDelivery,
	StatusDelivered,
	StatusCancelled,
}

type PaymentMethod string

const (
	PaymentOnline PaymentMethod = "online"
	PaymentCOD    PaymentMethod = "cod"
)

type OrderItem struct {
	Title     string          `json:"title"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Image     string          `json:"image,omitempty"`
	Platform  string          `json:"platform,omitempty"`
}

type Address struct {
	Name       string `json:"name,omitempty"`
	Line1      string `json:"line1,omitempty"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
	Country    string `json:"country,omitempty"`
	Phone      string `json:"phone,omitempty"`
}

// Lines returns the printable address lines with empty ones dropped.
func (a Address) Lines() []string {
	cityLine := strings.Join(nonEmpty(a.City, a.State), ", ")
	if pc := strings.TrimSpace(a.PostalCode); pc != "" {
		if cityLine == "" {
			cityLine = pc
		} else {
			cityLine += " - " + pc
		}
	}
	return nonEmpty(a.Name, a.Line1, a.Line2, cityLine, a.Country, a.Phone)
}

func nonEmpty(parts ...string) []string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

type Order struct {
	ID            string          `json:"id" gorm:"primaryKey;size:64"`
	UserID        string          `json:"userId" gorm:"size:64;index"`
	Items         []OrderItem     `json:"items" gorm:"serializer:json"`
	Address       Address         `json:"address" gorm:"serializer:json"`
	Total         decimal.Decimal `json:"total" gorm:"type:decimal(12,2);not null"`
	Currency      string          `json:"currency" gorm:"size:8;not null;default:'INR'"`
	Receipt       string          `json:"receipt,omitempty" gorm:"size:64"`
	PaymentMethod PaymentMethod   `json:"paymentMethod" gorm:"size:16"`
	Status        OrderStatus     `json:"status" gorm:"size:32;index;not null"`
	PaymentID     string          `json:"paymentId,omitempty" gorm:"size:64"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// Transition moves o to next if the lifecycle allows it.
func Transition(o *Order, next OrderStatus, at time.Time) error {
	if !next.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrIllegalTransition, next)
	}
	if !o.Status.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, o.Status, next)
	}
	o.Status = next
	o.UpdatedAt = at
	return nil
}

// MinorUnits converts a major-unit amount to integer minor units (paise).
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
