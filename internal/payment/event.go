package payment

import (
	"encoding/json"
	"fmt"
)

const (
	EventPaymentCaptured = "payment.captured"
	EventOrderPaid       = "order.paid"
)

type WebhookEvent struct {
	Entity    string   `json:"entity"`
	AccountID string   `json:"account_id"`
	Event     string   `json:"event"`
	Contains  []string `json:"contains"`
	CreatedAt int64    `json:"created_at"`
	Payload   struct {
		Payment *struct {
			Entity PaymentEntity `json:"entity"`
		} `json:"payment"`
		Order *struct {
			Entity OrderEntity `json:"entity"`
		} `json:"order"`
	} `json:"payload"`
}

type PaymentEntity struct {
	ID       string `json:"id"`
	OrderID  string `json:"order_id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
	Method   string `json:"method"`
	Email    string `json:"email"`
}

type OrderEntity struct {
	ID        string `json:"id"`
	Amount    int64  `json:"amount"`
	AmountDue int64  `json:"amount_due"`
	Currency  string `json:"currency"`
	Receipt   string `json:"receipt"`
	Status    string `json:"status"`
}

// ParseWebhookEvent decodes a verified webhook body.
func ParseWebhookEvent(body []byte) (*WebhookEvent, error) {
	var evt WebhookEvent
	if err := json.Unmarshal(body, &evt); err != nil {
		return nil, fmt.Errorf("decode webhook event: %w", err)
	}
	return &evt, nil
}

// OrderID is the merchant order id embedded in the event, or "".
func (e *WebhookEvent) OrderID() string {
	if p := e.Payload.Payment; p != nil && p.Entity.OrderID != "" {
		return p.Entity.OrderID
	}
	if o := e.Payload.Order; o != nil {
		return o.Entity.ID
	}
	return ""
}

func (e *WebhookEvent) PaymentID() string {
	if p := e.Payload.Payment; p != nil {
		return p.Entity.ID
	}
	return ""
}

// ConfirmsPayment reports whether the event means money was received.
func (e *WebhookEvent) ConfirmsPayment() bool {
	switch e.Event {
	case EventPaymentCaptured, EventOrderPaid:
		return true
	default:
		return false
	}
}
