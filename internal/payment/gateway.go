package payment

import (
	"context"
	"fmt"

	razorpay "github.com/razorpay/razorpay-go"
)

type OrderRequest struct {
	AmountMinor int64
	Currency    string
	Receipt     string
	Notes       map[string]string
}

type GatewayOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt,omitempty"`
	Status   string `json:"status"`
}

type Gateway interface {
	CreateOrder(ctx context.Context, req OrderRequest) (*GatewayOrder, error)
}

type RazorpayGateway struct {
	client *razorpay.Client
}

var _ Gateway = (*RazorpayGateway)(nil)

func NewRazorpayGateway(keyID, keySecret string) *RazorpayGateway {
	return &RazorpayGateway{client: razorpay.NewClient(keyID, keySecret)}
}

func (g *RazorpayGateway) CreateOrder(ctx context.Context, req OrderRequest) (*GatewayOrder, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data := map[string]interface{}{
		"amount":   req.AmountMinor,
		"currency": req.Currency,
		"receipt":  req.Receipt,
	}
	if len(req.Notes) > 0 {
		data["notes"] = req.Notes
	}

	body, err := g.client.Order.Create(data, nil)
	if err != nil {
		return nil, fmt.Errorf("razorpay: create order: %w", err)
	}
	return gatewayOrderFromMap(body)
}

func gatewayOrderFromMap(body map[string]interface{}) (*GatewayOrder, error) {
	id, _ := body["id"].(string)
	if id == "" {
		return nil, fmt.Errorf("razorpay: create order: response has no id")
	}
	o := &GatewayOrder{ID: id}
	o.Currency, _ = body["currency"].(string)
	o.Receipt, _ = body["receipt"].(string)
	o.Status, _ = body["status"].(string)
	switch v := body["amount"].(type) {
	case float64:
		o.Amount = int64(v)
	case int64:
		o.Amount = v
	case int:
		o.Amount = int64(v)
	}
	return o, nil
}
