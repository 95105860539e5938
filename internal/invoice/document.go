package invoice

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Dattaharshithreddy/wishlist2cart-sub000/internal/domain"
	"github.com/shopspring/decimal"
)

var ErrInvalidOrder = errors.New("invalid order for invoice")

const placeholder = "N/A"

type Line struct {
	Description string
	Quantity    int
	UnitPrice   decimal.Decimal
	LineTotal   decimal.Decimal
}

// Document is the printable view of an order. Nothing in it is read from the
// order as a computed value; line totals and the subtotal are recomputed.
type Document struct {
	Brand        string
	OrderID      string
	Date         string
	Status       string
	Currency     string
	AddressLines []string
	Lines        []Line
	Subtotal     decimal.Decimal
	TotalPaid    decimal.Decimal
	// Discrepancy is set when the order total differs from the sum of line
	// totals, e.g. after a coupon.
	Discrepancy bool
	Footer      string
}

func BuildDocument(order domain.Order, brand string) (*Document, error) {
	if len(order.Items) == 0 {
		return nil, fmt.Errorf("%w: no items", ErrInvalidOrder)
	}

	doc := &Document{
		Brand:        orPlaceholder(brand),
		OrderID:      orPlaceholder(order.ID),
		Date:         placeholder,
		Status:       orPlaceholder(string(order.Status)),
		Currency:     order.Currency,
		AddressLines: order.Address.Lines(),
		Footer:       "Thank you for shopping with " + orPlaceholder(brand) + ".",
	}
	if doc.Currency == "" {
		doc.Currency = "INR"
	}
	if !order.CreatedAt.IsZero() {
		doc.Date = order.CreatedAt.Format("02 Jan 2006")
	}
	if len(doc.AddressLines) == 0 {
		doc.AddressLines = []string{placeholder}
	}

	subtotal := decimal.Zero
	for i, it := range order.Items {
		if it.Quantity < 1 {
			return nil, fmt.Errorf("%w: item %d has quantity %d", ErrInvalidOrder, i+1, it.Quantity)
		}
		if it.UnitPrice.IsNegative() {
			return nil, fmt.Errorf("%w: item %d has negative price", ErrInvalidOrder, i+1)
		}
		desc := strings.TrimSpace(it.Title)
		if desc == "" {
			desc = "-"
		}
		lineTotal := it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
		doc.Lines = append(doc.Lines, Line{
			Description: desc,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			LineTotal:   lineTotal,
		})
		subtotal = subtotal.Add(lineTotal)
	}

	doc.Subtotal = subtotal
	doc.TotalPaid = order.Total
	doc.Discrepancy = !subtotal.Equal(order.Total)
	return doc, nil
}

func orPlaceholder(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return placeholder
	}
	return s
}

// Money formats an amount with two decimals and the currency code. The core
// PDF fonts have no rupee glyph, so the code is used instead of a symbol.
func Money(currency string, d decimal.Decimal) string {
	return currency + " " + d.StringFixed(2)
}
