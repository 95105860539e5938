package services

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/mail"
	"strings"

	"github.com/Dattaharshithreddy/wishlist2cart-sub000/internal/domain"
	"github.com/Dattaharshithreddy/wishlist2cart-sub000/internal/infra/mailer"
	"github.com/Dattaharshithreddy/wishlist2cart-sub000/internal/invoice"
	"go.uber.org/zap"
)

var (
	ErrInvalidEmail    = errors.New("a valid recipient email is required")
	ErrInvoiceDelivery = errors.New("invoice delivery failed")
)

type InvoiceRenderer interface {
	Render(order domain.Order) ([]byte, error)
}

type InvoiceService struct {
	renderer InvoiceRenderer
	mailer   mailer.Mailer
	brand    string
	logger   *zap.Logger
}

func NewInvoiceService(r InvoiceRenderer, m mailer.Mailer, brand string, logger *zap.Logger) *InvoiceService {
	return &InvoiceService{renderer: r, mailer: m, brand: brand, logger: logger}
}

var invoiceMailTmpl = template.Must(template.New("invoice").Parse(
	`<p>Hi{{if .Name}} {{.Name}}{{end}},</p>
<p>Thanks for shopping with {{.Brand}}. Your invoice for order <b>{{.OrderID}}</b> is attached.</p>
<p>Amount: {{.Amount}}</p>
`))

// SendInvoice renders the order PDF and mails it to email.
func (s *InvoiceService) SendInvoice(ctx context.Context, order domain.Order, email string) error {
	addr, err := mail.ParseAddress(strings.TrimSpace(email))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEmail, err)
	}

	pdf, err := s.renderer.Render(order)
	if err != nil {
		return err
	}

	var body strings.Builder
	if err := invoiceMailTmpl.Execute(&body, map[string]string{
		"Name":    order.Address.Name,
		"Brand":   s.brand,
		"OrderID": order.ID,
		"Amount":  invoice.Money(order.Currency, order.Total),
	}); err != nil {
		return err
	}

	msg := mailer.Message{
		To:       addr.Address,
		Subject:  fmt.Sprintf("Your %s invoice for order %s", s.brand, order.ID),
		HTMLBody: body.String(),
		Attachments: []mailer.Attachment{{
			Name:        "invoice-" + order.ID + ".pdf",
			ContentType: "application/pdf",
			Data:        pdf,
		}},
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		s.logger.Error("invoice mail failed", zap.String("order_id", order.ID), zap.Error(err))
		return fmt.Errorf("%w: %v", ErrInvoiceDelivery, err)
	}

	s.logger.Info("invoice sent", zap.String("order_id", order.ID), zap.Int("pdf_bytes", len(pdf)))
	return nil
}
