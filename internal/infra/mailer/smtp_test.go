package mailer

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

type recordingDialer struct {
	sent []*gomail.Message
	err  error
}

func (d *recordingDialer) DialAndSend(m ...*gomail.Message) error {
	d.sent = append(d.sent, m...)
	return d.err
}

func TestSMTPMailer_Send(t *testing.T) {
	d := &recordingDialer{}
	m := &SMTPMailer{from: "orders@example.com", dialer: d}

	err := m.Send(context.Background(), Message{
		To:       "buyer@example.com",
		Subject:  "Your invoice",
		HTMLBody: "<p>Thanks</p>",
		Attachments: []Attachment{
			{Name: "invoice-order_1.pdf", ContentType: "application/pdf", Data: []byte("%PDF-1.3")},
		},
	})
	require.NoError(t, err)
	require.Len(t, d.sent, 1)

	gm := d.sent[0]
	assert.Equal(t, []string{"buyer@example.com"}, gm.GetHeader("To"))
	assert.Equal(t, []string{"Your invoice"}, gm.GetHeader("Subject"))

	var buf bytes.Buffer
	_, err = gm.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "invoice-order_1.pdf")
}

func TestSMTPMailer_SendError(t *testing.T) {
	m := &SMTPMailer{from: "orders@example.com", dialer: &recordingDialer{err: errors.New("auth failed")}}

	err := m.Send(context.Background(), Message{To: "buyer@example.com"})
	assert.ErrorContains(t, err, "auth failed")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, m.Send(ctx, Message{To: "buyer@example.com"}), context.Canceled)
}
