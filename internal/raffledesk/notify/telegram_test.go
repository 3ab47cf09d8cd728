package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/25x8/raffledesk/internal/raffledesk/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	sent []tgbotapi.MessageConfig
	err  error
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if f.err != nil {
		return tgbotapi.Message{}, f.err
	}
	f.sent = append(f.sent, c.(tgbotapi.MessageConfig))
	return tgbotapi.Message{}, nil
}

func paidEvent() models.TicketPaidEvent {
	name, phone := "Ana", "3001234567"
	return models.TicketPaidEvent{
		RaffleID:      1,
		RaffleName:    "Gran Rifa",
		TicketID:      10,
		Number:        "07",
		CustomerName:  &name,
		CustomerPhone: &phone,
		TotalPaid:     50000,
	}
}

func TestTicketPaid_SendsToChat(t *testing.T) {
	sender := &fakeSender{}
	n := NewTelegramNotifierWithSender(sender, 42)

	require.NoError(t, n.TicketPaid(context.Background(), paidEvent()))
	require.Len(t, sender.sent, 1)
	assert.Equal(t, int64(42), sender.sent[0].ChatID)
	assert.Contains(t, sender.sent[0].Text, "Ticket 07 paid in full (Gran Rifa)")
	assert.Contains(t, sender.sent[0].Text, "Customer: Ana (3001234567)")
}

func TestTicketPaid_SendError(t *testing.T) {
	n := NewTelegramNotifierWithSender(&fakeSender{err: errors.New("boom")}, 42)
	err := n.TicketPaid(context.Background(), paidEvent())
	assert.ErrorContains(t, err, "telegram send")
}

func TestFormatTicketPaid_NoCustomer(t *testing.T) {
	e := paidEvent()
	e.CustomerName = nil
	text := FormatTicketPaid(e)
	assert.NotContains(t, text, "Customer")
	assert.Contains(t, text, "Total paid: 50000.00")
}
