package notify

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/25x8/raffledesk/internal/raffledesk/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Sender delivers a Telegram message. *tgbotapi.BotAPI satisfies it.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNotifier posts raffle events to one admin chat
type TelegramNotifier struct {
	sender Sender
	chatID int64
}

// NewTelegramNotifier authorizes the bot token and targets chatID
func NewTelegramNotifier(token string, chatID int64) (*TelegramNotifier, error) {
	client := &http.Client{Timeout: 5 * time.Second}
	bot, err := tgbotapi.NewBotAPIWithClient(token, tgbotapi.APIEndpoint, client)
	if err != nil {
		return nil, fmt.Errorf("telegram auth: %w", err)
	}
	return NewTelegramNotifierWithSender(bot, chatID), nil
}

// NewTelegramNotifierWithSender builds a notifier over an existing sender
func NewTelegramNotifierWithSender(sender Sender, chatID int64) *TelegramNotifier {
	return &TelegramNotifier{sender: sender, chatID: chatID}
}

// TicketPaid announces a settled ticket
func (n *TelegramNotifier) TicketPaid(ctx context.Context, e models.TicketPaidEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(n.chatID, FormatTicketPaid(e))
	if _, err := n.sender.Send(msg); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}

// FormatTicketPaid renders the notification text
func FormatTicketPaid(e models.TicketPaidEvent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Ticket %s paid in full (%s)\n", e.Number, e.RaffleName)
	fmt.Fprintf(&b, "Total paid: %.2f", e.TotalPaid)
	if e.CustomerName != nil && *e.CustomerName != "" {
		fmt.Fprintf(&b, "\nCustomer: %s", *e.CustomerName)
		if e.CustomerPhone != nil && *e.CustomerPhone != "" {
			fmt.Fprintf(&b, " (%s)", *e.CustomerPhone)
		}
	}
	return b.String()
}
