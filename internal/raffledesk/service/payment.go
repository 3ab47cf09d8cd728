package service

import (
	"fmt"

	"github.com/25x8/raffledesk/internal/raffledesk/models"
)

// ResolvePayment decides the outcome of an update against a ticket.
//
// A positive payment may never push total_paid past the ticket value. When
// it reaches the ticket value the ticket is paid regardless of the requested
// status; a first partial payment on an available ticket makes it pending.
// Otherwise the requested status, or the current one, is kept.
func ResolvePayment(cur models.TicketAccount, in models.TicketUpdate) (models.TicketChange, error) {
	amount := 0.0
	if in.PaymentAmount != nil {
		amount = models.RoundCents(*in.PaymentAmount)
	}
	if amount < 0 {
		return models.TicketChange{}, models.NewValidationError("payment_amount must not be negative", "payment_amount")
	}

	status := cur.Status
	if in.Status != nil {
		st, err := models.ParseTicketStatus(*in.Status)
		if err != nil {
			return models.TicketChange{}, err
		}
		status = st
	}

	newTotal := models.RoundCents(cur.TotalPaid + amount)

	if amount > 0 {
		value := models.RoundCents(cur.TicketValue)
		if newTotal > value {
			return models.TicketChange{}, fmt.Errorf(
				"%w: amount %.2f exceeds remaining balance %.2f",
				models.ErrInvalidPayment, amount, models.RoundCents(value-cur.TotalPaid),
			)
		}

		if models.SettlementStatus(newTotal, value) == models.TicketPaid {
			status = models.TicketPaid
		} else if status == models.TicketAvailable && newTotal > 0 {
			status = models.TicketPending
		}
	}

	return models.TicketChange{
		CustomerName:  in.CustomerName,
		CustomerPhone: in.CustomerPhone,
		Status:        status,
		TotalPaid:     newTotal,
		PaymentAmount: amount,
	}, nil
}
