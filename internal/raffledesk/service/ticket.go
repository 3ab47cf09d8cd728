package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/25x8/raffledesk/internal/raffledesk/models"
	"github.com/25x8/raffledesk/internal/raffledesk/repository"
)

// TicketService sells tickets and records payments against them
type TicketService struct {
	repo     repository.Repository
	cache    ReportCache
	notifier Notifier
	logger   *slog.Logger
}

func NewTicketService(repo repository.Repository, cache ReportCache, notifier Notifier, logger *slog.Logger) *TicketService {
	return &TicketService{repo: repo, cache: cache, notifier: notifier, logger: logger}
}

// ListByRaffle returns a raffle's tickets ordered by number
func (s *TicketService) ListByRaffle(ctx context.Context, raffleID int64) ([]models.Ticket, error) {
	raffle, err := s.repo.GetRaffle(ctx, raffleID)
	if err != nil {
		return nil, err
	}
	if raffle == nil {
		return nil, fmt.Errorf("%w: raffle %d", models.ErrNotFound, raffleID)
	}
	return s.repo.GetRaffleTickets(ctx, raffleID)
}

// ApplyPayment updates a ticket's customer, status and payment in one
// transaction and returns the resulting state.
func (s *TicketService) ApplyPayment(ctx context.Context, ticketID int64, in models.TicketUpdate) (*models.PaymentResult, error) {
	log := s.logger.With("context", "ApplyPayment", "ticketID", ticketID)

	if err := validateInput(in); err != nil {
		return nil, err
	}

	var before models.TicketStatus
	updated, err := s.repo.UpdateTicket(ctx, ticketID, func(cur models.TicketAccount) (models.TicketChange, error) {
		before = cur.Status
		return ResolvePayment(cur, in)
	})
	if err != nil {
		log.Warn("ApplyPayment failed", "error", err)
		return nil, err
	}

	log.Info("Ticket updated",
		"raffleID", updated.RaffleID,
		"number", updated.Number,
		"status", updated.Status,
		"totalPaid", updated.TotalPaid,
	)

	invalidate(ctx, s.cache, updated.RaffleID, log)

	if before != models.TicketPaid && updated.Status == models.TicketPaid && s.notifier != nil {
		event := models.TicketPaidEvent{
			RaffleID:      updated.RaffleID,
			RaffleName:    updated.RaffleName,
			TicketID:      updated.ID,
			Number:        updated.Number,
			CustomerName:  updated.CustomerName,
			CustomerPhone: updated.CustomerPhone,
			TotalPaid:     updated.TotalPaid,
		}
		if err := s.notifier.TicketPaid(ctx, event); err != nil {
			log.Error("Paid notification failed", "error", err)
		}
	}

	return &models.PaymentResult{Status: updated.Status, TotalPaid: updated.TotalPaid}, nil
}

// Payments returns a ticket's ledger, most recent first
func (s *TicketService) Payments(ctx context.Context, ticketID int64) ([]models.Payment, error) {
	ticket, err := s.repo.GetTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket == nil {
		return nil, fmt.Errorf("%w: ticket %d", models.ErrNotFound, ticketID)
	}
	return s.repo.GetTicketPayments(ctx, ticketID)
}
