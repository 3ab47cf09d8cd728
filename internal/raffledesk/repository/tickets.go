package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/25x8/raffledesk/internal/raffledesk/models"
)

const ticketColumns = "id, raffle_id, number, status, customer_name, customer_phone, total_paid"

func (r *PostgresRepository) GetTicket(ctx context.Context, id int64) (*models.Ticket, error) {
	var t models.Ticket
	err := r.db.QueryRowContext(ctx, "SELECT "+ticketColumns+" FROM tickets WHERE id = $1", id).
		Scan(&t.ID, &t.RaffleID, &t.Number, &t.Status, &t.CustomerName, &t.CustomerPhone, &t.TotalPaid)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select ticket: %w", err)
	}
	return &t, nil
}

func (r *PostgresRepository) GetRaffleTickets(ctx context.Context, raffleID int64) ([]models.Ticket, error) {
	rows, err := r.db.QueryContext(
		ctx,
		"SELECT "+ticketColumns+" FROM tickets WHERE raffle_id = $1 ORDER BY number ASC",
		raffleID,
	)
	if err != nil {
		return nil, fmt.Errorf("select tickets: %w", err)
	}
	defer rows.Close()

	tickets := []models.Ticket{}
	for rows.Next() {
		var t models.Ticket
		if err := rows.Scan(
			&t.ID,
			&t.RaffleID,
			&t.Number,
			&t.Status,
			&t.CustomerName,
			&t.CustomerPhone,
			&t.TotalPaid,
		); err != nil {
			return nil, fmt.Errorf("scan ticket: %w", err)
		}
		tickets = append(tickets, t)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return tickets, nil
}

// UpdateTicket locks the ticket row, lets fn resolve the change and persists
// it together with the ledger entry in a single transaction.
func (r *PostgresRepository) UpdateTicket(ctx context.Context, id int64, fn TicketUpdateFunc) (*models.TicketAccount, error) {
	var updated models.TicketAccount

	err := r.withTx(ctx, func(tx *sql.Tx) error {
		var current models.TicketAccount
		err := tx.QueryRowContext(
			ctx,
			`SELECT t.id, t.raffle_id, t.number, t.status, t.customer_name, t.customer_phone, t.total_paid,
			        r.ticket_value, r.name
			 FROM tickets t
			 JOIN raffles r ON t.raffle_id = r.id
			 WHERE t.id = $1
			 FOR UPDATE OF t`,
			id,
		).Scan(
			&current.ID,
			&current.RaffleID,
			&current.Number,
			&current.Status,
			&current.CustomerName,
			&current.CustomerPhone,
			&current.TotalPaid,
			&current.TicketValue,
			&current.RaffleName,
		)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("%w: ticket %d", models.ErrNotFound, id)
			}
			return fmt.Errorf("select ticket for update: %w", err)
		}

		change, err := fn(current)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(
			ctx,
			`UPDATE tickets
			 SET customer_name = COALESCE($1, customer_name),
			     customer_phone = COALESCE($2, customer_phone),
			     status = $3,
			     total_paid = $4
			 WHERE id = $5`,
			change.CustomerName, change.CustomerPhone, string(change.Status), change.TotalPaid, id,
		)
		if err != nil {
			return fmt.Errorf("update ticket: %w", err)
		}

		if change.PaymentAmount > 0 {
			_, err = tx.ExecContext(
				ctx,
				"INSERT INTO payments (ticket_id, amount) VALUES ($1, $2)",
				id, change.PaymentAmount,
			)
			if err != nil {
				return fmt.Errorf("insert payment: %w", err)
			}
		}

		updated = current
		if change.CustomerName != nil {
			updated.CustomerName = change.CustomerName
		}
		if change.CustomerPhone != nil {
			updated.CustomerPhone = change.CustomerPhone
		}
		updated.Status = change.Status
		updated.TotalPaid = change.TotalPaid
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &updated, nil
}

func (r *PostgresRepository) GetTicketPayments(ctx context.Context, ticketID int64) ([]models.Payment, error) {
	rows, err := r.db.QueryContext(
		ctx,
		`SELECT id, ticket_id, amount, paid_at
		 FROM payments
		 WHERE ticket_id = $1
		 ORDER BY paid_at DESC, id DESC`,
		ticketID,
	)
	if err != nil {
		return nil, fmt.Errorf("select payments: %w", err)
	}
	defer rows.Close()

	payments := []models.Payment{}
	for rows.Next() {
		var p models.Payment
		if err := rows.Scan(&p.ID, &p.TicketID, &p.Amount, &p.PaidAt); err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		payments = append(payments, p)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return payments, nil
}
