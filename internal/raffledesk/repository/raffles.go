package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/25x8/raffledesk/internal/raffledesk/models"
	"github.com/25x8/raffledesk/internal/raffledesk/utils"
)

const raffleColumns = "id, name, description, prize_cost, ticket_value, draw_date, lottery_reference, status, created_at"

// CreateRaffle inserts a raffle together with its full ticket pool.
// Either the raffle and all of its tickets are stored, or nothing is.
func (r *PostgresRepository) CreateRaffle(ctx context.Context, raffle models.Raffle) (int64, error) {
	var raffleID int64

	err := r.withTx(ctx, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(
			ctx,
			`INSERT INTO raffles (name, description, prize_cost, ticket_value, draw_date, lottery_reference, status)
			 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
			raffle.Name, raffle.Description, raffle.PrizeCost, raffle.TicketValue,
			raffle.DrawDate, raffle.LotteryReference, string(models.RaffleActive),
		).Scan(&raffleID)
		if err != nil {
			return fmt.Errorf("insert raffle: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, "INSERT INTO tickets (raffle_id, number) VALUES ($1, $2)")
		if err != nil {
			return fmt.Errorf("prepare ticket insert: %w", err)
		}
		defer stmt.Close()

		for _, number := range utils.TicketNumbers(models.TicketsPerRaffle) {
			if _, err := stmt.ExecContext(ctx, raffleID, number); err != nil {
				return fmt.Errorf("insert ticket %s: %w", number, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return raffleID, nil
}

func (r *PostgresRepository) GetRaffle(ctx context.Context, id int64) (*models.Raffle, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+raffleColumns+" FROM raffles WHERE id = $1", id)

	raffle, err := scanRaffle(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select raffle: %w", err)
	}
	return raffle, nil
}

func (r *PostgresRepository) ListRaffles(ctx context.Context) ([]models.Raffle, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+raffleColumns+" FROM raffles ORDER BY id DESC")
	if err != nil {
		return nil, fmt.Errorf("select raffles: %w", err)
	}
	defer rows.Close()

	raffles := []models.Raffle{}
	for rows.Next() {
		raffle, err := scanRaffle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan raffle: %w", err)
		}
		raffles = append(raffles, *raffle)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return raffles, nil
}

func (r *PostgresRepository) CountRaffles(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM raffles").Scan(&n); err != nil {
		return 0, fmt.Errorf("count raffles: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) UpdateRaffleStatus(ctx context.Context, id int64, status models.RaffleStatus) error {
	res, err := r.db.ExecContext(ctx, "UPDATE raffles SET status = $1 WHERE id = $2", string(status), id)
	if err != nil {
		return fmt.Errorf("update raffle status: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update raffle status: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: raffle %d", models.ErrNotFound, id)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRaffle(row rowScanner) (*models.Raffle, error) {
	var raffle models.Raffle
	err := row.Scan(
		&raffle.ID,
		&raffle.Name,
		&raffle.Description,
		&raffle.PrizeCost,
		&raffle.TicketValue,
		&raffle.DrawDate,
		&raffle.LotteryReference,
		&raffle.Status,
		&raffle.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &raffle, nil
}
