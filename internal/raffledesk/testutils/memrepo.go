// Package testutils provides in-memory collaborators for service and handler
// tests.
package testutils

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/25x8/raffledesk/internal/raffledesk/models"
	"github.com/25x8/raffledesk/internal/raffledesk/repository"
	"github.com/25x8/raffledesk/internal/raffledesk/utils"
)

// MemoryRepository is a mutex-guarded in-memory repository.Repository.
// UpdateTicket holds the lock for the whole read-resolve-write cycle, so it
// gives the same atomicity as the row lock in PostgreSQL.
type MemoryRepository struct {
	mu sync.Mutex

	users    []models.User
	raffles  []models.Raffle
	tickets  []models.Ticket
	payments []models.Payment

	nextUser, nextRaffle, nextTicket, nextPayment int64

	// FailTicketUpdate, when set, is returned by UpdateTicket after fn ran
	// and before anything is written.
	FailTicketUpdate error
}

var _ repository.Repository = (*MemoryRepository)(nil)

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

// DiscardLogger returns a logger that drops everything
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (m *MemoryRepository) InitDB(string) error       { return nil }
func (m *MemoryRepository) Ping(context.Context) error { return nil }
func (m *MemoryRepository) Close() error               { return nil }

func (m *MemoryRepository) CreateUser(ctx context.Context, username, passwordHash string, role models.Role) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Username == username {
			return 0, fmt.Errorf("%w: username %q already exists", models.ErrConflict, username)
		}
	}

	m.nextUser++
	m.users = append(m.users, models.User{
		ID:           m.nextUser,
		Username:     username,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    time.Now(),
	})
	return m.nextUser, nil
}

func (m *MemoryRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Username == username {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

func (m *MemoryRepository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.ID == id {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

func (m *MemoryRepository) CreateRaffle(ctx context.Context, raffle models.Raffle) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextRaffle++
	raffle.ID = m.nextRaffle
	raffle.Status = models.RaffleActive
	raffle.CreatedAt = time.Now()
	m.raffles = append(m.raffles, raffle)

	for _, number := range utils.TicketNumbers(models.TicketsPerRaffle) {
		m.nextTicket++
		m.tickets = append(m.tickets, models.Ticket{
			ID:       m.nextTicket,
			RaffleID: raffle.ID,
			Number:   number,
			Status:   models.TicketAvailable,
		})
	}
	return raffle.ID, nil
}

func (m *MemoryRepository) GetRaffle(ctx context.Context, id int64) (*models.Raffle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if r := m.raffle(id); r != nil {
		cp := *r
		return &cp, nil
	}
	return nil, nil
}

func (m *MemoryRepository) ListRaffles(ctx context.Context) ([]models.Raffle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.Raffle, len(m.raffles))
	copy(out, m.raffles)
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *MemoryRepository) CountRaffles(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.raffles), nil
}

func (m *MemoryRepository) UpdateRaffleStatus(ctx context.Context, id int64, status models.RaffleStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	r := m.raffle(id)
	if r == nil {
		return fmt.Errorf("%w: raffle %d", models.ErrNotFound, id)
	}
	r.Status = status
	return nil
}

func (m *MemoryRepository) GetTicket(ctx context.Context, id int64) (*models.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if t := m.ticket(id); t != nil {
		cp := *t
		return &cp, nil
	}
	return nil, nil
}

func (m *MemoryRepository) GetRaffleTickets(ctx context.Context, raffleID int64) ([]models.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.Ticket
	for _, t := range m.tickets {
		if t.RaffleID == raffleID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func (m *MemoryRepository) UpdateTicket(ctx context.Context, id int64, fn repository.TicketUpdateFunc) (*models.TicketAccount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t := m.ticket(id)
	if t == nil {
		return nil, fmt.Errorf("%w: ticket %d", models.ErrNotFound, id)
	}
	r := m.raffle(t.RaffleID)

	current := models.TicketAccount{Ticket: *t, TicketValue: r.TicketValue, RaffleName: r.Name}
	change, err := fn(current)
	if err != nil {
		return nil, err
	}
	if m.FailTicketUpdate != nil {
		return nil, m.FailTicketUpdate
	}

	if change.CustomerName != nil {
		t.CustomerName = change.CustomerName
	}
	if change.CustomerPhone != nil {
		t.CustomerPhone = change.CustomerPhone
	}
	t.Status = change.Status
	t.TotalPaid = change.TotalPaid

	if change.PaymentAmount > 0 {
		m.nextPayment++
		m.payments = append(m.payments, models.Payment{
			ID:       m.nextPayment,
			TicketID: id,
			Amount:   change.PaymentAmount,
			PaidAt:   time.Now(),
		})
	}

	return &models.TicketAccount{Ticket: *t, TicketValue: r.TicketValue, RaffleName: r.Name}, nil
}

func (m *MemoryRepository) GetTicketPayments(ctx context.Context, ticketID int64) ([]models.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.Payment
	for i := len(m.payments) - 1; i >= 0; i-- {
		if m.payments[i].TicketID == ticketID {
			out = append(out, m.payments[i])
		}
	}
	return out, nil
}

// TicketByNumber returns the ticket of a raffle with the given number
func (m *MemoryRepository) TicketByNumber(raffleID int64, number string) (models.Ticket, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, t := range m.tickets {
		if t.RaffleID == raffleID && t.Number == number {
			return t, true
		}
	}
	return models.Ticket{}, false
}

// PaymentCount returns the number of ledger entries across all tickets
func (m *MemoryRepository) PaymentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.payments)
}

func (m *MemoryRepository) raffle(id int64) *models.Raffle {
	for i := range m.raffles {
		if m.raffles[i].ID == id {
			return &m.raffles[i]
		}
	}
	return nil
}

func (m *MemoryRepository) ticket(id int64) *models.Ticket {
	for i := range m.tickets {
		if m.tickets[i].ID == id {
			return &m.tickets[i]
		}
	}
	return nil
}
