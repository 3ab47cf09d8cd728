package service

import (
	"context"
	"testing"

	"github.com/25x8/raffledesk/internal/raffledesk/models"
	"github.com/25x8/raffledesk/internal/raffledesk/testutils"
	"github.com/25x8/raffledesk/internal/raffledesk/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reportRaffle() models.Raffle {
	return models.Raffle{ID: 1, Name: "Test", PrizeCost: 1000000, TicketValue: 50000, Status: models.RaffleActive}
}

func ticket(number string, status models.TicketStatus, name, phone *string, paid float64) models.Ticket {
	return models.Ticket{RaffleID: 1, Number: number, Status: status, CustomerName: name, CustomerPhone: phone, TotalPaid: paid}
}

func availableTickets(n int) []models.Ticket {
	out := make([]models.Ticket, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, ticket("", models.TicketAvailable, nil, nil, 0))
	}
	return out
}

func TestBuildDashboard_NothingSold(t *testing.T) {
	d := BuildDashboard(reportRaffle(), availableTickets(100))

	assert.Equal(t, 100, d.Stats.TotalTickets)
	assert.Zero(t, d.Stats.SoldCount)
	assert.Zero(t, d.Stats.OccupationPercentage)
	assert.Zero(t, d.Stats.TotalCollected)
	assert.Zero(t, d.Stats.TotalPending)
	assert.Equal(t, -1000000.0, d.Stats.ProjectedUtility)
	assert.Equal(t, -1000000.0, d.Stats.RealUtility)
	assert.NotNil(t, d.PendingCustomers)
	assert.NotNil(t, d.PaidCustomers)
	assert.Empty(t, d.PendingCustomers)
	assert.Empty(t, d.PaidCustomers)
}

func TestBuildDashboard_NoTickets(t *testing.T) {
	d := BuildDashboard(reportRaffle(), nil)

	assert.Zero(t, d.Stats.OccupationPercentage)
	assert.Zero(t, d.Stats.TotalTickets)
}

func TestBuildDashboard(t *testing.T) {
	ana, anaPhone := str("Ana"), str("300")
	luis, luisPhone := str("Luis"), str("301")

	tickets := availableTickets(95)
	tickets = append(tickets,
		ticket("10", models.TicketPending, ana, anaPhone, 30000),
		ticket("11", models.TicketPending, ana, anaPhone, 0),
		ticket("12", models.TicketPaid, ana, anaPhone, 50000),
		ticket("20", models.TicketPaid, luis, luisPhone, 50000),
		ticket("21", models.TicketPending, luis, str("999"), 10000),
	)

	d := BuildDashboard(reportRaffle(), tickets)

	assert.Equal(t, 5, d.Stats.SoldCount)
	assert.Equal(t, 2, d.Stats.PaidCount)
	assert.Equal(t, 140000.0, d.Stats.TotalCollected)
	assert.Equal(t, 250000.0, d.Stats.ProjectedRevenue)
	assert.Equal(t, 250000.0, d.Stats.TotalSold)
	assert.Equal(t, 110000.0, d.Stats.TotalPending)
	assert.Equal(t, 5.0, d.Stats.OccupationPercentage)
	assert.Equal(t, -750000.0, d.Stats.ProjectedUtility)
	assert.Equal(t, -860000.0, d.Stats.RealUtility)

	require.Len(t, d.PendingCustomers, 2)
	assert.Equal(t, "Ana", *d.PendingCustomers[0].CustomerName)
	assert.Equal(t, []string{"10", "11"}, d.PendingCustomers[0].Numbers)
	assert.Equal(t, 70000.0, d.PendingCustomers[0].Balance)
	assert.Equal(t, "Luis", *d.PendingCustomers[1].CustomerName)
	assert.Equal(t, "999", *d.PendingCustomers[1].CustomerPhone)
	assert.Equal(t, 40000.0, d.PendingCustomers[1].Balance)

	require.Len(t, d.PaidCustomers, 2)
	assert.Equal(t, []string{"12"}, d.PaidCustomers[0].Numbers)
	assert.Equal(t, []string{"20"}, d.PaidCustomers[1].Numbers)
}

func TestBuildWallet(t *testing.T) {
	ana, anaPhone := str("Ana"), str("300")
	beto, betoPhone := str("Beto"), str("302")
	carla, carlaPhone := str("Carla"), str("303")

	tickets := availableTickets(90)
	tickets = append(tickets,
		ticket("01", models.TicketPaid, ana, anaPhone, 50000),
		ticket("02", models.TicketPending, ana, anaPhone, 20000),
		ticket("03", models.TicketPending, beto, betoPhone, 0),
		ticket("04", models.TicketPending, beto, betoPhone, 0),
		ticket("05", models.TicketPaid, carla, carlaPhone, 50000),
		ticket("06", models.TicketPending, nil, nil, 20000),
	)

	rows := BuildWallet(reportRaffle(), tickets)
	require.Len(t, rows, 4)

	for i, row := range rows {
		assert.Equal(t, float64(row.TicketCount)*50000-row.TotalPaid, row.Balance)
		assert.Equal(t, float64(row.TicketCount)*50000, row.TotalPurchase)
		if i > 0 {
			assert.GreaterOrEqual(t, rows[i-1].Balance, row.Balance)
		}
	}

	assert.Equal(t, "Beto", *rows[0].CustomerName)
	assert.Equal(t, 100000.0, rows[0].Balance)
	assert.Equal(t, models.TicketPending, rows[0].Status)

	// Ana and the anonymous buyer both owe 30000; the anonymous group sorts first
	assert.Nil(t, rows[1].CustomerName)
	assert.Equal(t, 30000.0, rows[1].Balance)
	assert.Equal(t, "Ana", *rows[2].CustomerName)
	assert.Equal(t, []string{"01", "02"}, rows[2].Numbers)
	assert.Equal(t, 70000.0, rows[2].TotalPaid)

	assert.Equal(t, "Carla", *rows[3].CustomerName)
	assert.Zero(t, rows[3].Balance)
	assert.Equal(t, models.TicketPaid, rows[3].Status)
}

func TestBuildWallet_StatusFollowsAmounts(t *testing.T) {
	// administrator marked the ticket paid without the money reaching the value
	tickets := []models.Ticket{ticket("00", models.TicketPaid, str("Ana"), str("300"), 10000)}

	rows := BuildWallet(reportRaffle(), tickets)

	require.Len(t, rows, 1)
	assert.Equal(t, models.TicketPending, rows[0].Status)
	assert.Equal(t, 40000.0, rows[0].Balance)
}

func TestReports_CachedUntilInvalidated(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	raffleID := f.addRaffle(t)

	d, err := f.svcs.Reports.Dashboard(ctx, raffleID)
	require.NoError(t, err)
	assert.Zero(t, d.Stats.SoldCount)

	gen, err := f.cache.Generation(ctx, raffleID)
	require.NoError(t, err)
	cached, ok, err := f.cache.GetDashboard(ctx, raffleID, gen)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, d, cached)

	_, err = f.svcs.Tickets.ApplyPayment(ctx, f.ticketID(t, raffleID, "05"), models.TicketUpdate{
		CustomerName:  str("Ana"),
		PaymentAmount: amount(10000),
	})
	require.NoError(t, err)

	d, err = f.svcs.Reports.Dashboard(ctx, raffleID)
	require.NoError(t, err)
	assert.Equal(t, 1, d.Stats.SoldCount)
	assert.Equal(t, 1.0, d.Stats.OccupationPercentage)

	rows, err := f.svcs.Reports.Wallet(ctx, raffleID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 40000.0, rows[0].Balance)
}

// interleavedRepository runs afterTickets once, right after the tickets of a
// raffle were read
type interleavedRepository struct {
	*testutils.MemoryRepository
	afterTickets func()
}

func (r *interleavedRepository) GetRaffleTickets(ctx context.Context, raffleID int64) ([]models.Ticket, error) {
	tickets, err := r.MemoryRepository.GetRaffleTickets(ctx, raffleID)
	if hook := r.afterTickets; hook != nil {
		r.afterTickets = nil
		hook()
	}
	return tickets, err
}

func TestReports_PaymentDuringLoadIsNotCached(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	raffleID := f.addRaffle(t)

	repo := &interleavedRepository{MemoryRepository: f.repo}
	svcs := New(Deps{
		Repo:   repo,
		Tokens: token.NewManager("test-secret", 0),
		Cache:  f.cache,
		Logger: testutils.DiscardLogger(),
	})
	pay := func(number, name string) func() {
		return func() {
			_, err := svcs.Tickets.ApplyPayment(ctx, f.ticketID(t, raffleID, number), models.TicketUpdate{
				CustomerName:  str(name),
				PaymentAmount: amount(50000),
			})
			require.NoError(t, err)
		}
	}

	repo.afterTickets = pay("00", "Ana")
	d, err := svcs.Reports.Dashboard(ctx, raffleID)
	require.NoError(t, err)
	assert.Zero(t, d.Stats.SoldCount)

	d, err = svcs.Reports.Dashboard(ctx, raffleID)
	require.NoError(t, err)
	assert.Equal(t, 1, d.Stats.SoldCount)
	assert.Equal(t, 50000.0, d.Stats.TotalCollected)

	repo.afterTickets = pay("01", "Beto")
	rows, err := svcs.Reports.Wallet(ctx, raffleID)
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	rows, err = svcs.Reports.Wallet(ctx, raffleID)
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	d, err = svcs.Reports.Dashboard(ctx, raffleID)
	require.NoError(t, err)
	assert.Equal(t, 2, d.Stats.SoldCount)
}

func TestReports_UnknownRaffle(t *testing.T) {
	f := newFixture(t)

	_, err := f.svcs.Reports.Dashboard(context.Background(), 404)
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = f.svcs.Reports.Wallet(context.Background(), 404)
	assert.ErrorIs(t, err, models.ErrNotFound)
}
