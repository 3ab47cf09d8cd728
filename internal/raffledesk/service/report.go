package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/25x8/raffledesk/internal/raffledesk/models"
	"github.com/25x8/raffledesk/internal/raffledesk/repository"
)

// ReportService derives the dashboard and wallet views of a raffle
type ReportService struct {
	repo   repository.Repository
	cache  ReportCache
	logger *slog.Logger
}

func NewReportService(repo repository.Repository, cache ReportCache, logger *slog.Logger) *ReportService {
	return &ReportService{repo: repo, cache: cache, logger: logger}
}

// Dashboard returns the statistics and customer groupings of a raffle
func (s *ReportService) Dashboard(ctx context.Context, raffleID int64) (*models.Dashboard, error) {
	log := s.logger.With("context", "Dashboard", "raffleID", raffleID)

	gen, cached := s.generation(ctx, raffleID, log)
	if cached {
		d, ok, err := s.cache.GetDashboard(ctx, raffleID, gen)
		if err != nil {
			log.Warn("Report cache read failed", "error", err)
		} else if ok {
			return d, nil
		}
	}

	raffle, tickets, err := s.load(ctx, raffleID)
	if err != nil {
		return nil, err
	}

	d := BuildDashboard(*raffle, tickets)

	if cached {
		if err := s.cache.SetDashboard(ctx, raffleID, gen, d); err != nil {
			log.Warn("Report cache write failed", "error", err)
		}
	}
	return d, nil
}

// Wallet returns one row per buyer, largest balances first
func (s *ReportService) Wallet(ctx context.Context, raffleID int64) ([]models.WalletRow, error) {
	log := s.logger.With("context", "Wallet", "raffleID", raffleID)

	gen, cached := s.generation(ctx, raffleID, log)
	if cached {
		rows, ok, err := s.cache.GetWallet(ctx, raffleID, gen)
		if err != nil {
			log.Warn("Report cache read failed", "error", err)
		} else if ok {
			return rows, nil
		}
	}

	raffle, tickets, err := s.load(ctx, raffleID)
	if err != nil {
		return nil, err
	}

	rows := BuildWallet(*raffle, tickets)

	if cached {
		if err := s.cache.SetWallet(ctx, raffleID, gen, rows); err != nil {
			log.Warn("Report cache write failed", "error", err)
		}
	}
	return rows, nil
}

// generation reads the cache generation of a raffle before the store is
// loaded. A report is stored under that generation, so an invalidation that
// lands while the store is read leaves the result unreachable.
func (s *ReportService) generation(ctx context.Context, raffleID int64, log *slog.Logger) (int64, bool) {
	if s.cache == nil {
		return 0, false
	}
	gen, err := s.cache.Generation(ctx, raffleID)
	if err != nil {
		log.Warn("Report cache generation read failed", "error", err)
		return 0, false
	}
	return gen, true
}

func (s *ReportService) load(ctx context.Context, raffleID int64) (*models.Raffle, []models.Ticket, error) {
	raffle, err := s.repo.GetRaffle(ctx, raffleID)
	if err != nil {
		return nil, nil, err
	}
	if raffle == nil {
		return nil, nil, fmt.Errorf("%w: raffle %d", models.ErrNotFound, raffleID)
	}

	tickets, err := s.repo.GetRaffleTickets(ctx, raffleID)
	if err != nil {
		return nil, nil, err
	}
	return raffle, tickets, nil
}

// customerKey identifies a buyer. A nil name or phone is distinct from an
// empty one.
type customerKey struct {
	name, phone       string
	hasName, hasPhone bool
}

func keyOf(t models.Ticket) customerKey {
	var k customerKey
	if t.CustomerName != nil {
		k.name, k.hasName = *t.CustomerName, true
	}
	if t.CustomerPhone != nil {
		k.phone, k.hasPhone = *t.CustomerPhone, true
	}
	return k
}

func (k customerKey) less(o customerKey) bool {
	if k.hasName != o.hasName {
		return !k.hasName
	}
	if k.name != o.name {
		return k.name < o.name
	}
	if k.hasPhone != o.hasPhone {
		return !k.hasPhone
	}
	return k.phone < o.phone
}

type customerGroup struct {
	key       customerKey
	name      *string
	phone     *string
	numbers   []string
	totalPaid float64
}

// groupByCustomer buckets the tickets accepted by keep, ordered by buyer
func groupByCustomer(tickets []models.Ticket, keep func(models.Ticket) bool) []*customerGroup {
	index := make(map[customerKey]*customerGroup)
	var groups []*customerGroup

	for _, t := range tickets {
		if !keep(t) {
			continue
		}
		k := keyOf(t)
		g, ok := index[k]
		if !ok {
			g = &customerGroup{key: k, name: t.CustomerName, phone: t.CustomerPhone}
			index[k] = g
			groups = append(groups, g)
		}
		g.numbers = append(g.numbers, t.Number)
		g.totalPaid += t.TotalPaid
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].key.less(groups[j].key)
	})
	for _, g := range groups {
		sort.Strings(g.numbers)
		g.totalPaid = models.RoundCents(g.totalPaid)
	}
	return groups
}

// BuildDashboard computes the statistics and buyer lists of a raffle
func BuildDashboard(raffle models.Raffle, tickets []models.Ticket) *models.Dashboard {
	var stats models.Stats
	stats.TotalTickets = len(tickets)

	for _, t := range tickets {
		if t.Status != models.TicketAvailable {
			stats.SoldCount++
		}
		if t.Status == models.TicketPaid {
			stats.PaidCount++
		}
		stats.TotalCollected += t.TotalPaid
	}

	stats.TotalCollected = models.RoundCents(stats.TotalCollected)
	stats.ProjectedRevenue = models.RoundCents(float64(stats.SoldCount) * raffle.TicketValue)
	stats.TotalSold = stats.ProjectedRevenue
	stats.TotalPending = models.RoundCents(stats.ProjectedRevenue - stats.TotalCollected)
	if stats.TotalTickets > 0 {
		stats.OccupationPercentage = models.RoundCents(float64(stats.SoldCount) / float64(stats.TotalTickets) * 100)
	}
	stats.ProjectedUtility = models.RoundCents(stats.ProjectedRevenue - raffle.PrizeCost)
	stats.RealUtility = models.RoundCents(stats.TotalCollected - raffle.PrizeCost)

	pending := make([]models.PendingCustomer, 0)
	for _, g := range groupByCustomer(tickets, func(t models.Ticket) bool { return t.Status == models.TicketPending }) {
		pending = append(pending, models.PendingCustomer{
			CustomerName:  g.name,
			CustomerPhone: g.phone,
			Numbers:       g.numbers,
			Balance:       models.RoundCents(float64(len(g.numbers))*raffle.TicketValue - g.totalPaid),
		})
	}

	paid := make([]models.PaidCustomer, 0)
	for _, g := range groupByCustomer(tickets, func(t models.Ticket) bool { return t.Status == models.TicketPaid }) {
		paid = append(paid, models.PaidCustomer{
			CustomerName:  g.name,
			CustomerPhone: g.phone,
			Numbers:       g.numbers,
		})
	}

	return &models.Dashboard{
		Raffle:           raffle,
		Stats:            stats,
		PendingCustomers: pending,
		PaidCustomers:    paid,
	}
}

// BuildWallet aggregates every sold ticket per buyer
func BuildWallet(raffle models.Raffle, tickets []models.Ticket) []models.WalletRow {
	groups := groupByCustomer(tickets, func(t models.Ticket) bool { return t.Status != models.TicketAvailable })

	rows := make([]models.WalletRow, 0, len(groups))
	for _, g := range groups {
		purchase := models.RoundCents(float64(len(g.numbers)) * raffle.TicketValue)
		rows = append(rows, models.WalletRow{
			CustomerName:  g.name,
			CustomerPhone: g.phone,
			Numbers:       g.numbers,
			TicketCount:   len(g.numbers),
			TotalPurchase: purchase,
			TotalPaid:     g.totalPaid,
			Balance:       models.RoundCents(purchase - g.totalPaid),
			Status:        models.SettlementStatus(g.totalPaid, purchase),
		})
	}

	// groups are already in buyer order; the stable sort keeps it for ties
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Balance > rows[j].Balance
	})
	return rows
}
