package testutils

import (
	"context"
	"sync"

	"github.com/25x8/raffledesk/internal/raffledesk/models"
)

type cacheKey struct {
	raffleID, gen int64
}

// MemoryCache is an in-memory report cache that records invalidations
type MemoryCache struct {
	mu          sync.Mutex
	generations map[int64]int64
	dashboards  map[cacheKey]*models.Dashboard
	wallets     map[cacheKey][]models.WalletRow
	Invalidated []int64
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		generations: make(map[int64]int64),
		dashboards:  make(map[cacheKey]*models.Dashboard),
		wallets:     make(map[cacheKey][]models.WalletRow),
	}
}

func (c *MemoryCache) Generation(ctx context.Context, raffleID int64) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generations[raffleID], nil
}

func (c *MemoryCache) GetDashboard(ctx context.Context, raffleID, gen int64) (*models.Dashboard, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.dashboards[cacheKey{raffleID, gen}]
	return d, ok, nil
}

func (c *MemoryCache) SetDashboard(ctx context.Context, raffleID, gen int64, d *models.Dashboard) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dashboards[cacheKey{raffleID, gen}] = d
	return nil
}

func (c *MemoryCache) GetWallet(ctx context.Context, raffleID, gen int64) ([]models.WalletRow, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	rows, ok := c.wallets[cacheKey{raffleID, gen}]
	return rows, ok, nil
}

func (c *MemoryCache) SetWallet(ctx context.Context, raffleID, gen int64, rows []models.WalletRow) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.wallets[cacheKey{raffleID, gen}] = rows
	return nil
}

func (c *MemoryCache) Invalidate(ctx context.Context, raffleID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	old := cacheKey{raffleID, c.generations[raffleID]}
	delete(c.dashboards, old)
	delete(c.wallets, old)
	c.generations[raffleID]++
	c.Invalidated = append(c.Invalidated, raffleID)
	return nil
}

// RecordingNotifier keeps every paid event it receives
type RecordingNotifier struct {
	mu     sync.Mutex
	Events []models.TicketPaidEvent
	Err    error
}

func (n *RecordingNotifier) TicketPaid(ctx context.Context, e models.TicketPaidEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Events = append(n.Events, e)
	return n.Err
}
