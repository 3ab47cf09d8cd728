package cache

import (
	"context"
	"testing"
	"time"

	"github.com/25x8/raffledesk/internal/raffledesk/models"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T, ttl time.Duration) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := NewRedisCacheWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), ttl)
	t.Cleanup(func() { c.Close() })
	return c, mr
}

func str(s string) *string { return &s }

func TestKeys(t *testing.T) {
	assert.Equal(t, "raffledesk:gen:12", GenerationKey(12))
	assert.Equal(t, "raffledesk:dashboard:12:3", DashboardKey(12, 3))
	assert.Equal(t, "raffledesk:wallet:12:0", WalletKey(12, 0))
}

func TestNewRedisCache(t *testing.T) {
	mr := miniredis.RunT(t)

	c, err := NewRedisCache(context.Background(), "redis://"+mr.Addr()+"/0", time.Minute)
	require.NoError(t, err)
	assert.NoError(t, c.Close())
}

func TestNewRedisCache_BadURL(t *testing.T) {
	_, err := NewRedisCache(context.Background(), "not a url", time.Minute)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse redis url")
}

func TestNewRedisCache_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := NewRedisCache(ctx, "redis://127.0.0.1:1/0", time.Minute)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis ping")
}

func TestDashboard_RoundTrip(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)
	ctx := context.Background()

	want := &models.Dashboard{
		Raffle: models.Raffle{
			ID:          4,
			Name:        "Rifa",
			PrizeCost:   1000000,
			TicketValue: 50000,
			DrawDate:    "2026-12-24",
			Status:      models.RaffleActive,
			CreatedAt:   time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC),
		},
		Stats: models.Stats{TotalTickets: 100, SoldCount: 2, PaidCount: 1, TotalCollected: 60000, OccupationPercentage: 2},
		PendingCustomers: []models.PendingCustomer{
			{CustomerName: str("Ana"), CustomerPhone: nil, Numbers: []string{"07"}, Balance: 40000},
		},
		PaidCustomers: []models.PaidCustomer{
			{CustomerName: nil, CustomerPhone: str("300"), Numbers: []string{}},
		},
	}

	require.NoError(t, c.SetDashboard(ctx, 4, 0, want))
	assert.True(t, mr.Exists(DashboardKey(4, 0)))

	got, ok, err := c.GetDashboard(ctx, 4, 0)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want, got)
	assert.Nil(t, got.PendingCustomers[0].CustomerPhone)
	assert.Nil(t, got.PaidCustomers[0].CustomerName)
	assert.NotNil(t, got.PaidCustomers[0].Numbers)
	assert.Empty(t, got.PaidCustomers[0].Numbers)

	_, ok, err = c.GetDashboard(ctx, 4, 1)
	require.NoError(t, err)
	assert.False(t, ok, "other generations are separate entries")
}

func TestWallet_RoundTrip(t *testing.T) {
	c, _ := newTestCache(t, time.Minute)
	ctx := context.Background()

	want := []models.WalletRow{
		{CustomerName: str("Beto"), Numbers: []string{"01", "02"}, TicketCount: 2, TotalPurchase: 100000, TotalPaid: 55000, Balance: 45000, Status: models.TicketPending},
		{CustomerPhone: str("300"), Numbers: []string{"05"}, TicketCount: 1, TotalPurchase: 50000, TotalPaid: 50000, Status: models.TicketPaid},
	}

	require.NoError(t, c.SetWallet(ctx, 4, 2, want))

	got, ok, err := c.GetWallet(ctx, 4, 2)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want, got)
}

func TestGet_Missing(t *testing.T) {
	c, _ := newTestCache(t, time.Minute)
	ctx := context.Background()

	d, ok, err := c.GetDashboard(ctx, 9, 0)
	assert.Nil(t, d)
	assert.False(t, ok)
	assert.NoError(t, err)

	rows, ok, err := c.GetWallet(ctx, 9, 0)
	assert.Nil(t, rows)
	assert.False(t, ok)
	assert.NoError(t, err)
}

func TestGet_CorruptEntry(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)
	require.NoError(t, mr.Set(DashboardKey(1, 0), "{not json"))

	d, ok, err := c.GetDashboard(context.Background(), 1, 0)
	assert.Nil(t, d)
	assert.False(t, ok)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode")
}

func TestSet_AppliesTTL(t *testing.T) {
	c, mr := newTestCache(t, 30*time.Second)
	ctx := context.Background()

	require.NoError(t, c.SetDashboard(ctx, 1, 0, &models.Dashboard{}))
	require.NoError(t, c.SetWallet(ctx, 1, 0, []models.WalletRow{}))
	assert.Equal(t, 30*time.Second, mr.TTL(DashboardKey(1, 0)))
	assert.Equal(t, 30*time.Second, mr.TTL(WalletKey(1, 0)))

	mr.FastForward(31 * time.Second)

	_, ok, err := c.GetDashboard(ctx, 1, 0)
	require.NoError(t, err)
	assert.False(t, ok)
	_, ok, err = c.GetWallet(ctx, 1, 0)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestInvalidate(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)
	ctx := context.Background()

	gen, err := c.Generation(ctx, 1)
	require.NoError(t, err)
	assert.Zero(t, gen)

	require.NoError(t, c.SetDashboard(ctx, 1, gen, &models.Dashboard{}))
	require.NoError(t, c.SetWallet(ctx, 1, gen, []models.WalletRow{}))
	require.NoError(t, c.SetDashboard(ctx, 2, 0, &models.Dashboard{}))

	require.NoError(t, c.Invalidate(ctx, 1))

	assert.False(t, mr.Exists(DashboardKey(1, 0)))
	assert.False(t, mr.Exists(WalletKey(1, 0)))
	assert.True(t, mr.Exists(DashboardKey(2, 0)), "other raffles are untouched")

	gen, err = c.Generation(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), gen)

	require.NoError(t, c.Invalidate(ctx, 1))
	gen, err = c.Generation(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), gen)
}

func TestInvalidate_StaleWriteIsUnreachable(t *testing.T) {
	c, _ := newTestCache(t, time.Minute)
	ctx := context.Background()

	gen, err := c.Generation(ctx, 1)
	require.NoError(t, err)

	// a writer invalidates while a reader is still computing its report
	require.NoError(t, c.Invalidate(ctx, 1))
	require.NoError(t, c.SetDashboard(ctx, 1, gen, &models.Dashboard{Stats: models.Stats{SoldCount: 0}}))

	current, err := c.Generation(ctx, 1)
	require.NoError(t, err)
	_, ok, err := c.GetDashboard(ctx, 1, current)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGetOnClosedClient(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1, DialTimeout: 100 * time.Millisecond})
	c := NewRedisCacheWithClient(client, time.Minute)
	require.NoError(t, c.Close())

	d, ok, err := c.GetDashboard(context.Background(), 1, 0)
	assert.Nil(t, d)
	assert.False(t, ok)
	assert.Error(t, err)

	_, err = c.Generation(context.Background(), 1)
	assert.Error(t, err)
}
