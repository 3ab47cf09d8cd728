package models_test

import (
	"errors"
	"testing"

	"github.com/25x8/raffledesk/internal/raffledesk/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTicketStatus(t *testing.T) {
	for _, s := range []string{"available", "pending", "paid"} {
		st, err := models.ParseTicketStatus(s)
		require.NoError(t, err)
		assert.Equal(t, models.TicketStatus(s), st)
	}

	_, err := models.ParseTicketStatus("pagado")
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrValidation))
}

func TestParseRaffleStatus(t *testing.T) {
	st, err := models.ParseRaffleStatus("finished")
	require.NoError(t, err)
	assert.Equal(t, models.RaffleFinished, st)

	_, err = models.ParseRaffleStatus("closed")
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestParseRole(t *testing.T) {
	r, err := models.ParseRole("seller")
	require.NoError(t, err)
	assert.Equal(t, models.RoleSeller, r)

	_, err = models.ParseRole("root")
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestSettlementStatus(t *testing.T) {
	tests := []struct {
		name      string
		paid, due float64
		want      models.TicketStatus
	}{
		{"nothing paid", 0, 50000, models.TicketPending},
		{"partial", 30000, 50000, models.TicketPending},
		{"exact", 50000, 50000, models.TicketPaid},
		{"float noise", 0.1 + 0.2, 0.3, models.TicketPaid},
		{"group of tickets", 150000, 150000, models.TicketPaid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, models.SettlementStatus(tt.paid, tt.due))
		})
	}
}

func TestValidationErrorUnwraps(t *testing.T) {
	err := models.MissingFields("name", "draw_date")
	assert.ErrorIs(t, err, models.ErrValidation)
	assert.Equal(t, []string{"name", "draw_date"}, err.Fields)
	assert.Contains(t, err.Error(), "name, draw_date")

	assert.ErrorIs(t, models.ErrInvalidCredentials, models.ErrAuthentication)
	assert.Equal(t, "invalid credentials", models.ErrInvalidCredentials.Error())
}
