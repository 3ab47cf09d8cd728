package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/25x8/raffledesk/internal/raffledesk/models"
	"github.com/25x8/raffledesk/internal/raffledesk/repository"
	"golang.org/x/crypto/bcrypt"
)

// SeedConfig controls what Bootstrap puts into an empty store
type SeedConfig struct {
	AdminUsername string
	AdminPassword string
	SampleRaffle  bool
}

// SampleRaffle is the raffle seeded into a store that has none
func SampleRaffle() models.NewRaffle {
	return models.NewRaffle{
		Name:        "Gran Rifa de Inauguración",
		Description: "iPhone 15 Pro Max",
		PrizeCost:   5000000,
		TicketValue: 50000,
		DrawDate:    "2026-12-24",
	}
}

// Bootstrap seeds the default administrator and, when the store holds no
// raffles, the sample raffle. It is safe to run on every start.
func Bootstrap(ctx context.Context, repo repository.Repository, svcs *Services, seed SeedConfig, logger *slog.Logger) error {
	log := logger.With("context", "Bootstrap")

	if seed.AdminUsername != "" {
		user, err := repo.GetUserByUsername(ctx, seed.AdminUsername)
		if err != nil {
			return fmt.Errorf("lookup admin: %w", err)
		}
		if user == nil {
			hash, err := bcrypt.GenerateFromPassword([]byte(seed.AdminPassword), svcs.Auth.HashCost)
			if err != nil {
				return fmt.Errorf("hash admin password: %w", err)
			}
			if _, err := repo.CreateUser(ctx, seed.AdminUsername, string(hash), models.RoleAdmin); err != nil {
				return fmt.Errorf("seed admin: %w", err)
			}
			log.Info("Default administrator created", "username", seed.AdminUsername)
		}
	}

	if !seed.SampleRaffle {
		return nil
	}

	count, err := repo.CountRaffles(ctx)
	if err != nil {
		return fmt.Errorf("count raffles: %w", err)
	}
	if count > 0 {
		return nil
	}

	grant := models.AdminGrant{Username: seed.AdminUsername}
	if _, err := svcs.Raffles.Create(ctx, grant, SampleRaffle()); err != nil {
		return fmt.Errorf("seed sample raffle: %w", err)
	}
	return nil
}
