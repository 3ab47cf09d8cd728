package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/25x8/raffledesk/internal/raffledesk/models"
	"github.com/25x8/raffledesk/internal/raffledesk/repository"
)

// DefaultLotteryReference names the lottery a raffle is drawn against when
// none is given.
const DefaultLotteryReference = "Lotería de Medellín"

// RaffleService manages the raffle lifecycle
type RaffleService struct {
	repo           repository.Repository
	cache          ReportCache
	defaultLottery string
	logger         *slog.Logger
}

func NewRaffleService(repo repository.Repository, cache ReportCache, defaultLottery string, logger *slog.Logger) *RaffleService {
	if defaultLottery == "" {
		defaultLottery = DefaultLotteryReference
	}
	return &RaffleService{repo: repo, cache: cache, defaultLottery: defaultLottery, logger: logger}
}

// Create stores a new active raffle with its 100 available tickets
func (s *RaffleService) Create(ctx context.Context, grant models.AdminGrant, in models.NewRaffle) (int64, error) {
	log := s.logger.With("context", "CreateRaffle", "admin", grant.Username)

	in.Name = strings.TrimSpace(in.Name)
	in.DrawDate = strings.TrimSpace(in.DrawDate)
	if err := validateInput(in); err != nil {
		log.Warn("CreateRaffle rejected", "error", err)
		return 0, err
	}

	lottery := strings.TrimSpace(in.LotteryReference)
	if lottery == "" {
		lottery = s.defaultLottery
	}

	id, err := s.repo.CreateRaffle(ctx, models.Raffle{
		Name:             in.Name,
		Description:      in.Description,
		PrizeCost:        models.RoundCents(in.PrizeCost),
		TicketValue:      models.RoundCents(in.TicketValue),
		DrawDate:         in.DrawDate,
		LotteryReference: lottery,
		Status:           models.RaffleActive,
	})
	if err != nil {
		log.Error("CreateRaffle failed", "error", err)
		return 0, err
	}

	log.Info("Raffle created", "raffleID", id, "name", in.Name, "tickets", models.TicketsPerRaffle)
	return id, nil
}

// List returns every raffle, newest first
func (s *RaffleService) List(ctx context.Context) ([]models.Raffle, error) {
	return s.repo.ListRaffles(ctx)
}

// Get returns one raffle or ErrNotFound
func (s *RaffleService) Get(ctx context.Context, id int64) (*models.Raffle, error) {
	raffle, err := s.repo.GetRaffle(ctx, id)
	if err != nil {
		return nil, err
	}
	if raffle == nil {
		return nil, fmt.Errorf("%w: raffle %d", models.ErrNotFound, id)
	}
	return raffle, nil
}

// SetStatus moves a raffle between active and finished. Tickets are untouched.
func (s *RaffleService) SetStatus(ctx context.Context, grant models.AdminGrant, id int64, status string) error {
	log := s.logger.With("context", "SetRaffleStatus", "admin", grant.Username, "raffleID", id)

	st, err := models.ParseRaffleStatus(status)
	if err != nil {
		return err
	}

	if err := s.repo.UpdateRaffleStatus(ctx, id, st); err != nil {
		return err
	}
	invalidate(ctx, s.cache, id, log)

	log.Info("Raffle status updated", "status", st)
	return nil
}

func invalidate(ctx context.Context, cache ReportCache, raffleID int64, log *slog.Logger) {
	if cache == nil {
		return
	}
	if err := cache.Invalidate(ctx, raffleID); err != nil {
		log.Error("Report cache invalidation failed", "raffleID", raffleID, "error", err)
	}
}
