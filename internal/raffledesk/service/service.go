package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"

	"github.com/25x8/raffledesk/internal/raffledesk/models"
	"github.com/25x8/raffledesk/internal/raffledesk/repository"
	"github.com/25x8/raffledesk/internal/raffledesk/token"
	"github.com/go-playground/validator/v10"
)

// ReportCache keeps rendered reports per raffle and generation. Invalidate
// moves a raffle to a new generation.
type ReportCache interface {
	Generation(ctx context.Context, raffleID int64) (int64, error)
	GetDashboard(ctx context.Context, raffleID, gen int64) (*models.Dashboard, bool, error)
	SetDashboard(ctx context.Context, raffleID, gen int64, d *models.Dashboard) error
	GetWallet(ctx context.Context, raffleID, gen int64) ([]models.WalletRow, bool, error)
	SetWallet(ctx context.Context, raffleID, gen int64, rows []models.WalletRow) error
	Invalidate(ctx context.Context, raffleID int64) error
}

// Notifier receives ticket settlement events
type Notifier interface {
	TicketPaid(ctx context.Context, e models.TicketPaidEvent) error
}

// Deps holds everything the services are built from. Cache and Notifier
// may be nil.
type Deps struct {
	Repo           repository.Repository
	Tokens         *token.Manager
	Cache          ReportCache
	Notifier       Notifier
	Logger         *slog.Logger
	DefaultLottery string
}

// Services groups the application services
type Services struct {
	Auth    *AuthService
	Raffles *RaffleService
	Tickets *TicketService
	Reports *ReportService
}

// New wires the application services
func New(d Deps) *Services {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	return &Services{
		Auth:    NewAuthService(d.Repo, d.Tokens, d.Logger),
		Raffles: NewRaffleService(d.Repo, d.Cache, d.DefaultLottery, d.Logger),
		Tickets: NewTicketService(d.Repo, d.Cache, d.Notifier, d.Logger),
		Reports: NewReportService(d.Repo, d.Cache, d.Logger),
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// validateInput runs the struct's validate tags and reports offending fields
func validateInput(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fe.Field())
		}
		return models.MissingFields(fields...)
	}
	return fmt.Errorf("%w: %v", models.ErrValidation, err)
}
