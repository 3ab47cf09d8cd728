package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/25x8/raffledesk/internal/raffledesk/cache"
	"github.com/25x8/raffledesk/internal/raffledesk/config"
	"github.com/25x8/raffledesk/internal/raffledesk/handlers"
	"github.com/25x8/raffledesk/internal/raffledesk/notify"
	"github.com/25x8/raffledesk/internal/raffledesk/repository"
	"github.com/25x8/raffledesk/internal/raffledesk/service"
	"github.com/25x8/raffledesk/internal/raffledesk/token"
)

// Server represents the HTTP server
type Server struct {
	cfg        *config.Config
	logger     *slog.Logger
	repo       repository.Repository
	cache      *cache.RedisCache
	httpServer *http.Server
}

// NewServer creates a new server
func NewServer(cfg *config.Config, logger *slog.Logger) *Server {
	return &Server{
		cfg:    cfg,
		logger: logger,
		repo:   repository.NewPostgresRepository(),
	}
}

// Run connects the collaborators, seeds an empty store and serves HTTP until
// Shutdown is called.
func (s *Server) Run(ctx context.Context) error {
	// Initialize repository
	if err := s.repo.InitDB(s.cfg.DatabaseURI); err != nil {
		return fmt.Errorf("init database: %w", err)
	}

	deps := service.Deps{
		Repo:           s.repo,
		Tokens:         token.NewManager(s.cfg.JWTSecret, s.cfg.JWTTTL),
		Logger:         s.logger,
		DefaultLottery: s.cfg.DefaultLottery,
	}

	if s.cfg.RedisURL != "" {
		c, err := cache.NewRedisCache(ctx, s.cfg.RedisURL, s.cfg.ReportCacheTTL)
		if err != nil {
			s.logger.Error("Report cache disabled", "error", err)
		} else {
			s.cache = c
			deps.Cache = c
			s.logger.Info("Report cache enabled", "ttl", s.cfg.ReportCacheTTL)
		}
	}

	if s.cfg.NotificationsEnabled() {
		n, err := notify.NewTelegramNotifier(s.cfg.TelegramToken, s.cfg.TelegramChatID)
		if err != nil {
			s.logger.Error("Telegram notifications disabled", "error", err)
		} else {
			deps.Notifier = n
			s.logger.Info("Telegram notifications enabled", "chatID", s.cfg.TelegramChatID)
		}
	}

	if s.cfg.UsesDevSecret() {
		s.logger.Warn("Using the development JWT secret, set JWT_SECRET in production")
	}

	svcs := service.New(deps)

	seed := service.SeedConfig{
		AdminUsername: s.cfg.AdminUsername,
		AdminPassword: s.cfg.AdminPassword,
		SampleRaffle:  s.cfg.SeedSampleRaffle,
	}
	if err := service.Bootstrap(ctx, s.repo, svcs, seed, s.logger); err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}

	handler := handlers.NewHandler(svcs, s.repo, s.cfg.JWTTTL, s.logger)
	router := NewRouter(handler, svcs.Auth, RouterOptions{
		CORSOrigins: s.cfg.CORSOrigins,
		StaticDir:   s.cfg.StaticDir,
	})

	// Create HTTP server
	s.httpServer = &http.Server{
		Addr:    s.cfg.RunAddress,
		Handler: router,
	}

	s.logger.Info("Starting server", "address", s.cfg.RunAddress)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			return err
		}
	}

	if s.cache != nil {
		if err := s.cache.Close(); err != nil {
			s.logger.Error("Failed to close report cache", "error", err)
		}
	}

	// Close repository
	if s.repo != nil {
		if err := s.repo.Close(); err != nil {
			return err
		}
	}

	return nil
}
