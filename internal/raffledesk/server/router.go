package server

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/25x8/raffledesk/internal/raffledesk/handlers"
	"github.com/25x8/raffledesk/internal/raffledesk/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RouterOptions configures the HTTP surface around the API routes
type RouterOptions struct {
	CORSOrigins []string
	// StaticDir, when set, is served as a single page application.
	StaticDir string
}

// Gate is the access control used by the router
type Gate interface {
	middleware.Authenticator
	middleware.AdminAuthorizer
}

// NewRouter builds the chi router with every API route
func NewRouter(h *handlers.Handler, gate Gate, opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	// Basic middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Authorization"},
		AllowCredentials: explicitOrigins(opts.CORSOrigins),
		MaxAge:           300,
	}))

	r.Route("/api", func(r chi.Router) {
		// Public routes
		r.Get("/health", h.Health)
		r.Post("/auth/login", h.Login)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(gate))

			r.Get("/raffles", h.ListRaffles)
			r.Get("/raffles/{id}", h.GetRaffle)
			r.Get("/tickets/raffle/{raffleId}", h.GetRaffleTickets)
			r.Patch("/tickets/{id}", h.UpdateTicket)
			r.Get("/tickets/{id}/payments", h.GetTicketPayments)
			r.Get("/dashboard/{raffleId}", h.GetDashboard)
			r.Get("/dashboard/wallet/{raffleId}", h.GetWallet)

			// Administrator routes
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin(gate))

				r.Post("/auth/users", h.CreateUser)
				r.Post("/raffles", h.CreateRaffle)
				r.Patch("/raffles/{id}/status", h.SetRaffleStatus)
			})
		})
	})

	if opts.StaticDir != "" {
		r.Get("/*", spaHandler(opts.StaticDir))
	}

	return r
}

// explicitOrigins reports whether credentials may be shared with the
// configured origins. Browsers reject credentials paired with a wildcard.
func explicitOrigins(origins []string) bool {
	if len(origins) == 0 {
		return false
	}
	for _, o := range origins {
		if o == "*" {
			return false
		}
	}
	return true
}

// spaHandler serves files from dir and falls back to index.html for client
// side routes.
func spaHandler(dir string) http.HandlerFunc {
	fs := http.FileServer(http.Dir(dir))
	index := filepath.Join(dir, "index.html")

	return func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") {
			http.NotFound(w, r)
			return
		}

		path := filepath.Join(dir, filepath.FromSlash(filepath.Clean("/"+r.URL.Path)))
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			fs.ServeHTTP(w, r)
			return
		}
		http.ServeFile(w, r, index)
	}
}
