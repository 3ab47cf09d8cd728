package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/25x8/raffledesk/internal/raffledesk/middleware"
	"github.com/25x8/raffledesk/internal/raffledesk/models"
	"github.com/25x8/raffledesk/internal/raffledesk/service"
	"github.com/25x8/raffledesk/internal/raffledesk/utils"
	"github.com/go-chi/chi/v5"
)

// Pinger reports whether the store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler handles all HTTP requests
type Handler struct {
	Svcs     *service.Services
	Store    Pinger
	TokenTTL time.Duration
	Logger   *slog.Logger
}

// NewHandler creates a new handler
func NewHandler(svcs *service.Services, store Pinger, tokenTTL time.Duration, logger *slog.Logger) *Handler {
	return &Handler{
		Svcs:     svcs,
		Store:    store,
		TokenTTL: tokenTTL,
		Logger:   logger,
	}
}

type errorResponse struct {
	Error  string   `json:"error"`
	Fields []string `json:"fields,omitempty"`
}

type messageResponse struct {
	ID      int64  `json:"id,omitempty"`
	Message string `json:"message"`
}

type ticketUpdateResponse struct {
	Message   string              `json:"message"`
	Status    models.TicketStatus `json:"status"`
	TotalPaid float64             `json:"total_paid"`
}

// Login handles user login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if !h.decode(w, r, &req) {
		return
	}

	res, err := h.Svcs.Auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	middleware.SetAuthCookie(w, res.Token, h.TokenTTL)
	w.Header().Set("Authorization", "Bearer "+res.Token)
	h.writeJSON(w, http.StatusOK, res)
}

// CreateUser registers a staff account
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	grant, ok := middleware.GrantFrom(r.Context())
	if !ok {
		h.writeError(w, r, models.ErrAuthorization)
		return
	}

	var req models.NewUser
	if !h.decode(w, r, &req) {
		return
	}

	id, err := h.Svcs.Auth.CreateUser(r.Context(), grant, req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, messageResponse{ID: id, Message: "User created"})
}

// ListRaffles returns every raffle
func (h *Handler) ListRaffles(w http.ResponseWriter, r *http.Request) {
	raffles, err := h.Svcs.Raffles.List(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if raffles == nil {
		raffles = []models.Raffle{}
	}
	h.writeJSON(w, http.StatusOK, raffles)
}

// GetRaffle returns one raffle
func (h *Handler) GetRaffle(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	raffle, err := h.Svcs.Raffles.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, raffle)
}

// CreateRaffle creates a raffle with its tickets
func (h *Handler) CreateRaffle(w http.ResponseWriter, r *http.Request) {
	grant, ok := middleware.GrantFrom(r.Context())
	if !ok {
		h.writeError(w, r, models.ErrAuthorization)
		return
	}

	var req models.NewRaffle
	if !h.decode(w, r, &req) {
		return
	}

	id, err := h.Svcs.Raffles.Create(r.Context(), grant, req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, messageResponse{ID: id, Message: "Raffle created with 100 tickets"})
}

// SetRaffleStatus activates or finishes a raffle
func (h *Handler) SetRaffleStatus(w http.ResponseWriter, r *http.Request) {
	grant, ok := middleware.GrantFrom(r.Context())
	if !ok {
		h.writeError(w, r, models.ErrAuthorization)
		return
	}

	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.Svcs.Raffles.SetStatus(r.Context(), grant, id, req.Status); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, messageResponse{Message: "Raffle status updated"})
}

// GetRaffleTickets returns the tickets of a raffle
func (h *Handler) GetRaffleTickets(w http.ResponseWriter, r *http.Request) {
	raffleID, ok := h.pathID(w, r, "raffleId")
	if !ok {
		return
	}

	tickets, err := h.Svcs.Tickets.ListByRaffle(r.Context(), raffleID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if tickets == nil {
		tickets = []models.Ticket{}
	}
	h.writeJSON(w, http.StatusOK, tickets)
}

// UpdateTicket sells a ticket, records a payment or edits its customer
func (h *Handler) UpdateTicket(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	var req models.TicketUpdate
	if !h.decode(w, r, &req) {
		return
	}

	res, err := h.Svcs.Tickets.ApplyPayment(r.Context(), id, req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, ticketUpdateResponse{
		Message:   "Ticket updated",
		Status:    res.Status,
		TotalPaid: res.TotalPaid,
	})
}

// GetTicketPayments returns the payment ledger of a ticket
func (h *Handler) GetTicketPayments(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	payments, err := h.Svcs.Tickets.Payments(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if payments == nil {
		payments = []models.Payment{}
	}
	h.writeJSON(w, http.StatusOK, payments)
}

// GetDashboard returns the statistics of a raffle
func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	raffleID, ok := h.pathID(w, r, "raffleId")
	if !ok {
		return
	}

	d, err := h.Svcs.Reports.Dashboard(r.Context(), raffleID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, d)
}

// GetWallet returns the per-customer ledger of a raffle
func (h *Handler) GetWallet(w http.ResponseWriter, r *http.Request) {
	raffleID, ok := h.pathID(w, r, "raffleId")
	if !ok {
		return
	}

	rows, err := h.Svcs.Reports.Wallet(r.Context(), raffleID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, rows)
}

// Health reports whether the store answers
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.Store.Ping(ctx); err != nil {
		h.Logger.Error("Health check failed", "error", err)
		h.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed JSON body"})
		return false
	}
	return true
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request, param string) (int64, bool) {
	id, ok := utils.ParseID(chi.URLParam(r, param))
	if !ok {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid " + param, Fields: []string{param}})
		return 0, false
	}
	return id, true
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.Logger.Error("Failed to encode response", "error", err)
	}
}

// writeError maps the error taxonomy onto HTTP status codes
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	resp := errorResponse{Error: err.Error()}
	var status int

	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		status = http.StatusBadRequest
		resp.Error = verr.Message
		resp.Fields = verr.Fields
	case errors.Is(err, models.ErrValidation), errors.Is(err, models.ErrInvalidPayment):
		status = http.StatusBadRequest
	case errors.Is(err, models.ErrAuthentication):
		status = http.StatusUnauthorized
	case errors.Is(err, models.ErrAuthorization):
		status = http.StatusForbidden
	case errors.Is(err, models.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, models.ErrConflict):
		status = http.StatusConflict
	default:
		status = http.StatusInternalServerError
		resp.Error = "internal server error"
		h.Logger.Error("Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}

	h.writeJSON(w, status, resp)
}
