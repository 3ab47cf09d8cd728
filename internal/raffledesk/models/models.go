package models

import (
	"time"
)

// TicketsPerRaffle is the fixed size of every raffle's ticket pool.
const TicketsPerRaffle = 100

// User represents a staff account
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// Raffle represents a pool of numbered tickets sold at a fixed price
type Raffle struct {
	ID               int64        `json:"id"`
	Name             string       `json:"name"`
	Description      string       `json:"description"`
	PrizeCost        float64      `json:"prize_cost"`
	TicketValue      float64      `json:"ticket_value"`
	DrawDate         string       `json:"draw_date"`
	LotteryReference string       `json:"lottery_reference"`
	Status           RaffleStatus `json:"status"`
	CreatedAt        time.Time    `json:"created_at"`
}

// Ticket represents one two-digit number within a raffle
type Ticket struct {
	ID            int64        `json:"id"`
	RaffleID      int64        `json:"raffle_id"`
	Number        string       `json:"number"`
	Status        TicketStatus `json:"status"`
	CustomerName  *string      `json:"customer_name"`
	CustomerPhone *string      `json:"customer_phone"`
	TotalPaid     float64      `json:"total_paid"`
}

// TicketAccount is a ticket joined with the pricing of its raffle
type TicketAccount struct {
	Ticket
	TicketValue float64
	RaffleName  string
}

// Payment is an append-only ledger entry against a ticket
type Payment struct {
	ID       int64     `json:"id"`
	TicketID int64     `json:"ticket_id"`
	Amount   float64   `json:"amount"`
	PaidAt   time.Time `json:"payment_date"`
}

// Session is the authenticated identity carried by a session credential
type Session struct {
	UserID   int64  `json:"id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// AdminGrant is proof that a session passed the administrator check.
// Admin-only operations take it as a parameter.
type AdminGrant struct {
	UserID   int64
	Username string
}

// LoginResult is returned to the client after a successful login
type LoginResult struct {
	Token string  `json:"token"`
	User  Session `json:"user"`
}

// NewUser holds the input of a user creation
type NewUser struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
	Role     Role   `json:"role" validate:"required,oneof=admin seller"`
}

// NewRaffle holds the input of a raffle creation
type NewRaffle struct {
	Name             string  `json:"name" validate:"required"`
	Description      string  `json:"description"`
	PrizeCost        float64 `json:"prize_cost" validate:"required,gt=0"`
	TicketValue      float64 `json:"ticket_value" validate:"required,gt=0"`
	DrawDate         string  `json:"draw_date" validate:"required,datetime=2006-01-02"`
	LotteryReference string  `json:"lottery_reference"`
}

// TicketUpdate is a sale, payment or metadata edit targeting one ticket.
// Absent fields keep the ticket's current values.
type TicketUpdate struct {
	CustomerName  *string  `json:"customer_name"`
	CustomerPhone *string  `json:"customer_phone"`
	Status        *string  `json:"status" validate:"omitempty,oneof=available pending paid"`
	PaymentAmount *float64 `json:"payment_amount" validate:"omitempty,gte=0"`
}

// TicketChange is the resolved outcome of a TicketUpdate, ready to persist
type TicketChange struct {
	CustomerName  *string
	CustomerPhone *string
	Status        TicketStatus
	TotalPaid     float64
	// PaymentAmount is appended to the ledger when positive.
	PaymentAmount float64
}

// PaymentResult is the resulting state of a ticket after an update
type PaymentResult struct {
	Status    TicketStatus `json:"status"`
	TotalPaid float64      `json:"total_paid"`
}

// Stats holds the collection statistics of one raffle
type Stats struct {
	TotalTickets         int     `json:"total_tickets"`
	SoldCount            int     `json:"sold_count"`
	PaidCount            int     `json:"paid_count"`
	ProjectedRevenue     float64 `json:"projected_revenue"`
	TotalSold            float64 `json:"total_sold"`
	TotalCollected       float64 `json:"total_collected"`
	TotalPending         float64 `json:"total_pending"`
	OccupationPercentage float64 `json:"occupation_percentage"`
	ProjectedUtility     float64 `json:"projected_utility"`
	RealUtility          float64 `json:"real_utility"`
}

// PendingCustomer groups a buyer's tickets that still owe money
type PendingCustomer struct {
	CustomerName  *string  `json:"customer_name"`
	CustomerPhone *string  `json:"customer_phone"`
	Numbers       []string `json:"numbers"`
	Balance       float64  `json:"balance"`
}

// PaidCustomer groups a buyer's fully paid tickets
type PaidCustomer struct {
	CustomerName  *string  `json:"customer_name"`
	CustomerPhone *string  `json:"customer_phone"`
	Numbers       []string `json:"numbers"`
}

// Dashboard is the per-raffle report
type Dashboard struct {
	Raffle           Raffle            `json:"raffle"`
	Stats            Stats             `json:"stats"`
	PendingCustomers []PendingCustomer `json:"pending_customers"`
	PaidCustomers    []PaidCustomer    `json:"paid_customers"`
}

// WalletRow is one buyer's position across a raffle
type WalletRow struct {
	CustomerName  *string      `json:"customer_name"`
	CustomerPhone *string      `json:"customer_phone"`
	Numbers       []string     `json:"numbers"`
	TicketCount   int          `json:"ticket_count"`
	TotalPurchase float64      `json:"total_purchase"`
	TotalPaid     float64      `json:"total_paid"`
	Balance       float64      `json:"balance"`
	Status        TicketStatus `json:"status"`
}

// TicketPaidEvent describes a ticket that has just been settled
type TicketPaidEvent struct {
	RaffleID      int64
	RaffleName    string
	TicketID      int64
	Number        string
	CustomerName  *string
	CustomerPhone *string
	TotalPaid     float64
}
