package models

import (
	"fmt"
	"math"
)

// Role is a staff role
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleSeller Role = "seller"
)

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleSeller
}

// ParseRole converts s into a Role
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", NewValidationError(fmt.Sprintf("unknown role %q", s), "role")
	}
	return r, nil
}

// RaffleStatus is the lifecycle state of a raffle
type RaffleStatus string

const (
	RaffleActive   RaffleStatus = "active"
	RaffleFinished RaffleStatus = "finished"
)

// Valid reports whether s is a known raffle status
func (s RaffleStatus) Valid() bool {
	return s == RaffleActive || s == RaffleFinished
}

// ParseRaffleStatus converts s into a RaffleStatus
func ParseRaffleStatus(s string) (RaffleStatus, error) {
	st := RaffleStatus(s)
	if !st.Valid() {
		return "", NewValidationError(fmt.Sprintf("invalid raffle status %q", s), "status")
	}
	return st, nil
}

// TicketStatus is the sale state of a ticket
type TicketStatus string

const (
	TicketAvailable TicketStatus = "available"
	TicketPending   TicketStatus = "pending"
	TicketPaid      TicketStatus = "paid"
)

// Valid reports whether s is a known ticket status
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketAvailable, TicketPending, TicketPaid:
		return true
	}
	return false
}

// ParseTicketStatus converts s into a TicketStatus
func ParseTicketStatus(s string) (TicketStatus, error) {
	st := TicketStatus(s)
	if !st.Valid() {
		return "", NewValidationError(fmt.Sprintf("invalid ticket status %q", s), "status")
	}
	return st, nil
}

// SettlementStatus derives the payment status of an amount paid against an
// amount due. Both the payment engine and the wallet report use it.
func SettlementStatus(paid, due float64) TicketStatus {
	if RoundCents(paid) >= RoundCents(due) {
		return TicketPaid
	}
	return TicketPending
}

// RoundCents rounds a currency amount to two decimals
func RoundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
