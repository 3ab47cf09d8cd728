package utils

import (
	"fmt"
	"strconv"
)

// TicketNumber formats the i-th ticket of a raffle as a two-digit string
func TicketNumber(i int) string {
	return fmt.Sprintf("%02d", i)
}

// TicketNumbers returns the full ticket range "00".."n-1"
func TicketNumbers(n int) []string {
	numbers := make([]string, 0, n)
	for i := 0; i < n; i++ {
		numbers = append(numbers, TicketNumber(i))
	}
	return numbers
}

// ParseID parses a positive numeric identifier from a path segment
func ParseID(s string) (int64, bool) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
