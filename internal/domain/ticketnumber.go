package domain

import (
	"fmt"
	"regexp"
	"strconv"
)

// Ticket numbers take the form INITIALS_YYNNN: two-letter employee initials,
// two-digit year, and a zero-padded sequence of at least three digits.
// Example: DB_26001.
var ticketNumberPattern = regexp.MustCompile(`^([A-Z]{2})_(\d{2})(\d{3,})$`)

// FormatTicketNumber renders a ticket number from its components
func FormatTicketNumber(initials string, year, sequence int) string {
	return fmt.Sprintf("%s_%02d%03d", initials, year, sequence)
}

// ParseTicketNumber splits a ticket number back into initials, two-digit
// year, and sequence. The number's own format is authoritative: assignment
// recomputes year/sequence/initials from it rather than trusting the row.
func ParseTicketNumber(number string) (initials string, year, sequence int, err error) {
	m := ticketNumberPattern.FindStringSubmatch(number)
	if m == nil {
		return "", 0, 0, fmt.Errorf("invalid ticket number format: %q", number)
	}
	year, _ = strconv.Atoi(m[2])
	sequence, err = strconv.Atoi(m[3])
	if err != nil {
		return "", 0, 0, fmt.Errorf("invalid ticket number sequence: %q", number)
	}
	return m[1], year, sequence, nil
}
