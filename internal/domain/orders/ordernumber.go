package orders

import (
	"fmt"
	"regexp"
	"time"
)

// Order numbers are date-scoped sequences: ORD-YYYYMMDD-NNNN. The
// sequence restarts every day and is allocated from a row-locked
// per-day counter inside the registration transaction, so concurrent
// creations cannot mint the same number.

var orderNumberPattern = regexp.MustCompile(`^ORD-\d{8}-\d{4}$`)

func FormatOrderNumber(day time.Time, seq int) string {
	return fmt.Sprintf("ORD-%s-%04d", day.UTC().Format("20060102"), seq)
}

func ValidOrderNumber(value string) bool {
	return orderNumberPattern.MatchString(value)
}
