package policy

import (
	"math"
	"time"
)

// Late-fee schedule. A 2-day grace period follows the due date; after that
// the per-day rate climbs the longer the book stays out, and the total is
// capped regardless of duration.
const (
	GraceDays  = 2
	MaxLateFee = 100.0

	tier1Days = 7  // days 1-7 of lateness
	tier2Days = 14 // days 8-14 of lateness
	tier1Rate = 2.0
	tier2Rate = 3.0
	tier3Rate = 5.0
)

// FeeEstimate is the result of a late-fee calculation. DaysOverdue counts
// billable days past the grace period, not days past the due date.
type FeeEstimate struct {
	DaysOverdue int     `json:"days_overdue"`
	LateFee     float64 `json:"late_fee"`
}

// CalculateLateFee computes the fee owed for returning a book on returnDate
// given its dueDate. A zero returnDate means the book has not been returned
// yet; no fee accrues until an actual return event. The returned fee is
// always in [0, MaxLateFee].
func CalculateLateFee(dueDate, returnDate time.Time) FeeEstimate {
	if returnDate.IsZero() || !returnDate.After(dueDate) {
		return FeeEstimate{}
	}

	effectiveDue := dueDate.Add(GraceDays * 24 * time.Hour)
	if !returnDate.After(effectiveDue) {
		return FeeEstimate{}
	}

	// Fractional days round up: any part of a day counts as a full day.
	lateDays := int(math.Ceil(returnDate.Sub(effectiveDue).Hours() / 24))

	var fee float64
	for day := 1; day <= lateDays && fee < MaxLateFee; day++ {
		switch {
		case day <= tier1Days:
			fee += tier1Rate
		case day <= tier2Days:
			fee += tier2Rate
		default:
			fee += tier3Rate
		}
	}
	if fee > MaxLateFee {
		fee = MaxLateFee
	}

	return FeeEstimate{DaysOverdue: lateDays, LateFee: fee}
}
