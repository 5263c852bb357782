// Package billing computes parking fees. It is pure: no I/O, no clock, no
// repo access — everything it needs arrives as arguments, which keeps the
// rounding rules trivially testable.
package billing

import (
	"math"

	"github.com/parqueo/backend/internal/domain"
)

// ComputeAmount maps a parked duration and a tariff to a monetary amount.
//
// Every mode rounds the time unit UP: one minute into a new hour owes the
// full hour. That is billing policy, not an implementation detail.
//
// The function never fails and never returns a negative amount:
//   - an unknown billing mode degrades to per-minute semantics
//   - a negative rate yields 0
//   - negative durations are treated as 0
func ComputeAmount(durationMinutes int64, tariff domain.Tariff) float64 {
	if durationMinutes < 0 {
		durationMinutes = 0
	}
	if tariff.Rate < 0 {
		return 0
	}

	var units int64
	switch tariff.Mode {
	case domain.PerHour:
		units = ceilDiv(durationMinutes, 60)
	case domain.PerDay:
		units = ceilDiv(durationMinutes, 24*60)
	case domain.PerFraction:
		block := int64(tariff.FractionMinutes)
		if block <= 0 {
			block = domain.DefaultFractionMinutes
		}
		units = ceilDiv(durationMinutes, block)
	default:
		// PerMinute and anything unrecognized.
		units = durationMinutes
	}

	return RoundMoney(float64(units) * tariff.Rate)
}

// RoundMoney rounds an amount half-up to 2 decimal places and clamps the
// result to be non-negative. All amounts leaving the billing layer pass
// through here exactly once.
func RoundMoney(amount float64) float64 {
	if amount <= 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0
	}
	return math.Round(amount*100) / 100
}

// ceilDiv returns ceil(n / d) for positive d.
func ceilDiv(n, d int64) int64 {
	return (n + d - 1) / d
}
