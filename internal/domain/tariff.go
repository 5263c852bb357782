package domain

import "time"

// BillingMode selects how a tariff converts parked minutes into money.
type BillingMode string

const (
	PerMinute   BillingMode = "PER_MINUTE"
	PerHour     BillingMode = "PER_HOUR"
	PerDay      BillingMode = "PER_DAY"
	PerFraction BillingMode = "PER_FRACTION"
)

// ValidBillingMode reports whether m is one of the known billing modes.
func ValidBillingMode(m BillingMode) bool {
	switch m {
	case PerMinute, PerHour, PerDay, PerFraction:
		return true
	}
	return false
}

// Tariff is a fee schedule for one vehicle category. Several tariffs may
// exist per category over time; only active ones are eligible for new trips.
// Once a trip references a tariff id that reference is a historical snapshot:
// deactivating or superseding the tariff later must not change what an
// already-open trip is charged.
type Tariff struct {
	ID         int64       `json:"id"`
	CategoryID int64       `json:"category_id"`
	Name       string      `json:"name"`
	Mode       BillingMode `json:"billing_mode"`

	// FractionMinutes is the block size for PerFraction tariffs (e.g. 15).
	// Ignored by the other modes.
	FractionMinutes int `json:"fraction_minutes,omitempty"`

	Rate      float64    `json:"rate"`
	Active    bool       `json:"active"`
	ValidFrom time.Time  `json:"valid_from"`
	ValidTo   *time.Time `json:"valid_to,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// DefaultFractionMinutes is used when a PerFraction tariff was stored without
// an explicit block size.
const DefaultFractionMinutes = 15
