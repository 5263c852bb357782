package domain

import "time"

// Space is a physical parking slot. Available is the single source of truth
// for occupancy: no two OPEN trips may reference the same space id at once,
// and "assigned to an OPEN trip" and "available == false" are equivalent at
// all times. Spaces are created by the seed migration or auto-provisioned on
// demand; they are never deleted, only toggled.
type Space struct {
	ID         int64     `json:"id"`
	Code       string    `json:"code"` // human-readable label, e.g. "A-12"
	CategoryID int64     `json:"category_id"`
	Available  bool      `json:"available"`
	CreatedAt  time.Time `json:"created_at"`
}

// SpaceFilter narrows space listings. Nil fields mean "don't filter".
type SpaceFilter struct {
	CategoryID *int64
	Available  *bool
}
