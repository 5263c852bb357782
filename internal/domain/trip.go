// Package domain contains the core data types for the Parqueo API.
// This package has zero external dependencies beyond uuid and is imported by
// every other internal package (billing, repo, service, handler).
package domain

import (
	"time"

	"github.com/google/uuid"
)

// TripStatus is the lifecycle state of a parking trip.
// OPEN is entered only when an entry is registered; CLOSED is terminal.
type TripStatus string

const (
	TripOpen   TripStatus = "OPEN"
	TripClosed TripStatus = "CLOSED"
)

// Trip represents one vehicle's stay in the lot, from entry to exit.
// A trip is the central aggregate: while OPEN it exclusively owns its SpaceID
// claim. DurationMinutes and Amount are set atomically with the CLOSED
// transition and never before; a closed trip is never reopened or edited.
type Trip struct {
	ID         int64      `json:"id"`
	Plate      string     `json:"plate"`
	CategoryID int64      `json:"category_id"`
	SpaceID    int64      `json:"space_id"`

	// TariffID is the tariff snapshotted at entry time. It stays valid
	// evidence of "the tariff in effect at entry" even if that tariff is
	// later deactivated. Nil when no tariff was active at entry; the exit
	// flow then falls back to the currently active tariff or the emergency
	// rate. On close it is overwritten with the tariff actually charged.
	TariffID *int64 `json:"tariff_id,omitempty"`

	EnteredAt time.Time  `json:"entered_at"`
	ExitedAt  *time.Time `json:"exited_at,omitempty"` // nil while OPEN
	Status    TripStatus `json:"status"`

	DurationMinutes *int64   `json:"duration_minutes,omitempty"`
	Amount          *float64 `json:"amount,omitempty"`

	OpenedBy uuid.UUID  `json:"opened_by"`
	ClosedBy *uuid.UUID `json:"closed_by,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// TripDraft carries the fields needed to open a new trip. The repo stamps
// id, status (OPEN) and created_at; everything else comes from the lifecycle
// manager after the space claim and tariff snapshot have resolved.
type TripDraft struct {
	Plate      string
	CategoryID int64
	SpaceID    int64
	TariffID   *int64
	EnteredAt  time.Time
	OpenedBy   uuid.UUID
}

// TripClosure carries the fields stamped onto a trip when it transitions to
// CLOSED. AppliedTariffID may differ from the entry-time snapshot when the
// exit flow had to take a fallback tariff.
type TripClosure struct {
	ExitedAt        time.Time
	DurationMinutes int64
	Amount          float64
	AppliedTariffID *int64
	ClosedBy        uuid.UUID
}

// ExitResult is returned by a successful exit registration.
type ExitResult struct {
	Trip            Trip    `json:"trip"`
	DurationMinutes int64   `json:"duration_minutes"`
	Amount          float64 `json:"amount"`
}

// ExitPreview is the read-only quote for what an exit would cost right now.
// It must match the amount RegisterExit would charge if invoked immediately
// after, given no other state change.
type ExitPreview struct {
	Plate           string  `json:"plate"`
	DurationMinutes int64   `json:"duration_minutes"`
	Amount          float64 `json:"amount"`
	TariffName      string  `json:"tariff_name"`
}
