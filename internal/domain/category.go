package domain

// Category is an enumerated vehicle class (sedan, SUV, motorcycle).
// Read-only reference data: rows are created by migration and never mutated
// by the application. Capacity ceilings deliberately do not live here — they
// are injected configuration (see CapacityGroup) so the limit can be tuned,
// and tested, without touching reference data.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Well-known category ids, matching the seed migration.
const (
	CategorySedan      int64 = 1
	CategorySUV        int64 = 2
	CategoryMotorcycle int64 = 3
)

// CapacityGroup defines one admission pool: the categories that share it and
// the maximum number of simultaneously OPEN trips it admits. Sedans and SUVs
// share a pool; motorcycles have their own. Ceilings are injected
// configuration, never derived from space inventory — inventory may grow past
// the nominal ceiling through auto-provisioning history, and tests need small
// ceilings without touching global state.
type CapacityGroup struct {
	// Name identifies the pool in rejection messages, e.g. "autos".
	Name string

	// CategoryIDs are the vehicle categories counted against this pool.
	CategoryIDs []int64

	// Ceiling is the maximum number of concurrently OPEN trips.
	Ceiling int
}
