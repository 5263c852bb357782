package domain

import "errors"

// ErrNotFound is returned by repo functions when the requested row does not
// exist in the database. Services either propagate it (handlers map it to
// HTTP 404) or translate it into a more specific Rejection.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. missing tariff name, non-positive rate).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrSpaceUnavailable is returned by SpaceRepo.ConditionalClaim when the
// space exists but its availability CAS failed — another caller won the race.
// The registry translates it to KindSpaceOccupied or moves to the next
// candidate, depending on the claim path.
var ErrSpaceUnavailable = errors.New("space unavailable")

// ErrDuplicateOpenTrip is returned by TripRepo.Insert when the partial unique
// index on open plates rejects the row: an OPEN trip for the plate already
// exists. The lifecycle manager translates it to KindDuplicateEntry, so the
// advisory pre-check and the store constraint surface identically.
var ErrDuplicateOpenTrip = errors.New("open trip already exists for plate")

// Kind identifies one reason from the closed set of business refusals the
// parking core can produce. Kinds are part of the API contract: handlers put
// them verbatim into error response bodies so clients can branch on them.
type Kind string

const (
	KindInvalidPlateFormat Kind = "INVALID_PLATE_FORMAT"
	KindDuplicateEntry     Kind = "DUPLICATE_ENTRY"
	KindFullCapacity       Kind = "FULL_CAPACITY"
	KindInvalidSpace       Kind = "INVALID_SPACE"
	KindSpaceOccupied      Kind = "SPACE_OCCUPIED"
	KindNoSpaceAvailable   Kind = "NO_SPACE_AVAILABLE"
	KindNotFound           Kind = "NOT_FOUND"
	KindStoreUnavailable   Kind = "STORE_UNAVAILABLE"
)

// Rejection is a typed business-rule refusal. It crosses the service boundary
// as a value, never as a panic, so every caller is forced to handle each kind
// explicitly. Rejections other than KindStoreUnavailable are terminal for the
// request: retrying without changing the input cannot succeed.
type Rejection struct {
	Kind    Kind
	Message string
}

// Error implements the error interface.
func (r *Rejection) Error() string {
	return string(r.Kind) + ": " + r.Message
}

// Reject builds a Rejection with the given kind and human-readable message.
func Reject(kind Kind, message string) *Rejection {
	return &Rejection{Kind: kind, Message: message}
}

// AsRejection unwraps err into a *Rejection if one is anywhere in its chain.
func AsRejection(err error) (*Rejection, bool) {
	var r *Rejection
	if errors.As(err, &r) {
		return r, true
	}
	return nil, false
}

// IsKind reports whether err carries a Rejection of the given kind.
func IsKind(err error, kind Kind) bool {
	if r, ok := AsRejection(err); ok {
		return r.Kind == kind
	}
	return false
}
