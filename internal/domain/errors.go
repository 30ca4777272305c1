package domain

import "errors"

// Expected, user-facing outcomes of engine operations. Handlers map these to
// HTTP statuses; anything else bubbling out of the engine is an internal
// fault and surfaces as service-unavailable.
var (
	ErrInsufficientStock   = errors.New("insufficient stock")
	ErrProductNotFound     = errors.New("product not found")
	ErrReservationNotFound = errors.New("reservation not found")
	ErrNotActive           = errors.New("reservation not active")
	ErrReservationExpired  = errors.New("reservation expired")
	ErrOrderNotFound       = errors.New("order not found")
)
