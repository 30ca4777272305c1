package domain

import "time"

// Reservation lifecycle. Active is the only non-terminal status; once a
// reservation leaves active it never changes again.
const (
	ReservationActive    = "active"
	ReservationCommitted = "committed"
	ReservationCancelled = "cancelled"
	ReservationExpired   = "expired"
)

// Order statuses. Orders start CONFIRMED (they only exist after a successful
// commit) and move forward from there.
const (
	OrderConfirmed = "CONFIRMED"
	OrderShipped   = "SHIPPED"
	OrderDelivered = "DELIVERED"
	OrderCancelled = "CANCELLED"
)

type Product struct {
	ID             string  `db:"product_id" json:"product_id"`
	Name           string  `db:"name" json:"name"`
	Description    string  `db:"description" json:"description,omitempty"`
	Price          float64 `db:"price" json:"price"`
	TotalStock     int     `db:"total_stock" json:"total_stock"`
	AvailableStock int     `db:"available_stock" json:"available_stock"`
	ReservedStock  int     `db:"reserved_stock" json:"reserved_stock"`
	CreatedAt      string  `db:"created_at" json:"created_at"`
	UpdatedAt      string  `db:"updated_at" json:"updated_at,omitempty"`
}

// Reservation is a time-bounded hold against product stock. The in-memory
// registry owns the authoritative copy while status == active; the
// reservations table is a write-behind mirror for history and recovery.
type Reservation struct {
	ID        string    `json:"reservation_id"`
	UserID    string    `json:"user_id"`
	ProductID string    `json:"product_id"`
	Quantity  int       `json:"quantity"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
	// UnitPrice is snapshotted at creation so the hold is immune to price
	// changes made while it is open.
	UnitPrice float64 `json:"unit_price"`
}

func (r *Reservation) ExpiredBy(now time.Time) bool {
	return r.ExpiresAt.Before(now)
}

// Order is created exactly once per committed reservation and is immutable
// afterwards except for status/shipped_at.
type Order struct {
	ID              string     `json:"order_id"`
	ReservationID   string     `json:"reservation_id"`
	UserID          string     `json:"user_id"`
	ProductID       string     `json:"product_id"`
	Quantity        int        `json:"quantity"`
	UnitPrice       float64    `json:"unit_price"`
	TotalAmount     float64    `json:"total_amount"`
	Status          string     `json:"status"`
	PaymentID       string     `json:"payment_id"`
	ShippingAddress string     `json:"shipping_address,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	ShippedAt       *time.Time `json:"shipped_at"`
}

// StockChange is one manual adjustment of a product's total stock, kept for
// the /products/:id/history view.
type StockChange struct {
	ProductID       string `db:"product_id" json:"product_id"`
	Delta           int    `db:"delta" json:"delta"`
	Reason          string `db:"reason" json:"reason"`
	TotalBefore     int    `db:"total_before" json:"total_before"`
	AvailableBefore int    `db:"available_before" json:"available_before"`
	TotalAfter      int    `db:"total_after" json:"total_after"`
	AvailableAfter  int    `db:"available_after" json:"available_after"`
	CreatedAt       string `db:"created_at" json:"created_at"`
}

// AuditEvent is one best-effort audit record of a state transition.
type AuditEvent struct {
	ID         string `db:"id" json:"id"`
	EventType  string `db:"event_type" json:"event_type"`
	EntityType string `db:"entity_type" json:"entity_type"`
	EntityID   string `db:"entity_id" json:"entity_id"`
	UserID     string `db:"user_id" json:"user_id,omitempty"`
	Changes    string `db:"changes_json" json:"changes"`
	CreatedAt  string `db:"created_at" json:"created_at"`
}
