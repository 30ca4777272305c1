package repos

import (
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"stocklock/internal/domain"
)

type OrderRepo struct{ db *sqlx.DB }

func NewOrderRepo(db *sqlx.DB) *OrderRepo { return &OrderRepo{db: db} }

type orderRow struct {
	ID              string         `db:"order_id"`
	ReservationID   string         `db:"reservation_id"`
	UserID          string         `db:"user_id"`
	ProductID       string         `db:"product_id"`
	Quantity        int            `db:"quantity"`
	UnitPrice       float64        `db:"unit_price"`
	TotalAmount     float64        `db:"total_amount"`
	Status          string         `db:"status"`
	PaymentID       string         `db:"payment_id"`
	ShippingAddress sql.NullString `db:"shipping_address"`
	CreatedAt       string         `db:"created_at"`
	ShippedAt       sql.NullString `db:"shipped_at"`
}

func (row orderRow) toDomain() domain.Order {
	o := domain.Order{
		ID:              row.ID,
		ReservationID:   row.ReservationID,
		UserID:          row.UserID,
		ProductID:       row.ProductID,
		Quantity:        row.Quantity,
		UnitPrice:       row.UnitPrice,
		TotalAmount:     row.TotalAmount,
		Status:          row.Status,
		PaymentID:       row.PaymentID,
		ShippingAddress: row.ShippingAddress.String,
		CreatedAt:       parseTime(row.CreatedAt),
	}
	if row.ShippedAt.Valid {
		t := parseTime(row.ShippedAt.String)
		o.ShippedAt = &t
	}
	return o
}

const orderColumns = `order_id, reservation_id, user_id, product_id, quantity,
       unit_price, total_amount, status, payment_id, shipping_address, created_at, shipped_at`

func (r *OrderRepo) Create(o *domain.Order) error {
	_, err := r.db.Exec(`
	  INSERT INTO orders(order_id, reservation_id, user_id, product_id, quantity, unit_price, total_amount, status, payment_id, shipping_address, created_at)
	  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, o.ID, o.ReservationID, o.UserID, o.ProductID, o.Quantity, o.UnitPrice,
		o.TotalAmount, o.Status, o.PaymentID, o.ShippingAddress, formatTime(o.CreatedAt))
	return err
}

func (r *OrderRepo) Get(orderID string) (*domain.Order, error) {
	var row orderRow
	err := r.db.Get(&row, `SELECT `+orderColumns+` FROM orders WHERE order_id = ?`, orderID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	o := row.toDomain()
	return &o, nil
}

// List returns latest-first orders, optionally filtered to one user.
func (r *OrderRepo) List(userID string, limit int) ([]domain.Order, error) {
	if limit <= 0 || limit > 200 {
		limit = 200
	}
	var rows []orderRow
	var err error
	if userID != "" {
		err = r.db.Select(&rows, `SELECT `+orderColumns+` FROM orders WHERE user_id = ? ORDER BY created_at DESC LIMIT ?`, userID, limit)
	} else {
		err = r.db.Select(&rows, `SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC LIMIT ?`, limit)
	}
	if err != nil {
		return nil, err
	}
	out := make([]domain.Order, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

// UpdateStatus moves an order forward; shipped_at is stamped the first time
// the status becomes SHIPPED.
func (r *OrderRepo) UpdateStatus(orderID, status string) (*domain.Order, error) {
	var res sql.Result
	var err error
	if status == domain.OrderShipped {
		res, err = r.db.Exec(`
			UPDATE orders SET status = ?, shipped_at = COALESCE(shipped_at, ?) WHERE order_id = ?
		`, status, formatTime(time.Now()), orderID)
	} else {
		res, err = r.db.Exec(`UPDATE orders SET status = ? WHERE order_id = ?`, status, orderID)
	}
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, domain.ErrOrderNotFound
	}
	return r.Get(orderID)
}
