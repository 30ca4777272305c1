package repos

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"stocklock/internal/domain"
)

// ReservationRepo is the persisted mirror of the in-memory registry. It is
// key-based CRUD only; liveness decisions are never made from these rows
// while the process is running.
type ReservationRepo struct{ db *sqlx.DB }

func NewReservationRepo(db *sqlx.DB) *ReservationRepo { return &ReservationRepo{db: db} }

type reservationRow struct {
	ID        string  `db:"reservation_id"`
	UserID    string  `db:"user_id"`
	ProductID string  `db:"product_id"`
	Quantity  int     `db:"quantity"`
	Status    string  `db:"status"`
	CreatedAt string  `db:"created_at"`
	ExpiresAt string  `db:"expires_at"`
	UnitPrice float64 `db:"unit_price"`
}

func (row reservationRow) toDomain() domain.Reservation {
	return domain.Reservation{
		ID:        row.ID,
		UserID:    row.UserID,
		ProductID: row.ProductID,
		Quantity:  row.Quantity,
		Status:    row.Status,
		CreatedAt: parseTime(row.CreatedAt),
		ExpiresAt: parseTime(row.ExpiresAt),
		UnitPrice: row.UnitPrice,
	}
}

func (r *ReservationRepo) Insert(res *domain.Reservation) error {
	_, err := r.db.Exec(`
	  INSERT INTO reservations(reservation_id, user_id, product_id, quantity, status, created_at, expires_at, unit_price)
	  VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, res.ID, res.UserID, res.ProductID, res.Quantity, res.Status,
		formatTime(res.CreatedAt), formatTime(res.ExpiresAt), res.UnitPrice)
	return err
}

// MarkTerminal records the final status of a reservation; reason is only
// stored for cancellations.
func (r *ReservationRepo) MarkTerminal(reservationID, status, reason string) error {
	if reason != "" {
		_, err := r.db.Exec(`UPDATE reservations SET status = ?, cancel_reason = ? WHERE reservation_id = ?`,
			status, reason, reservationID)
		return err
	}
	_, err := r.db.Exec(`UPDATE reservations SET status = ? WHERE reservation_id = ?`, status, reservationID)
	return err
}

func (r *ReservationRepo) Get(reservationID string) (*domain.Reservation, error) {
	var row reservationRow
	err := r.db.Get(&row, `
		SELECT reservation_id, user_id, product_id, quantity, status, created_at, expires_at, unit_price
		FROM reservations WHERE reservation_id = ?
	`, reservationID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrReservationNotFound
	}
	if err != nil {
		return nil, err
	}
	res := row.toDomain()
	return &res, nil
}

// ListByStatus is used at startup to rehydrate the registry from rows the
// previous process left active.
func (r *ReservationRepo) ListByStatus(status string) ([]domain.Reservation, error) {
	var rows []reservationRow
	err := r.db.Select(&rows, `
		SELECT reservation_id, user_id, product_id, quantity, status, created_at, expires_at, unit_price
		FROM reservations WHERE status = ?
	`, status)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Reservation, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}
