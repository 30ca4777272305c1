package repos

import (
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"stocklock/internal/domain"
)

// ProductRepo is the stock ledger. All three counters are mutated only
// through ConditionalReserve / ReleaseReservation / FinalizeSale / Adjust,
// never through read-then-write.
type ProductRepo struct{ db *sqlx.DB }

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

func (r *ProductRepo) Create(p *domain.Product) error {
	_, err := r.db.Exec(`
	  INSERT INTO products(product_id, name, description, price, total_stock, available_stock, reserved_stock, created_at)
	  VALUES (?, ?, ?, ?, ?, ?, 0, ?)
	`, p.ID, p.Name, p.Description, p.Price, p.TotalStock, p.TotalStock, formatTime(time.Now()))
	return err
}

func (r *ProductRepo) List() ([]domain.Product, error) {
	var out []domain.Product
	err := r.db.Select(&out, `
		SELECT product_id, name, COALESCE(description,'') AS description, price,
		       total_stock, available_stock, reserved_stock,
		       COALESCE(created_at,'') AS created_at, COALESCE(updated_at,'') AS updated_at
		FROM products ORDER BY name
	`)
	return out, err
}

func (r *ProductRepo) Get(productID string) (*domain.Product, error) {
	var p domain.Product
	err := r.db.Get(&p, `
		SELECT product_id, name, COALESCE(description,'') AS description, price,
		       total_stock, available_stock, reserved_stock,
		       COALESCE(created_at,'') AS created_at, COALESCE(updated_at,'') AS updated_at
		FROM products WHERE product_id = ?
	`, productID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ConditionalReserve atomically carves qty out of available_stock into
// reserved_stock, but only if available_stock >= qty. The single UPDATE with
// its WHERE guard is what makes concurrent reservations safe: sqlite
// serializes writers, and RowsAffected == 0 means the precondition failed
// with no mutation. Returns the product as it looks after the hold.
func (r *ProductRepo) ConditionalReserve(productID string, qty int) (*domain.Product, error) {
	res, err := r.db.Exec(`
		UPDATE products
		SET available_stock = available_stock - ?,
		    reserved_stock  = reserved_stock + ?,
		    updated_at      = ?
		WHERE product_id = ? AND available_stock >= ?
	`, qty, qty, formatTime(time.Now()), productID, qty)
	if err != nil {
		return nil, err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		// Distinguish a missing product from a thin one.
		if _, err := r.Get(productID); err != nil {
			return nil, err
		}
		return nil, domain.ErrInsufficientStock
	}
	return r.Get(productID)
}

// ReleaseReservation moves a previously reserved quantity back to
// available_stock. It always succeeds for a quantity that is actually
// reserved; the reserved_stock >= 0 CHECK catches double releases.
func (r *ProductRepo) ReleaseReservation(productID string, qty int) error {
	_, err := r.db.Exec(`
		UPDATE products
		SET reserved_stock  = reserved_stock - ?,
		    available_stock = available_stock + ?,
		    updated_at      = ?
		WHERE product_id = ?
	`, qty, qty, formatTime(time.Now()), productID)
	return err
}

// FinalizeSale permanently removes a committed quantity: reserved_stock and
// total_stock both shrink, available_stock is untouched (it was already
// decremented when the hold was taken).
func (r *ProductRepo) FinalizeSale(productID string, qty int) error {
	_, err := r.db.Exec(`
		UPDATE products
		SET reserved_stock = reserved_stock - ?,
		    total_stock    = total_stock - ?,
		    updated_at     = ?
		WHERE product_id = ?
	`, qty, qty, formatTime(time.Now()), productID)
	return err
}

// Adjust applies a manual delta to total and available stock (restock or
// shrinkage) and records a stock_history row with before/after counters.
func (r *ProductRepo) Adjust(productID string, delta int, reason string) (*domain.Product, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var before domain.Product
	err = tx.Get(&before, `
		SELECT product_id, name, price, total_stock, available_stock, reserved_stock
		FROM products WHERE product_id = ?
	`, productID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}

	if _, err := tx.Exec(`
		UPDATE products
		SET total_stock     = total_stock + ?,
		    available_stock = available_stock + ?,
		    updated_at      = ?
		WHERE product_id = ?
	`, delta, delta, formatTime(time.Now()), productID); err != nil {
		// Negative deltas below available stock trip the CHECK constraints.
		return nil, err
	}

	if _, err := tx.Exec(`
		INSERT INTO stock_history(product_id, delta, reason, total_before, available_before, total_after, available_after, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, productID, delta, reason, before.TotalStock, before.AvailableStock,
		before.TotalStock+delta, before.AvailableStock+delta, formatTime(time.Now())); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return r.Get(productID)
}

func (r *ProductRepo) History(productID string) ([]domain.StockChange, error) {
	var out []domain.StockChange
	err := r.db.Select(&out, `
		SELECT product_id, delta, reason, total_before, available_before, total_after, available_after, created_at
		FROM stock_history
		WHERE product_id = ?
		ORDER BY created_at DESC
		LIMIT 200
	`, productID)
	return out, err
}
