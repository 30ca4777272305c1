package repos_test

import (
	"errors"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"stocklock/internal/domain"
	"stocklock/internal/repos"
)

func memdb(t *testing.T) (*sqlx.DB, *repos.ProductRepo) {
	t.Helper()
	db, err := repos.OpenDB(":memory:", false)
	if err != nil {
		t.Fatal(err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(`
		INSERT INTO products(product_id, name, price, total_stock, available_stock, reserved_stock)
		VALUES ('PROD_x', 'X', 5.0, 10, 10, 0)
	`); err != nil {
		t.Fatal(err)
	}
	return db, repos.NewProductRepo(db)
}

func TestConditionalReserve_ExactBoundary(t *testing.T) {
	_, ledger := memdb(t)

	// Reserving everything that is available succeeds.
	p, err := ledger.ConditionalReserve("PROD_x", 10)
	if err != nil {
		t.Fatal(err)
	}
	if p.AvailableStock != 0 || p.ReservedStock != 10 {
		t.Fatalf("after full reserve: %+v", p)
	}

	// One more unit fails without mutating anything.
	if _, err := ledger.ConditionalReserve("PROD_x", 1); !errors.Is(err, domain.ErrInsufficientStock) {
		t.Fatalf("want ErrInsufficientStock, got %v", err)
	}
	p, _ = ledger.Get("PROD_x")
	if p.AvailableStock != 0 || p.ReservedStock != 10 || p.TotalStock != 10 {
		t.Fatalf("ledger mutated by failed reserve: %+v", p)
	}
}

func TestConditionalReserve_MissingProduct(t *testing.T) {
	_, ledger := memdb(t)
	if _, err := ledger.ConditionalReserve("PROD_missing", 1); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("want ErrProductNotFound, got %v", err)
	}
}

func TestReleaseAndFinalize(t *testing.T) {
	_, ledger := memdb(t)

	if _, err := ledger.ConditionalReserve("PROD_x", 6); err != nil {
		t.Fatal(err)
	}
	if err := ledger.ReleaseReservation("PROD_x", 2); err != nil {
		t.Fatal(err)
	}
	p, _ := ledger.Get("PROD_x")
	if p.AvailableStock != 6 || p.ReservedStock != 4 || p.TotalStock != 10 {
		t.Fatalf("after release: %+v", p)
	}

	// Finalize shrinks reserved and total together, available untouched.
	if err := ledger.FinalizeSale("PROD_x", 4); err != nil {
		t.Fatal(err)
	}
	p, _ = ledger.Get("PROD_x")
	if p.AvailableStock != 6 || p.ReservedStock != 0 || p.TotalStock != 6 {
		t.Fatalf("after finalize: %+v", p)
	}
}

func TestRelease_BeyondReservedIsRejected(t *testing.T) {
	_, ledger := memdb(t)
	// Nothing is reserved; the CHECK constraints refuse the underflow.
	if err := ledger.ReleaseReservation("PROD_x", 1); err == nil {
		t.Fatal("release beyond reserved should fail")
	}
}

func TestAdjust_RecordsHistory(t *testing.T) {
	_, ledger := memdb(t)

	p, err := ledger.Adjust("PROD_x", 5, "restock")
	if err != nil {
		t.Fatal(err)
	}
	if p.TotalStock != 15 || p.AvailableStock != 15 {
		t.Fatalf("after restock: %+v", p)
	}

	if _, err := ledger.Adjust("PROD_x", -20, "shrinkage"); err == nil {
		t.Fatal("adjust below zero should fail")
	}

	changes, err := ledger.History("PROD_x")
	if err != nil {
		t.Fatal(err)
	}
	if len(changes) != 1 {
		t.Fatalf("want 1 history row, got %d", len(changes))
	}
	if changes[0].TotalBefore != 10 || changes[0].TotalAfter != 15 || changes[0].Reason != "restock" {
		t.Fatalf("history row: %+v", changes[0])
	}
}
