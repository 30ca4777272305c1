package repos

import (
	"time"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"

	applog "stocklock/internal/log"
)

// timeLayout is used for every timestamp column; RFC3339 sorts
// lexicographically, so ORDER BY on these columns is chronological.
const timeLayout = time.RFC3339Nano

func formatTime(t time.Time) string { return t.UTC().Format(timeLayout) }

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func OpenDB(dsn string, seed bool) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}

	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	if seed {
		if err := seedIfEmpty(db); err != nil {
			return nil, err
		}
		if err := seedUsers(db); err != nil {
			return nil, err
		}
	}

	return db, nil
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
PRAGMA foreign_keys = ON;

-- Products double as the stock ledger: the three counters are only ever
-- mutated through the ledger primitives, and the table-level CHECK enforces
-- the available + reserved == total invariant on every write.
CREATE TABLE IF NOT EXISTS products(
  product_id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  description TEXT,
  price NUMERIC NOT NULL CHECK (price >= 0),
  total_stock INTEGER NOT NULL DEFAULT 0 CHECK (total_stock >= 0),
  available_stock INTEGER NOT NULL DEFAULT 0 CHECK (available_stock >= 0),
  reserved_stock INTEGER NOT NULL DEFAULT 0 CHECK (reserved_stock >= 0),
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT,
  CHECK (available_stock + reserved_stock = total_stock)
);

-- Write-behind mirror of the in-memory registry; terminal rows stay for
-- history, active rows are reloaded into the registry at startup.
CREATE TABLE IF NOT EXISTS reservations(
  reservation_id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  product_id TEXT NOT NULL REFERENCES products(product_id),
  quantity INTEGER NOT NULL CHECK (quantity > 0),
  status TEXT NOT NULL CHECK (status IN ('active','committed','cancelled','expired')),
  created_at TEXT NOT NULL,
  expires_at TEXT NOT NULL,
  unit_price NUMERIC NOT NULL,
  cancel_reason TEXT
);
CREATE INDEX IF NOT EXISTS idx_reservations_user   ON reservations(user_id);
CREATE INDEX IF NOT EXISTS idx_reservations_status ON reservations(status);

CREATE TABLE IF NOT EXISTS orders(
  order_id TEXT PRIMARY KEY,
  reservation_id TEXT NOT NULL UNIQUE REFERENCES reservations(reservation_id),
  user_id TEXT NOT NULL,
  product_id TEXT NOT NULL REFERENCES products(product_id),
  quantity INTEGER NOT NULL CHECK (quantity > 0),
  unit_price NUMERIC NOT NULL,
  total_amount NUMERIC NOT NULL,
  status TEXT NOT NULL DEFAULT 'CONFIRMED',
  payment_id TEXT NOT NULL,
  shipping_address TEXT,
  created_at TEXT NOT NULL,
  shipped_at TEXT
);
CREATE INDEX IF NOT EXISTS idx_orders_user       ON orders(user_id);
CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders(created_at);

CREATE TABLE IF NOT EXISTS stock_history(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  product_id TEXT NOT NULL REFERENCES products(product_id),
  delta INTEGER NOT NULL,
  reason TEXT NOT NULL,
  total_before INTEGER NOT NULL,
  available_before INTEGER NOT NULL,
  total_after INTEGER NOT NULL,
  available_after INTEGER NOT NULL,
  created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_stock_history_product ON stock_history(product_id);

CREATE TABLE IF NOT EXISTS audit_events(
  id TEXT PRIMARY KEY,
  event_type TEXT NOT NULL,
  entity_type TEXT NOT NULL,
  entity_id TEXT NOT NULL,
  user_id TEXT,
  changes_json TEXT NOT NULL DEFAULT '{}',
  created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_audit_created_at ON audit_events(created_at);

-- Users & Sessions
CREATE TABLE IF NOT EXISTS users(
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL CHECK (role IN ('USER','ADMIN')),
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(LOWER(email));

CREATE TABLE IF NOT EXISTS sessions(
  id TEXT PRIMARY KEY,
  user_id TEXT NULL REFERENCES users(id) ON DELETE SET NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  last_seen TEXT
);
CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id);
`
	_, err := db.Exec(schema)
	return err
}

func seedIfEmpty(db *sqlx.DB) error {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM products`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	applog.Logger.Info().Msg("seeding demo products")

	tx := db.MustBegin()
	tx.MustExec(`INSERT INTO products(product_id,name,description,price,total_stock,available_stock,reserved_stock) VALUES
	  ('PROD_mech_kb','Mechanical Keyboard','Hot-swappable 75% board',129.99,25,25,0),
	  ('PROD_trackball','Ergonomic Trackball','Wireless thumb trackball',89.50,10,10,0),
	  ('PROD_dock','USB-C Dock','Dual-display travel dock',149.00,5,5,0)`)
	return tx.Commit()
}

// seedUsers ensures one ADMIN and a couple of USERs exist (idempotent).
func seedUsers(db *sqlx.DB) error {
	type u struct {
		ID, Email, Name, Role, Hash string
	}
	mk := func(id, email, name, role, raw string) u {
		h, _ := bcrypt.GenerateFromPassword([]byte(raw), 12)
		return u{ID: id, Email: email, Name: name, Role: role, Hash: string(h)}
	}

	users := []u{
		mk("u-alice", "alice@stocklock.test", "Alice", "USER", "Passw0rd!"),
		mk("u-bob", "bob@stocklock.test", "Bob", "USER", "Passw0rd!"),
		mk("u-admin", "admin@stocklock.test", "Admin", "ADMIN", "Passw0rd!"),
	}

	tx := db.MustBegin()
	defer func() { _ = tx.Rollback() }()

	for _, x := range users {
		if _, err := tx.Exec(`
			INSERT INTO users(id,email,name,password_hash,role)
			VALUES(?,?,?,?,?)
			ON CONFLICT(email) DO NOTHING
		`, x.ID, x.Email, x.Name, x.Hash, x.Role); err != nil {
			return err
		}
	}

	return tx.Commit()
}
