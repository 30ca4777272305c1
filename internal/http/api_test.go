package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"stocklock/internal/config"
	"stocklock/internal/http/handlers"
	"stocklock/internal/repos"
)

// buildApp stands up the full API over an in-memory database with the
// default seed (demo products plus admin@stocklock.test / Passw0rd!).
func buildApp(t *testing.T) *fiber.App {
	t.Helper()
	db, err := repos.OpenDB(":memory:", true)
	if err != nil {
		t.Fatal(err)
	}
	db.SetMaxOpenConns(1)

	cfg := config.Config{
		DefaultTTL:    15 * time.Minute,
		MaxTTLMinutes: 60,
		BcryptCost:    4, // keep test logins fast
	}
	deps := handlers.NewDeps(db, cfg)

	app := fiber.New()
	app.Use(requestid.New())
	handlers.Mount(app, deps)
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body any) (int, map[string]any) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("test request failed: %v", err)
	}
	defer resp.Body.Close()

	var out map[string]any
	raw, _ := io.ReadAll(resp.Body)
	if len(raw) > 0 && raw[0] == '{' {
		_ = json.Unmarshal(raw, &out)
	}
	return resp.StatusCode, out
}

func login(t *testing.T, app *fiber.App, email, password string) string {
	t.Helper()
	code, body := doJSON(t, app, "POST", "/auth/login", "", map[string]any{
		"email": email, "password": password,
	})
	if code != http.StatusOK {
		t.Fatalf("login %s: status %d body %v", email, code, body)
	}
	token, _ := body["access_token"].(string)
	if token == "" {
		t.Fatalf("no access token in %v", body)
	}
	return token
}

func TestReservationFlow_EndToEnd(t *testing.T) {
	app := buildApp(t)
	admin := login(t, app, "admin@stocklock.test", "Passw0rd!")

	// Admin creates a product with 5 units.
	code, product := doJSON(t, app, "POST", "/products", admin, map[string]any{
		"name": "Film Camera", "description": "35mm SLR", "price": 20.0, "total_stock": 5,
	})
	if code != http.StatusCreated {
		t.Fatalf("create product: status %d body %v", code, product)
	}
	productID := product["product_id"].(string)

	user := login(t, app, "alice@stocklock.test", "Passw0rd!")

	// Hold 4 units.
	code, res := doJSON(t, app, "POST", "/reservations/", user, map[string]any{
		"product_id": productID, "quantity": 4, "ttl_minutes": 5,
	})
	if code != http.StatusCreated {
		t.Fatalf("create reservation: status %d body %v", code, res)
	}
	if res["available_stock"].(float64) != 1 {
		t.Fatalf("want available=1 after hold, got %v", res["available_stock"])
	}
	resID := res["reservation_id"].(string)

	// A second 4-unit hold cannot fit.
	code, body := doJSON(t, app, "POST", "/reservations/", user, map[string]any{
		"product_id": productID, "quantity": 4,
	})
	if code != http.StatusConflict {
		t.Fatalf("overlapping hold: status %d body %v", code, body)
	}

	// Owner sees it in the active list.
	req := httptest.NewRequest("GET", "/reservations/user", nil)
	req.Header.Set("Authorization", "Bearer "+user)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	var list []map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&list)
	resp.Body.Close()
	if len(list) != 1 || list[0]["reservation_id"] != resID {
		t.Fatalf("active list: %v", list)
	}

	// Commit into an order.
	code, order := doJSON(t, app, "POST", "/reservations/"+resID+"/commit", user, map[string]any{
		"payment_id": "pay-789", "shipping_address": "1 Main St",
	})
	if code != http.StatusOK {
		t.Fatalf("commit: status %d body %v", code, order)
	}
	if order["total_amount"].(float64) != 80.0 {
		t.Fatalf("want total 80.0, got %v", order["total_amount"])
	}

	// Ledger: total shrank by the sold quantity, available unchanged.
	code, after := doJSON(t, app, "GET", "/products/"+productID, "", nil)
	if code != http.StatusOK {
		t.Fatalf("get product: %d", code)
	}
	if after["total_stock"].(float64) != 1 || after["available_stock"].(float64) != 1 || after["reserved_stock"].(float64) != 0 {
		t.Fatalf("counters after commit: %v", after)
	}

	// The reservation is terminal now.
	code, body = doJSON(t, app, "POST", "/reservations/"+resID+"/cancel", user, map[string]any{
		"reason": "changed my mind",
	})
	if code != http.StatusConflict {
		t.Fatalf("cancel after commit: status %d body %v", code, body)
	}
}

func TestReservationValidation(t *testing.T) {
	app := buildApp(t)
	user := login(t, app, "bob@stocklock.test", "Passw0rd!")

	cases := []map[string]any{
		{"product_id": "PROD_mech_kb", "quantity": 0},
		{"product_id": "PROD_mech_kb", "quantity": 1, "ttl_minutes": 61},
		{"product_id": "not valid id!", "quantity": 1},
	}
	for _, body := range cases {
		if code, resp := doJSON(t, app, "POST", "/reservations/", user, body); code != http.StatusBadRequest {
			t.Fatalf("body %v: want 400, got %d (%v)", body, code, resp)
		}
	}
}

func TestReservationOwnership(t *testing.T) {
	app := buildApp(t)
	alice := login(t, app, "alice@stocklock.test", "Passw0rd!")
	bob := login(t, app, "bob@stocklock.test", "Passw0rd!")

	code, res := doJSON(t, app, "POST", "/reservations/", alice, map[string]any{
		"product_id": "PROD_mech_kb", "quantity": 1,
	})
	if code != http.StatusCreated {
		t.Fatalf("create: %d %v", code, res)
	}
	resID := res["reservation_id"].(string)

	if code, _ := doJSON(t, app, "GET", "/reservations/"+resID, bob, nil); code != http.StatusForbidden {
		t.Fatalf("cross-user read: want 403, got %d", code)
	}
	if code, _ := doJSON(t, app, "POST", "/reservations/"+resID+"/commit", bob, map[string]any{
		"payment_id": "pay-1",
	}); code != http.StatusForbidden {
		t.Fatalf("cross-user commit: want 403, got %d", code)
	}
}
