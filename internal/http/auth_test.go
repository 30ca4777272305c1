package handlers_test

import (
	"net/http"
	"testing"
)

func TestAuth_MissingToken(t *testing.T) {
	app := buildApp(t)

	if code, _ := doJSON(t, app, "GET", "/reservations/user", "", nil); code != http.StatusUnauthorized {
		t.Fatalf("want 401, got %d", code)
	}
	if code, _ := doJSON(t, app, "POST", "/products", "", map[string]any{"name": "X"}); code != http.StatusUnauthorized {
		t.Fatalf("admin route without token: want 401, got %d", code)
	}
}

func TestAuth_BadCredentials(t *testing.T) {
	app := buildApp(t)

	code, body := doJSON(t, app, "POST", "/auth/login", "", map[string]any{
		"email": "alice@stocklock.test", "password": "wrong-password1A",
	})
	if code != http.StatusUnauthorized {
		t.Fatalf("want 401, got %d (%v)", code, body)
	}
}

func TestAuth_UserCannotReachAdminRoutes(t *testing.T) {
	app := buildApp(t)
	user := login(t, app, "bob@stocklock.test", "Passw0rd!")

	if code, _ := doJSON(t, app, "POST", "/products", user, map[string]any{
		"name": "X", "price": 1.0, "total_stock": 1,
	}); code != http.StatusForbidden {
		t.Fatalf("user on admin route: want 403, got %d", code)
	}
	if code, _ := doJSON(t, app, "GET", "/audit", user, nil); code != http.StatusForbidden {
		t.Fatalf("user on audit: want 403, got %d", code)
	}
}

func TestAuth_RegisterAndLogin(t *testing.T) {
	app := buildApp(t)

	code, body := doJSON(t, app, "POST", "/auth/register", "", map[string]any{
		"email": "carol@stocklock.test", "name": "Carol", "password": "Sup3rSecret",
	})
	if code != http.StatusCreated {
		t.Fatalf("register: %d (%v)", code, body)
	}

	// Duplicate email is rejected without leaking details.
	if code, _ := doJSON(t, app, "POST", "/auth/register", "", map[string]any{
		"email": "carol@stocklock.test", "name": "Carol", "password": "Sup3rSecret",
	}); code != http.StatusConflict {
		t.Fatalf("duplicate register: want 409, got %d", code)
	}

	token := login(t, app, "carol@stocklock.test", "Sup3rSecret")
	if code, _ := doJSON(t, app, "GET", "/reservations/user", token, nil); code != http.StatusOK {
		t.Fatalf("fresh user token rejected: %d", code)
	}
}
