package validate

import (
	"regexp"
	"strings"
)

var (
	reEmail  = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	reID     = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
	reStatus = regexp.MustCompile(`^(CONFIRMED|SHIPPED|DELIVERED|CANCELLED)$`)
)

func Email(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) == 0 || len(s) > 50 {
		return "", false
	}
	return s, reEmail.MatchString(s)
}

// ID validates a simple resource identifier (product/reservation/order ids).
func ID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reID.MatchString(s)
}

// Qty checks a requested reservation quantity; zero and negatives are
// rejected, large values are clamped to keep one caller from draining stock.
func Qty(n int) (int, bool) {
	if n < 1 {
		return 0, false
	}
	if n > 1000 {
		return 1000, true
	}
	return n, true
}

// TTLMinutes enforces the (0, max] window for reservation holds.
// Zero means "use the configured default" and is allowed through.
func TTLMinutes(n, max int) bool {
	return n >= 0 && n <= max
}

// OrderStatus validates allowed order status transitions.
func OrderStatus(s string) (string, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	return s, reStatus.MatchString(s)
}

// Reason validates a displayable free-text reason with a sane max length.
func Reason(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > 200 {
		return "", false
	}
	return s, true
}

// Name validates a displayable name.
func Name(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > 50 {
		return "", false
	}
	return s, true
}

// Password enforces a minimum complexity for register/login checks.
func Password(s string) bool {
	l := len(s)
	if l < 8 || l > 72 {
		return false
	}
	var hasLower, hasUpper, hasDigit bool
	for _, r := range s {
		switch {
		case 'a' <= r && r <= 'z':
			hasLower = true
		case 'A' <= r && r <= 'Z':
			hasUpper = true
		case '0' <= r && r <= '9':
			hasDigit = true
		}
	}
	return hasLower && hasUpper && hasDigit
}
