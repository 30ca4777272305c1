package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"stocklock/internal/domain"
	"stocklock/internal/services"
)

func TestSweepExpired_ReclaimsAndIsIdempotent(t *testing.T) {
	e := newEngine(t)

	expired, _, err := e.svc.Create("u-1", "PROD_widget", 3, -time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	live, _, err := e.svc.Create("u-1", "PROD_widget", 1, time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	if n := e.svc.SweepExpired(); n != 1 {
		t.Fatalf("want 1 reclaimed, got %d", n)
	}
	if total, avail, reserved := e.counters(t, "PROD_widget"); total != 5 || avail != 4 || reserved != 1 {
		t.Fatalf("counters after sweep: total=%d avail=%d reserved=%d", total, avail, reserved)
	}
	mirrored, err := e.mirror.Get(expired.ID)
	if err != nil {
		t.Fatal(err)
	}
	if mirrored.Status != domain.ReservationExpired {
		t.Fatalf("mirror status = %s", mirrored.Status)
	}

	// Second pass finds nothing; the live hold is untouched.
	if n := e.svc.SweepExpired(); n != 0 {
		t.Fatalf("second sweep reclaimed %d", n)
	}
	if got, err := e.svc.Get(live.ID); err != nil || got.Status != domain.ReservationActive {
		t.Fatalf("live hold disturbed: %v %v", got, err)
	}
}

// failingMirror wraps the real mirror and refuses to persist the terminal
// status of one chosen reservation.
type failingMirror struct {
	services.ReservationMirror
	failID string
}

func (m *failingMirror) MarkTerminal(reservationID, status, reason string) error {
	if reservationID == m.failID {
		return errors.New("disk on fire")
	}
	return m.ReservationMirror.MarkTerminal(reservationID, status, reason)
}

func TestSweepExpired_FailureIsolation(t *testing.T) {
	e := newEngine(t)
	fm := &failingMirror{ReservationMirror: e.mirror}
	svc := services.NewReservationService(e.prods, fm, e.orders, e.audit)

	a, _, err := svc.Create("u-1", "PROD_widget", 2, -time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	b, _, err := svc.Create("u-1", "PROD_widget", 2, -time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	fm.failID = a.ID

	// Both ledger releases happen even though one mirror write fails.
	if n := svc.SweepExpired(); n != 2 {
		t.Fatalf("want 2 reclaimed, got %d", n)
	}
	if total, avail, reserved := e.counters(t, "PROD_widget"); total != 5 || avail != 5 || reserved != 0 {
		t.Fatalf("counters after faulty sweep: total=%d avail=%d reserved=%d", total, avail, reserved)
	}
	if mirrored, _ := e.mirror.Get(b.ID); mirrored.Status != domain.ReservationExpired {
		t.Fatalf("healthy item not persisted: %s", mirrored.Status)
	}
}

func TestSweeper_RunStopsOnCancel(t *testing.T) {
	e := newEngine(t)

	if _, _, err := e.svc.Create("u-1", "PROD_widget", 2, -time.Minute); err != nil {
		t.Fatal(err)
	}

	sw := services.NewSweeper(e.svc, 10*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sw.Run(ctx)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for e.svc.ActiveCount() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("sweeper never reclaimed the expired hold")
		}
		time.Sleep(5 * time.Millisecond)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop on cancel")
	}
}
