package services

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"stocklock/internal/domain"
	applog "stocklock/internal/log"
	"stocklock/internal/metrics"
)

// StockLedger is the durable source of truth for per-product counters.
// ConditionalReserve is the only gate against overselling: it must mutate
// nothing and report domain.ErrInsufficientStock when the precondition fails.
type StockLedger interface {
	ConditionalReserve(productID string, qty int) (*domain.Product, error)
	ReleaseReservation(productID string, qty int) error
	FinalizeSale(productID string, qty int) error
}

// ReservationMirror is the write-behind history store for reservations.
type ReservationMirror interface {
	Insert(res *domain.Reservation) error
	MarkTerminal(reservationID, status, reason string) error
	Get(reservationID string) (*domain.Reservation, error)
	ListByStatus(status string) ([]domain.Reservation, error)
}

type OrderStore interface {
	Create(o *domain.Order) error
}

// EventSink records audit events. Best-effort: the engine logs failures and
// never lets them abort the triggering operation.
type EventSink interface {
	Record(eventType, entityType, entityID, userID string, changes map[string]any) error
}

// ReservationService owns the authoritative registry of active reservations
// and drives the active -> committed | cancelled | expired state machine.
//
// Locking rule: the mutex covers the registry map and the ledger's contended
// conditional reserve. Mirror writes, order inserts and audit events happen
// outside the lock so reservation traffic is not serialized behind storage
// latency.
type ReservationService struct {
	ledger StockLedger
	mirror ReservationMirror
	orders OrderStore
	events EventSink

	mu       sync.Mutex
	registry map[string]*domain.Reservation
}

func NewReservationService(ledger StockLedger, mirror ReservationMirror, orders OrderStore, events EventSink) *ReservationService {
	return &ReservationService{
		ledger:   ledger,
		mirror:   mirror,
		orders:   orders,
		events:   events,
		registry: make(map[string]*domain.Reservation),
	}
}

func newID(prefix string) string {
	return prefix + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// Create places a hold of qty units on a product for the given TTL. The
// conditional ledger reserve happens under the registry lock, so concurrent
// creates for the same product are decided in a total order.
func (s *ReservationService) Create(userID, productID string, qty int, ttl time.Duration) (*domain.Reservation, *domain.Product, error) {
	s.mu.Lock()
	product, err := s.ledger.ConditionalReserve(productID, qty)
	if err != nil {
		s.mu.Unlock()
		if errors.Is(err, domain.ErrInsufficientStock) {
			metrics.ReservationsRejected.Inc()
		}
		return nil, nil, err
	}

	now := time.Now().UTC()
	res := &domain.Reservation{
		ID:        newID("RES_"),
		UserID:    userID,
		ProductID: productID,
		Quantity:  qty,
		Status:    domain.ReservationActive,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
		UnitPrice: product.Price,
	}
	s.registry[res.ID] = res
	s.mu.Unlock()

	if err := s.mirror.Insert(res); err != nil {
		// The hold is not trustworthy without its recovery record: undo.
		s.mu.Lock()
		delete(s.registry, res.ID)
		s.mu.Unlock()
		if rerr := s.ledger.ReleaseReservation(productID, qty); rerr != nil {
			applog.Logger.Error().Err(rerr).Str("reservation_id", res.ID).Msg("ledger release failed while undoing create")
		}
		return nil, nil, err
	}

	metrics.ReservationsCreated.Inc()
	metrics.ActiveReservations.Inc()
	s.emit("reservation_created", "reservation", res.ID, userID, map[string]any{
		"product_id": productID,
		"quantity":   qty,
	})

	out := *res
	return &out, product, nil
}

// Get returns the live registry entry if the reservation is active, falling
// back to the persisted mirror for terminal/historical lookups. The fallback
// is read-only; it never resurrects an entry into the registry.
func (s *ReservationService) Get(reservationID string) (*domain.Reservation, error) {
	s.mu.Lock()
	res, ok := s.registry[reservationID]
	if ok {
		out := *res
		s.mu.Unlock()
		return &out, nil
	}
	s.mu.Unlock()
	return s.mirror.Get(reservationID)
}

// ListActiveForUser returns the caller's active holds, oldest first.
func (s *ReservationService) ListActiveForUser(userID string) []domain.Reservation {
	s.mu.Lock()
	out := make([]domain.Reservation, 0, 4)
	for _, res := range s.registry {
		if res.UserID == userID {
			out = append(out, *res)
		}
	}
	s.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// Commit converts an active, non-expired reservation into an order and
// permanently finalizes the sale on the ledger. A reservation whose deadline
// has passed is forced through the expired transition instead, even if the
// sweeper has not seen it yet.
func (s *ReservationService) Commit(reservationID, paymentID, shippingAddress string) (*domain.Order, error) {
	s.mu.Lock()
	res, ok := s.registry[reservationID]
	if !ok {
		s.mu.Unlock()
		return nil, s.terminalLookupErr(reservationID)
	}

	if res.ExpiredBy(time.Now().UTC()) {
		delete(s.registry, reservationID)
		s.mu.Unlock()
		s.reclaim(res, "reservation_expired_on_commit")
		return nil, domain.ErrReservationExpired
	}

	// Removing the entry under the lock decides the winner: no other
	// terminal transition for this id can succeed after this point.
	delete(s.registry, reservationID)
	s.mu.Unlock()

	order := &domain.Order{
		ID:              newID("ORD_"),
		ReservationID:   res.ID,
		UserID:          res.UserID,
		ProductID:       res.ProductID,
		Quantity:        res.Quantity,
		UnitPrice:       res.UnitPrice,
		TotalAmount:     res.UnitPrice * float64(res.Quantity),
		Status:          domain.OrderConfirmed,
		PaymentID:       paymentID,
		ShippingAddress: shippingAddress,
		CreatedAt:       time.Now().UTC(),
	}
	if err := s.orders.Create(order); err != nil {
		// Nothing terminal happened yet; put the hold back.
		s.mu.Lock()
		s.registry[reservationID] = res
		s.mu.Unlock()
		return nil, err
	}

	if err := s.ledger.FinalizeSale(res.ProductID, res.Quantity); err != nil {
		applog.Logger.Error().Err(err).Str("order_id", order.ID).Msg("ledger finalize failed after order insert")
		return nil, err
	}

	res.Status = domain.ReservationCommitted
	if err := s.mirror.MarkTerminal(res.ID, domain.ReservationCommitted, ""); err != nil {
		applog.Logger.Error().Err(err).Str("reservation_id", res.ID).Msg("mirror update failed")
	}

	metrics.ReservationsCommitted.Inc()
	metrics.ActiveReservations.Dec()
	s.emit("order_committed", "order", order.ID, res.UserID, map[string]any{
		"reservation_id": res.ID,
		"total_amount":   order.TotalAmount,
	})
	return order, nil
}

// Cancel releases an active reservation's stock back to the ledger. Expiry
// wins the tie: a hold past its deadline is expired, not cancelled.
func (s *ReservationService) Cancel(reservationID, reason string) error {
	s.mu.Lock()
	res, ok := s.registry[reservationID]
	if !ok {
		s.mu.Unlock()
		return s.terminalLookupErr(reservationID)
	}

	if res.ExpiredBy(time.Now().UTC()) {
		delete(s.registry, reservationID)
		s.mu.Unlock()
		s.reclaim(res, "reservation_expired")
		return domain.ErrReservationExpired
	}

	delete(s.registry, reservationID)
	s.mu.Unlock()

	if err := s.ledger.ReleaseReservation(res.ProductID, res.Quantity); err != nil {
		applog.Logger.Error().Err(err).Str("reservation_id", res.ID).Msg("ledger release failed on cancel")
		return err
	}
	res.Status = domain.ReservationCancelled
	if err := s.mirror.MarkTerminal(res.ID, domain.ReservationCancelled, reason); err != nil {
		applog.Logger.Error().Err(err).Str("reservation_id", res.ID).Msg("mirror update failed")
	}

	metrics.ReservationsCancelled.Inc()
	metrics.ActiveReservations.Dec()
	s.emit("reservation_cancelled", "reservation", res.ID, res.UserID, map[string]any{
		"reason": reason,
	})
	return nil
}

// SweepExpired collects every active reservation past its deadline, removes
// them from the registry in one critical section, then releases each one
// outside the lock. Each reservation is reclaimed exactly once, and one
// failure never halts the rest of the cycle.
func (s *ReservationService) SweepExpired() int {
	now := time.Now().UTC()

	s.mu.Lock()
	var expired []*domain.Reservation
	for id, res := range s.registry {
		if res.ExpiredBy(now) {
			delete(s.registry, id)
			expired = append(expired, res)
		}
	}
	s.mu.Unlock()

	for _, res := range expired {
		s.reclaim(res, "reservation_expired")
	}
	return len(expired)
}

// ActiveCount reports the registry size (health/metrics).
func (s *ReservationService) ActiveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.registry)
}

// Rehydrate reloads reservations the previous process left active back into
// the registry. Entries already past their deadline are picked up by the
// first sweep. The ledger counters are durable, so without this step their
// reserved stock would stay locked forever.
func (s *ReservationService) Rehydrate() (int, error) {
	rows, err := s.mirror.ListByStatus(domain.ReservationActive)
	if err != nil {
		return 0, err
	}
	s.mu.Lock()
	for i := range rows {
		res := rows[i]
		s.registry[res.ID] = &res
	}
	n := len(s.registry)
	s.mu.Unlock()
	metrics.ActiveReservations.Set(float64(n))
	return len(rows), nil
}

// reclaim performs the expired transition for a reservation already removed
// from the registry: release the ledger hold, persist the terminal status,
// emit the event. Failures are logged per step so one bad write cannot
// block the others.
func (s *ReservationService) reclaim(res *domain.Reservation, eventType string) {
	if err := s.ledger.ReleaseReservation(res.ProductID, res.Quantity); err != nil {
		applog.Logger.Error().Err(err).Str("reservation_id", res.ID).Msg("ledger release failed on expiry")
	}
	res.Status = domain.ReservationExpired
	if err := s.mirror.MarkTerminal(res.ID, domain.ReservationExpired, ""); err != nil {
		applog.Logger.Error().Err(err).Str("reservation_id", res.ID).Msg("mirror update failed on expiry")
	}
	metrics.ReservationsExpired.Inc()
	metrics.ActiveReservations.Dec()
	s.emit(eventType, "reservation", res.ID, res.UserID, map[string]any{
		"product_id": res.ProductID,
		"quantity":   res.Quantity,
	})
}

// terminalLookupErr distinguishes "never heard of it" from "already
// processed" for commit/cancel on ids absent from the registry.
func (s *ReservationService) terminalLookupErr(reservationID string) error {
	if _, err := s.mirror.Get(reservationID); err == nil {
		return domain.ErrNotActive
	}
	return domain.ErrReservationNotFound
}

func (s *ReservationService) emit(eventType, entityType, entityID, userID string, changes map[string]any) {
	if err := s.events.Record(eventType, entityType, entityID, userID, changes); err != nil {
		applog.Logger.Error().Err(err).Str("event_type", eventType).Msg("audit event dropped")
	}
}
