package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ReservationsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stocklock_reservations_created_total",
		Help: "Reservations successfully created.",
	})
	ReservationsCommitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stocklock_reservations_committed_total",
		Help: "Reservations converted into orders.",
	})
	ReservationsCancelled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stocklock_reservations_cancelled_total",
		Help: "Reservations cancelled by their owner.",
	})
	ReservationsExpired = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stocklock_reservations_expired_total",
		Help: "Reservations reclaimed after their deadline (sweeper or lazy expiry).",
	})
	ReservationsRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stocklock_reservations_rejected_total",
		Help: "Create attempts rejected for insufficient stock.",
	})
	ActiveReservations = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "stocklock_active_reservations",
		Help: "Reservations currently held in the in-memory registry.",
	})
)
