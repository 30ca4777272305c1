package services

import (
	"stocklock/internal/domain"
	"stocklock/internal/repos"
)

// OrderService is the read/admin side of orders; orders are only ever
// created by ReservationService.Commit.
type OrderService struct {
	Orders *repos.OrderRepo
	Events EventSink
}

func NewOrderService(orders *repos.OrderRepo, events EventSink) *OrderService {
	return &OrderService{Orders: orders, Events: events}
}

func (s *OrderService) List(userID string, limit int) ([]domain.Order, error) {
	return s.Orders.List(userID, limit)
}

func (s *OrderService) Get(orderID string) (*domain.Order, error) {
	return s.Orders.Get(orderID)
}

func (s *OrderService) UpdateStatus(orderID, status, adminID string) (*domain.Order, error) {
	o, err := s.Orders.UpdateStatus(orderID, status)
	if err != nil {
		return nil, err
	}
	if s.Events != nil {
		_ = s.Events.Record("order_status_updated", "order", orderID, adminID, map[string]any{
			"status": status,
		})
	}
	return o, nil
}
