package services

import (
	"time"

	"stocklock/internal/domain"
	"stocklock/internal/repos"
)

// CatalogService covers the product CRUD and manual stock administration
// around the reservation engine.
type CatalogService struct {
	Products *repos.ProductRepo
	Events   EventSink
}

func NewCatalogService(products *repos.ProductRepo, events EventSink) *CatalogService {
	return &CatalogService{Products: products, Events: events}
}

func (s *CatalogService) Create(name, description string, price float64, totalStock int) (*domain.Product, error) {
	p := &domain.Product{
		ID:             newID("PROD_"),
		Name:           name,
		Description:    description,
		Price:          price,
		TotalStock:     totalStock,
		AvailableStock: totalStock,
		CreatedAt:      time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.Products.Create(p); err != nil {
		return nil, err
	}
	return s.Products.Get(p.ID)
}

func (s *CatalogService) List() ([]domain.Product, error) { return s.Products.List() }

func (s *CatalogService) Get(productID string) (*domain.Product, error) {
	return s.Products.Get(productID)
}

// AdjustStock applies a manual restock/shrinkage delta and records it in the
// stock history. This path never touches reserved_stock.
func (s *CatalogService) AdjustStock(productID string, delta int, reason, adminID string) (*domain.Product, error) {
	p, err := s.Products.Adjust(productID, delta, reason)
	if err != nil {
		return nil, err
	}
	if s.Events != nil {
		_ = s.Events.Record("stock_adjusted", "product", productID, adminID, map[string]any{
			"delta":  delta,
			"reason": reason,
		})
	}
	return p, nil
}

func (s *CatalogService) History(productID string) ([]domain.StockChange, error) {
	return s.Products.History(productID)
}
