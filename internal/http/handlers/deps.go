package handlers

import (
	"stocklock/internal/config"
	"stocklock/internal/repos"
	"stocklock/internal/services"

	"github.com/jmoiron/sqlx"
)

type Deps struct {
	AuthHandler        *AuthHandler
	ProductHandler     *ProductHandler
	ReservationHandler *ReservationHandler
	OrderHandler       *OrderHandler
	SystemHandler      *SystemHandler

	// Reservations is exposed so the process can run the sweeper and the
	// startup rehydration against the same registry the handlers use.
	Reservations *services.ReservationService
	Auth         *services.AuthService
}

func NewDeps(db *sqlx.DB, cfg config.Config) *Deps {
	prodRepo := repos.NewProductRepo(db)
	resRepo := repos.NewReservationRepo(db)
	orderRepo := repos.NewOrderRepo(db)
	auditRepo := repos.NewAuditRepo(db)
	userRepo := repos.NewUserRepo(db)

	resSvc := services.NewReservationService(prodRepo, resRepo, orderRepo, auditRepo)
	catalogSvc := services.NewCatalogService(prodRepo, auditRepo)
	orderSvc := services.NewOrderService(orderRepo, auditRepo)
	authSvc := services.NewAuthService(userRepo, cfg.BcryptCost)

	return &Deps{
		AuthHandler:    &AuthHandler{Auth: authSvc},
		ProductHandler: &ProductHandler{Catalog: catalogSvc},
		ReservationHandler: &ReservationHandler{
			Res:        resSvc,
			DefaultTTL: cfg.DefaultTTL,
			MaxTTLMin:  cfg.MaxTTLMinutes,
		},
		OrderHandler:  &OrderHandler{Orders: orderSvc},
		SystemHandler: &SystemHandler{Audit: auditRepo, Res: resSvc},
		Reservations:  resSvc,
		Auth:          authSvc,
	}
}
