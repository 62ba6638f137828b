package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/aerodesk/flightbooking/api"
	"github.com/aerodesk/flightbooking/config"
	"github.com/aerodesk/flightbooking/internal/middleware"
	"github.com/aerodesk/flightbooking/internal/service/booking"
	"github.com/aerodesk/flightbooking/internal/service/inventory"
	"github.com/aerodesk/flightbooking/internal/service/ticket"
	"github.com/gin-gonic/gin"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

// Run starts the HTTP server and blocks until the context is canceled or
// the server fails.
func Run(ctx context.Context, cfg *config.Config, log *zap.Logger, inventorySvc inventory.InventoryUseCase, bookingSvc booking.BookingUseCase, ticketSvc ticket.TicketUseCase) error {
	router := NewRouter(cfg, log, inventorySvc, bookingSvc, ticketSvc)

	httpSrv := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- httpSrv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

// NewRouter wires the gin engine: public lookup and booking endpoints under
// /api/v1 behind the auth middleware, admin catalog endpoints behind the
// ADMIN role, and the ledger's lock/release endpoints under /internal for
// the orchestrator of a separately deployed booking service.
func NewRouter(cfg *config.Config, log *zap.Logger, inventorySvc inventory.InventoryUseCase, bookingSvc booking.BookingUseCase, ticketSvc ticket.TicketUseCase) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(log))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	if cfg.HTTP.SwaggerDir != "" {
		router.StaticFS("/swagger", http.Dir(cfg.HTTP.SwaggerDir))
		router.GET("/docs/*any", gin.WrapH(httpSwagger.Handler(
			httpSwagger.URL("/swagger/openapi.json"),
		)))
	}

	flightHandler := api.NewFlightHandler(inventorySvc)
	bookingHandler := api.NewBookingHandler(bookingSvc)
	ticketHandler := api.NewTicketHandler(ticketSvc)

	v1 := router.Group("/api/v1", middleware.Auth(cfg.Auth.JWTSecret))
	bookingHandler.Register(v1.Group("/bookings"))
	ticketHandler.Register(v1.Group("/tickets"))

	admin := v1.Group("", middleware.RequireRole(middleware.RoleAdmin))
	flightHandler.Register(v1, admin)

	flightHandler.RegisterInternal(router.Group("/internal"))

	return router
}
