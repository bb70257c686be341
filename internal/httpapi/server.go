// Package httpapi exposes the core catalog operations over HTTP for the
// presentation layer. It is a thin adapter: keystroke-level editing state
// stays in-process in the session package; these handlers go straight to
// the repository and hierarchy snapshot.
package httpapi

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/retailstack/catalog/internal/db"
	"github.com/retailstack/catalog/internal/events"
	"github.com/retailstack/catalog/internal/hierarchy"
	"github.com/retailstack/catalog/internal/repo"
)

// Server wires the catalog HTTP routes on an echo instance.
type Server struct {
	echo      *echo.Echo
	repo      *repo.ProductRepository
	hier      *hierarchy.Hierarchy
	publisher *events.Publisher
	database  *db.DB
	log       *zap.Logger
}

// NewServer creates the HTTP server. The publisher may be nil, which
// disables event publishing.
func NewServer(productRepo *repo.ProductRepository, hier *hierarchy.Hierarchy, publisher *events.Publisher, database *db.DB, log *zap.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(metricsMiddleware)

	s := &Server{
		echo:      e,
		repo:      productRepo,
		hier:      hier,
		publisher: publisher,
		database:  database,
		log:       log,
	}

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/healthz", s.health)

	e.GET("/products/:sku", s.getProduct)
	e.POST("/products", s.addProduct)
	e.PUT("/products/:sku", s.updateProduct)
	e.DELETE("/products/:sku", s.deleteProduct)

	e.GET("/hierarchy/departments", s.listDepartments)
	e.GET("/hierarchy/departments/:id/classes", s.listClasses)
	e.GET("/hierarchy/departments/:id/classes/:classID/families", s.listFamilies)

	return s
}

// Start begins serving on the given port and blocks.
func (s *Server) Start(port string) error {
	return s.echo.Start(":" + port)
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) health(c echo.Context) error {
	if err := s.database.Ping(); err != nil {
		s.log.Error("Database health check failed", zap.Error(err))
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "unhealthy", "reason": "database"})
	}
	if s.publisher != nil && !s.publisher.IsHealthy() {
		s.log.Error("RabbitMQ health check failed")
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "unhealthy", "reason": "rabbitmq"})
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}
