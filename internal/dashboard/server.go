// Package dashboard serves the three-page Northwind BI dashboard: a static
// single-page UI plus a read-only JSON API over the warehouse views.
package dashboard

import (
	"context"
	"embed"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"northflake/internal/warehouse"
)

//go:embed static/index.html
var staticFS embed.FS

// queryTimeout bounds each dashboard round trip. A stalled warehouse query
// turns into an in-page error instead of a hung browser tab.
const queryTimeout = 30 * time.Second

// Server is the dashboard HTTP server.
type Server struct {
	queries *Queries
	target  *warehouse.Service
	engine  *gin.Engine
}

// NewServer creates the dashboard server over a connected warehouse service.
func NewServer(target *warehouse.Service) *Server {
	s := &Server{
		queries: NewQueries(target),
		target:  target,
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	engine.GET("/", s.handleIndex)
	engine.GET("/healthz", s.handleHealth)

	api := engine.Group("/api")
	api.GET("/filters", s.handleFilters)
	api.GET("/overview", s.handleOverview)
	api.GET("/products", s.handleProducts)
	api.GET("/employees", s.handleEmployees)

	s.engine = engine
	return s
}

// Handler exposes the underlying handler, used by tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves the dashboard until the listener fails.
func (s *Server) Run(addr string) error {
	return s.engine.Run(addr)
}

func (s *Server) handleIndex(c *gin.Context) {
	page, err := staticFS.ReadFile("static/index.html")
	if err != nil {
		c.String(http.StatusInternalServerError, "dashboard page missing")
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", page)
}

func (s *Server) handleHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := s.target.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleFilters(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), queryTimeout)
	defer cancel()

	opts, err := s.queries.FilterOptions(ctx)
	if err != nil {
		queryError(c, err)
		return
	}
	c.JSON(http.StatusOK, opts)
}

func (s *Server) handleOverview(c *gin.Context) {
	filter, ok := bindFilter(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), queryTimeout)
	defer cancel()

	overview, err := s.queries.Overview(ctx, filter)
	if err != nil {
		queryError(c, err)
		return
	}
	c.JSON(http.StatusOK, overview)
}

func (s *Server) handleProducts(c *gin.Context) {
	filter, ok := bindFilter(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), queryTimeout)
	defer cancel()

	products, err := s.queries.Products(ctx, filter)
	if err != nil {
		queryError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (s *Server) handleEmployees(c *gin.Context) {
	filter, ok := bindFilter(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), queryTimeout)
	defer cancel()

	employees, err := s.queries.Employees(ctx, filter)
	if err != nil {
		queryError(c, err)
		return
	}
	c.JSON(http.StatusOK, employees)
}

func bindFilter(c *gin.Context) (Filter, bool) {
	var filter Filter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid filter parameters"})
		return filter, false
	}
	return filter, true
}

// queryError surfaces a failed warehouse query as an in-page error payload.
func queryError(c *gin.Context, err error) {
	c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
}
