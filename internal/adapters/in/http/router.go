package http

import (
	"freight/internal/core/ports"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type RouterConfig struct {
	Users    ports.UserRepository
	Logger   *zap.Logger
	Metrics  *Metrics
	Gatherer prometheus.Gatherer

	// RateLimit is requests per second per actor; zero disables limiting.
	RateLimit float64
	Burst     int
	BodyLimit string
}

// NewRouter wires the middleware chain and every route onto a fresh echo
// instance. /health and /metrics need no actor.
func NewRouter(s *Server, cfg RouterConfig) *echo.Echo {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = NewRequestValidator()
	e.HTTPErrorHandler = NewErrorHandler(logger)

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	if cfg.Metrics != nil {
		e.Use(cfg.Metrics.Middleware())
	}
	e.Use(RequestLogger(logger))
	if cfg.BodyLimit != "" {
		e.Use(middleware.BodyLimit(cfg.BodyLimit))
	}
	if cfg.RateLimit > 0 {
		e.Use(RateLimiter(cfg.RateLimit, cfg.Burst))
	}

	e.GET("/health", s.Health)
	if cfg.Gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
	}

	actor := ActorResolver(cfg.Users)
	e.GET("/ws", s.Stream, actor)

	e.GET("/loads", s.GetLoads, actor)
	e.GET("/loads/:id/history", s.GetLoadHistory, actor)
	e.POST("/loads/:id/transition", s.TransitionLoad, actor)
	e.POST("/loads/:id/price", s.PriceLoad, actor)
	e.POST("/loads/:id/post", s.PostLoad, actor)
	e.POST("/loads/:id/availability", s.SetLoadAvailability, actor)
	e.POST("/loads/:id/invoice/:action", s.AdvanceInvoice, actor)
	e.POST("/loads/:id/repair", s.RepairLoad, actor)
	e.GET("/loads/:id/eligibility/:carrierId", s.CheckEligibility, actor)
	e.POST("/loads/:id/bids", s.PlaceBid, actor)

	e.GET("/carriers/:id/compliance", s.CheckCompliance, actor)

	e.POST("/bids/:id/accept", s.AcceptBid, actor)
	e.POST("/bids/:id/counter", s.CounterBid, actor)
	e.POST("/bids/:id/reject", s.RejectBid, actor)
	e.POST("/bids/:id/messages", s.PostMessage, actor)
	e.GET("/bids/:id/negotiation", s.GetNegotiation, actor)
	return e
}
