package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/enviofleett/smallchops-09-sub001/internal/handler/api"
	"github.com/enviofleett/smallchops-09-sub001/internal/handler/middleware"
	"github.com/enviofleett/smallchops-09-sub001/internal/pkg/config"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	Mw      []gin.HandlerFunc
}

type Handlers struct {
	Checkout     *api.CheckoutHandler
	Payment      *api.PaymentHandler
	Availability *api.AvailabilityHandler
	Probes       []Probe
}

// Probe is a dependency the health endpoint pings, e.g. Postgres or Redis.
type Probe struct {
	Name  string
	Check func(ctx context.Context) error
}

const probeTimeout = 2 * time.Second

func NewRouter(engine *gin.Engine, cfg config.Config, logger *slog.Logger, handlers Handlers, authMiddleware *middleware.AuthMiddleware) {
	setupMiddleware(engine, cfg, logger)
	setupRoutes(engine, handlers, authMiddleware)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config, logger *slog.Logger) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(middleware.LoggingMiddleware(logger))
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(engine *gin.Engine, h Handlers, authMiddleware *middleware.AuthMiddleware) {
	engine.GET("/health", healthCheck(h.Probes))

	if gin.Mode() == gin.DebugMode {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// gateway redirect lands here; the reference alone identifies the session
	engine.GET("/payment/callback", h.Payment.Redirect)

	apiGroup := engine.Group("/api")
	{
		checkoutGroup := apiGroup.Group("/checkout")
		{
			addRoutes(checkoutGroup, []route{
				{Method: http.MethodGet, Path: "/slots", Handler: h.Availability.Slots},
				{Method: http.MethodGet, Path: "/fulfillment-options", Handler: h.Availability.FulfillmentOptions},
			})

			session := checkoutGroup.Group("")
			session.Use(authMiddleware.ResolveIdentity())
			addRoutes(session, []route{
				{Method: http.MethodPost, Path: "/session", Handler: h.Checkout.Begin},
				{Method: http.MethodGet, Path: "/session", Handler: h.Checkout.Current},
				{Method: http.MethodDelete, Path: "/session", Handler: h.Checkout.Reset},
				{Method: http.MethodPut, Path: "/cart", Handler: h.Checkout.SyncCart},
				{Method: http.MethodPut, Path: "/contact", Handler: h.Checkout.UpdateContact},
				{Method: http.MethodPut, Path: "/fulfillment", Handler: h.Checkout.SelectFulfillment},
				{Method: http.MethodPut, Path: "/schedule", Handler: h.Checkout.SelectSchedule},
				{Method: http.MethodPut, Path: "/payment-method", Handler: h.Checkout.SelectPaymentMethod},
				{Method: http.MethodPut, Path: "/terms", Handler: h.Checkout.SetTerms},
				{Method: http.MethodPost, Path: "/advance", Handler: h.Checkout.Advance},
				{Method: http.MethodPost, Path: "/back", Handler: h.Checkout.Back},
				{Method: http.MethodPost, Path: "/submit", Handler: h.Payment.Submit},
				{Method: http.MethodPost, Path: "/payment/callback", Handler: h.Payment.Callback},
				{Method: http.MethodPost, Path: "/payment/verify", Handler: h.Payment.Verify},
				{Method: http.MethodPost, Path: "/payment/cancel", Handler: h.Payment.Cancel},
			})
		}
	}
}

// @Summary Health check
// @Description Reports whether the service and its stores are reachable
// @Tags health
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 503 {object} map[string]any
// @Router /health [get]
func healthCheck(probes []Probe) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), probeTimeout)
		defer cancel()

		status, code := "ok", http.StatusOK
		checks := make(map[string]string, len(probes))
		for _, p := range probes {
			if err := p.Check(ctx); err != nil {
				slog.Warn("health probe failed", slog.String("probe", p.Name), slog.String("error", err.Error()))
				checks[p.Name] = "unavailable"
				status, code = "degraded", http.StatusServiceUnavailable
				continue
			}
			checks[p.Name] = "ok"
		}

		c.JSON(code, gin.H{
			"status": status,
			"checks": checks,
		})
	}
}

func addRoutes(g *gin.RouterGroup, rs []route) {
	for _, r := range rs {
		h := r.Handler
		if len(r.Mw) > 0 {
			h = chainHandlers(append(r.Mw, r.Handler)...)
		}
		switch r.Method {
		case http.MethodGet:
			g.GET(r.Path, h)
		case http.MethodPost:
			g.POST(r.Path, h)
		case http.MethodPut:
			g.PUT(r.Path, h)
		case http.MethodPatch:
			g.PATCH(r.Path, h)
		case http.MethodDelete:
			g.DELETE(r.Path, h)
		default:
			g.Any(r.Path, h)
		}
	}
}

func chainHandlers(hs ...gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, h := range hs {
			h(c)
			if c.IsAborted() {
				return
			}
		}
	}
}
