package router

import (
	"log/slog"
	"net/http"

	"github.com/LavaJover/shvark-dish-request-service/internal/delivery/http/handlers"
	"github.com/LavaJover/shvark-dish-request-service/internal/delivery/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Config struct {
	JWTSecret      string
	AllowedOrigins []string
	Gatherer       prometheus.Gatherer
	Logger         *slog.Logger
}

type Handlers struct {
	Requests    *handlers.RequestHandler
	Negotiation *handlers.NegotiationHandler
	Offers      *handlers.OfferHandler
}

// New builds the REST surface. Everything under /v1 requires a bearer token.
func New(cfg Config, h Handlers) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	gatherer := cfg.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	r := gin.New()
	r.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Error("recovered from panic", "panic", recovered, "path", c.FullPath())
		c.AbortWithStatus(http.StatusInternalServerError)
	}))
	r.Use(middleware.RequestLogger(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	v1 := r.Group("/v1")
	v1.Use(middleware.Auth(cfg.JWTSecret))
	addRequestRoutes(v1, h)
	addOfferRoutes(v1, h)

	return cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	})(r)
}

func addRequestRoutes(v1 *gin.RouterGroup, h Handlers) {
	requests := v1.Group("/requests")
	requests.POST("", h.Requests.Create)
	requests.GET("", h.Requests.ListActive)
	requests.GET("/mine", h.Requests.ListMine)
	requests.GET("/:id", h.Requests.Get)
	requests.PATCH("/:id/status", h.Requests.SetStatus)
	requests.DELETE("/:id", h.Requests.Delete)
	requests.GET("/:id/offers", h.Offers.ListForRequest)

	requests.POST("/:id/negotiation", h.Negotiation.Start)
	requests.POST("/:id/negotiation/answer", h.Negotiation.Answer)
	requests.POST("/:id/negotiation/price", h.Negotiation.EnterPrice)
	requests.DELETE("/:id/negotiation", h.Negotiation.Abandon)
}

func addOfferRoutes(v1 *gin.RouterGroup, h Handlers) {
	offers := v1.Group("/offers")
	offers.GET("/received", h.Offers.ListReceived)
	offers.GET("/mine", h.Offers.ListMine)
	offers.GET("/:id", h.Offers.Get)
	offers.GET("/:id/history", h.Offers.History)
	offers.POST("/:id/decision", h.Offers.Decide)
}
