package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/palchat-server/internal/config"
	"github.com/vovakirdan/palchat-server/internal/core"
	"github.com/vovakirdan/palchat-server/internal/store"
)

// Deps are the optional collaborators of the HTTP surface. A nil Audit
// disables /api/audit and a nil Gatherer disables /metrics.
type Deps struct {
	Audit    store.AuditStore
	Gatherer prometheus.Gatherer
}

// NewServer builds an HTTP server with the websocket endpoint and the
// read-only inspection API.
func NewServer(hub *core.Hub, cfg *config.Config, logger *zerolog.Logger, deps Deps) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), LoggerMiddleware(logger))

	router.GET("/health", healthHandler)

	if deps.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	apiHandlers := NewAPIHandlers(hub.Model(), deps.Audit, logger)
	channelHandlers := NewChannelHandlers(hub.Model(), logger)

	api := router.Group("/api")
	{
		api.GET("/users", apiHandlers.ListUsers)
		api.GET("/stats", apiHandlers.Stats)
		api.GET("/audit", apiHandlers.ListAudit)
		api.GET("/channels", channelHandlers.ListChannels)
		api.GET("/channels/:name", channelHandlers.GetChannel)
	}

	// gin's response writer refuses hijacking, so /ws stays off the router.
	mux := stdhttp.NewServeMux()
	mux.Handle("/ws", logRequests(NewWSHandler(hub, cfg.MaxMessageBytes, logger), logger))
	mux.Handle("/", router)

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

func healthHandler(c *gin.Context) {
	c.String(stdhttp.StatusOK, "ok")
}
