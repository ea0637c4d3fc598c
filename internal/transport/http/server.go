package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/chanserv/internal/config"
	"github.com/vovakirdan/chanserv/internal/core"
	"github.com/vovakirdan/chanserv/internal/store"
)

// NewServer builds the HTTP server: health check, WebSocket bridge and the
// read-only query API. audit may be nil, in which case /api/audit is not served.
func NewServer(hub *core.Hub, audit store.AuditStore, cfg *config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(LoggerMiddleware(logger))

	router.GET("/health", healthHandler)
	router.GET("/ws", gin.WrapH(NewWSHandler(hub, cfg.MaxMessageBytes, logger)))

	queries := NewQueryHandlers(hub.Processor(), audit, logger)
	api := router.Group("/api")
	{
		api.GET("/users", queries.ListUsers)
		api.GET("/channels", queries.ListChannels)
		api.GET("/channels/:name", queries.GetChannel)
		if audit != nil {
			api.GET("/audit", queries.ListAudit)
		}
	}

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

func healthHandler(c *gin.Context) {
	c.String(stdhttp.StatusOK, "ok")
}
