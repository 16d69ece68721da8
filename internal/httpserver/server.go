package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/wederfonseca/achadinhododia/internal/auth"
	"github.com/wederfonseca/achadinhododia/internal/capi"
	"github.com/wederfonseca/achadinhododia/internal/config"
	"github.com/wederfonseca/achadinhododia/internal/handlers"
	"github.com/wederfonseca/achadinhododia/internal/store"
)

// NewRouter wires public endpoints and the relay.
// Public: /health, /ready, /metrics
// Relay: /collect, /stats (signature-protected when configured)
func NewRouter(cfg config.Config, st store.EventStore, client *capi.Client, log *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())

	// Wrong-method requests must answer 405, not 404.
	r.HandleMethodNotAllowed = true

	// Liveness: confirms the process is running.
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Readiness: confirms the dedup store is reachable (trivially ready
	// when no store is configured).
	r.GET("/ready", func(c *gin.Context) {
		if st == nil {
			c.JSON(http.StatusOK, gin.H{"status": "ready"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
		defer cancel()

		if err := st.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	relayGroup := r.Group("/")
	if cfg.SignatureEnabled() {
		relayGroup.Use(auth.SignatureMiddleware(cfg.SignatureHeader, cfg.SignatureValue))
	}

	handlers.NewRelay(cfg, st, client, log).Register(relayGroup)

	return r
}
