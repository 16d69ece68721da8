package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/wederfonseca/achadinhododia/internal/brtime"
	"github.com/wederfonseca/achadinhododia/internal/capi"
	"github.com/wederfonseca/achadinhododia/internal/config"
	"github.com/wederfonseca/achadinhododia/internal/dedup"
	"github.com/wederfonseca/achadinhododia/internal/metrics"
	"github.com/wederfonseca/achadinhododia/internal/models"
	"github.com/wederfonseca/achadinhododia/internal/store"
)

// ipHeaders is the priority order for the caller's IP. The edge proxy
// header wins over the generic forwarded-for chain.
var ipHeaders = []string{"X-Nf-Client-Connection-Ip", "X-Forwarded-For", "X-Real-Ip"}

// Relay bundles the dependencies of the collect and stats endpoints.
type Relay struct {
	cfg   config.Config
	store store.EventStore // nil when dedup/counter is disabled
	capi  *capi.Client
	log   *zap.Logger
	now   func() time.Time
}

// NewRelay wires the relay handler. st may be nil (no dedup, no counter).
func NewRelay(cfg config.Config, st store.EventStore, client *capi.Client, log *zap.Logger) *Relay {
	return &Relay{cfg: cfg, store: st, capi: client, log: log, now: time.Now}
}

// Register registers the relay endpoints.
//
// POST /collect
// - Requires the signature header when one is configured (enforced upstream)
// - Dedup-then-send: only the first sighting of an event_id reaches the provider
// - Provider failures are logged but never surfaced to the caller
func (h *Relay) Register(r gin.IRoutes) {
	r.POST("/collect", h.collect)
	r.GET("/stats", h.stats)
}

func (h *Relay) collect(c *gin.Context) {
	metrics.EventsReceived.Inc()

	var req models.InboundEvent
	if err := c.ShouldBindJSON(&req); err != nil {
		metrics.EventsRejected.WithLabelValues("invalid_json").Inc()
		c.JSON(http.StatusBadRequest, models.CollectResponse{OK: false, Error: "invalid_json"})
		return
	}

	// No event_id means no dedup key; fail fast before any side effect.
	if req.EventID == "" {
		metrics.EventsRejected.WithLabelValues("missing_event_id").Inc()
		c.JSON(http.StatusBadRequest, models.CollectResponse{OK: false, Error: "missing_event_id"})
		return
	}

	if !h.cfg.ProviderConfigured() {
		metrics.EventsRejected.WithLabelValues("misconfigured").Inc()
		h.log.Error("provider credentials missing",
			zap.String("event_id", req.EventID))
		c.JSON(http.StatusInternalServerError, models.CollectResponse{OK: false, Error: "missing_provider_config"})
		return
	}

	now := h.now()
	ctx := c.Request.Context()
	dateBR := brtime.Date(now)

	var count int64
	if h.store != nil {
		key := dedup.EventKey(h.cfg.DedupWindow, now, req.EventID)
		first, err := h.store.MarkSeen(ctx, key, dedup.EventTTL(h.cfg.DedupWindow, h.cfg.DedupTTL))
		if err != nil {
			// A broken store must not block the funnel; forward anyway
			// and lean on the provider's own event_id dedup.
			metrics.StoreFailures.Inc()
			h.log.Warn("dedup store unavailable, forwarding anyway",
				zap.String("event_id", req.EventID), zap.Error(err))
			first = true
		}

		if !first {
			count, err = h.store.GetCounter(ctx, dedup.CounterKey(now))
			if err != nil {
				metrics.StoreFailures.Inc()
				h.log.Warn("counter read failed",
					zap.String("event_id", req.EventID), zap.Error(err))
			}
			metrics.EventsDuplicate.Inc()
			h.log.Info("[CAPI] duplicate suppressed",
				zap.String("date", dateBR),
				zap.String("time", brtime.Clock(now)),
				zap.String("event_id", req.EventID),
				zap.Int64("count", count))
			c.JSON(http.StatusOK, models.CollectResponse{OK: true, Duplicate: true, Count: count})
			return
		}

		count, err = h.store.IncrCounter(ctx, dedup.CounterKey(now), dedup.CounterTTL)
		if err != nil {
			metrics.StoreFailures.Inc()
			h.log.Warn("counter increment failed",
				zap.String("event_id", req.EventID), zap.Error(err))
		}
	}

	metrics.EventsAccepted.Inc()

	event := capi.BuildEvent(req, h.cfg.DefaultEventName, clientIP(c), c.Request.UserAgent(), now)
	res, err := h.capi.Send(ctx, event)
	if err != nil {
		// Swallowed: the committed counter is not rolled back and the
		// caller still gets ok, so a flaky provider never blocks the page.
		metrics.ForwardFailures.Inc()
		h.log.Warn("provider call failed",
			zap.String("event_id", req.EventID), zap.Error(err))
	} else if res.Status < 200 || res.Status > 299 {
		metrics.ForwardFailures.Inc()
		h.log.Warn("provider returned non-2xx",
			zap.String("event_id", req.EventID),
			zap.Int("status", res.Status),
			zap.String("body", res.Body))
	}

	// The audit trail: one line per outcome.
	h.log.Info("[CAPI] event relayed",
		zap.String("date", dateBR),
		zap.String("time", brtime.Clock(now)),
		zap.String("event_id", req.EventID),
		zap.Int("status", res.Status),
		zap.Int64("count", count))

	c.JSON(http.StatusOK, models.CollectResponse{OK: true, Count: count, Status: res.Status})
}

// clientIP picks the caller IP from the forwarded-for style headers in
// priority order. X-Forwarded-For may carry a chain; the first hop is
// the client.
func clientIP(c *gin.Context) string {
	for _, header := range ipHeaders {
		v := strings.TrimSpace(c.GetHeader(header))
		if v == "" {
			continue
		}
		if i := strings.IndexByte(v, ','); i >= 0 {
			v = strings.TrimSpace(v[:i])
		}
		return v
	}
	return ""
}
