package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wederfonseca/achadinhododia/internal/brtime"
	"github.com/wederfonseca/achadinhododia/internal/dedup"
	"github.com/wederfonseca/achadinhododia/internal/models"
)

// stats serves the daily accepted-event counter.
//
// GET /stats?date=YYYY-MM-DD
// - date defaults to today in Brazil local time
// - Returns count 0 for days with no accepted events (or expired counters)
func (h *Relay) stats(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "counter store not configured"})
		return
	}

	date := c.Query("date")
	if date == "" {
		date = brtime.Date(h.now())
	} else if _, err := time.Parse("2006-01-02", date); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}

	count, err := h.store.GetCounter(c.Request.Context(), dedup.CounterKeyForDate(date))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "counter read failed"})
		return
	}

	c.JSON(http.StatusOK, models.StatsResponse{Date: date, Count: count})
}
