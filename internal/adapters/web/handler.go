package web

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bullionwatch/collector/internal/ports"
)

type Handler struct {
	store  ports.RatesStore
	cache  ports.RatesCache
	logger *slog.Logger
}

func NewHandler(store ports.RatesStore, cache ports.RatesCache, logger *slog.Logger) *Handler {
	return &Handler{store: store, cache: cache, logger: logger}
}

// LatestRates serves the latest snapshot, cache first, store as fallback.
// 404 means no run has ever succeeded.
func (h *Handler) LatestRates(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if h.cache != nil {
		snap, err := h.cache.Latest(ctx)
		if err != nil {
			h.logger.Warn("cache read failed, falling back to store", "error", err)
		} else if snap != nil {
			c.JSON(http.StatusOK, snap)
			return
		}
	}

	snap, err := h.store.Latest(ctx)
	if err != nil {
		h.logger.Error("store read failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	if snap == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "rates not available yet"})
		return
	}
	c.JSON(http.StatusOK, snap)
}

// Health reports store and cache connectivity.
func (h *Handler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := gin.H{
		"postgres": "ok",
		"redis":    "ok",
	}
	code := http.StatusOK

	if err := h.store.Ping(ctx); err != nil {
		status["postgres"] = "down"
		code = http.StatusServiceUnavailable
	}
	if h.cache != nil {
		if err := h.cache.Ping(ctx); err != nil {
			status["redis"] = "down"
		}
	}

	c.JSON(code, status)
}
