package web

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/bullionwatch/collector/internal/ports"
)

// NewRouter wires the read-only API surface.
func NewRouter(store ports.RatesStore, cache ports.RatesCache, logger *slog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	h := NewHandler(store, cache, logger)

	r.GET("/health", h.Health)
	r.GET("/api/v1/rates", h.LatestRates)

	return r
}
