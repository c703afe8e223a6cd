package router

import (
	"net/http"

	"flightsurety-service/internal/interface/httpapi"
	"flightsurety-service/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter assembles the HTTP engine: health, metrics and the versioned ledger API
func NewRouter(handler *httpapi.Handler, gatherer prometheus.Gatherer, version string, logger logger.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(httpapi.RequestLogger(logger))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "version": version})
	})
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	api := router.Group("/api/v1")
	handler.Register(api)

	logger.Info("Registered ledger routes", "routes", len(router.Routes()))
	return router
}
