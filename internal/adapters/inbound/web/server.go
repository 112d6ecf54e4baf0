// Package web exposes the link validation control surface over HTTP.
package web

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/promisetracker/linkwatch/internal/domain"
)

// NewRouter builds the gin engine serving the link validation API.
func NewRouter(ctrl domain.ValidationControl, cfg domain.HTTPConfig, logger *log.Logger) *gin.Engine {
	g := gin.New()
	g.Use(requestLogger(logger), gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Error("handler panic", "path", c.Request.URL.Path, "panic", recovered)
		c.AbortWithStatusJSON(http.StatusInternalServerError, errorBody("internal error"))
	}))

	if len(cfg.AllowedOrigins) > 0 {
		g.Use(cors.New(cors.Config{
			AllowOrigins:  cfg.AllowedOrigins,
			AllowMethods:  []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:  []string{"Origin", "Content-Type"},
			ExposeHeaders: []string{"Content-Length"},
			MaxAge:        12 * time.Hour,
		}))
	}

	h := NewHandlers(ctrl)

	api := g.Group("/api")
	{
		api.GET("/link-validation/status", h.Status)
		api.POST("/link-validation/run", h.Run)
		api.GET("/link-validation/report", h.Report)
		api.GET("/sources/validate/:id", h.ValidateSource)
	}
	g.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return g
}

// requestLogger logs one line per request through the structured logger.
func requestLogger(logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

// NewServer wraps the router in an http.Server with conservative timeouts.
// Write timeout is left unset because POST /run blocks for a whole run.
func NewServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
}
