package server

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mensylisir/opsagent/pkg/logger"
	"github.com/mensylisir/opsagent/rest/server/handler"
)

// SetupRouter wires every route of the HTTP front end.
func SetupRouter(log *logger.Logger, h *handler.PlanHandler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(log))

	router.GET("/healthz", h.Health)
	router.GET("/", h.Index)
	router.POST("/", h.Submit)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/capabilities", h.ListCapabilities)
		v1.POST("/plans/execute", h.ExecutePlan)
		v1.POST("/ask", h.Ask)
		v1.GET("/runs/:runId", h.GetRun)
	}
	return router
}

func requestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debugf("%s %s -> %d (%s)", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start).Round(time.Millisecond))
	}
}
