package analytics

import "github.com/gin-gonic/gin"

func SetupAnalyticsRoutes(rg *gin.RouterGroup, controller Controller) {
	analytics := rg.Group("/analytics")
	{
		analytics.GET("/facts", controller.GetFacts)
		analytics.GET("/kpis", controller.GetKPIs)
		analytics.GET("/windowed", controller.GetWindowed)
		analytics.GET("/summary", controller.GetSummary)
		analytics.GET("/totals", controller.GetTotals)
	}

	registry := analytics.Group("/metrics")
	{
		registry.GET("", controller.ListMetrics)
		registry.GET("/:name", controller.GetMetric)
	}
}
