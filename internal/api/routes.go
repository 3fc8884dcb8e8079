package api

import (
	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine, handler *Handler) {
	api := router.Group("/api")
	{
		api.GET("/properties", handler.GetAllProperties)
		api.POST("/properties", handler.SaveProperty)
		api.GET("/properties/:id", handler.GetProperty)
		api.DELETE("/properties/:id", handler.DeleteProperty)
		api.GET("/properties/:id/valuation", handler.GetValuation)
		api.GET("/properties/:id/comparables", handler.GetComparables)

		// Map endpoints live under their own group so they do not collide
		// with the :id wildcard above.
		api.GET("/map/in-radius", handler.GetPropertiesInRadius)
		api.GET("/map/district-hulls", handler.GetDistrictHulls)

		api.GET("/districts", handler.GetDistricts)
		api.GET("/market/stats", handler.GetMarketStats)
		api.POST("/update-coordinates", handler.UpdateCoordinates)
	}
}
