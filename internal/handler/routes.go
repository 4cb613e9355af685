package handler

import "github.com/gin-gonic/gin"

func RegisterRoutes(api *gin.RouterGroup, calc *CalculatorHandler, ref *ReferenceHandler, quotes *QuoteHandler, pipeline *PipelineHandler) {
	calculators := api.Group("/calculators")
	{
		calculators.POST("/cbm", calc.CBM)
		calculators.POST("/volumetric-weight", calc.VolumetricWeight)
		calculators.POST("/currency", calc.Currency)
		calculators.POST("/landed-cost", calc.LandedCost)
		calculators.POST("/derive", calc.Derive)
	}

	api.GET("/exchange-rates/latest", ref.LatestRate)
	api.GET("/exchange-rates/trend", ref.RateTrend)
	api.GET("/hs-codes/search", ref.SearchHSCodes)
	api.GET("/tariffs/:hsCode", ref.Tariff)
	api.GET("/reports/pipeline", pipeline.Summary)

	mr := api.Group("/market-research")
	{
		mr.POST("", quotes.Create)
		mr.GET("", quotes.List)
		mr.GET("/:reservationNumber", quotes.Get)
		mr.PUT("/:reservationNumber", quotes.Save)
		mr.POST("/:reservationNumber/preview", quotes.Preview)
		mr.PUT("/:reservationNumber/hs-code", quotes.SetHSCode)
		mr.GET("/:reservationNumber/events", quotes.Events)
		mr.GET("/:reservationNumber/sheet", quotes.Sheet)
	}
}
