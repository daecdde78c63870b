package routes

import (
	"go-restaurant-pos/controllers"

	"github.com/gin-gonic/gin"
)

func IngredientRoutes(incomingRoutes *gin.Engine) {
	incomingRoutes.GET("/ingredients", controllers.GetIngredients())
	incomingRoutes.GET("/ingredients/:ingredient_id", controllers.GetIngredient())
	incomingRoutes.POST("/ingredients", staffOnly, controllers.CreateIngredient())
	incomingRoutes.PATCH("/ingredients/:ingredient_id", staffOnly, controllers.UpdateIngredient())
	incomingRoutes.DELETE("/ingredients/:ingredient_id", staffOnly, controllers.DeleteIngredient())
}

func StockRoutes(incomingRoutes *gin.Engine) {
	incomingRoutes.GET("/stocks", controllers.GetStocks())
	incomingRoutes.GET("/stocks/:stock_id", controllers.GetStock())
	incomingRoutes.POST("/stocks", staffOnly, controllers.CreateStock())
	incomingRoutes.POST("/stocks/:stock_id/adjust", controllers.AdjustStock())
	incomingRoutes.PATCH("/stocks/:stock_id", staffOnly, controllers.UpdateStock())
	incomingRoutes.DELETE("/stocks/:stock_id", staffOnly, controllers.DeleteStock())
}

func WaitlistRoutes(incomingRoutes *gin.Engine) {
	incomingRoutes.GET("/waitlist", controllers.GetWaitlistEntries())
	incomingRoutes.GET("/waitlist/:waitlist_id", controllers.GetWaitlistEntry())
	incomingRoutes.POST("/waitlist", controllers.CreateWaitlistEntry())
	incomingRoutes.PATCH("/waitlist/:waitlist_id/status", controllers.UpdateWaitlistStatus())
	incomingRoutes.DELETE("/waitlist/:waitlist_id", controllers.DeleteWaitlistEntry())
}
