package routes

import (
	"go-restaurant-pos/controllers"
	"go-restaurant-pos/services"

	"github.com/gin-gonic/gin"
)

// PublicOrderRoutes let seated customers submit and follow their own orders
// without an account.
func PublicOrderRoutes(incomingRoutes *gin.Engine, svc *services.OrderService) {
	incomingRoutes.POST("/orders", controllers.CreateOrder(svc))
	incomingRoutes.GET("/orders", controllers.GetOrders(svc))
	incomingRoutes.GET("/orders/:order_id", controllers.GetOrder(svc))
}

func OrderRoutes(incomingRoutes *gin.Engine, svc *services.OrderService) {
	incomingRoutes.PATCH("/orders/:order_id/status", controllers.UpdateOrderStatus(svc))
	incomingRoutes.DELETE("/orders/:order_id", staffOnly, controllers.DeleteOrder(svc))

	incomingRoutes.GET("/reports/sales/weekly", controllers.GetWeeklySales(svc))
	incomingRoutes.GET("/reports/sales/hourly", controllers.GetHourlySales(svc))
	incomingRoutes.GET("/reports/sales", controllers.GetSalesByPeriod(svc))
	incomingRoutes.GET("/reports/popular-items", controllers.GetPopularMenuItems(svc))
}
