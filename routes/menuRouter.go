package routes

import (
	"go-restaurant-pos/controllers"

	"github.com/gin-gonic/gin"
)

// PublicMenuRoutes let customers browse the menu from a scanned QR code.
func PublicMenuRoutes(incomingRoutes *gin.Engine) {
	incomingRoutes.GET("/menu-categories", controllers.GetMenuCategories())
	incomingRoutes.GET("/menu-items", controllers.GetMenuItems())
	incomingRoutes.GET("/menu-items/:item_id", controllers.GetMenuItem())
}

func MenuRoutes(incomingRoutes *gin.Engine) {
	incomingRoutes.POST("/menu-categories", staffOnly, controllers.CreateMenuCategory())
	incomingRoutes.PATCH("/menu-categories/:category_id", staffOnly, controllers.UpdateMenuCategory())
	incomingRoutes.DELETE("/menu-categories/:category_id", staffOnly, controllers.DeleteMenuCategory())
	incomingRoutes.POST("/menu-items", staffOnly, controllers.CreateMenuItem())
	incomingRoutes.PATCH("/menu-items/:item_id", staffOnly, controllers.UpdateMenuItem())
	incomingRoutes.DELETE("/menu-items/:item_id", staffOnly, controllers.DeleteMenuItem())
}
