package routes

import (
	"go-restaurant-pos/controllers"

	"github.com/gin-gonic/gin"
)

func BranchRoutes(incomingRoutes *gin.Engine) {
	incomingRoutes.GET("/branches", controllers.GetBranches())
	incomingRoutes.GET("/branches/:branch_id", controllers.GetBranch())
	incomingRoutes.POST("/branches", staffOnly, controllers.CreateBranch())
	incomingRoutes.PATCH("/branches/:branch_id", staffOnly, controllers.UpdateBranch())
	incomingRoutes.DELETE("/branches/:branch_id", staffOnly, controllers.DeleteBranch())
}

func TableRoutes(incomingRoutes *gin.Engine) {
	incomingRoutes.GET("/tables", controllers.GetTables())
	incomingRoutes.GET("/tables/:table_id", controllers.GetTable())
	incomingRoutes.POST("/tables", staffOnly, controllers.CreateTable())
	incomingRoutes.PATCH("/tables/:table_id", staffOnly, controllers.UpdateTable())
	incomingRoutes.DELETE("/tables/:table_id", staffOnly, controllers.DeleteTable())
}
