package routes

import (
	"go-restaurant-pos/controllers"
	"go-restaurant-pos/middleware"
	"go-restaurant-pos/models"

	"github.com/gin-gonic/gin"
)

// AuthRoutes are the unauthenticated entry points.
func AuthRoutes(incomingRoutes *gin.Engine) {
	incomingRoutes.POST("/users/signup", controllers.Signup())
	incomingRoutes.POST("/users/login", controllers.Login())
}

func UserRoutes(incomingRoutes *gin.Engine) {
	incomingRoutes.POST("/users/change-password", controllers.ChangePassword())
	incomingRoutes.GET("/users", middleware.RequireRole(), controllers.GetUsers())
	incomingRoutes.GET("/users/:user_id", controllers.GetUser())
	incomingRoutes.DELETE("/users/:user_id", middleware.RequireRole(), controllers.DeleteUser())
}

// staffOnly guards branch management routes.
var staffOnly = middleware.RequireRole(models.RoleBranchOwner)
