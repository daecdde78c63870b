package routes

import (
	"go-restaurant-pos/controllers"
	"go-restaurant-pos/services"

	"github.com/gin-gonic/gin"
)

// PublicSessionRoutes are reachable by customers straight from a QR scan,
// before any authentication.
func PublicSessionRoutes(incomingRoutes *gin.Engine, svc *services.SessionService) {
	incomingRoutes.POST("/sessions/join", controllers.JoinSession(svc))
	incomingRoutes.GET("/sessions/qr/:qr_code", controllers.GetSessionByQr(svc))
	incomingRoutes.GET("/sessions/table/:table_id/active", controllers.GetActiveSessionByTable(svc))
}

func SessionRoutes(incomingRoutes *gin.Engine, svc *services.SessionService) {
	incomingRoutes.POST("/sessions/checkin", controllers.CheckIn(svc))
	incomingRoutes.GET("/sessions", controllers.GetSessions(svc))
	incomingRoutes.GET("/sessions/:session_id", controllers.GetSession(svc))
	incomingRoutes.POST("/sessions/:session_id/checkout", controllers.CheckoutSession(svc))
	incomingRoutes.DELETE("/sessions/:session_id", staffOnly, controllers.DeleteSession(svc))
}
