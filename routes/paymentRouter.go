package routes

import (
	"go-restaurant-pos/controllers"
	"go-restaurant-pos/services"

	"github.com/gin-gonic/gin"
)

// PublicPaymentRoutes cover the customer-facing PromptPay flow and the
// gateway webhook.
func PublicPaymentRoutes(incomingRoutes *gin.Engine, svc *services.PaymentService) {
	incomingRoutes.POST("/payments/webhook", controllers.OmiseWebhook(svc))
	incomingRoutes.POST("/payments/promptpay", controllers.CreatePromptPayPayment(svc))
	incomingRoutes.GET("/payments/:payment_id/promptpay-status", controllers.CheckPromptPayStatus(svc))
}

func PaymentRoutes(incomingRoutes *gin.Engine, svc *services.PaymentService) {
	incomingRoutes.POST("/payments", controllers.CreatePayment(svc))
	incomingRoutes.GET("/payments", controllers.GetPayments(svc))
	incomingRoutes.GET("/payments/:payment_id", controllers.GetPayment(svc))
	incomingRoutes.PATCH("/payments/:payment_id", controllers.UpdatePayment(svc))
	incomingRoutes.PATCH("/payments/:payment_id/status", controllers.UpdatePaymentStatus(svc))
	incomingRoutes.DELETE("/payments/:payment_id", staffOnly, controllers.DeletePayment(svc))
}
