package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"go-restaurant-pos/services"
)

// CreatePayment records a cash or card settlement.
func CreatePayment(svc *services.PaymentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()

		var req services.CreatePaymentRequest
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := validate.Struct(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		payment, err := svc.Create(ctx, req)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusCreated, payment)
	}
}

// CreatePromptPayPayment starts a PromptPay charge and returns the pending
// payment with its scannable QR image URL.
func CreatePromptPayPayment(svc *services.PaymentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()

		var req services.CreatePromptPayRequest
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := validate.Struct(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		payment, err := svc.CreatePromptPay(ctx, req)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusCreated, payment)
	}
}

func GetPayments(svc *services.PaymentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()

		filter := services.PaymentFilter{
			Status: c.Query("status"),
			Method: c.Query("method"),
		}
		if orderID, err := primitive.ObjectIDFromHex(c.Query("order_id")); err == nil {
			filter.OrderID = &orderID
		}
		if sessionID, err := primitive.ObjectIDFromHex(c.Query("session_id")); err == nil {
			filter.SessionID = &sessionID
		}
		if branchID, err := primitive.ObjectIDFromHex(c.Query("branch_id")); err == nil {
			filter.BranchID = &branchID
		}

		payments, err := svc.Find(ctx, filter)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, payments)
	}
}

func GetPayment(svc *services.PaymentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()

		paymentID, err := primitive.ObjectIDFromHex(c.Param("payment_id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payment id"})
			return
		}

		payment, err := svc.FindByID(ctx, paymentID)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, payment)
	}
}

func UpdatePayment(svc *services.PaymentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()

		paymentID, err := primitive.ObjectIDFromHex(c.Param("payment_id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payment id"})
			return
		}

		var body struct {
			Amount *float64 `json:"amount"`
			Method *string  `json:"method"`
			Status *string  `json:"status"`
		}
		if err := c.BindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		payment, err := svc.Update(ctx, paymentID, services.PaymentUpdate{
			Amount: body.Amount,
			Method: body.Method,
			Status: body.Status,
		})
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, payment)
	}
}

// UpdatePaymentStatus settles a cash or card payment at the counter.
func UpdatePaymentStatus(svc *services.PaymentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()

		paymentID, err := primitive.ObjectIDFromHex(c.Param("payment_id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payment id"})
			return
		}

		var body struct {
			Status string `json:"status"`
		}
		if err := c.BindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		payment, err := svc.UpdateStatus(ctx, paymentID, body.Status)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, payment)
	}
}

// CheckPromptPayStatus polls the gateway for a pending PromptPay payment.
func CheckPromptPayStatus(svc *services.PaymentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()

		paymentID, err := primitive.ObjectIDFromHex(c.Param("payment_id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payment id"})
			return
		}

		payment, err := svc.CheckPromptPayStatus(ctx, paymentID)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, payment)
	}
}

func DeletePayment(svc *services.PaymentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()

		paymentID, err := primitive.ObjectIDFromHex(c.Param("payment_id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payment id"})
			return
		}

		payment, err := svc.Delete(ctx, paymentID)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, payment)
	}
}

type webhookEvent struct {
	Key  string `json:"key"`
	Data struct {
		Object string `json:"object"`
		ID     string `json:"id"`
		Status string `json:"status"`
	} `json:"data"`
}

// OmiseWebhook ingests charge events pushed by the gateway. Events that are
// not charge updates are acknowledged and dropped so the gateway stops
// retrying them; a charge we never created is a hard 404.
func OmiseWebhook(svc *services.PaymentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()

		var event webhookEvent
		if err := c.BindJSON(&event); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if event.Data.Object != "charge" || event.Data.ID == "" {
			c.JSON(http.StatusOK, gin.H{"received": true})
			return
		}

		payment, err := svc.ReconcileFromWebhook(ctx, event.Data.ID, event.Data.Status)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"received": true, "payment_id": payment.ID})
	}
}
