package controllers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"go-restaurant-pos/services"
)

// CreateOrder accepts a member's order for an open session.
func CreateOrder(svc *services.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()

		var req services.CreateOrderRequest
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := validate.Struct(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		order, err := svc.Create(ctx, req)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusCreated, order)
	}
}

func GetOrders(svc *services.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()

		filter := services.OrderFilter{
			Status:   c.Query("status"),
			ClientID: c.Query("client_id"),
			OrderBy:  c.Query("order_by"),
		}
		if sessionID, err := primitive.ObjectIDFromHex(c.Query("session_id")); err == nil {
			filter.SessionID = &sessionID
		}
		if branchID, err := primitive.ObjectIDFromHex(c.Query("branch_id")); err == nil {
			filter.BranchID = &branchID
		}
		if tableID, err := primitive.ObjectIDFromHex(c.Query("table_id")); err == nil {
			filter.TableID = &tableID
		}
		if start, err := time.Parse(time.RFC3339, c.Query("start_date")); err == nil {
			filter.StartDate = &start
		}
		if end, err := time.Parse(time.RFC3339, c.Query("end_date")); err == nil {
			filter.EndDate = &end
		}

		orders, err := svc.Find(ctx, filter)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, orders)
	}
}

func GetOrder(svc *services.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()

		orderID, err := primitive.ObjectIDFromHex(c.Param("order_id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
			return
		}

		order, err := svc.FindByID(ctx, orderID)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

// UpdateOrderStatus moves an order between the kitchen statuses and fans the
// change out to every subscribed client.
func UpdateOrderStatus(svc *services.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()

		orderID, err := primitive.ObjectIDFromHex(c.Param("order_id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
			return
		}

		var body struct {
			Status string `json:"status" validate:"required"`
		}
		if err := c.BindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		order, err := svc.UpdateStatus(ctx, orderID, body.Status)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

func DeleteOrder(svc *services.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()

		orderID, err := primitive.ObjectIDFromHex(c.Param("order_id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
			return
		}

		order, err := svc.Delete(ctx, orderID)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

func reportWindow(c *gin.Context) (branchID *primitive.ObjectID, start, end time.Time) {
	if id, err := primitive.ObjectIDFromHex(c.Query("branch_id")); err == nil {
		branchID = &id
	}
	if t, err := time.Parse(time.RFC3339, c.Query("start_date")); err == nil {
		start = t
	}
	if t, err := time.Parse(time.RFC3339, c.Query("end_date")); err == nil {
		end = t
	}
	return
}

// GetWeeklySales reports sales totals per day of week.
func GetWeeklySales(svc *services.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()

		branchID, start, end := reportWindow(c)
		rows, err := svc.WeeklySales(ctx, branchID, start, end)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, rows)
	}
}

// GetHourlySales reports 24 hourly buckets for one day, date=RFC3339.
func GetHourlySales(svc *services.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()

		var branchID *primitive.ObjectID
		if id, err := primitive.ObjectIDFromHex(c.Query("branch_id")); err == nil {
			branchID = &id
		}
		var day time.Time
		if t, err := time.Parse(time.RFC3339, c.Query("date")); err == nil {
			day = t
		}

		rows, err := svc.HourlySales(ctx, branchID, day)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, rows)
	}
}

// GetSalesByPeriod reports sales bucketed by group_by=hour|day|week|month.
func GetSalesByPeriod(svc *services.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()

		branchID, start, end := reportWindow(c)
		rows, err := svc.SalesByPeriod(ctx, branchID, start, end, c.Query("group_by"))
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, rows)
	}
}

// GetPopularMenuItems ranks menu items by ordered quantity.
func GetPopularMenuItems(svc *services.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()

		branchID, start, end := reportWindow(c)
		limit, _ := strconv.Atoi(c.Query("limit"))

		items, err := svc.PopularMenuItems(ctx, branchID, limit, start, end)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, items)
	}
}
