package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"go-restaurant-pos/services"
)

type checkInRequest struct {
	Branch_id primitive.ObjectID `json:"branch_id" validate:"required"`
	Table_id  primitive.ObjectID `json:"table_id" validate:"required"`
	Qr_code   string             `json:"qr_code"`
}

type joinRequest struct {
	Qr_code    string `json:"qr_code" validate:"required"`
	Client_id  string `json:"client_id" validate:"required"`
	User_label string `json:"user_label"`
}

// CheckIn opens a session for a table, minting a QR code unless the caller
// supplied one.
func CheckIn(svc *services.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()

		var req checkInRequest
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := validate.Struct(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		session, err := svc.CheckIn(ctx, req.Branch_id, req.Table_id, req.Qr_code)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusCreated, session)
	}
}

// JoinSession adds a member to the session behind a scanned QR code.
func JoinSession(svc *services.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()

		var req joinRequest
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := validate.Struct(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		session, err := svc.Join(ctx, req.Qr_code, req.Client_id, req.User_label)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, session)
	}
}

func GetSessions(svc *services.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()

		var filter services.SessionFilter
		if branchID, err := primitive.ObjectIDFromHex(c.Query("branch_id")); err == nil {
			filter.BranchID = &branchID
		}
		if tableID, err := primitive.ObjectIDFromHex(c.Query("table_id")); err == nil {
			filter.TableID = &tableID
		}
		filter.ActiveOnly = c.Query("active") == "true"

		sessions, err := svc.Find(ctx, filter)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, sessions)
	}
}

func GetSession(svc *services.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()

		sessionID, err := primitive.ObjectIDFromHex(c.Param("session_id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session id"})
			return
		}

		session, err := svc.FindByID(ctx, sessionID)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, session)
	}
}

// GetSessionByQr resolves a QR code to its session; open sessions only
// unless include_inactive=true.
func GetSessionByQr(svc *services.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()

		includeInactive := c.Query("include_inactive") == "true"
		session, err := svc.FindByQrCode(ctx, c.Param("qr_code"), includeInactive)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, session)
	}
}

// GetActiveSessionByTable returns the open session for a table, or null when
// the table is free.
func GetActiveSessionByTable(svc *services.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()

		tableID, err := primitive.ObjectIDFromHex(c.Param("table_id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid table id"})
			return
		}

		session, err := svc.FindActiveByTable(ctx, tableID)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, session)
	}
}

// CheckoutSession closes a session. Checking out twice is an error, not a
// no-op.
func CheckoutSession(svc *services.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()

		sessionID, err := primitive.ObjectIDFromHex(c.Param("session_id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session id"})
			return
		}

		session, err := svc.Checkout(ctx, sessionID)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, session)
	}
}

func DeleteSession(svc *services.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()

		sessionID, err := primitive.ObjectIDFromHex(c.Param("session_id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session id"})
			return
		}

		session, err := svc.Delete(ctx, sessionID)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, session)
	}
}
