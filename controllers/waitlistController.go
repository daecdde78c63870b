package controllers

import (
	"context"
	"net/http"
	"time"

	"go-restaurant-pos/database"
	"go-restaurant-pos/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var waitlistCollection *mongo.Collection = database.OpenCollection(database.Client, "waitlist")

func GetWaitlistEntries() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()

		filter := bson.M{}
		if branchID, err := primitive.ObjectIDFromHex(c.Query("branch_id")); err == nil {
			filter["branch_id"] = branchID
		}
		if status := c.Query("status"); status != "" {
			filter["status"] = status
		}

		opts := options.Find().SetSort(bson.D{{Key: "requested_at", Value: 1}})
		result, err := waitlistCollection.Find(ctx, filter, opts)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "error occured while listing the waitlist"})
			return
		}
		var entries []bson.M
		if err := result.All(ctx, &entries); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, entries)
	}
}

func GetWaitlistEntry() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()

		entryID, err := primitive.ObjectIDFromHex(c.Param("waitlist_id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid waitlist id"})
			return
		}

		var entry models.Waitlist
		err = waitlistCollection.FindOne(ctx, bson.M{"_id": entryID}).Decode(&entry)
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "waitlist entry not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "error occured while fetching the waitlist entry"})
			return
		}
		c.JSON(http.StatusOK, entry)
	}
}

func CreateWaitlistEntry() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()

		var entry models.Waitlist
		if err := c.BindJSON(&entry); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if entry.Status == "" {
			entry.Status = models.WaitlistWaiting
		}
		if err := validate.Struct(&entry); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		entry.ID = primitive.NewObjectID()
		if entry.Requested_at.IsZero() {
			entry.Requested_at = time.Now().UTC()
		}
		entry.Created_at = time.Now().UTC()
		entry.Updated_at = entry.Created_at

		_, err := waitlistCollection.InsertOne(ctx, entry)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "waitlist entry was not created"})
			return
		}
		c.JSON(http.StatusCreated, entry)
	}
}

// UpdateWaitlistStatus moves a party through the waiting lifecycle; the
// notified transition stamps Notified_at.
func UpdateWaitlistStatus() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()

		entryID, err := primitive.ObjectIDFromHex(c.Param("waitlist_id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid waitlist id"})
			return
		}

		var body struct {
			Status string `json:"status" validate:"required,eq=waiting|eq=notified|eq=seated|eq=cancelled"`
		}
		if err := c.BindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := validate.Struct(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		now := time.Now().UTC()
		set := bson.M{"status": body.Status, "updated_at": now}
		if body.Status == models.WaitlistNotified {
			set["notified_at"] = now
		}

		after := options.After
		opt := options.FindOneAndUpdateOptions{ReturnDocument: &after}

		var updated models.Waitlist
		err = waitlistCollection.FindOneAndUpdate(ctx,
			bson.M{"_id": entryID},
			bson.M{"$set": set},
			&opt,
		).Decode(&updated)
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "waitlist entry not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "waitlist update failed"})
			return
		}
		c.JSON(http.StatusOK, updated)
	}
}

func DeleteWaitlistEntry() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()

		entryID, err := primitive.ObjectIDFromHex(c.Param("waitlist_id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid waitlist id"})
			return
		}

		var deleted models.Waitlist
		err = waitlistCollection.FindOneAndDelete(ctx, bson.M{"_id": entryID}).Decode(&deleted)
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "waitlist entry not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "waitlist delete failed"})
			return
		}
		c.JSON(http.StatusOK, deleted)
	}
}
