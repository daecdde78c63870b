package controllers

import (
	"context"
	"fmt"
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

var stockCollection *mongo.Collection = database.OpenCollection(database.Client, "stock")

func GetStocks() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()

		filter := bson.M{}
		if branchID, err := primitive.ObjectIDFromHex(c.Query("branch_id")); err == nil {
			filter["branch_id"] = branchID
		}
		if c.Query("low") == "true" {
			filter["$expr"] = bson.M{"$lte": bson.A{"$quantity", "$low_threshold"}}
		}

		result, err := stockCollection.Find(ctx, filter)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "error occured while listing stocks"})
			return
		}
		var allStocks []bson.M
		if err := result.All(ctx, &allStocks); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, allStocks)
	}
}

func GetStock() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()

		stockID, err := primitive.ObjectIDFromHex(c.Param("stock_id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid stock id"})
			return
		}

		var stock models.Stock
		err = stockCollection.FindOne(ctx, bson.M{"_id": stockID}).Decode(&stock)
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "stock not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "error occured while fetching the stock"})
			return
		}
		c.JSON(http.StatusOK, stock)
	}
}

func CreateStock() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()

		var stock models.Stock
		if err := c.BindJSON(&stock); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := validate.Struct(&stock); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		stock.ID = primitive.NewObjectID()
		stock.Updated_at = time.Now().UTC()

		_, err := stockCollection.InsertOne(ctx, stock)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "stock was not created"})
			return
		}
		c.JSON(http.StatusCreated, stock)
	}
}

// AdjustStock applies an add or remove movement. The remove path runs as one
// conditional $inc guarded on the current quantity, so two concurrent
// removals can never drive the stock negative.
func AdjustStock() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()

		stockID, err := primitive.ObjectIDFromHex(c.Param("stock_id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid stock id"})
			return
		}

		var adjustment models.StockAdjustment
		if err := c.BindJSON(&adjustment); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := validate.Struct(&adjustment); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		delta := adjustment.Quantity
		filter := bson.M{"_id": stockID}
		if adjustment.Type == models.StockAdjustRemove {
			delta = -delta
			filter["quantity"] = bson.M{"$gte": adjustment.Quantity}
		}

		after := options.After
		opt := options.FindOneAndUpdateOptions{ReturnDocument: &after}

		var updated models.Stock
		err = stockCollection.FindOneAndUpdate(ctx,
			filter,
			bson.M{
				"$inc": bson.M{"quantity": delta},
				"$set": bson.M{
					"last_adjust_reason": adjustment.Reason,
					"updated_at":         time.Now().UTC(),
				},
			},
			&opt,
		).Decode(&updated)
		if err == mongo.ErrNoDocuments {
			var existing models.Stock
			lookupErr := stockCollection.FindOne(ctx, bson.M{"_id": stockID}).Decode(&existing)
			if lookupErr == mongo.ErrNoDocuments {
				c.JSON(http.StatusNotFound, gin.H{"error": "stock not found"})
				return
			}
			if lookupErr != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "stock adjust failed"})
				return
			}
			c.JSON(http.StatusConflict, gin.H{
				"error": fmt.Sprintf("insufficient stock: %.2f available, %.2f requested", existing.Quantity, adjustment.Quantity),
			})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "stock adjust failed"})
			return
		}
		c.JSON(http.StatusOK, updated)
	}
}

func UpdateStock() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()

		stockID, err := primitive.ObjectIDFromHex(c.Param("stock_id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid stock id"})
			return
		}

		var stock models.Stock
		if err := c.BindJSON(&stock); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		var updateObj primitive.D
		if stock.Low_threshold > 0 {
			updateObj = append(updateObj, bson.E{Key: "low_threshold", Value: stock.Low_threshold})
		}
		if !stock.Ingredient_id.IsZero() {
			updateObj = append(updateObj, bson.E{Key: "ingredient_id", Value: stock.Ingredient_id})
		}
		updateObj = append(updateObj, bson.E{Key: "updated_at", Value: time.Now().UTC()})

		after := options.After
		opt := options.FindOneAndUpdateOptions{ReturnDocument: &after}

		var updated models.Stock
		err = stockCollection.FindOneAndUpdate(ctx,
			bson.M{"_id": stockID},
			bson.D{{Key: "$set", Value: updateObj}},
			&opt,
		).Decode(&updated)
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "stock not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "stock update failed"})
			return
		}
		c.JSON(http.StatusOK, updated)
	}
}

func DeleteStock() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()

		stockID, err := primitive.ObjectIDFromHex(c.Param("stock_id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid stock id"})
			return
		}

		var deleted models.Stock
		err = stockCollection.FindOneAndDelete(ctx, bson.M{"_id": stockID}).Decode(&deleted)
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "stock not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "stock delete failed"})
			return
		}
		c.JSON(http.StatusOK, deleted)
	}
}
