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

var tableCollection *mongo.Collection = database.OpenCollection(database.Client, "table")

func GetTables() gin.HandlerFunc {
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

		result, err := tableCollection.Find(ctx, filter)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "error occured while listing tables"})
			return
		}
		var allTables []bson.M
		if err := result.All(ctx, &allTables); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, allTables)
	}
}

func GetTable() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()

		tableID, err := primitive.ObjectIDFromHex(c.Param("table_id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid table id"})
			return
		}

		var table models.Table
		err = tableCollection.FindOne(ctx, bson.M{"_id": tableID}).Decode(&table)
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "table not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "error occured while fetching the table"})
			return
		}
		c.JSON(http.StatusOK, table)
	}
}

func CreateTable() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()

		var table models.Table
		if err := c.BindJSON(&table); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if table.Status == "" {
			table.Status = models.TableAvailable
		}
		if err := validate.Struct(&table); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		table.ID = primitive.NewObjectID()
		table.Created_at = time.Now().UTC()
		table.Updated_at = table.Created_at

		_, err := tableCollection.InsertOne(ctx, table)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "table was not created"})
			return
		}
		c.JSON(http.StatusCreated, table)
	}
}

func UpdateTable() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()

		tableID, err := primitive.ObjectIDFromHex(c.Param("table_id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid table id"})
			return
		}

		var table models.Table
		if err := c.BindJSON(&table); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		var updateObj primitive.D
		if table.Name != "" {
			updateObj = append(updateObj, bson.E{Key: "name", Value: table.Name})
		}
		if table.Status != "" {
			if table.Status != models.TableAvailable && table.Status != models.TableOccupied && table.Status != models.TableReserved {
				c.JSON(http.StatusBadRequest, gin.H{"error": "unknown table status"})
				return
			}
			updateObj = append(updateObj, bson.E{Key: "status", Value: table.Status})
		}
		if !table.Branch_id.IsZero() {
			updateObj = append(updateObj, bson.E{Key: "branch_id", Value: table.Branch_id})
		}
		updateObj = append(updateObj, bson.E{Key: "updated_at", Value: time.Now().UTC()})

		after := options.After
		opt := options.FindOneAndUpdateOptions{ReturnDocument: &after}

		var updated models.Table
		err = tableCollection.FindOneAndUpdate(ctx,
			bson.M{"_id": tableID},
			bson.D{{Key: "$set", Value: updateObj}},
			&opt,
		).Decode(&updated)
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "table not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "table update failed"})
			return
		}
		c.JSON(http.StatusOK, updated)
	}
}

func DeleteTable() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()

		tableID, err := primitive.ObjectIDFromHex(c.Param("table_id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid table id"})
			return
		}

		var deleted models.Table
		err = tableCollection.FindOneAndDelete(ctx, bson.M{"_id": tableID}).Decode(&deleted)
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "table not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "table delete failed"})
			return
		}
		c.JSON(http.StatusOK, deleted)
	}
}
