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

var branchCollection *mongo.Collection = database.OpenCollection(database.Client, "branch")

func GetBranches() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()

		result, err := branchCollection.Find(ctx, bson.M{})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "error occured while listing branches"})
			return
		}
		var allBranches []bson.M
		if err := result.All(ctx, &allBranches); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, allBranches)
	}
}

func GetBranch() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()

		branchID, err := primitive.ObjectIDFromHex(c.Param("branch_id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid branch id"})
			return
		}

		var branch models.Branch
		err = branchCollection.FindOne(ctx, bson.M{"_id": branchID}).Decode(&branch)
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "branch not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "error occured while fetching the branch"})
			return
		}
		c.JSON(http.StatusOK, branch)
	}
}

func CreateBranch() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()

		var branch models.Branch
		if err := c.BindJSON(&branch); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := validate.Struct(&branch); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		branch.ID = primitive.NewObjectID()
		branch.Created_at = time.Now().UTC()
		branch.Updated_at = branch.Created_at

		_, err := branchCollection.InsertOne(ctx, branch)
		if mongo.IsDuplicateKeyError(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "branch code already in use"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "branch was not created"})
			return
		}
		c.JSON(http.StatusCreated, branch)
	}
}

func UpdateBranch() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()

		branchID, err := primitive.ObjectIDFromHex(c.Param("branch_id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid branch id"})
			return
		}

		var branch models.Branch
		if err := c.BindJSON(&branch); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		var updateObj primitive.D
		if branch.Name != "" {
			updateObj = append(updateObj, bson.E{Key: "name", Value: branch.Name})
		}
		if branch.Code != "" {
			updateObj = append(updateObj, bson.E{Key: "code", Value: branch.Code})
		}
		if branch.Address != "" {
			updateObj = append(updateObj, bson.E{Key: "address", Value: branch.Address})
		}
		if branch.Contact != "" {
			updateObj = append(updateObj, bson.E{Key: "contact", Value: branch.Contact})
		}
		updateObj = append(updateObj, bson.E{Key: "updated_at", Value: time.Now().UTC()})

		after := options.After
		opt := options.FindOneAndUpdateOptions{ReturnDocument: &after}

		var updated models.Branch
		err = branchCollection.FindOneAndUpdate(ctx,
			bson.M{"_id": branchID},
			bson.D{{Key: "$set", Value: updateObj}},
			&opt,
		).Decode(&updated)
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "branch not found"})
			return
		}
		if mongo.IsDuplicateKeyError(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "branch code already in use"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "branch update failed"})
			return
		}
		c.JSON(http.StatusOK, updated)
	}
}

func DeleteBranch() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()

		branchID, err := primitive.ObjectIDFromHex(c.Param("branch_id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid branch id"})
			return
		}

		var deleted models.Branch
		err = branchCollection.FindOneAndDelete(ctx, bson.M{"_id": branchID}).Decode(&deleted)
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "branch not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "branch delete failed"})
			return
		}
		c.JSON(http.StatusOK, deleted)
	}
}
