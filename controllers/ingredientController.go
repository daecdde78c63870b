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

var ingredientCollection *mongo.Collection = database.OpenCollection(database.Client, "ingredient")

func GetIngredients() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()

		result, err := ingredientCollection.Find(ctx, bson.M{})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "error occured while listing ingredients"})
			return
		}
		var allIngredients []bson.M
		if err := result.All(ctx, &allIngredients); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, allIngredients)
	}
}

func GetIngredient() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()

		ingredientID, err := primitive.ObjectIDFromHex(c.Param("ingredient_id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid ingredient id"})
			return
		}

		var ingredient models.Ingredient
		err = ingredientCollection.FindOne(ctx, bson.M{"_id": ingredientID}).Decode(&ingredient)
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "ingredient not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "error occured while fetching the ingredient"})
			return
		}
		c.JSON(http.StatusOK, ingredient)
	}
}

func CreateIngredient() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()

		var ingredient models.Ingredient
		if err := c.BindJSON(&ingredient); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := validate.Struct(&ingredient); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ingredient.ID = primitive.NewObjectID()
		ingredient.Created_at = time.Now().UTC()
		ingredient.Updated_at = ingredient.Created_at

		_, err := ingredientCollection.InsertOne(ctx, ingredient)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "ingredient was not created"})
			return
		}
		c.JSON(http.StatusCreated, ingredient)
	}
}

func UpdateIngredient() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()

		ingredientID, err := primitive.ObjectIDFromHex(c.Param("ingredient_id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid ingredient id"})
			return
		}

		var ingredient models.Ingredient
		if err := c.BindJSON(&ingredient); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		var updateObj primitive.D
		if ingredient.Name != "" {
			updateObj = append(updateObj, bson.E{Key: "name", Value: ingredient.Name})
		}
		if ingredient.Unit != "" {
			updateObj = append(updateObj, bson.E{Key: "unit", Value: ingredient.Unit})
		}
		updateObj = append(updateObj, bson.E{Key: "updated_at", Value: time.Now().UTC()})

		after := options.After
		opt := options.FindOneAndUpdateOptions{ReturnDocument: &after}

		var updated models.Ingredient
		err = ingredientCollection.FindOneAndUpdate(ctx,
			bson.M{"_id": ingredientID},
			bson.D{{Key: "$set", Value: updateObj}},
			&opt,
		).Decode(&updated)
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "ingredient not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "ingredient update failed"})
			return
		}
		c.JSON(http.StatusOK, updated)
	}
}

func DeleteIngredient() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()

		ingredientID, err := primitive.ObjectIDFromHex(c.Param("ingredient_id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid ingredient id"})
			return
		}

		var deleted models.Ingredient
		err = ingredientCollection.FindOneAndDelete(ctx, bson.M{"_id": ingredientID}).Decode(&deleted)
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "ingredient not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "ingredient delete failed"})
			return
		}
		c.JSON(http.StatusOK, deleted)
	}
}
