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

var menuCategoryCollection *mongo.Collection = database.OpenCollection(database.Client, "menu_category")
var menuItemCollection *mongo.Collection = database.OpenCollection(database.Client, "menu_item")

func GetMenuCategories() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()

		filter := bson.M{}
		if branchID, err := primitive.ObjectIDFromHex(c.Query("branch_id")); err == nil {
			filter["branch_id"] = branchID
		}

		result, err := menuCategoryCollection.Find(ctx, filter)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "error occured while listing menu categories"})
			return
		}
		var allCategories []bson.M
		if err := result.All(ctx, &allCategories); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, allCategories)
	}
}

func CreateMenuCategory() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()

		var category models.MenuCategory
		if err := c.BindJSON(&category); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := validate.Struct(&category); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		category.ID = primitive.NewObjectID()
		category.Created_at = time.Now().UTC()
		category.Updated_at = category.Created_at

		_, err := menuCategoryCollection.InsertOne(ctx, category)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "menu category was not created"})
			return
		}
		c.JSON(http.StatusCreated, category)
	}
}

func UpdateMenuCategory() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()

		categoryID, err := primitive.ObjectIDFromHex(c.Param("category_id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category id"})
			return
		}

		var category models.MenuCategory
		if err := c.BindJSON(&category); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		var updateObj primitive.D
		if category.Name != "" {
			updateObj = append(updateObj, bson.E{Key: "name", Value: category.Name})
		}
		updateObj = append(updateObj, bson.E{Key: "updated_at", Value: time.Now().UTC()})

		after := options.After
		opt := options.FindOneAndUpdateOptions{ReturnDocument: &after}

		var updated models.MenuCategory
		err = menuCategoryCollection.FindOneAndUpdate(ctx,
			bson.M{"_id": categoryID},
			bson.D{{Key: "$set", Value: updateObj}},
			&opt,
		).Decode(&updated)
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "menu category not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "menu category update failed"})
			return
		}
		c.JSON(http.StatusOK, updated)
	}
}

func DeleteMenuCategory() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()

		categoryID, err := primitive.ObjectIDFromHex(c.Param("category_id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category id"})
			return
		}

		var deleted models.MenuCategory
		err = menuCategoryCollection.FindOneAndDelete(ctx, bson.M{"_id": categoryID}).Decode(&deleted)
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "menu category not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "menu category delete failed"})
			return
		}
		c.JSON(http.StatusOK, deleted)
	}
}

func GetMenuItems() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()

		filter := bson.M{}
		if branchID, err := primitive.ObjectIDFromHex(c.Query("branch_id")); err == nil {
			filter["branch_id"] = branchID
		}
		if categoryID, err := primitive.ObjectIDFromHex(c.Query("category_id")); err == nil {
			filter["category_id"] = categoryID
		}
		if c.Query("available") == "true" {
			filter["is_available"] = true
		}

		result, err := menuItemCollection.Find(ctx, filter)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "error occured while listing menu items"})
			return
		}
		var allItems []bson.M
		if err := result.All(ctx, &allItems); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, allItems)
	}
}

func GetMenuItem() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()

		itemID, err := primitive.ObjectIDFromHex(c.Param("item_id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid menu item id"})
			return
		}

		var item models.MenuItem
		err = menuItemCollection.FindOne(ctx, bson.M{"_id": itemID}).Decode(&item)
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "menu item not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "error occured while fetching the menu item"})
			return
		}
		c.JSON(http.StatusOK, item)
	}
}

func CreateMenuItem() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()

		var item models.MenuItem
		if err := c.BindJSON(&item); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := validate.Struct(&item); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		item.ID = primitive.NewObjectID()
		if item.Is_available == nil {
			available := true
			item.Is_available = &available
		}
		item.Created_at = time.Now().UTC()
		item.Updated_at = item.Created_at

		_, err := menuItemCollection.InsertOne(ctx, item)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "menu item was not created"})
			return
		}
		c.JSON(http.StatusCreated, item)
	}
}

func UpdateMenuItem() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()

		itemID, err := primitive.ObjectIDFromHex(c.Param("item_id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid menu item id"})
			return
		}

		var item models.MenuItem
		if err := c.BindJSON(&item); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		var updateObj primitive.D
		if item.Name != "" {
			updateObj = append(updateObj, bson.E{Key: "name", Value: item.Name})
		}
		if item.Description != "" {
			updateObj = append(updateObj, bson.E{Key: "description", Value: item.Description})
		}
		if item.Image_url != "" {
			updateObj = append(updateObj, bson.E{Key: "image_url", Value: item.Image_url})
		}
		if item.Price > 0 {
			updateObj = append(updateObj, bson.E{Key: "price", Value: item.Price})
		}
		if !item.Category_id.IsZero() {
			updateObj = append(updateObj, bson.E{Key: "category_id", Value: item.Category_id})
		}
		if item.Is_available != nil {
			updateObj = append(updateObj, bson.E{Key: "is_available", Value: *item.Is_available})
		}
		updateObj = append(updateObj, bson.E{Key: "updated_at", Value: time.Now().UTC()})

		after := options.After
		opt := options.FindOneAndUpdateOptions{ReturnDocument: &after}

		var updated models.MenuItem
		err = menuItemCollection.FindOneAndUpdate(ctx,
			bson.M{"_id": itemID},
			bson.D{{Key: "$set", Value: updateObj}},
			&opt,
		).Decode(&updated)
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "menu item not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "menu item update failed"})
			return
		}
		c.JSON(http.StatusOK, updated)
	}
}

func DeleteMenuItem() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()

		itemID, err := primitive.ObjectIDFromHex(c.Param("item_id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid menu item id"})
			return
		}

		var deleted models.MenuItem
		err = menuItemCollection.FindOneAndDelete(ctx, bson.M{"_id": itemID}).Decode(&deleted)
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "menu item not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "menu item delete failed"})
			return
		}
		c.JSON(http.StatusOK, deleted)
	}
}
