package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type MenuItem struct {
	ID           primitive.ObjectID `bson:"_id" json:"_id"`
	Branch_id    primitive.ObjectID `json:"branch_id" validate:"required"`
	Category_id  primitive.ObjectID `json:"category_id" validate:"required"`
	Name         string             `json:"name" validate:"required,min=2,max=100"`
	Description  string             `json:"description"`
	Image_url    string             `json:"image_url"`
	Price        float64            `json:"price" validate:"min=0"`
	Is_available *bool              `json:"is_available"`
	Created_at   time.Time          `json:"created_at"`
	Updated_at   time.Time          `json:"updated_at"`
}
