package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Ingredient struct {
	ID         primitive.ObjectID `bson:"_id" json:"_id"`
	Name       string             `json:"name" validate:"required"`
	Unit       string             `json:"unit" validate:"required"`
	Created_at time.Time          `json:"created_at"`
	Updated_at time.Time          `json:"updated_at"`
}
