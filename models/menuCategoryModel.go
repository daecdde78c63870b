package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type MenuCategory struct {
	ID         primitive.ObjectID `bson:"_id" json:"_id"`
	Branch_id  primitive.ObjectID `json:"branch_id" validate:"required"`
	Name       string             `json:"name" validate:"required,min=2,max=100"`
	Created_at time.Time          `json:"created_at"`
	Updated_at time.Time          `json:"updated_at"`
}
