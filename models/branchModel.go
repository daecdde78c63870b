package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Branch struct {
	ID         primitive.ObjectID `bson:"_id" json:"_id"`
	Name       string             `json:"name" validate:"required,min=2,max=100"`
	Code       string             `json:"code" validate:"required,lowercase"`
	Address    string             `json:"address" validate:"required"`
	Contact    string             `json:"contact" validate:"required"`
	Created_at time.Time          `json:"created_at"`
	Updated_at time.Time          `json:"updated_at"`
}
