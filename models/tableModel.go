package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	TableAvailable = "available"
	TableOccupied  = "occupied"
	TableReserved  = "reserved"
)

type Table struct {
	ID         primitive.ObjectID `bson:"_id" json:"_id"`
	Branch_id  primitive.ObjectID `json:"branch_id" validate:"required"`
	Name       string             `json:"name" validate:"required"`
	Status     string             `json:"status" validate:"required,eq=available|eq=occupied|eq=reserved"`
	Created_at time.Time          `json:"created_at"`
	Updated_at time.Time          `json:"updated_at"`
}
