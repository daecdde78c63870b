package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	StockAdjustAdd    = "add"
	StockAdjustRemove = "remove"
)

type Stock struct {
	ID                 primitive.ObjectID `bson:"_id" json:"_id"`
	Branch_id          primitive.ObjectID `json:"branch_id" validate:"required"`
	Ingredient_id      primitive.ObjectID `json:"ingredient_id" validate:"required"`
	Quantity           float64            `json:"quantity" validate:"min=0"`
	Low_threshold      float64            `json:"low_threshold" validate:"required"`
	Last_adjust_reason string             `json:"last_adjust_reason"`
	Updated_at         time.Time          `json:"updated_at"`
}

// StockAdjustment is the request body for an add/remove stock movement.
type StockAdjustment struct {
	Quantity float64 `json:"quantity" validate:"required,gt=0"`
	Type     string  `json:"type" validate:"required,eq=add|eq=remove"`
	Reason   string  `json:"reason"`
}
