package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	OrderReceived  = "received"
	OrderPreparing = "preparing"
	OrderServed    = "served"
	OrderPaid      = "paid"
)

// OrderStatuses lists every accepted order status. Any status may move to any
// other; the kitchen display is operated by a single member of staff and a
// transition table would only get in their way.
var OrderStatuses = []string{OrderReceived, OrderPreparing, OrderServed, OrderPaid}

func ValidOrderStatus(status string) bool {
	for _, s := range OrderStatuses {
		if s == status {
			return true
		}
	}
	return false
}

type OrderLine struct {
	Menu_item_id primitive.ObjectID `json:"menu_item_id" validate:"required"`
	Qty          int                `json:"qty" validate:"required,min=1"`
	Note         string             `json:"note"`
}

type Order struct {
	ID           primitive.ObjectID `bson:"_id" json:"_id"`
	Session_id   primitive.ObjectID `json:"session_id" validate:"required"`
	Branch_id    primitive.ObjectID `json:"branch_id" validate:"required"`
	Table_id     primitive.ObjectID `json:"table_id" validate:"required"`
	Status       string             `json:"status" validate:"required,eq=received|eq=preparing|eq=served|eq=paid"`
	Order_lines  []OrderLine        `json:"order_lines" validate:"required,min=1,dive"`
	Total_amount float64            `json:"total_amount" validate:"min=0"`
	Client_id    string             `json:"client_id"`
	Order_by     string             `json:"order_by"`
	Created_at   time.Time          `json:"created_at"`
	Updated_at   time.Time          `json:"updated_at"`
}
