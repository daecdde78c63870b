package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	WaitlistWaiting   = "waiting"
	WaitlistNotified  = "notified"
	WaitlistSeated    = "seated"
	WaitlistCancelled = "cancelled"
)

type Waitlist struct {
	ID           primitive.ObjectID `bson:"_id" json:"_id"`
	Branch_id    primitive.ObjectID `json:"branch_id" validate:"required"`
	Party_name   string             `json:"party_name" validate:"required"`
	Party_size   int                `json:"party_size" validate:"required,min=1"`
	Contact_info string             `json:"contact_info" validate:"required"`
	Requested_at time.Time          `json:"requested_at"`
	Notified_at  *time.Time         `json:"notified_at"`
	Status       string             `json:"status" validate:"required,eq=waiting|eq=notified|eq=seated|eq=cancelled"`
	Created_at   time.Time          `json:"created_at"`
	Updated_at   time.Time          `json:"updated_at"`
}
