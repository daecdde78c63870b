package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SessionMember is one device/person that joined the session via its QR code.
// Client_id is the caller-supplied device identity; User_label is the display
// name the customer typed.
type SessionMember struct {
	Client_id  string    `json:"client_id" validate:"required"`
	User_label string    `json:"user_label" validate:"required"`
	Joined_at  time.Time `json:"joined_at"`
}

// Session is one dining occasion at one table, from check-in to checkout.
// A nil Checkout_at means the session is still open; once set the session is
// terminal and no member or order may be added.
type Session struct {
	ID          primitive.ObjectID   `bson:"_id" json:"_id"`
	Branch_id   primitive.ObjectID   `json:"branch_id" validate:"required"`
	Table_id    primitive.ObjectID   `json:"table_id" validate:"required"`
	Qr_code     string               `json:"qr_code"`
	Members     []SessionMember      `json:"members"`
	Checkin_at  time.Time            `json:"checkin_at"`
	Checkout_at *time.Time           `json:"checkout_at"`
	Order_ids   []primitive.ObjectID `json:"order_ids"`
	Created_at  time.Time            `json:"created_at"`
	Updated_at  time.Time            `json:"updated_at"`
}

// Open reports whether the session can still accept members and orders.
func (s *Session) Open() bool { return s.Checkout_at == nil }
