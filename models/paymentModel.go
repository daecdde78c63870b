package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	PaymentCash      = "cash"
	PaymentPromptPay = "promptpay"
	PaymentCard      = "card"

	PaymentPending = "pending"
	PaymentPaid    = "paid"
	PaymentFailed  = "failed"
	PaymentExpired = "expired"
)

// Payment is a settlement record against one order. The Source_id,
// Transaction_id, Payment_details, Qr_code_image and Expires_at fields are
// only populated for promptpay payments backed by a gateway charge.
type Payment struct {
	ID              primitive.ObjectID     `bson:"_id" json:"_id"`
	Branch_id       primitive.ObjectID     `json:"branch_id" validate:"required"`
	Order_id        primitive.ObjectID     `json:"order_id" validate:"required"`
	Session_id      primitive.ObjectID     `json:"session_id" validate:"required"`
	Amount          float64                `json:"amount" validate:"min=0"`
	Method          string                 `json:"method" validate:"required,eq=cash|eq=promptpay|eq=card"`
	Status          string                 `json:"status" validate:"required,eq=pending|eq=paid|eq=failed|eq=expired"`
	Source_id       string                 `json:"source_id"`
	Transaction_id  string                 `json:"transaction_id"`
	Payment_details map[string]interface{} `json:"payment_details"`
	Qr_code_image   string                 `json:"qr_code_image"`
	Expires_at      *time.Time             `json:"expires_at"`
	Created_at      time.Time              `json:"created_at"`
	Updated_at      time.Time              `json:"updated_at"`
}
