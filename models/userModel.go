package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleSuperAdmin  = "super_admin"
	RoleBranchOwner = "branch_owner"
)

type User struct {
	ID            primitive.ObjectID  `bson:"_id" json:"_id"`
	Name          *string             `json:"name" validate:"required,min=2,max=100"`
	Email         *string             `json:"email" validate:"email,required"`
	Password      *string             `json:"password" validate:"required,min=6"`
	Role          *string             `json:"role" validate:"required,eq=super_admin|eq=branch_owner"`
	Branch_id     *primitive.ObjectID `json:"branch_id"`
	Token         *string             `json:"token"`
	Refresh_token *string             `json:"refresh_token"`
	Created_at    time.Time           `json:"created_at"`
	Updated_at    time.Time           `json:"updated_at"`
}
