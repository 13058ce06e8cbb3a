// models/user.go

package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Reseller represents an affiliate user who refers customers and earns
// commission on their purchases. Resellers are never hard-deleted; the
// Status field carries soft states instead.
type Reseller struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ResellerID     string             `bson:"resellerId" json:"resellerId"`
	FullName       string             `bson:"fullName" json:"fullName"`
	Email          string             `bson:"email" json:"email"`
	Phone          string             `bson:"phone,omitempty" json:"phone,omitempty"`
	CommissionRate float64            `bson:"commissionRate" json:"commissionRate"` // percentage, 0-100
	Balance        float64            `bson:"balance" json:"balance"`
	TotalEarnings  float64            `bson:"totalEarnings" json:"totalEarnings"`
	TotalSales     int                `bson:"totalSales" json:"totalSales"`
	Status         string             `bson:"status" json:"status"` // "active", "suspended"
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type RegisterResellerRequest struct {
	FullName       string  `json:"fullName" validate:"required"`
	Email          string  `json:"email" validate:"required,email"`
	Phone          string  `json:"phone,omitempty"`
	CommissionRate float64 `json:"commissionRate" validate:"gte=0,lte=100"`
}

// Wallet is the balance view returned to resellers.
type Wallet struct {
	ResellerID    string  `json:"resellerId"`
	Balance       float64 `json:"balance"`
	TotalEarnings float64 `json:"totalEarnings"`
	TotalSales    int     `json:"totalSales"`
}

// Response model
type Response struct {
	Status  int         `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}
