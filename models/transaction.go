package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Transaction is a single purchase event ingested from the store webhook.
// Immutable once created except for PaymentStatus.
type Transaction struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ResellerID       string             `bson:"resellerId" json:"resellerId"`
	ProductID        primitive.ObjectID `bson:"productId,omitempty" json:"productId,omitempty"`
	ProductName      string             `bson:"productName" json:"productName"`
	ProductPrice     float64            `bson:"productPrice" json:"productPrice"`
	CommissionAmount float64            `bson:"commissionAmount" json:"commissionAmount"`
	CustomerName     string             `bson:"customerName" json:"customerName"`
	CustomerEmail    string             `bson:"customerEmail" json:"customerEmail"`
	PaymentStatus    string             `bson:"paymentStatus" json:"paymentStatus"` // "pending", "completed", "failed"
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
}

// StorePurchaseRequest is the payload delivered by the store-purchase webhook.
type StorePurchaseRequest struct {
	ResellerID    string `json:"resellerId" validate:"required"`
	ProductID     string `json:"productId" validate:"required"`
	CustomerName  string `json:"customerName" validate:"required"`
	CustomerEmail string `json:"customerEmail" validate:"required,email"`
}

// OrderStatusRequest is the payload delivered by the order-status webhook.
type OrderStatusRequest struct {
	TransactionID string `json:"transactionId" validate:"required"`
	PaymentStatus string `json:"paymentStatus" validate:"required,oneof=pending completed failed"`
}
