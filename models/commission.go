package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Commission statuses.
const (
	CommissionStatusPending  = "pending"
	CommissionStatusApproved = "approved"
	CommissionStatusRejected = "rejected"
)

// Commission is the earning ledger entry for a reseller. It is created
// alongside the Payment during reconciliation and linked to the same
// transaction, so the two records can never drift apart.
type Commission struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TransactionID    primitive.ObjectID `bson:"transactionId" json:"transactionId"`
	ResellerID       string             `bson:"resellerId" json:"resellerId"`
	CommissionAmount float64            `bson:"commissionAmount" json:"commissionAmount"`
	Status           string             `bson:"status" json:"status"` // "pending", "approved", "rejected"
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
	ProcessedAt      *time.Time         `bson:"processedAt,omitempty" json:"processedAt,omitempty"`
}
