package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Fraud alert types and states.
const (
	FraudAlertSurrogateAmbiguity = "surrogate_ambiguity"

	FraudAlertOpen     = "open"
	FraudAlertResolved = "resolved"
)

// FraudAlert flags a reconciliation anomaly for admin review, e.g. several
// legacy payments matching one transaction by surrogate key.
type FraudAlert struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Type          string             `bson:"type" json:"type"`
	ResellerID    string             `bson:"resellerId" json:"resellerId"`
	TransactionID primitive.ObjectID `bson:"transactionId,omitempty" json:"transactionId,omitempty"`
	Details       string             `bson:"details" json:"details"`
	Status        string             `bson:"status" json:"status"` // "open", "resolved"
	AdminNote     string             `bson:"adminNote,omitempty" json:"adminNote,omitempty"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	ResolvedAt    *time.Time         `bson:"resolvedAt,omitempty" json:"resolvedAt,omitempty"`
}
