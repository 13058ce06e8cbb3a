package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Actions a reconciliation run can take for a single transaction.
const (
	ReconcileActionCreated = "created"
	ReconcileActionLinked  = "linked"
	ReconcileActionSkipped = "skipped"
)

// ReconciliationEntry records what the backfill job did for one transaction.
type ReconciliationEntry struct {
	TransactionID primitive.ObjectID `json:"transactionId"`
	ResellerID    string             `json:"resellerId"`
	PaymentID     string             `json:"paymentId,omitempty"`
	Action        string             `json:"action"`
	Detail        string             `json:"detail,omitempty"`
}

// ReconciliationReport is the auditable output of a backfill run.
type ReconciliationReport struct {
	StartedAt  time.Time             `json:"startedAt"`
	FinishedAt time.Time             `json:"finishedAt"`
	Scanned    int                   `json:"scanned"`
	Created    int                   `json:"created"`
	Linked     int                   `json:"linked"`
	Skipped    int                   `json:"skipped"`
	Entries    []ReconciliationEntry `json:"entries"`
}
