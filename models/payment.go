package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Admin approval states for a payment.
const (
	ApprovalPending  = "pending"
	ApprovalApproved = "approved"
	ApprovalRejected = "rejected"
)

// Payout states tracked across disbursement attempts.
const (
	PayoutPending   = "pending"
	PayoutCompleted = "completed"
	PayoutFailed    = "failed"
)

// Payment is the payable unit administrators act on. TransactionID is the
// true foreign key to the originating transaction and carries a unique
// index, so reconciling the same transaction twice cannot create a second
// payment.
type Payment struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PaymentID        string             `bson:"paymentId" json:"paymentId"`
	TransactionID    primitive.ObjectID `bson:"transactionId" json:"transactionId"`
	ResellerID       string             `bson:"resellerId" json:"resellerId"`
	ProductID        string             `bson:"productId" json:"productId"`
	Amount           float64            `bson:"amount" json:"amount"`
	CommissionAmount float64            `bson:"commissionAmount" json:"commissionAmount"`
	CustomerName     string             `bson:"customerName,omitempty" json:"customerName,omitempty"`
	CustomerEmail    string             `bson:"customerEmail,omitempty" json:"customerEmail,omitempty"`

	// Status reflects the external processor's view of the purchase
	// ("paid" means processor-confirmed). Independent of AdminApproval.
	Status        string `bson:"status" json:"status"`
	AdminApproval string `bson:"adminApproval" json:"adminApproval"` // "pending", "approved", "rejected"

	// ProcessorRef is the external processor's reference for the purchase,
	// or a synthetic id when none was supplied.
	ProcessorRef string `bson:"processorRef,omitempty" json:"processorRef,omitempty"`

	// Disbursement bookkeeping, written by the payout retry policy.
	PayoutStatus        string `bson:"payoutStatus,omitempty" json:"payoutStatus,omitempty"`
	PayoutTransactionID string `bson:"payoutTransactionId,omitempty" json:"payoutTransactionId,omitempty"`
	PayoutAttempts      int    `bson:"payoutAttempts,omitempty" json:"payoutAttempts,omitempty"`
	LastPayoutError     string `bson:"lastPayoutError,omitempty" json:"lastPayoutError,omitempty"`

	AdminID     *primitive.ObjectID `bson:"adminId,omitempty" json:"adminId,omitempty"`
	AdminNote   string              `bson:"adminNote,omitempty" json:"adminNote,omitempty"`
	CreatedAt   time.Time           `bson:"createdAt" json:"createdAt"`
	ProcessedAt *time.Time          `bson:"processedAt,omitempty" json:"processedAt,omitempty"`
}

// ApprovalDecisionRequest is the admin's approve/reject payload.
type ApprovalDecisionRequest struct {
	Note string `json:"note,omitempty"`
}
