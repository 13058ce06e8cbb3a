package services

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/commercelink/reseller_backend/models"
)

// ResellerStore is the persistence surface the pipeline needs for resellers.
// Lookups return *apperrors.NotFoundError when the record is absent.
type ResellerStore interface {
	GetByResellerID(ctx context.Context, resellerID string) (*models.Reseller, error)
	Insert(ctx context.Context, reseller *models.Reseller) error
	// CreditEarnings atomically increments balance and totalEarnings.
	CreditEarnings(ctx context.Context, resellerID string, amount float64) error
	IncrementSales(ctx context.Context, resellerID string) error
}

type ProductStore interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	Insert(ctx context.Context, product *models.Product) error
	List(ctx context.Context) ([]models.Product, error)
}

type TransactionStore interface {
	Insert(ctx context.Context, tx *models.Transaction) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Transaction, error)
	All(ctx context.Context) ([]models.Transaction, error)
	ListByReseller(ctx context.Context, resellerID string) ([]models.Transaction, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) error
}

// PaymentStore persists the payable units administrators act on. Insert
// returns *apperrors.DuplicateError when the payments.transactionId unique
// index rejects a second payment for the same transaction.
type PaymentStore interface {
	Insert(ctx context.Context, payment *models.Payment) error
	GetByTransactionID(ctx context.Context, txID primitive.ObjectID) (*models.Payment, error)
	// FindLegacyMatch locates an unlinked payment by the historical surrogate
	// key (resellerId, amount, commissionAmount). Backfill only. Returns
	// *apperrors.DuplicateError when more than one payment matches, since
	// linking either one silently would be guessing.
	FindLegacyMatch(ctx context.Context, resellerID string, amount, commissionAmount float64) (*models.Payment, error)
	LinkTransaction(ctx context.Context, paymentID, txID primitive.ObjectID) error
	UpdatePayout(ctx context.Context, paymentID primitive.ObjectID, status, gatewayTxID, lastErr string, attempts int) error
	// Decide flips a pending payment to the given approval state. The
	// transition is state-conditional: a second decision reports
	// *apperrors.ConflictError instead of double-processing.
	Decide(ctx context.Context, id primitive.ObjectID, approval, note string, adminID *primitive.ObjectID) (*models.Payment, error)
	// BeginPayout conditionally marks an approved payment's payout
	// in-flight so only one caller runs the gateway for it. Completed or
	// in-flight payouts report *apperrors.ConflictError, as does a payment
	// that was never approved.
	BeginPayout(ctx context.Context, id primitive.ObjectID) (*models.Payment, error)
}

// FraudAlertStore records reconciliation anomalies for admin review.
type FraudAlertStore interface {
	Insert(ctx context.Context, alert *models.FraudAlert) error
}

type CommissionStore interface {
	Insert(ctx context.Context, commission *models.Commission) error
	SetStatusByTransaction(ctx context.Context, txID primitive.ObjectID, status string) error
	GetByTransactionID(ctx context.Context, txID primitive.ObjectID) (*models.Commission, error)
}
