package services

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/commercelink/reseller_backend/apperrors"
	"github.com/commercelink/reseller_backend/models"
	"github.com/commercelink/reseller_backend/utils"
)

const reconcileLockTTL = 30 * time.Second

// Reconciler guarantees each transaction has exactly one payment. Payments
// are keyed by transactionId under a unique index; the per-reseller lock
// serializes match-or-create so concurrent webhook deliveries do not race,
// and the index is the backstop when they still do.
type Reconciler struct {
	payments     PaymentStore
	commissions  CommissionStore
	resellers    ResellerStore
	transactions TransactionStore
	alerts       FraudAlertStore
	locks        Locker
}

func NewReconciler(payments PaymentStore, commissions CommissionStore, resellers ResellerStore, transactions TransactionStore, alerts FraudAlertStore, locks Locker) *Reconciler {
	return &Reconciler{
		payments:     payments,
		commissions:  commissions,
		resellers:    resellers,
		transactions: transactions,
		alerts:       alerts,
		locks:        locks,
	}
}

// Reconcile returns the payment for the given transaction, creating it (and
// the matching commission ledger entry) when absent. Idempotent: reconciling
// the same transaction any number of times yields the same single payment.
func (r *Reconciler) Reconcile(ctx context.Context, tx *models.Transaction) (*models.Payment, error) {
	release, err := r.locks.Acquire(ctx, "reconcile:"+tx.ResellerID, reconcileLockTTL)
	if err != nil {
		return nil, err
	}
	defer release()

	existing, err := r.payments.GetByTransactionID(ctx, tx.ID)
	if err == nil {
		return existing, nil
	}
	var nf *apperrors.NotFoundError
	if !errors.As(err, &nf) {
		return nil, err
	}

	reseller, err := r.resellers.GetByResellerID(ctx, tx.ResellerID)
	if err != nil {
		return nil, err
	}

	payment, err := r.buildPayment(tx)
	if err != nil {
		return nil, err
	}

	if err := r.payments.Insert(ctx, payment); err != nil {
		var dup *apperrors.DuplicateError
		if errors.As(err, &dup) {
			// Lost an insert race; the winner's payment is the payment.
			return r.payments.GetByTransactionID(ctx, tx.ID)
		}
		return nil, err
	}

	commission := &models.Commission{
		TransactionID:    tx.ID,
		ResellerID:       reseller.ResellerID,
		CommissionAmount: tx.CommissionAmount,
		Status:           models.CommissionStatusPending,
		CreatedAt:        time.Now(),
	}
	if err := r.commissions.Insert(ctx, commission); err != nil {
		var dup *apperrors.DuplicateError
		if !errors.As(err, &dup) {
			log.WithField("transactionId", tx.ID.Hex()).Warnf("Failed to insert commission: %v", err)
		}
	}

	log.WithFields(log.Fields{
		"paymentId":     payment.PaymentID,
		"transactionId": tx.ID.Hex(),
		"resellerId":    tx.ResellerID,
	}).Info("Payment created")

	return payment, nil
}

// Backfill sweeps historical transactions lacking a linked payment. Unlinked
// legacy payments are matched by the old surrogate key (resellerId, amount,
// commissionAmount) and linked; transactions with no payment at all get one
// created. Safe to re-run; every decision lands in the report.
func (r *Reconciler) Backfill(ctx context.Context) (*models.ReconciliationReport, error) {
	report := &models.ReconciliationReport{StartedAt: time.Now()}

	txs, err := r.transactions.All(ctx)
	if err != nil {
		return nil, err
	}

	for i := range txs {
		tx := &txs[i]
		report.Scanned++

		entry := models.ReconciliationEntry{
			TransactionID: tx.ID,
			ResellerID:    tx.ResellerID,
		}

		if existing, err := r.payments.GetByTransactionID(ctx, tx.ID); err == nil {
			entry.Action = models.ReconcileActionSkipped
			entry.PaymentID = existing.PaymentID
			entry.Detail = "payment already linked"
			report.Skipped++
			report.Entries = append(report.Entries, entry)
			continue
		}

		legacy, err := r.payments.FindLegacyMatch(ctx, tx.ResellerID, tx.ProductPrice, tx.CommissionAmount)
		if err == nil {
			if err := r.payments.LinkTransaction(ctx, legacy.ID, tx.ID); err != nil {
				entry.Action = models.ReconcileActionSkipped
				entry.Detail = "failed to link legacy payment: " + err.Error()
				report.Skipped++
				report.Entries = append(report.Entries, entry)
				continue
			}
			entry.Action = models.ReconcileActionLinked
			entry.PaymentID = legacy.PaymentID
			entry.Detail = "matched by surrogate key"
			report.Linked++
			report.Entries = append(report.Entries, entry)
			continue
		}
		var dup *apperrors.DuplicateError
		if errors.As(err, &dup) {
			// Several unlinked payments share the surrogate key. Never guess
			// which one is real; flag it and move on.
			r.raiseAmbiguityAlert(ctx, tx)
			entry.Action = models.ReconcileActionSkipped
			entry.Detail = "ambiguous surrogate match, fraud alert raised"
			report.Skipped++
			report.Entries = append(report.Entries, entry)
			continue
		}
		var nf *apperrors.NotFoundError
		if !errors.As(err, &nf) {
			return nil, err
		}

		created, err := r.Reconcile(ctx, tx)
		if err != nil {
			entry.Action = models.ReconcileActionSkipped
			entry.Detail = "failed to create payment: " + err.Error()
			report.Skipped++
			report.Entries = append(report.Entries, entry)
			continue
		}
		entry.Action = models.ReconcileActionCreated
		entry.PaymentID = created.PaymentID
		report.Created++
		report.Entries = append(report.Entries, entry)
	}

	report.FinishedAt = time.Now()

	log.WithFields(log.Fields{
		"scanned": report.Scanned,
		"created": report.Created,
		"linked":  report.Linked,
		"skipped": report.Skipped,
	}).Info("Backfill reconciliation finished")

	return report, nil
}

func (r *Reconciler) raiseAmbiguityAlert(ctx context.Context, tx *models.Transaction) {
	alert := &models.FraudAlert{
		Type:          models.FraudAlertSurrogateAmbiguity,
		ResellerID:    tx.ResellerID,
		TransactionID: tx.ID,
		Details:       "multiple unlinked payments match transaction by surrogate key",
		CreatedAt:     time.Now(),
	}
	if err := r.alerts.Insert(ctx, alert); err != nil {
		log.WithFields(log.Fields{
			"transactionId": tx.ID.Hex(),
			"resellerId":    tx.ResellerID,
		}).Warnf("Failed to record fraud alert: %v", err)
	}
}

func (r *Reconciler) buildPayment(tx *models.Transaction) (*models.Payment, error) {
	paymentID, err := utils.GeneratePaymentID()
	if err != nil {
		return nil, err
	}

	productID := ""
	if !tx.ProductID.IsZero() {
		productID = tx.ProductID.Hex()
	} else {
		// Old transactions may predate the productId field.
		productID, err = utils.GeneratePlaceholderProductID()
		if err != nil {
			return nil, err
		}
	}

	return &models.Payment{
		PaymentID:        paymentID,
		TransactionID:    tx.ID,
		ResellerID:       tx.ResellerID,
		ProductID:        productID,
		Amount:           tx.ProductPrice,
		CommissionAmount: tx.CommissionAmount,
		CustomerName:     tx.CustomerName,
		CustomerEmail:    tx.CustomerEmail,
		Status:           "paid", // processor-confirmed, distinct from admin approval
		AdminApproval:    models.ApprovalPending,
		CreatedAt:        time.Now(),
	}, nil
}
