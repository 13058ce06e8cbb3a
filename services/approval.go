package services

import (
	"context"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/commercelink/reseller_backend/models"
)

// Approver runs the admin decision on a payment: approve credits the
// reseller and marks the commission, reject is terminal with no balance
// change. Both ride on the store's state-conditional Decide, so racing
// decisions collapse to one winner and the credit runs exactly once.
type Approver struct {
	payments    PaymentStore
	commissions CommissionStore
	resellers   ResellerStore
}

func NewApprover(payments PaymentStore, commissions CommissionStore, resellers ResellerStore) *Approver {
	return &Approver{
		payments:    payments,
		commissions: commissions,
		resellers:   resellers,
	}
}

// Approve transitions a pending payment to approved and credits the
// reseller's balance and totalEarnings by the commission amount. When the
// transition succeeded but crediting failed, the approved payment is
// returned alongside the error so the caller can surface the partial state.
func (a *Approver) Approve(ctx context.Context, id primitive.ObjectID, note string, adminID *primitive.ObjectID) (*models.Payment, error) {
	payment, err := a.payments.Decide(ctx, id, models.ApprovalApproved, note, adminID)
	if err != nil {
		return nil, err
	}

	// The conditional transition above succeeded exactly once, so this
	// credit runs exactly once even when two approvals race.
	if err := a.resellers.CreditEarnings(ctx, payment.ResellerID, payment.CommissionAmount); err != nil {
		log.WithFields(log.Fields{
			"paymentId":  payment.PaymentID,
			"resellerId": payment.ResellerID,
		}).Errorf("Failed to credit reseller after approval: %v", err)
		return payment, err
	}

	if err := a.commissions.SetStatusByTransaction(ctx, payment.TransactionID, models.CommissionStatusApproved); err != nil {
		log.WithField("paymentId", payment.PaymentID).Warnf("Failed to update commission status: %v", err)
	}

	log.WithFields(log.Fields{
		"paymentId":  payment.PaymentID,
		"resellerId": payment.ResellerID,
		"amount":     payment.CommissionAmount,
	}).Info("Payment approved")

	return payment, nil
}

// Reject transitions a pending payment to rejected. Terminal; the reseller's
// balance is never touched.
func (a *Approver) Reject(ctx context.Context, id primitive.ObjectID, note string, adminID *primitive.ObjectID) (*models.Payment, error) {
	payment, err := a.payments.Decide(ctx, id, models.ApprovalRejected, note, adminID)
	if err != nil {
		return nil, err
	}

	if err := a.commissions.SetStatusByTransaction(ctx, payment.TransactionID, models.CommissionStatusRejected); err != nil {
		log.WithField("paymentId", payment.PaymentID).Warnf("Failed to update commission status: %v", err)
	}

	return payment, nil
}
