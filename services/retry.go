package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/commercelink/reseller_backend/apperrors"
	"github.com/commercelink/reseller_backend/models"
)

// Disburser executes payouts through the gateway under a bounded
// exponential-backoff retry policy, recording every attempt on the payment.
// Exhaustion leaves payoutStatus "failed" for manual reconciliation; an
// unknown outcome is never promoted to success.
type Disburser struct {
	gateway     PaymentGateway
	payments    PaymentStore
	maxAttempts int
	baseDelay   time.Duration
}

func NewDisburser(gateway PaymentGateway, payments PaymentStore, maxAttempts int, baseDelay time.Duration) *Disburser {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Disburser{
		gateway:     gateway,
		payments:    payments,
		maxAttempts: maxAttempts,
		baseDelay:   baseDelay,
	}
}

// Retry re-runs disbursement for an approved payment whose payout is neither
// in flight nor completed. The in-flight flip via BeginPayout is
// state-conditional, so concurrent retries collapse to one gateway call; the
// loser gets ConflictError without ever reaching the gateway.
func (d *Disburser) Retry(ctx context.Context, id primitive.ObjectID) (*models.Payment, *models.DisbursementResult, error) {
	payment, err := d.payments.BeginPayout(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	result, err := d.Disburse(ctx, payment)
	return payment, result, err
}

// Disburse pays out the payment's commission to its reseller.
func (d *Disburser) Disburse(ctx context.Context, payment *models.Payment) (*models.DisbursementResult, error) {
	description := fmt.Sprintf("Commission for payment %s", payment.PaymentID)

	var lastErr error
	attempts := 0
	delay := d.baseDelay

retry:
	for attempt := 1; attempt <= d.maxAttempts; attempt++ {
		attempts = attempt
		result, err := d.gateway.Disburse(ctx, payment.ResellerID, payment.CommissionAmount, payment.PaymentID, description)
		if err == nil && result.Success {
			if uerr := d.payments.UpdatePayout(ctx, payment.ID, models.PayoutCompleted, result.TransactionID, "", attempt); uerr != nil {
				log.WithField("paymentId", payment.PaymentID).Errorf("Failed to record payout result: %v", uerr)
			}
			log.WithFields(log.Fields{
				"paymentId":  payment.PaymentID,
				"resellerId": payment.ResellerID,
				"gatewayTx":  result.TransactionID,
				"mode":       d.gateway.Mode(),
				"attempts":   attempt,
			}).Info("Disbursement completed")
			return result, nil
		}

		if err == nil {
			err = &apperrors.GatewayError{Message: "processor reported failure"}
		}
		lastErr = err

		if uerr := d.payments.UpdatePayout(ctx, payment.ID, models.PayoutPending, "", err.Error(), attempt); uerr != nil {
			log.WithField("paymentId", payment.PaymentID).Errorf("Failed to record payout attempt: %v", uerr)
		}

		var ge *apperrors.GatewayError
		if !errors.As(err, &ge) {
			break
		}

		log.WithFields(log.Fields{
			"paymentId": payment.PaymentID,
			"attempt":   attempt,
			"unknown":   ge.Unknown,
		}).Warnf("Disbursement attempt failed: %v", err)

		if attempt == d.maxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			lastErr = ctx.Err()
			break retry
		case <-time.After(delay):
			delay *= 2
		}
	}

	if uerr := d.payments.UpdatePayout(context.WithoutCancel(ctx), payment.ID, models.PayoutFailed, "", lastErr.Error(), attempts); uerr != nil {
		log.WithField("paymentId", payment.PaymentID).Errorf("Failed to record payout failure: %v", uerr)
	}

	return nil, lastErr
}
