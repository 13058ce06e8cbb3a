package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/commercelink/reseller_backend/models"
	"github.com/commercelink/reseller_backend/repositories"
	"github.com/commercelink/reseller_backend/services"
	"github.com/commercelink/reseller_backend/utils"
	"github.com/commercelink/reseller_backend/websocket"
)

// PaymentController handles the admin side of the payment lifecycle:
// listing, approval, rejection, payout retries and backfill reconciliation.
type PaymentController struct {
	payments    *repositories.PaymentRepository
	commissions *repositories.CommissionRepository
	resellers   *repositories.ResellerRepository
	alerts      *repositories.FraudAlertRepository
	reconciler  *services.Reconciler
	approver    *services.Approver
	disburser   *services.Disburser
	mailer      *utils.Mailer
	hub         *websocket.Hub
}

func NewPaymentController(
	payments *repositories.PaymentRepository,
	commissions *repositories.CommissionRepository,
	resellers *repositories.ResellerRepository,
	alerts *repositories.FraudAlertRepository,
	reconciler *services.Reconciler,
	approver *services.Approver,
	disburser *services.Disburser,
	mailer *utils.Mailer,
	hub *websocket.Hub,
) *PaymentController {
	return &PaymentController{
		payments:    payments,
		commissions: commissions,
		resellers:   resellers,
		alerts:      alerts,
		reconciler:  reconciler,
		approver:    approver,
		disburser:   disburser,
		mailer:      mailer,
		hub:         hub,
	}
}

// ListPayments returns all payments, optionally filtered by approval state
// via the ?approval= query parameter.
func (pc *PaymentController) ListPayments(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	approval := c.QueryParam("approval")
	if approval != "" && approval != models.ApprovalPending && approval != models.ApprovalApproved && approval != models.ApprovalRejected {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid approval filter. Must be 'pending', 'approved' or 'rejected'",
		})
	}

	payments, err := pc.payments.List(ctx, approval)
	if err != nil {
		return respondError(c, err, "Failed to retrieve payments")
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Payments retrieved successfully",
		Data:    payments,
	})
}

// GetPayment returns a single payment by its object id.
func (pc *PaymentController) GetPayment(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid payment ID format",
		})
	}

	payment, err := pc.payments.GetByID(ctx, id)
	if err != nil {
		return respondError(c, err, "Failed to retrieve payment")
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Payment retrieved successfully",
		Data:    payment,
	})
}

// ApprovePayment transitions a pending payment to approved, credits the
// reseller and triggers disbursement. The transition is state-conditional,
// so a second approval returns 409 and can never double-credit.
func (pc *PaymentController) ApprovePayment(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid payment ID format",
		})
	}

	var req models.ApprovalDecisionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	payment, err := pc.approver.Approve(ctx, id, req.Note, nil)
	if err != nil {
		if payment != nil {
			// Transition succeeded, crediting did not.
			return c.JSON(http.StatusInternalServerError, models.Response{
				Status:  http.StatusInternalServerError,
				Message: "Payment approved but crediting the reseller failed; manual reconciliation required",
				Data:    payment,
			})
		}
		return respondError(c, err, "Failed to approve payment")
	}

	pc.hub.NotifyPaymentEvent(websocket.EventPaymentApproved,
		"Payment approved", payment.ResellerID, payment)

	// Goes through the same conditional in-flight flip as manual retry, so
	// a retry request racing this first disbursement cannot double-pay.
	_, result, payoutErr := pc.disburser.Retry(ctx, payment.ID)
	if payoutErr != nil {
		pc.hub.NotifyPaymentEvent(websocket.EventPayoutFailed,
			"Disbursement failed, queued for manual reconciliation", payment.ResellerID, payment)
		return c.JSON(http.StatusOK, models.Response{
			Status:  http.StatusOK,
			Message: "Payment approved; disbursement failed and was recorded for retry",
			Data: map[string]interface{}{
				"payment":     payment,
				"payoutError": payoutErr.Error(),
			},
		})
	}

	pc.hub.NotifyPaymentEvent(websocket.EventPayoutCompleted,
		"Commission disbursed", payment.ResellerID, result)

	if reseller, rerr := pc.resellers.GetByResellerID(ctx, payment.ResellerID); rerr == nil {
		pc.mailer.SendPayoutReceipt(reseller, payment, result)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Payment approved and disbursed successfully",
		Data: map[string]interface{}{
			"payment":      payment,
			"disbursement": result,
		},
	})
}

// RejectPayment transitions a pending payment to rejected. No balance
// change, no disbursement. Terminal.
func (pc *PaymentController) RejectPayment(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid payment ID format",
		})
	}

	var req models.ApprovalDecisionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	payment, err := pc.approver.Reject(ctx, id, req.Note, nil)
	if err != nil {
		return respondError(c, err, "Failed to reject payment")
	}

	pc.hub.NotifyPaymentEvent(websocket.EventPaymentRejected,
		"Payment rejected", payment.ResellerID, payment)

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Payment rejected successfully",
		Data:    payment,
	})
}

// RetryPayout re-runs disbursement for an approved payment whose payout
// previously failed.
func (pc *PaymentController) RetryPayout(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid payment ID format",
		})
	}

	// Retry flips payoutStatus in-flight with a conditional update before
	// touching the gateway, so a concurrent retry (or one racing the
	// original disbursement) conflicts instead of paying out twice.
	payment, result, payoutErr := pc.disburser.Retry(ctx, id)
	if payoutErr != nil {
		return respondError(c, payoutErr, "Disbursement failed")
	}

	pc.hub.NotifyPaymentEvent(websocket.EventPayoutCompleted,
		"Commission disbursed", payment.ResellerID, result)

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Payout completed successfully",
		Data:    result,
	})
}

// ListFailedPayouts returns approved payments whose disbursement exhausted
// its retries.
func (pc *PaymentController) ListFailedPayouts(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	payments, err := pc.payments.ListFailedPayouts(ctx)
	if err != nil {
		return respondError(c, err, "Failed to retrieve failed payouts")
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Failed payouts retrieved successfully",
		Data:    payments,
	})
}

// ListCommissions returns commission ledger entries, optionally filtered by
// status.
func (pc *PaymentController) ListCommissions(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	commissions, err := pc.commissions.List(ctx, c.QueryParam("status"))
	if err != nil {
		return respondError(c, err, "Failed to retrieve commissions")
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Commissions retrieved successfully",
		Data:    commissions,
	})
}

// ListFraudAlerts returns reconciliation anomalies flagged for review,
// optionally filtered by ?status=open|resolved.
func (pc *PaymentController) ListFraudAlerts(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	status := c.QueryParam("status")
	if status != "" && status != models.FraudAlertOpen && status != models.FraudAlertResolved {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid status filter. Must be 'open' or 'resolved'",
		})
	}

	alerts, err := pc.alerts.List(ctx, status)
	if err != nil {
		return respondError(c, err, "Failed to retrieve fraud alerts")
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Fraud alerts retrieved successfully",
		Data:    alerts,
	})
}

// ResolveFraudAlert closes an open alert with an optional admin note.
func (pc *PaymentController) ResolveFraudAlert(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid alert ID format",
		})
	}

	var req models.ApprovalDecisionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	alert, err := pc.alerts.Resolve(ctx, id, req.Note)
	if err != nil {
		return respondError(c, err, "Failed to resolve fraud alert")
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Fraud alert resolved successfully",
		Data:    alert,
	})
}

// RunReconciliation executes the backfill job and returns its report.
func (pc *PaymentController) RunReconciliation(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	report, err := pc.reconciler.Backfill(ctx)
	if err != nil {
		return respondError(c, err, "Reconciliation run failed")
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Reconciliation completed successfully",
		Data:    report,
	})
}
