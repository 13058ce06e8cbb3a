package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/commercelink/reseller_backend/apperrors"
	"github.com/commercelink/reseller_backend/models"
	"github.com/commercelink/reseller_backend/repositories"
	"github.com/commercelink/reseller_backend/services"
	"github.com/commercelink/reseller_backend/websocket"
)

// WebhookController ingests purchase events from the store. Signature
// verification on the webhook is handled upstream by the API gateway.
type WebhookController struct {
	recorder     *services.TransactionRecorder
	reconciler   *services.Reconciler
	transactions *repositories.TransactionRepository
	hub          *websocket.Hub
}

func NewWebhookController(recorder *services.TransactionRecorder, reconciler *services.Reconciler, transactions *repositories.TransactionRepository, hub *websocket.Hub) *WebhookController {
	return &WebhookController{
		recorder:     recorder,
		reconciler:   reconciler,
		transactions: transactions,
		hub:          hub,
	}
}

// HandleStorePurchase records the purchase and reconciles it into a payment
// awaiting admin approval.
func (wc *WebhookController) HandleStorePurchase(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var req models.StorePurchaseRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Validation failed: " + err.Error(),
		})
	}

	tx, err := wc.recorder.Record(ctx, &req)
	if err != nil {
		return respondError(c, err, "Failed to record transaction")
	}

	payment, err := wc.reconciler.Reconcile(ctx, tx)
	if err != nil {
		return respondError(c, err, "Failed to reconcile transaction")
	}

	wc.hub.NotifyPaymentEvent(websocket.EventPaymentCreated,
		"New payment awaiting approval", payment.ResellerID, payment)

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Purchase processed successfully",
		Data: map[string]interface{}{
			"transaction": tx,
			"payment":     payment,
		},
	})
}

// HandleOrderStatus updates the payment status on an existing transaction.
func (wc *WebhookController) HandleOrderStatus(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var req models.OrderStatusRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Validation failed: " + err.Error(),
		})
	}

	txID, err := primitive.ObjectIDFromHex(req.TransactionID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid transaction ID format",
		})
	}

	if err := wc.transactions.UpdateStatus(ctx, txID, req.PaymentStatus); err != nil {
		return respondError(c, err, "Failed to update transaction status")
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Transaction status updated successfully",
	})
}

// respondError converts taxonomy errors to their HTTP status and hides
// internal errors behind a generic message.
func respondError(c echo.Context, err error, internalMsg string) error {
	status := apperrors.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		log.Errorf("%s: %v", internalMsg, err)
		return c.JSON(status, models.Response{
			Status:  status,
			Message: internalMsg,
		})
	}
	return c.JSON(status, models.Response{
		Status:  status,
		Message: err.Error(),
	})
}
