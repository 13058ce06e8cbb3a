package controllers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/commercelink/reseller_backend/apperrors"
	"github.com/commercelink/reseller_backend/models"
	"github.com/commercelink/reseller_backend/repositories"
	"github.com/commercelink/reseller_backend/utils"
)

// ResellerController exposes registration and the reseller-facing read APIs:
// wallet balance, payment history and transaction history.
type ResellerController struct {
	resellers    *repositories.ResellerRepository
	payments     *repositories.PaymentRepository
	transactions *repositories.TransactionRepository
}

func NewResellerController(resellers *repositories.ResellerRepository, payments *repositories.PaymentRepository, transactions *repositories.TransactionRepository) *ResellerController {
	return &ResellerController{
		resellers:    resellers,
		payments:     payments,
		transactions: transactions,
	}
}

// RegisterReseller creates a new reseller with a generated reseller code.
func (rc *ResellerController) RegisterReseller(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var req models.RegisterResellerRequest
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

	reseller := &models.Reseller{
		FullName:       req.FullName,
		Email:          req.Email,
		Phone:          req.Phone,
		CommissionRate: req.CommissionRate,
		Status:         "active",
	}

	// The code is random; regenerate on the rare collision.
	var insertErr error
	for attempt := 0; attempt < 3; attempt++ {
		resellerID, err := utils.GenerateResellerID()
		if err != nil {
			return respondError(c, err, "Failed to generate reseller ID")
		}
		reseller.ResellerID = resellerID

		insertErr = rc.resellers.Insert(ctx, reseller)
		var dup *apperrors.DuplicateError
		if errors.As(insertErr, &dup) && dup.Key == resellerID {
			continue
		}
		break
	}
	if insertErr != nil {
		return respondError(c, insertErr, "Failed to register reseller")
	}

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Reseller registered successfully",
		Data:    reseller,
	})
}

// GetReseller returns a reseller by code.
func (rc *ResellerController) GetReseller(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	reseller, err := rc.resellers.GetByResellerID(ctx, c.Param("resellerId"))
	if err != nil {
		return respondError(c, err, "Failed to retrieve reseller")
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Reseller retrieved successfully",
		Data:    reseller,
	})
}

// GetWallet returns the reseller's balance view.
func (rc *ResellerController) GetWallet(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	reseller, err := rc.resellers.GetByResellerID(ctx, c.Param("resellerId"))
	if err != nil {
		return respondError(c, err, "Failed to retrieve wallet")
	}

	wallet := models.Wallet{
		ResellerID:    reseller.ResellerID,
		Balance:       reseller.Balance,
		TotalEarnings: reseller.TotalEarnings,
		TotalSales:    reseller.TotalSales,
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Wallet retrieved successfully",
		Data:    wallet,
	})
}

// GetPaymentHistory returns the reseller's payments, newest first.
func (rc *ResellerController) GetPaymentHistory(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	resellerID := c.Param("resellerId")
	if _, err := rc.resellers.GetByResellerID(ctx, resellerID); err != nil {
		return respondError(c, err, "Failed to retrieve payment history")
	}

	payments, err := rc.payments.ListByReseller(ctx, resellerID)
	if err != nil {
		return respondError(c, err, "Failed to retrieve payment history")
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Payment history retrieved successfully",
		Data:    payments,
	})
}

// GetTransactionHistory returns the reseller's transactions, newest first.
func (rc *ResellerController) GetTransactionHistory(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	resellerID := c.Param("resellerId")
	if _, err := rc.resellers.GetByResellerID(ctx, resellerID); err != nil {
		return respondError(c, err, "Failed to retrieve transaction history")
	}

	transactions, err := rc.transactions.ListByReseller(ctx, resellerID)
	if err != nil {
		return respondError(c, err, "Failed to retrieve transaction history")
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Transaction history retrieved successfully",
		Data:    transactions,
	})
}
