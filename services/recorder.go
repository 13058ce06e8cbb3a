package services

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/commercelink/reseller_backend/apperrors"
	"github.com/commercelink/reseller_backend/models"
)

// TransactionRecorder persists purchase events delivered by the store
// webhook. It performs no dedup: that is the reconciler's job.
type TransactionRecorder struct {
	resellers    ResellerStore
	products     ProductStore
	transactions TransactionStore
}

func NewTransactionRecorder(resellers ResellerStore, products ProductStore, transactions TransactionStore) *TransactionRecorder {
	return &TransactionRecorder{
		resellers:    resellers,
		products:     products,
		transactions: transactions,
	}
}

// Record creates exactly one pending transaction for a validated purchase
// payload and bumps the reseller's sales counter.
func (r *TransactionRecorder) Record(ctx context.Context, req *models.StorePurchaseRequest) (*models.Transaction, error) {
	reseller, err := r.resellers.GetByResellerID(ctx, req.ResellerID)
	if err != nil {
		return nil, err
	}

	productID, err := primitive.ObjectIDFromHex(req.ProductID)
	if err != nil {
		return nil, &apperrors.ValidationError{Field: "productId", Message: "invalid id format"}
	}

	product, err := r.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	// Product-level commission overrides the reseller's default rate.
	rate := reseller.CommissionRate
	if product.Commission > 0 {
		rate = product.Commission
	}

	commissionAmount, err := CalculateCommission(product.Price, rate)
	if err != nil {
		return nil, err
	}

	tx := &models.Transaction{
		ID:               primitive.NewObjectID(),
		ResellerID:       reseller.ResellerID,
		ProductID:        product.ID,
		ProductName:      product.Name,
		ProductPrice:     product.Price,
		CommissionAmount: commissionAmount,
		CustomerName:     req.CustomerName,
		CustomerEmail:    req.CustomerEmail,
		PaymentStatus:    "pending",
		CreatedAt:        time.Now(),
	}

	if err := r.transactions.Insert(ctx, tx); err != nil {
		return nil, err
	}

	if err := r.resellers.IncrementSales(ctx, reseller.ResellerID); err != nil {
		log.WithField("resellerId", reseller.ResellerID).Warnf("Failed to increment sales counter: %v", err)
	}

	log.WithFields(log.Fields{
		"transactionId": tx.ID.Hex(),
		"resellerId":    tx.ResellerID,
		"product":       tx.ProductName,
		"commission":    tx.CommissionAmount,
	}).Info("Transaction recorded")

	return tx, nil
}
