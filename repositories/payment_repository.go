package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/commercelink/reseller_backend/apperrors"
	"github.com/commercelink/reseller_backend/config"
	"github.com/commercelink/reseller_backend/models"
)

type PaymentRepository struct {
	collection *mongo.Collection
}

func NewPaymentRepository(db *mongo.Database) *PaymentRepository {
	return &PaymentRepository{collection: db.Collection(config.CollPayments)}
}

func (r *PaymentRepository) Insert(ctx context.Context, payment *models.Payment) error {
	if payment.ID.IsZero() {
		payment.ID = primitive.NewObjectID()
	}

	_, err := r.collection.InsertOne(ctx, payment)
	if mongo.IsDuplicateKeyError(err) {
		return &apperrors.DuplicateError{Key: payment.TransactionID.Hex()}
	}
	return err
}

func (r *PaymentRepository) GetByTransactionID(ctx context.Context, txID primitive.ObjectID) (*models.Payment, error) {
	var payment models.Payment
	err := r.collection.FindOne(ctx, bson.M{"transactionId": txID}).Decode(&payment)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, &apperrors.NotFoundError{Resource: "payment", ID: txID.Hex()}
		}
		return nil, err
	}
	return &payment, nil
}

func (r *PaymentRepository) GetByPaymentID(ctx context.Context, paymentID string) (*models.Payment, error) {
	var payment models.Payment
	err := r.collection.FindOne(ctx, bson.M{"paymentId": paymentID}).Decode(&payment)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, &apperrors.NotFoundError{Resource: "payment", ID: paymentID}
		}
		return nil, err
	}
	return &payment, nil
}

// FindLegacyMatch locates an unlinked payment by the historical surrogate
// key. Only payments without a transaction reference qualify, so an already
// linked payment can never be matched twice. Several candidates mean the
// surrogate key is ambiguous; that is a DuplicateError, not a pick.
func (r *PaymentRepository) FindLegacyMatch(ctx context.Context, resellerID string, amount, commissionAmount float64) (*models.Payment, error) {
	filter := bson.M{
		"resellerId":       resellerID,
		"amount":           amount,
		"commissionAmount": commissionAmount,
		"$or": []bson.M{
			{"transactionId": bson.M{"$exists": false}},
			{"transactionId": nil},
			{"transactionId": primitive.NilObjectID},
		},
	}

	cursor, err := r.collection.Find(ctx, filter, options.Find().SetLimit(2))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var candidates []models.Payment
	if err := cursor.All(ctx, &candidates); err != nil {
		return nil, err
	}

	switch len(candidates) {
	case 0:
		return nil, &apperrors.NotFoundError{Resource: "payment", ID: resellerID}
	case 1:
		return &candidates[0], nil
	default:
		return nil, &apperrors.DuplicateError{Key: resellerID}
	}
}

func (r *PaymentRepository) LinkTransaction(ctx context.Context, paymentID, txID primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": paymentID},
		bson.M{"$set": bson.M{"transactionId": txID}},
	)
	if mongo.IsDuplicateKeyError(err) {
		return &apperrors.DuplicateError{Key: txID.Hex()}
	}
	return err
}

func (r *PaymentRepository) UpdatePayout(ctx context.Context, paymentID primitive.ObjectID, status, gatewayTxID, lastErr string, attempts int) error {
	set := bson.M{
		"payoutStatus":   status,
		"payoutAttempts": attempts,
	}
	if gatewayTxID != "" {
		set["payoutTransactionId"] = gatewayTxID
	}
	if lastErr != "" {
		set["lastPayoutError"] = lastErr
	} else {
		set["lastPayoutError"] = ""
	}

	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": paymentID}, bson.M{"$set": set})
	return err
}

// Decide flips a pending payment to the given approval state. The filter is
// state-conditional, so a second decision on the same payment matches
// nothing and reports ConflictError instead of double-processing.
func (r *PaymentRepository) Decide(ctx context.Context, id primitive.ObjectID, approval, note string, adminID *primitive.ObjectID) (*models.Payment, error) {
	now := time.Now()
	set := bson.M{
		"adminApproval": approval,
		"processedAt":   now,
	}
	if note != "" {
		set["adminNote"] = note
	}
	if adminID != nil {
		set["adminId"] = *adminID
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var payment models.Payment
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "adminApproval": models.ApprovalPending},
		bson.M{"$set": set},
		opts,
	).Decode(&payment)
	if err == nil {
		return &payment, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, err
	}

	// No pending payment matched: distinguish missing from already decided.
	var existing models.Payment
	ferr := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&existing)
	if ferr == mongo.ErrNoDocuments {
		return nil, &apperrors.NotFoundError{Resource: "payment", ID: id.Hex()}
	}
	if ferr != nil {
		return nil, ferr
	}
	return nil, &apperrors.ConflictError{
		Message: "payment is already " + existing.AdminApproval,
	}
}

// BeginPayout flips an approved payment's payoutStatus to "pending" so only
// one caller runs the gateway for it. The filter excludes in-flight and
// completed payouts, so two racing retries collapse to a single gateway call
// and the loser sees ConflictError.
func (r *PaymentRepository) BeginPayout(ctx context.Context, id primitive.ObjectID) (*models.Payment, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var payment models.Payment
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{
			"_id":           id,
			"adminApproval": models.ApprovalApproved,
			"payoutStatus":  bson.M{"$nin": bson.A{models.PayoutPending, models.PayoutCompleted}},
		},
		bson.M{"$set": bson.M{"payoutStatus": models.PayoutPending}},
		opts,
	).Decode(&payment)
	if err == nil {
		return &payment, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, err
	}

	var existing models.Payment
	ferr := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&existing)
	if ferr == mongo.ErrNoDocuments {
		return nil, &apperrors.NotFoundError{Resource: "payment", ID: id.Hex()}
	}
	if ferr != nil {
		return nil, ferr
	}
	switch {
	case existing.AdminApproval != models.ApprovalApproved:
		return nil, &apperrors.ConflictError{Message: "only approved payments can be disbursed"}
	case existing.PayoutStatus == models.PayoutCompleted:
		return nil, &apperrors.ConflictError{Message: "payout already completed"}
	default:
		return nil, &apperrors.ConflictError{Message: "payout already in progress"}
	}
}

func (r *PaymentRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Payment, error) {
	var payment models.Payment
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&payment)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, &apperrors.NotFoundError{Resource: "payment", ID: id.Hex()}
		}
		return nil, err
	}
	return &payment, nil
}

// List returns payments, optionally filtered by admin approval state.
func (r *PaymentRepository) List(ctx context.Context, approval string) ([]models.Payment, error) {
	filter := bson.M{}
	if approval != "" {
		filter["adminApproval"] = approval
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var payments []models.Payment
	if err := cursor.All(ctx, &payments); err != nil {
		return nil, err
	}
	return payments, nil
}

func (r *PaymentRepository) ListByReseller(ctx context.Context, resellerID string) ([]models.Payment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"resellerId": resellerID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var payments []models.Payment
	if err := cursor.All(ctx, &payments); err != nil {
		return nil, err
	}
	return payments, nil
}

// ListFailedPayouts returns approved payments whose disbursement exhausted
// its retries, for manual reconciliation.
func (r *PaymentRepository) ListFailedPayouts(ctx context.Context) ([]models.Payment, error) {
	filter := bson.M{
		"adminApproval": models.ApprovalApproved,
		"payoutStatus":  models.PayoutFailed,
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var payments []models.Payment
	if err := cursor.All(ctx, &payments); err != nil {
		return nil, err
	}
	return payments, nil
}
