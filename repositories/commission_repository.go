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

type CommissionRepository struct {
	collection *mongo.Collection
}

func NewCommissionRepository(db *mongo.Database) *CommissionRepository {
	return &CommissionRepository{collection: db.Collection(config.CollCommissions)}
}

func (r *CommissionRepository) Insert(ctx context.Context, commission *models.Commission) error {
	if commission.ID.IsZero() {
		commission.ID = primitive.NewObjectID()
	}

	_, err := r.collection.InsertOne(ctx, commission)
	if mongo.IsDuplicateKeyError(err) {
		return &apperrors.DuplicateError{Key: commission.TransactionID.Hex()}
	}
	return err
}

func (r *CommissionRepository) GetByTransactionID(ctx context.Context, txID primitive.ObjectID) (*models.Commission, error) {
	var commission models.Commission
	err := r.collection.FindOne(ctx, bson.M{"transactionId": txID}).Decode(&commission)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, &apperrors.NotFoundError{Resource: "commission", ID: txID.Hex()}
		}
		return nil, err
	}
	return &commission, nil
}

func (r *CommissionRepository) SetStatusByTransaction(ctx context.Context, txID primitive.ObjectID, status string) error {
	now := time.Now()
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"transactionId": txID},
		bson.M{"$set": bson.M{
			"status":      status,
			"processedAt": now,
		}},
	)
	return err
}

// List returns commissions, optionally filtered by status.
func (r *CommissionRepository) List(ctx context.Context, status string) ([]models.Commission, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var commissions []models.Commission
	if err := cursor.All(ctx, &commissions); err != nil {
		return nil, err
	}
	return commissions, nil
}
