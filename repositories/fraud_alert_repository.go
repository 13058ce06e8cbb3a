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

type FraudAlertRepository struct {
	collection *mongo.Collection
}

func NewFraudAlertRepository(db *mongo.Database) *FraudAlertRepository {
	return &FraudAlertRepository{collection: db.Collection(config.CollFraudAlerts)}
}

func (r *FraudAlertRepository) Insert(ctx context.Context, alert *models.FraudAlert) error {
	if alert.ID.IsZero() {
		alert.ID = primitive.NewObjectID()
	}
	alert.Status = models.FraudAlertOpen
	alert.CreatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, alert)
	return err
}

// List returns fraud alerts, optionally filtered by status.
func (r *FraudAlertRepository) List(ctx context.Context, status string) ([]models.FraudAlert, error) {
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

	var alerts []models.FraudAlert
	if err := cursor.All(ctx, &alerts); err != nil {
		return nil, err
	}
	return alerts, nil
}

// Resolve closes an open alert. Resolving an already-resolved alert is a
// conflict.
func (r *FraudAlertRepository) Resolve(ctx context.Context, id primitive.ObjectID, note string) (*models.FraudAlert, error) {
	now := time.Now()
	set := bson.M{
		"status":     models.FraudAlertResolved,
		"resolvedAt": now,
	}
	if note != "" {
		set["adminNote"] = note
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var alert models.FraudAlert
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "status": models.FraudAlertOpen},
		bson.M{"$set": set},
		opts,
	).Decode(&alert)
	if err == nil {
		return &alert, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, err
	}

	var existing models.FraudAlert
	ferr := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&existing)
	if ferr == mongo.ErrNoDocuments {
		return nil, &apperrors.NotFoundError{Resource: "fraud alert", ID: id.Hex()}
	}
	if ferr != nil {
		return nil, ferr
	}
	return nil, &apperrors.ConflictError{Message: "fraud alert is already resolved"}
}
