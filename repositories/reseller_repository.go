package repositories

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/commercelink/reseller_backend/apperrors"
	"github.com/commercelink/reseller_backend/config"
	"github.com/commercelink/reseller_backend/models"
)

type ResellerRepository struct {
	collection *mongo.Collection
}

func NewResellerRepository(db *mongo.Database) *ResellerRepository {
	return &ResellerRepository{collection: db.Collection(config.CollResellers)}
}

func (r *ResellerRepository) GetByResellerID(ctx context.Context, resellerID string) (*models.Reseller, error) {
	var reseller models.Reseller
	err := r.collection.FindOne(ctx, bson.M{"resellerId": resellerID}).Decode(&reseller)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, &apperrors.NotFoundError{Resource: "reseller", ID: resellerID}
		}
		return nil, err
	}
	return &reseller, nil
}

func (r *ResellerRepository) Insert(ctx context.Context, reseller *models.Reseller) error {
	now := time.Now()
	reseller.CreatedAt = now
	reseller.UpdatedAt = now

	_, err := r.collection.InsertOne(ctx, reseller)
	if mongo.IsDuplicateKeyError(err) {
		// Two unique indexes can reject the insert; report the one that
		// actually did, so a taken email is not mistaken for a reseller-id
		// collision.
		if duplicateIndexField(err) == "email" {
			return &apperrors.DuplicateError{Key: reseller.Email}
		}
		return &apperrors.DuplicateError{Key: reseller.ResellerID}
	}
	return err
}

// duplicateIndexField reports which unique index a duplicate-key write
// exception hit, by the index name embedded in the server's E11000 message.
func duplicateIndexField(err error) string {
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if strings.Contains(e.Message, "index: email") {
				return "email"
			}
		}
	}
	return "resellerId"
}

// CreditEarnings atomically adds the commission amount to both balance and
// totalEarnings. Single $inc so two racing approvals cannot lose an update.
func (r *ResellerRepository) CreditEarnings(ctx context.Context, resellerID string, amount float64) error {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"resellerId": resellerID},
		bson.M{
			"$inc": bson.M{
				"balance":       amount,
				"totalEarnings": amount,
			},
			"$set": bson.M{"updatedAt": time.Now()},
		},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return &apperrors.NotFoundError{Resource: "reseller", ID: resellerID}
	}
	return nil
}

func (r *ResellerRepository) IncrementSales(ctx context.Context, resellerID string) error {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"resellerId": resellerID},
		bson.M{
			"$inc": bson.M{"totalSales": 1},
			"$set": bson.M{"updatedAt": time.Now()},
		},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return &apperrors.NotFoundError{Resource: "reseller", ID: resellerID}
	}
	return nil
}
