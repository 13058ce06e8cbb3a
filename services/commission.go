package services

import (
	"math"

	"github.com/commercelink/reseller_backend/apperrors"
)

// CalculateCommission derives the commission amount owed to a reseller for a
// sale: price x rate/100, rounded to 2 decimals. Rate is a percentage in
// [0,100]. Pure, no side effects.
func CalculateCommission(price, rate float64) (float64, error) {
	if price < 0 || math.IsNaN(price) || math.IsInf(price, 0) {
		return 0, &apperrors.ValidationError{Field: "price", Message: "must be a non-negative number"}
	}
	if rate < 0 || rate > 100 || math.IsNaN(rate) {
		return 0, &apperrors.ValidationError{Field: "rate", Message: "must be a percentage between 0 and 100"}
	}

	return math.Round(price*rate) / 100, nil
}
