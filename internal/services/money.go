package services

import (
	"github.com/shopspring/decimal"

	apperrors "budgetbuddy/internal/errors"
)

// maxAmount is the largest value a numeric(12,2) column holds.
var maxAmount = decimal.RequireFromString("9999999999.99")

var hundred = decimal.NewFromInt(100)

// validateAmount enforces positive amounts with at most two decimal places.
func validateAmount(field string, amount decimal.Decimal) error {
	var rule, param, msg string
	switch {
	case !amount.IsPositive():
		rule, param, msg = "gt", "0", field+" must be greater than 0"
	case !amount.Equal(amount.Round(2)):
		rule, param, msg = "decimal_places", "2", field+" must have at most 2 decimal places"
	case amount.GreaterThan(maxAmount):
		rule, param, msg = "max", maxAmount.String(), field+" is too large"
	default:
		return nil
	}
	return apperrors.WithDetails(apperrors.ErrValidation, []apperrors.FieldError{
		{Field: field, Rule: rule, Param: param, Message: msg},
	})
}

// percentOf returns part/whole*100 rounded to two places, or zero when whole is zero.
func percentOf(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return part.Mul(hundred).Div(whole).Round(2)
}
