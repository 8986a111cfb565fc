package reconciler

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Normalize validates claims and settlements and returns copies with
// amounts rounded to scale decimal places. Input order is preserved.
//
// It rejects empty ids, negative amounts and duplicate ids on either side.
func Normalize(claims []Claim, settlements []Settlement, scale int32) ([]Claim, []Settlement, error) {
	outClaims := make([]Claim, len(claims))
	seenClaims := make(map[string]bool, len(claims))
	for i, c := range claims {
		if strings.TrimSpace(c.ID) == "" {
			return nil, nil, newValidationError(KindClaim, "", "id", fmt.Sprintf("missing at position %d", i))
		}
		if seenClaims[c.ID] {
			return nil, nil, newValidationError(KindClaim, c.ID, "id", "duplicate id")
		}
		seenClaims[c.ID] = true

		amount, err := normalizeAmount(c.Amount, scale)
		if err != nil {
			return nil, nil, newValidationError(KindClaim, c.ID, "amount", err.Error())
		}
		c.Amount = amount
		outClaims[i] = c
	}

	outSettlements := make([]Settlement, len(settlements))
	seenSettlements := make(map[string]bool, len(settlements))
	for i, s := range settlements {
		if strings.TrimSpace(s.ID) == "" {
			return nil, nil, newValidationError(KindSettlement, "", "id", fmt.Sprintf("missing at position %d", i))
		}
		if seenSettlements[s.ID] {
			return nil, nil, newValidationError(KindSettlement, s.ID, "id", "duplicate id")
		}
		seenSettlements[s.ID] = true

		amount, err := normalizeAmount(s.Amount, scale)
		if err != nil {
			return nil, nil, newValidationError(KindSettlement, s.ID, "amount", err.Error())
		}
		s.Amount = amount
		outSettlements[i] = s
	}

	return outClaims, outSettlements, nil
}

func normalizeAmount(amount decimal.Decimal, scale int32) (decimal.Decimal, error) {
	if amount.IsNegative() {
		return decimal.Zero, fmt.Errorf("must not be negative, got %s", amount.String())
	}
	return amount.Round(scale), nil
}

// NewMissingFieldError reports a required field absent from a record.
// Loaders use it so missing input fails the same way as invalid input.
func NewMissingFieldError(kind, id, field string) *ValidationError {
	return newValidationError(kind, id, field, "required field is missing")
}

// NewFieldError reports a field whose value could not be used.
func NewFieldError(kind, id, field, message string) *ValidationError {
	return newValidationError(kind, id, field, message)
}
