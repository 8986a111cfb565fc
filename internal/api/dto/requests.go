package dto

import (
	"github.com/shopspring/decimal"

	"github.com/eshaffer321/autoreconcile/internal/domain/reconciler"
)

// RecordInput is a claim or settlement in a request body. Amount accepts a
// JSON number or a quoted decimal string. Text fields must be present but
// may be empty.
type RecordInput struct {
	ID               string           `json:"id"`
	CounterpartyName *string          `json:"counterparty_name"`
	Description      *string          `json:"description"`
	Amount           *decimal.Decimal `json:"amount"`
}

// fields returns the record's required fields or a ValidationError naming
// the first one missing.
func (in RecordInput) fields(kind string) (party, desc string, amount decimal.Decimal, err error) {
	switch {
	case in.CounterpartyName == nil:
		return "", "", amount, reconciler.NewMissingFieldError(kind, in.ID, "counterparty_name")
	case in.Description == nil:
		return "", "", amount, reconciler.NewMissingFieldError(kind, in.ID, "description")
	case in.Amount == nil:
		return "", "", amount, reconciler.NewMissingFieldError(kind, in.ID, "amount")
	}
	return *in.CounterpartyName, *in.Description, *in.Amount, nil
}

// CreateRunRequest is the body of POST /api/runs. Nil tuning fields use the
// server configuration.
type CreateRunRequest struct {
	Mode               string        `json:"mode" binding:"required"`
	Claims             []RecordInput `json:"claims"`
	Settlements        []RecordInput `json:"settlements"`
	Threshold          *float64      `json:"threshold,omitempty"`
	WeightDescription  *float64      `json:"weight_description,omitempty"`
	WeightCounterparty *float64      `json:"weight_counterparty,omitempty"`
	Workers            *int          `json:"workers,omitempty"`
}

// ToClaims converts the claim inputs, rejecting missing fields.
func (r CreateRunRequest) ToClaims() ([]reconciler.Claim, error) {
	claims := make([]reconciler.Claim, len(r.Claims))
	for i, in := range r.Claims {
		party, desc, amount, err := in.fields(reconciler.KindClaim)
		if err != nil {
			return nil, err
		}
		claims[i] = reconciler.Claim{
			ID:               in.ID,
			CounterpartyName: party,
			Description:      desc,
			Amount:           amount,
		}
	}
	return claims, nil
}

// ToSettlements converts the settlement inputs, rejecting missing fields.
func (r CreateRunRequest) ToSettlements() ([]reconciler.Settlement, error) {
	settlements := make([]reconciler.Settlement, len(r.Settlements))
	for i, in := range r.Settlements {
		party, desc, amount, err := in.fields(reconciler.KindSettlement)
		if err != nil {
			return nil, err
		}
		settlements[i] = reconciler.Settlement{
			ID:               in.ID,
			CounterpartyName: party,
			Description:      desc,
			Amount:           amount,
		}
	}
	return settlements, nil
}

// RunListParams represents query parameters for listing runs.
type RunListParams struct {
	Mode   string `form:"mode"`
	Status string `form:"status"`
	Limit  int    `form:"limit"`
	Offset int    `form:"offset"`
}
