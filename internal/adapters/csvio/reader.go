package csvio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/eshaffer321/autoreconcile/internal/domain/reconciler"
)

// ReadClaims parses claims using the profile's claim columns.
// Row order is preserved.
func ReadClaims(r io.Reader, p Profile) ([]reconciler.Claim, error) {
	rows, err := readRows(r, reconciler.KindClaim,
		p.ClaimID, p.ClaimCounterparty, p.ClaimDescription, p.ClaimAmount)
	if err != nil {
		return nil, err
	}

	claims := make([]reconciler.Claim, 0, len(rows))
	for _, row := range rows {
		claims = append(claims, reconciler.Claim{
			ID:               row.id,
			CounterpartyName: row.counterparty,
			Description:      row.description,
			Amount:           row.amount,
		})
	}
	return claims, nil
}

// ReadSettlements parses settlements using the profile's settlement columns.
// Row order is preserved.
func ReadSettlements(r io.Reader, p Profile) ([]reconciler.Settlement, error) {
	rows, err := readRows(r, reconciler.KindSettlement,
		p.SettlementID, p.SettlementCounterparty, p.SettlementDescription, p.SettlementAmount)
	if err != nil {
		return nil, err
	}

	settlements := make([]reconciler.Settlement, 0, len(rows))
	for _, row := range rows {
		settlements = append(settlements, reconciler.Settlement{
			ID:               row.id,
			CounterpartyName: row.counterparty,
			Description:      row.description,
			Amount:           row.amount,
		})
	}
	return settlements, nil
}

type record struct {
	id           string
	counterparty string
	description  string
	amount       decimal.Decimal
}

// readRows reads a header row, locates the four required columns and
// parses every data row. Cells are trimmed; an empty description or
// counterparty is kept as an empty string, an empty id or amount is an error.
func readRows(r io.Reader, kind, idCol, partyCol, descCol, amountCol string) ([]record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("empty %s file: missing header row", kind)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s header: %w", kind, err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}

	cols := make([]int, 0, 4)
	for _, name := range []string{idCol, partyCol, descCol, amountCol} {
		i, ok := index[name]
		if !ok {
			return nil, reconciler.NewFieldError(kind, "", name, "column not found in header")
		}
		cols = append(cols, i)
	}

	var rows []record
	line := 1
	for {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("failed to read %s row %d: %w", kind, line, err)
		}
		if isBlank(fields) {
			continue
		}

		cell := func(col int) (string, bool) {
			if col >= len(fields) {
				return "", false
			}
			return strings.TrimSpace(fields[col]), true
		}

		id, _ := cell(cols[0])
		if id == "" {
			return nil, reconciler.NewFieldError(kind, "", idCol, fmt.Sprintf("missing on row %d", line))
		}
		party, ok := cell(cols[1])
		if !ok {
			return nil, reconciler.NewMissingFieldError(kind, id, partyCol)
		}
		desc, ok := cell(cols[2])
		if !ok {
			return nil, reconciler.NewMissingFieldError(kind, id, descCol)
		}
		rawAmount, _ := cell(cols[3])
		if rawAmount == "" {
			return nil, reconciler.NewMissingFieldError(kind, id, amountCol)
		}
		amount, err := decimal.NewFromString(rawAmount)
		if err != nil {
			return nil, reconciler.NewFieldError(kind, id, amountCol, fmt.Sprintf("not a number: %q", rawAmount))
		}
		if amount.IsNegative() {
			return nil, reconciler.NewFieldError(kind, id, amountCol, fmt.Sprintf("must not be negative, got %s", rawAmount))
		}

		rows = append(rows, record{
			id:           id,
			counterparty: party,
			description:  desc,
			amount:       amount,
		})
	}

	return rows, nil
}

func isBlank(fields []string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
