package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/eshaffer321/autoreconcile/internal/domain/status"
)

const (
	summarySheet   = "summary"
	claimsSheet    = "claims"
	matchesSheet   = "matches"
	unmatchedSheet = "unmatched"
)

// BuildXLSX renders the report as a workbook with one sheet per section.
func BuildXLSX(r *Report) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	for _, name := range []string{claimsSheet, matchesSheet, unmatchedSheet} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, err
		}
	}

	summary := r.Summary()
	_ = f.SetCellValue(summarySheet, "A1", r.title())
	_ = f.SetCellValue(summarySheet, "A3", "Run")
	_ = f.SetCellValue(summarySheet, "B3", r.RunID)
	_ = f.SetCellValue(summarySheet, "A4", "Mode")
	_ = f.SetCellValue(summarySheet, "B4", r.Mode)
	_ = f.SetCellValue(summarySheet, "A5", "Threshold")
	_ = f.SetCellValue(summarySheet, "B5", r.Threshold)
	_ = f.SetCellValue(summarySheet, "A6", "Generated")
	_ = f.SetCellValue(summarySheet, "B6", r.GeneratedAt.Format(time.RFC3339))
	_ = f.SetCellValue(summarySheet, "A8", "Status")
	_ = f.SetCellValue(summarySheet, "B8", "Claims")
	row := 9
	for _, st := range status.All {
		_ = f.SetCellValue(summarySheet, cell("A", row), st.Label())
		_ = f.SetCellValue(summarySheet, cell("B", row), summary.Count(st))
		row++
	}

	writeRow(f, claimsSheet, 1, "Claim", "Counterparty", "Amount", "Matched", "Status")
	for i, cs := range r.Statuses {
		writeRow(f, claimsSheet, i+2,
			cs.ClaimID,
			r.counterparty(cs.ClaimID),
			cs.Amount.InexactFloat64(),
			cs.TotalMatched.InexactFloat64(),
			cs.Status.Label(),
		)
	}

	writeRow(f, matchesSheet, 1, "Claim", "Settlement", "Matched Amount", "Score")
	for i, m := range r.Matches {
		writeRow(f, matchesSheet, i+2,
			m.ClaimID,
			m.SettlementID,
			m.MatchedAmount.InexactFloat64(),
			m.MatchScore,
		)
	}

	writeRow(f, unmatchedSheet, 1, "Claim", "Counterparty", "Remaining Amount")
	for i, u := range r.Unmatched {
		writeRow(f, unmatchedSheet, i+2,
			u.ClaimID,
			r.counterparty(u.ClaimID),
			u.RemainingAmount.InexactFloat64(),
		)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeRow(f *excelize.File, sheet string, row int, values ...interface{}) {
	for i, v := range values {
		col, _ := excelize.ColumnNumberToName(i + 1)
		_ = f.SetCellValue(sheet, cell(col, row), v)
	}
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
