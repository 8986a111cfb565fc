package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/eshaffer321/autoreconcile/internal/domain/status"
)

// BuildPDF renders the report as a minimal tabular PDF.
func BuildPDF(r *Report) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.Cell(0, 8, r.title())
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Run: %s", r.RunID))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Mode: %s", r.Mode))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Threshold: %g", r.Threshold))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", r.GeneratedAt.Format(time.RFC3339)))
	pdf.Ln(8)

	summary := r.Summary()
	header(pdf, []float64{60, 30}, "Status", "Claims")
	for _, st := range status.All {
		pdf.CellFormat(60, 6, st.Label(), "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 6, fmt.Sprintf("%d", summary.Count(st)), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}
	pdf.Ln(6)

	header(pdf, []float64{35, 55, 30, 30, 35}, "Claim", "Counterparty", "Amount", "Matched", "Status")
	for _, cs := range r.Statuses {
		pdf.CellFormat(35, 6, cs.ClaimID, "1", 0, "L", false, 0, "")
		pdf.CellFormat(55, 6, tr(truncate(r.counterparty(cs.ClaimID), 30)), "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 6, r.amount(cs.Amount), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, r.amount(cs.TotalMatched), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 6, cs.Status.Label(), "1", 0, "L", false, 0, "")
		pdf.Ln(-1)
	}
	pdf.Ln(6)

	if len(r.Matches) > 0 {
		header(pdf, []float64{40, 40, 40, 30}, "Claim", "Settlement", "Matched Amount", "Score")
		for _, m := range r.Matches {
			pdf.CellFormat(40, 6, m.ClaimID, "1", 0, "L", false, 0, "")
			pdf.CellFormat(40, 6, m.SettlementID, "1", 0, "L", false, 0, "")
			pdf.CellFormat(40, 6, r.amount(m.MatchedAmount), "1", 0, "R", false, 0, "")
			pdf.CellFormat(30, 6, fmt.Sprintf("%.3f", m.MatchScore), "1", 0, "R", false, 0, "")
			pdf.Ln(-1)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func header(pdf *gofpdf.Fpdf, widths []float64, titles ...string) {
	pdf.SetFont("Arial", "B", 10)
	for i, title := range titles {
		pdf.CellFormat(widths[i], 6, title, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}
