package service

import (
	"bytes"
	"fmt"
	"time"

	"github.com/eshaffer321/autoreconcile/internal/adapters/csvio"
	"github.com/eshaffer321/autoreconcile/internal/adapters/report"
	"github.com/eshaffer321/autoreconcile/internal/domain/status"
	"github.com/eshaffer321/autoreconcile/internal/infrastructure/storage"
)

// Export formats
const (
	FormatXLSX         = "xlsx"
	FormatPDF          = "pdf"
	FormatMatchedCSV   = "matched.csv"
	FormatUnmatchedCSV = "unmatched.csv"
)

// ExportFormats lists the accepted Export formats.
var ExportFormats = []string{FormatXLSX, FormatPDF, FormatMatchedCSV, FormatUnmatchedCSV}

// Export is a rendered run ready to be written or served.
type Export struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ReportFor builds a report from a run result that has not been stored.
func ReportFor(r *RunResult) *report.Report {
	return &report.Report{
		RunID:       r.RunID,
		Mode:        r.Mode,
		Threshold:   r.Config.Threshold,
		AmountScale: r.Config.AmountScale,
		GeneratedAt: time.Now().UTC(),
		Claims:      r.Claims,
		Matches:     r.Result.Matches,
		Unmatched:   r.Result.Unmatched,
		Statuses:    r.Statuses,
	}
}

// Report builds the report of a stored run.
func (s *ReconcileService) Report(runID string) (*report.Report, error) {
	detail, err := s.GetRun(runID)
	if err != nil {
		return nil, err
	}
	return s.reportOf(detail), nil
}

func (s *ReconcileService) reportOf(detail *storage.RunDetail) *report.Report {
	claims := detail.ClaimList()
	return &report.Report{
		RunID:       detail.ID,
		Mode:        detail.Mode,
		Threshold:   detail.Threshold,
		AmountScale: detail.AmountScale,
		GeneratedAt: s.now().UTC(),
		Claims:      claims,
		Matches:     detail.Matches,
		Unmatched:   detail.Unmatched,
		Statuses:    status.ClassifyAll(claims, detail.Matches),
	}
}

// Export renders a stored run in the given format.
func (s *ReconcileService) Export(runID, format string) (*Export, error) {
	detail, err := s.GetRun(runID)
	if err != nil {
		return nil, err
	}

	out, err := Render(s.reportOf(detail), format)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveExport(format)
	return out, nil
}

// Render renders a report in the given format. CSV formats use the
// column names of the report's mode.
func Render(r *report.Report, format string) (*Export, error) {
	switch format {
	case FormatXLSX:
		data, err := report.BuildXLSX(r)
		if err != nil {
			return nil, err
		}
		return &Export{
			Filename:    r.Mode + "_status.xlsx",
			ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			Data:        data,
		}, nil

	case FormatPDF:
		data, err := report.BuildPDF(r)
		if err != nil {
			return nil, err
		}
		return &Export{
			Filename:    r.Mode + "_status.pdf",
			ContentType: "application/pdf",
			Data:        data,
		}, nil

	case FormatMatchedCSV, FormatUnmatchedCSV:
		profile, err := csvio.ProfileFor(r.Mode)
		if err != nil {
			return nil, err
		}
		var buf bytes.Buffer
		name := profile.MatchedFile
		if format == FormatMatchedCSV {
			err = csvio.WriteMatched(&buf, profile, r.AmountScale, r.Claims, r.Matches)
		} else {
			name = profile.UnmatchedFile
			err = csvio.WriteUnmatched(&buf, profile, r.AmountScale, r.Claims, r.Unmatched)
		}
		if err != nil {
			return nil, err
		}
		return &Export{
			Filename:    name,
			ContentType: "text/csv",
			Data:        buf.Bytes(),
		}, nil

	default:
		return nil, fmt.Errorf("%w: unknown export format %q (valid: %v)", ErrInvalidRequest, format, ExportFormats)
	}
}
