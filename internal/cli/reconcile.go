package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/eshaffer321/autoreconcile/internal/adapters/csvio"
	"github.com/eshaffer321/autoreconcile/internal/application/service"
	"github.com/eshaffer321/autoreconcile/internal/infrastructure/config"
	"github.com/eshaffer321/autoreconcile/internal/infrastructure/logging"
	"github.com/eshaffer321/autoreconcile/internal/infrastructure/storage"
)

// RunReconcile reads the claim and settlement files, reconciles them and
// writes the matched and unmatched files (plus a report for xlsx/pdf) into
// flags.OutDir. A summary is printed to out.
func RunReconcile(ctx context.Context, cfg *config.Config, flags *ReconcileFlags, out io.Writer) error {
	flags.ApplyTo(cfg)
	if err := cfg.Matching.Validate(); err != nil {
		return err
	}
	logger := logging.NewLoggerWithComponent(cfg.Observability.Logging, "reconcile")

	profile, err := csvio.ProfileFor(flags.Mode)
	if err != nil {
		return err
	}

	claimsFile, err := os.Open(flags.ClaimsPath)
	if err != nil {
		return fmt.Errorf("open claims: %w", err)
	}
	defer func() { _ = claimsFile.Close() }()
	claims, err := csvio.ReadClaims(claimsFile, profile)
	if err != nil {
		return fmt.Errorf("read %s: %w", flags.ClaimsPath, err)
	}

	settlementsFile, err := os.Open(flags.SettlementsPath)
	if err != nil {
		return fmt.Errorf("open settlements: %w", err)
	}
	defer func() { _ = settlementsFile.Close() }()
	settlements, err := csvio.ReadSettlements(settlementsFile, profile)
	if err != nil {
		return fmt.Errorf("read %s: %w", flags.SettlementsPath, err)
	}

	logger.Debug("loaded input",
		slog.String("claims_file", flags.ClaimsPath),
		slog.Int("claims", len(claims)),
		slog.String("settlements_file", flags.SettlementsPath),
		slog.Int("settlements", len(settlements)))

	var store storage.Repository
	if flags.DBPath != "" {
		s, err := storage.NewStorage(flags.DBPath)
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()
		store = s
	}

	svc := service.NewReconcileService(cfg, store, nil, logger)
	result, err := svc.Run(ctx, service.RunRequest{
		Mode:        profile.Name,
		Claims:      claims,
		Settlements: settlements,
	})
	if err != nil {
		return err
	}

	written, err := writeOutputs(result, flags)
	if err != nil {
		return err
	}

	PrintHeader(out, profile.Name)
	PrintConfiguration(out, result)
	PrintSummary(out, result, written)
	if store != nil {
		fmt.Fprintf(out, "Recorded run %s in %s\n", result.RunID, flags.DBPath)
	}
	return nil
}

func writeOutputs(result *service.RunResult, flags *ReconcileFlags) ([]string, error) {
	if err := os.MkdirAll(flags.OutDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	formats := []string{service.FormatMatchedCSV, service.FormatUnmatchedCSV}
	switch flags.Format {
	case FormatXLSX:
		formats = append(formats, service.FormatXLSX)
	case FormatPDF:
		formats = append(formats, service.FormatPDF)
	}

	rep := service.ReportFor(result)
	written := make([]string, 0, len(formats))
	for _, format := range formats {
		export, err := service.Render(rep, format)
		if err != nil {
			return written, err
		}
		path := filepath.Join(flags.OutDir, export.Filename)
		if err := os.WriteFile(path, export.Data, 0o644); err != nil {
			return written, fmt.Errorf("write %s: %w", path, err)
		}
		written = append(written, path)
	}
	return written, nil
}
