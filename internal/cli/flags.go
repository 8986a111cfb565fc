package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/eshaffer321/autoreconcile/internal/adapters/csvio"
	"github.com/eshaffer321/autoreconcile/internal/infrastructure/config"
)

// Output formats for the reconcile command
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
	FormatPDF  = "pdf"
)

// ReconcileFlags are the flags of the reconcile command
type ReconcileFlags struct {
	Mode            string
	ClaimsPath      string
	SettlementsPath string
	OutDir          string
	Format          string
	Threshold       float64
	Workers         int
	DBPath          string
	ConfigPath      string
	Verbose         bool

	thresholdSet bool
	workersSet   bool
}

// ParseReconcileFlags parses reconcile flags from args (without the program name)
func ParseReconcileFlags(args []string, output io.Writer) (*ReconcileFlags, error) {
	flags := &ReconcileFlags{}
	fs := flag.NewFlagSet("reconcile", flag.ContinueOnError)
	fs.SetOutput(output)

	fs.StringVar(&flags.Mode, "mode", csvio.Receivables.Name, "Reconciliation mode: "+strings.Join(csvio.ProfileNames(), "|"))
	fs.StringVar(&flags.ClaimsPath, "claims", "", "Claims CSV (default: the mode's invoice file)")
	fs.StringVar(&flags.SettlementsPath, "settlements", "", "Settlements CSV (default: the mode's payment file)")
	fs.StringVar(&flags.OutDir, "out", ".", "Directory for output files")
	fs.StringVar(&flags.Format, "format", FormatCSV, "Extra report format: csv|xlsx|pdf")
	fs.Float64Var(&flags.Threshold, "threshold", 0, "Similarity threshold, scores must be strictly greater (default from config)")
	fs.IntVar(&flags.Workers, "workers", 0, "Scoring workers, >1 scores in parallel (default from config)")
	fs.StringVar(&flags.DBPath, "db", "", "SQLite database to record the run in (empty = do not record)")
	fs.StringVar(&flags.ConfigPath, "config", "config.yaml", "Config file, falls back to environment variables")
	fs.BoolVar(&flags.Verbose, "verbose", false, "Verbose output")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "threshold":
			flags.thresholdSet = true
		case "workers":
			flags.workersSet = true
		}
	})

	profile, err := csvio.ProfileFor(flags.Mode)
	if err != nil {
		return nil, err
	}
	switch flags.Format {
	case FormatCSV, FormatXLSX, FormatPDF:
	default:
		return nil, fmt.Errorf("unknown format %q (valid: csv, xlsx, pdf)", flags.Format)
	}
	if flags.ClaimsPath == "" {
		flags.ClaimsPath = profile.ClaimsFile
	}
	if flags.SettlementsPath == "" {
		flags.SettlementsPath = profile.SettlementsFile
	}
	return flags, nil
}

// ApplyTo overrides the matching config with flags given on the command line
func (f *ReconcileFlags) ApplyTo(cfg *config.Config) {
	if f.thresholdSet {
		cfg.Matching.SimilarityThreshold = f.Threshold
	}
	if f.workersSet {
		cfg.Matching.Workers = f.Workers
	}
	if f.Verbose {
		cfg.Observability.Logging.Level = "debug"
	}
}
