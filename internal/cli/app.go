package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/roach88/imgsweep/internal/aggregate"
	"github.com/roach88/imgsweep/internal/config"
	"github.com/roach88/imgsweep/internal/export"
	"github.com/roach88/imgsweep/internal/present"
	"github.com/roach88/imgsweep/internal/store"
	"github.com/roach88/imgsweep/internal/surface"
)

// scanFlags are shared by scan and export.
type scanFlags struct {
	Sort   string // overrides the config sort mode
	Refine bool   // measure records whose size is unknown
	DB     string // catalog database; empty skips cataloguing
}

func (f *scanFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.Sort, "sort", "", "sort mode (original|size-desc|size-asc|type)")
	cmd.Flags().BoolVar(&f.Refine, "refine", false, "fetch images with unknown size to measure them")
	cmd.Flags().StringVar(&f.DB, "db", "", "record the scan in this catalog database")
}

// scanRun is the outcome of a scan as shown to the user.
type scanRun struct {
	Config  config.Config
	Result  *surface.Result
	Sort    present.SortMode
	Records []aggregate.Record // sorted for display
}

func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}
}

// newLogger builds the command logger: text on stderr, debug when verbose.
func newLogger(opts *RootOptions, w io.Writer) *slog.Logger {
	logLevel := slog.LevelInfo
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: logLevel}))
}

// commandContext cancels on interrupt.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return signal.NotifyContext(ctx, os.Interrupt)
}

func loadConfig(opts *RootOptions, formatter *OutputFormatter) (config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return config.Config{}, outputCommandError(formatter, ErrCodeConfig, err.Error())
	}
	formatter.VerboseLog("Config: frame depth %d, concurrency %d, lazy attributes %v",
		cfg.MaxFrameDepth, cfg.Concurrency, cfg.LazyAttributes)
	return cfg, nil
}

// runScan loads config, scans target and prepares the records for display.
// Every returned error has already been written through formatter.
func runScan(ctx context.Context, opts *RootOptions, flags *scanFlags, target string, cmd *cobra.Command, formatter *OutputFormatter) (*scanRun, error) {
	cfg, err := loadConfig(opts, formatter)
	if err != nil {
		return nil, err
	}

	sortName := cfg.Sort
	if flags.Sort != "" {
		sortName = flags.Sort
	}
	mode, err := present.ParseSortMode(sortName)
	if err != nil {
		return nil, outputCommandError(formatter, ErrCodeFlag, err.Error())
	}

	logger := newLogger(opts, cmd.ErrOrStderr())
	scanner := surface.NewScanner(cfg, nil, logger)
	res, err := scanner.Scan(ctx, target)
	if err != nil {
		return nil, outputScanError(formatter, err)
	}

	for _, s := range res.Surfaces {
		formatter.VerboseLog("Surface %d (depth %d): %s, %d node(s), %d asset(s)",
			s.Index, s.Depth, s.Address, s.Nodes, s.Assets)
	}

	records := res.Records
	if flags.Refine {
		r := newRetriever(cfg, "", false, logger)
		records = r.RefineAll(ctx, records)
	}

	if flags.DB != "" {
		if err := recordScan(ctx, flags.DB, cfg, res, records); err != nil {
			return nil, outputCatalogError(formatter, err)
		}
		formatter.VerboseLog("Recorded scan %s in %s", res.ScanID, flags.DB)
	}

	return &scanRun{
		Config:  cfg,
		Result:  res,
		Sort:    mode,
		Records: present.Sort(records, mode),
	}, nil
}

func newRetriever(cfg config.Config, dir string, convertPNG bool, logger *slog.Logger) *export.Retriever {
	return &export.Retriever{
		Client:          &http.Client{Timeout: cfg.FetchTimeout},
		Dir:             dir,
		ConvertPNG:      convertPNG,
		UserAgent:       cfg.UserAgent,
		StaggerInterval: cfg.StaggerInterval,
		Logger:          logger,
	}
}

// recordScan writes the scan and its inventory to the catalog at path.
func recordScan(ctx context.Context, path string, cfg config.Config, res *surface.Result, records []aggregate.Record) error {
	hash, err := cfg.Fingerprint()
	if err != nil {
		return err
	}

	s, err := store.Open(path)
	if err != nil {
		return err
	}
	defer s.Close()

	return s.WriteScan(ctx, store.Scan{
		ID:           res.ScanID,
		Target:       res.Target,
		SurfaceCount: len(res.Surfaces),
		ConfigHash:   hash,
	}, records)
}

// scanErrorCode maps a scan failure to its CLI error code.
func scanErrorCode(err error) string {
	switch {
	case errors.Is(err, surface.ErrRestricted):
		return ErrCodeRestricted
	case errors.Is(err, surface.ErrNoImages):
		return ErrCodeNoImages
	case errors.Is(err, context.Canceled):
		return ErrCodeGeneric
	default:
		return ErrCodeUnavailable
	}
}

// outputScanError reports a scan failure with its user-facing message.
// Scan failures exit with code 1.
func outputScanError(formatter *OutputFormatter, err error) error {
	code := scanErrorCode(err)
	message := surface.UserMessage(err)
	if code == ErrCodeGeneric {
		message = "Scan cancelled."
	}
	_ = formatter.Error(code, message, err.Error())
	return WrapExitError(ExitFailure, fmt.Sprintf("%s: %s", code, message), err)
}

func outputCatalogError(formatter *OutputFormatter, err error) error {
	_ = formatter.Error(ErrCodeCatalog, "catalog unavailable", err.Error())
	return WrapExitError(ExitCommandError, fmt.Sprintf("%s: catalog unavailable", ErrCodeCatalog), err)
}

// outputCommandError reports a usage or setup problem (exit code 2).
func outputCommandError(formatter *OutputFormatter, code, message string) error {
	_ = formatter.Error(code, message, nil)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}
