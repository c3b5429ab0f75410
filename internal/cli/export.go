package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	*RootOptions
	scanFlags
	Out   string // output directory
	PNG   bool   // convert every image to PNG
	Index int    // 1-based display position to save alone; 0 saves all
}

// ExportOutput is the JSON payload of an export.
type ExportOutput struct {
	ScanID string   `json:"scan_id"`
	Target string   `json:"target"`
	Dir    string   `json:"dir"`
	Saved  []string `json:"saved"`
	Failed int      `json:"failed"`
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export <target>",
		Short: "Save the images on a page",
		Long: `Scan a page and save every image it shows to a directory.

Files are named image_1, image_2, ... in display order. Downloads are
started one at a time, spaced by the configured stagger interval. A
failed image does not stop the rest. With --index N only the image at
display position N is saved, under the same name it gets in a full export.

Exit codes:
  0 - All images saved
  1 - Scan failed or one or more images could not be saved
  2 - Command error (bad config, invalid flags, etc.)

Examples:
  imgsweep export https://example.com --out ./images
  imgsweep export ./page.html --out ./images --png --sort size-desc
  imgsweep export ./page.html --sort size-desc --index 1`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(opts, args[0], cmd)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVarP(&opts.Out, "out", "o", ".", "output directory")
	cmd.Flags().BoolVar(&opts.PNG, "png", false, "convert every image to PNG")
	cmd.Flags().IntVar(&opts.Index, "index", 0, "save only the image at this display position (1-based)")

	return cmd
}

func runExport(opts *ExportOptions, target string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	if opts.Index < 0 {
		return outputCommandError(formatter, ErrCodeFlag, fmt.Sprintf("invalid index %d: must be 1 or greater", opts.Index))
	}

	ctx, stop := commandContext(cmd)
	defer stop()

	run, err := runScan(ctx, opts.RootOptions, &opts.scanFlags, target, cmd, formatter)
	if err != nil {
		return err
	}

	if opts.Index > len(run.Records) {
		return outputCommandError(formatter, ErrCodeFlag,
			fmt.Sprintf("invalid index %d: scan found %d image(s)", opts.Index, len(run.Records)))
	}

	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())
	retriever := newRetriever(run.Config, opts.Out, opts.PNG, logger)

	var (
		saved   []string
		saveErr error
		total   = len(run.Records)
	)
	if opts.Index > 0 {
		total = 1
		pos := opts.Index - 1
		path, err := retriever.Save(ctx, pos, run.Records[pos])
		if err != nil {
			saveErr = err
		} else {
			saved = append(saved, path)
		}
	} else {
		saved, saveErr = retriever.SaveAll(ctx, run.Records)
	}
	failed := total - len(saved)

	if saveErr != nil {
		message := fmt.Sprintf("%d of %d image(s) could not be saved", failed, total)
		_ = formatter.Error(ErrCodeExport, message, ExportOutput{
			ScanID: run.Result.ScanID,
			Target: run.Result.Target,
			Dir:    opts.Out,
			Saved:  saved,
			Failed: failed,
		})
		return WrapExitError(ExitFailure, fmt.Sprintf("%s: %s", ErrCodeExport, message), saveErr)
	}

	if formatter.Format == "json" {
		return formatter.Success(ExportOutput{
			ScanID: run.Result.ScanID,
			Target: run.Result.Target,
			Dir:    opts.Out,
			Saved:  saved,
		})
	}

	w := formatter.Writer
	for _, path := range saved {
		fmt.Fprintf(w, "  %s\n", path)
	}
	fmt.Fprintf(w, "✓ Saved %d image(s) to %s\n", len(saved), opts.Out)
	return nil
}
