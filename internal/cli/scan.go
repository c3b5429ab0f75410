package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/imgsweep/internal/aggregate"
	"github.com/roach88/imgsweep/internal/present"
	"github.com/roach88/imgsweep/internal/surface"
)

// ScanOptions holds flags for the scan command.
type ScanOptions struct {
	*RootOptions
	scanFlags
}

// ScanOutput is the JSON payload of a successful scan.
type ScanOutput struct {
	ScanID   string                `json:"scan_id"`
	Target   string                `json:"target"`
	Sort     present.SortMode      `json:"sort"`
	Label    string                `json:"label"`
	Surfaces []surface.SurfaceInfo `json:"surfaces"`
	Records  []aggregate.Record    `json:"records"`
}

// NewScanCommand creates the scan command.
func NewScanCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ScanOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "scan <target>",
		Short: "List the images on a page",
		Long: `Scan a page and list every image it shows.

The target is an http(s) URL, a file:// URL or a local HTML file. Frames
are followed and merged into one inventory in discovery order.

Exit codes:
  0 - Images found
  1 - Restricted target, unreadable page or no images
  2 - Command error (bad config, invalid flags, etc.)

Examples:
  imgsweep scan https://example.com
  imgsweep scan ./page.html --sort size-desc
  imgsweep scan https://example.com --refine --db catalog.db --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScanCommand(opts, args[0], cmd)
		},
	}

	opts.register(cmd)

	return cmd
}

func runScanCommand(opts *ScanOptions, target string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	ctx, stop := commandContext(cmd)
	defer stop()

	run, err := runScan(ctx, opts.RootOptions, &opts.scanFlags, target, cmd, formatter)
	if err != nil {
		return err
	}

	if formatter.Format == "json" {
		return formatter.Success(ScanOutput{
			ScanID:   run.Result.ScanID,
			Target:   run.Result.Target,
			Sort:     run.Sort,
			Label:    present.CountLabel(len(run.Records)),
			Surfaces: run.Result.Surfaces,
			Records:  run.Records,
		})
	}

	w := formatter.Writer
	fmt.Fprintf(w, "Scan %s: %s\n\n", run.Result.ScanID, run.Result.Target)
	return present.RenderText(w, run.Records)
}
