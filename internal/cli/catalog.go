package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/imgsweep/internal/aggregate"
	"github.com/roach88/imgsweep/internal/present"
	"github.com/roach88/imgsweep/internal/store"
)

// CatalogOptions holds flags for the catalog command.
type CatalogOptions struct {
	*RootOptions
	DB    string // database path
	Asset string // asset ID to look up
}

// CatalogScanOutput is the JSON payload for one catalogued scan.
type CatalogScanOutput struct {
	Scan   store.Scan    `json:"scan"`
	Assets []store.Asset `json:"assets"`
}

// CatalogFindOutput is the JSON payload of an asset lookup.
type CatalogFindOutput struct {
	AssetID string   `json:"asset_id"`
	Scans   []string `json:"scans"`
}

// NewCatalogCommand creates the catalog command.
func NewCatalogCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CatalogOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "catalog [scan-id]",
		Short: "Browse recorded scans",
		Long: `Browse scans recorded with --db.

With no argument, lists every scan in recording order. With a scan ID,
shows that scan's inventory. With --asset, lists the scans that found
an asset.

Examples:
  imgsweep catalog --db catalog.db
  imgsweep catalog --db catalog.db 0192f0c4-...
  imgsweep catalog --db catalog.db --asset 3f9a...`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			scanID := ""
			if len(args) == 1 {
				scanID = args[0]
			}
			return runCatalog(opts, scanID, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DB, "db", "", "path to SQLite database (required)")
	cmd.Flags().StringVar(&opts.Asset, "asset", "", "list the scans that found this asset ID")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runCatalog(opts *CatalogOptions, scanID string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	// Opening a missing path would create an empty catalog.
	if _, err := os.Stat(opts.DB); os.IsNotExist(err) {
		return outputCommandError(formatter, ErrCodeNotFound, fmt.Sprintf("database not found: %s", opts.DB))
	}

	s, err := store.Open(opts.DB)
	if err != nil {
		return outputCatalogError(formatter, err)
	}
	defer s.Close()

	ctx, stop := commandContext(cmd)
	defer stop()

	switch {
	case opts.Asset != "":
		return findAsset(ctx, s, opts.Asset, formatter)
	case scanID != "":
		return showScan(ctx, s, scanID, formatter)
	default:
		return listScans(ctx, s, formatter)
	}
}

func listScans(ctx context.Context, s *store.Store, formatter *OutputFormatter) error {
	scans, err := s.ListScans(ctx)
	if err != nil {
		return outputCatalogError(formatter, err)
	}
	if formatter.Format == "json" {
		return formatter.Success(scans)
	}

	w := formatter.Writer
	if len(scans) == 0 {
		fmt.Fprintln(w, "No scans recorded.")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SEQ\tID\tSURFACES\tASSETS\tTARGET")
	for _, scan := range scans {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%s\n", scan.Seq, scan.ID, scan.SurfaceCount, scan.AssetCount, scan.Target)
	}
	return tw.Flush()
}

func showScan(ctx context.Context, s *store.Store, scanID string, formatter *OutputFormatter) error {
	scan, err := s.ReadScan(ctx, scanID)
	if errors.Is(err, store.ErrNotFound) {
		return outputCommandError(formatter, ErrCodeNotFound, fmt.Sprintf("scan not found: %s", scanID))
	}
	if err != nil {
		return outputCatalogError(formatter, err)
	}
	assets, err := s.ReadAssets(ctx, scanID)
	if err != nil {
		return outputCatalogError(formatter, err)
	}

	if formatter.Format == "json" {
		return formatter.Success(CatalogScanOutput{Scan: scan, Assets: assets})
	}

	records := make([]aggregate.Record, len(assets))
	for i, a := range assets {
		records[i] = a.Record
	}
	w := formatter.Writer
	fmt.Fprintf(w, "Scan %s (#%d): %s\n", scan.ID, scan.Seq, scan.Target)
	fmt.Fprintf(w, "Surfaces: %d  Config: %s\n\n", scan.SurfaceCount, scan.ConfigHash)
	return present.RenderText(w, records)
}

func findAsset(ctx context.Context, s *store.Store, assetID string, formatter *OutputFormatter) error {
	scans, err := s.FindAsset(ctx, assetID)
	if err != nil {
		return outputCatalogError(formatter, err)
	}
	if formatter.Format == "json" {
		return formatter.Success(CatalogFindOutput{AssetID: assetID, Scans: scans})
	}

	w := formatter.Writer
	if len(scans) == 0 {
		fmt.Fprintf(w, "Asset %s not found in any scan.\n", assetID)
		return nil
	}
	fmt.Fprintf(w, "Asset %s found in %d scan(s):\n", assetID, len(scans))
	for _, id := range scans {
		fmt.Fprintf(w, "  %s\n", id)
	}
	return nil
}
