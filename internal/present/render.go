package present

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/roach88/imgsweep/internal/aggregate"
)

// RenderText writes records as an aligned table followed by the count.
func RenderText(w io.Writer, records []aggregate.Record) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tINDEX\tTYPE\tSIZE\tLOCATOR")
	for pos, r := range records {
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\n", pos+1, r.Index, r.Category, Dimensions(r), shorten(r.Locator, 96))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, CountLabel(len(records)))
	return err
}

// shorten keeps long data: locators readable.
func shorten(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
