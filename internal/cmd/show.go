package cmd

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cboone/snapwait/internal/report"
)

// newShowCommand creates the 'snapwait show' command
func newShowCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <report>",
		Short: "Show a mismatch report in detail",
		Long: `Display one report including:
  - The failing test and snapshot
  - Timeout, attempts and tolerance
  - Every candidate with its difference image
  - The resolutions that "snapwait accept" can apply`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := a.loadReport(args[0])
			if err != nil {
				return err
			}
			a.show(cmd.OutOrStdout(), doc)
			return nil
		},
	}
}

func (a *app) show(out io.Writer, doc *report.Document) {
	fmt.Fprintf(out, "Report:    %s\n", doc.Path())
	fmt.Fprintf(out, "Test:      %s\n", doc.Method)
	if doc.Snapshot != "" {
		fmt.Fprintf(out, "Snapshot:  %s\n", a.warn.Sprint(doc.Snapshot))
	}
	fmt.Fprintf(out, "Time:      %s\n", doc.Timestamp.Local().Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(out, "Timeout:   %s after %d attempts\n", doc.Timeout, doc.Attempts)
	fmt.Fprintf(out, "Tolerance: %d%%\n", doc.Tolerance)
	fmt.Fprintf(out, "Actual:    %s\n", a.abs(doc, doc.Actual))

	for _, c := range doc.Candidates {
		fmt.Fprintf(out, "\nCandidate %d: %s\n", c.Index, a.bad.Sprintf("%d pixels differ", c.DifferentPixels))
		fmt.Fprintf(out, "  expected:   %s\n", a.abs(doc, c.Expected))
		fmt.Fprintf(out, "  difference: %s\n", a.abs(doc, c.Difference))
		if c.Source != "" {
			fmt.Fprintf(out, "  source:     %s\n", c.Source)
		}
		for _, r := range c.Resolutions {
			fmt.Fprintf(out, "  %s %s\n", a.ok.Sprintf("%-16s", r.Action), r.To)
		}
	}

	if !doc.Resolvable() {
		fmt.Fprintln(out, a.dim.Sprint("\nNo resolutions: the candidates were not loaded from a snapshot store."))
	}
}

func (a *app) abs(doc *report.Document, rel string) string {
	if rel == "" || filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(doc.Dir(), rel)
}
