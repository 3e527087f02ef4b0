package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/cboone/snapwait/internal/report"
)

// newListCommand creates the 'snapwait list' command
func newListCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List unresolved mismatch reports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runList(cmd)
		},
	}
}

func (a *app) runList(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()

	docs, err := report.List(a.cfg.ReportDir)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		fmt.Fprintf(out, "No reports in %s\n", a.cfg.ReportDir)
		return nil
	}

	for _, doc := range docs {
		fmt.Fprintln(out, a.summary(doc))
	}
	a.logger.Debug("listed reports", "dir", a.cfg.ReportDir, "count", len(docs))
	return nil
}

// summary renders one report on a single line.
func (a *app) summary(doc *report.Document) string {
	subject := doc.Method
	if doc.Snapshot != "" {
		subject += " " + a.warn.Sprint(doc.Snapshot)
	}
	return fmt.Sprintf("%s  %s  %s  %s",
		a.dim.Sprint(doc.Timestamp.Local().Format(time.DateTime)),
		strings.TrimSuffix(filepath.Base(doc.Path()), filepath.Ext(doc.Path())),
		subject,
		a.bad.Sprintf("%d candidate(s)", len(doc.Candidates)),
	)
}

// loadReport resolves ref as a document path, or as a report name inside
// the configured report directory.
func (a *app) loadReport(ref string) (*report.Document, error) {
	if _, err := os.Stat(ref); err == nil {
		return report.Load(ref)
	}

	name := ref
	if filepath.Ext(name) != ".yaml" {
		name += ".yaml"
	}
	doc, err := report.Load(filepath.Join(a.cfg.ReportDir, name))
	if errors.Is(err, report.ErrReportNotFound) {
		return nil, fmt.Errorf("no report %q in %s", ref, a.cfg.ReportDir)
	}
	return doc, err
}
