package report

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/cboone/snapwait/internal/snapstore"
)

var markdown = goldmark.New(goldmark.WithExtensions(extension.Table))

// Markdown renders doc as a markdown page with image links relative to the
// document directory.
func Markdown(doc *Document) string {
	var b strings.Builder

	title := doc.Method
	if doc.Snapshot != "" {
		title += " #" + doc.Snapshot
	}
	fmt.Fprintf(&b, "# Snapshot mismatch: %s\n\n", title)
	fmt.Fprintf(&b, "- Report: `%s`\n", doc.ID)
	fmt.Fprintf(&b, "- Time: %s\n", doc.Timestamp.Format("2006-01-02 15:04:05 MST"))
	if doc.Timeout != "" {
		fmt.Fprintf(&b, "- Timeout: %s (%d attempts)\n", doc.Timeout, doc.Attempts)
	}
	fmt.Fprintf(&b, "- Tolerance: %d%%\n\n", doc.Tolerance)

	fmt.Fprintf(&b, "## Actual\n\n![actual](%s)\n\n", filepath.ToSlash(doc.Actual))

	for _, c := range doc.Candidates {
		fmt.Fprintf(&b, "## Candidate %d\n\n", c.Index)
		b.WriteString("| expected | difference |\n|---|---|\n")
		fmt.Fprintf(&b, "| ![expected %d](%s) | ![difference %d](%s) |\n\n",
			c.Index, filepath.ToSlash(c.Expected), c.Index, filepath.ToSlash(c.Difference))
		fmt.Fprintf(&b, "%d pixels differ.\n\n", c.DifferentPixels)
		for _, res := range c.Resolutions {
			fmt.Fprintf(&b, "- `%s`: copy `%s` to `%s`\n", res.Action, res.From, res.To)
		}
		if len(c.Resolutions) > 0 {
			b.WriteString("\n")
		}
	}

	if doc.Stack != "" {
		fmt.Fprintf(&b, "## Stack\n\n```\n%s\n```\n", strings.TrimRight(doc.Stack, "\n"))
	}
	return b.String()
}

func (r *Reporter) writeHTML(path string, doc *Document) error {
	var body bytes.Buffer
	if err := markdown.Convert([]byte(Markdown(doc)), &body); err != nil {
		return err
	}

	var page bytes.Buffer
	page.WriteString("<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\"><title>snapwait report</title>")
	page.WriteString("<style>img{border:1px solid #ccc;max-width:100%;background:repeating-conic-gradient(#eee 0 25%,#fff 0 50%) 0 0/16px 16px}</style>")
	page.WriteString("</head><body>\n")
	page.Write(body.Bytes())
	page.WriteString("</body></html>\n")

	return snapstore.WriteBytes(path, page.Bytes())
}
