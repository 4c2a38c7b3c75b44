// Package report renders a human readable summary of a cleaning run as
// Markdown, or as a standalone HTML page.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"csvclean/internal/cleaning"
	"csvclean/internal/errors"
	"csvclean/internal/profiling"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// JobReport describes the outcome of one job
type JobReport struct {
	Name       string
	Input      string
	Output     string
	Written    bool   // false when the cleaned table was empty
	SinkTable  string // database table the rows were copied to, if any
	RowsIn     int
	RowsOut    int
	ColumnsIn  int
	ColumnsOut int
	Stages     []cleaning.StageSummary
	Bounds     []cleaning.OutlierBounds
	Profiles   []profiling.ColumnProfile
}

// RunReport aggregates every job of one run
type RunReport struct {
	RunID     string
	StartedAt time.Time
	Duration  time.Duration
	Jobs      []JobReport
}

// Markdown renders the report as GitHub flavored Markdown
func (r RunReport) Markdown() string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Cleaning run %s\n\n", r.RunID)
	fmt.Fprintf(&b, "Started %s, took %s, %d job(s).\n\n",
		r.StartedAt.UTC().Format(time.RFC3339), r.Duration.Round(time.Millisecond), len(r.Jobs))

	b.WriteString("| Job | Rows | Columns | Output |\n|---|---|---|---|\n")
	for _, job := range r.Jobs {
		output := job.Output
		if !job.Written {
			output = "not written (empty)"
		}
		fmt.Fprintf(&b, "| %s | %d → %d | %d → %d | %s |\n",
			escape(job.Name), job.RowsIn, job.RowsOut, job.ColumnsIn, job.ColumnsOut, escape(output))
	}

	for _, job := range r.Jobs {
		writeJob(&b, job)
	}
	return b.String()
}

func writeJob(b *strings.Builder, job JobReport) {
	fmt.Fprintf(b, "\n## %s\n\n", escape(job.Name))
	fmt.Fprintf(b, "Input `%s`", job.Input)
	if job.Written {
		fmt.Fprintf(b, ", output `%s`", job.Output)
	}
	if job.SinkTable != "" {
		fmt.Fprintf(b, ", database table `%s`", job.SinkTable)
	}
	b.WriteString(".\n\n")

	b.WriteString("### Stages\n\n| Stage | Rows | Columns | Dropped columns |\n|---|---|---|---|\n")
	for _, s := range job.Stages {
		fmt.Fprintf(b, "| %s | %d → %d | %d → %d | %s |\n",
			s.Stage, s.RowsBefore, s.RowsAfter, s.ColumnsBefore, s.ColumnsAfter,
			escape(strings.Join(s.DroppedColumns, ", ")))
	}

	if len(job.Bounds) > 0 {
		b.WriteString("\n### Outlier bounds\n\n| Column | Q1 | Q3 | IQR | Lower | Upper | Values | Removed |\n|---|---|---|---|---|---|---|---|\n")
		for _, bound := range job.Bounds {
			if bound.Skipped {
				fmt.Fprintf(b, "| %s | | | | | | 0 | skipped |\n", escape(bound.Column))
				continue
			}
			fmt.Fprintf(b, "| %s | %g | %g | %g | %g | %g | %d | %d |\n",
				escape(bound.Column), bound.Q1, bound.Q3, bound.IQR, bound.Lower, bound.Upper, bound.Parsed, bound.Removed)
		}
	}

	if len(job.Profiles) > 0 {
		b.WriteString("\n### Numeric profile after cleaning\n\n| Column | Count | Mean | Std dev | Min | Median | Max | Skewness |\n|---|---|---|---|---|---|---|---|\n")
		for _, p := range job.Profiles {
			fmt.Fprintf(b, "| %s | %d | %.4g | %.4g | %g | %g | %g | %.3f |\n",
				escape(p.Column), p.Count, p.Mean, p.StdDev, p.Min, p.Median, p.Max, p.Skewness)
		}
	}
}

// HTML renders the Markdown report as a complete HTML page
func (r RunReport) HTML() []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	doc := p.Parse([]byte(r.Markdown()))

	renderer := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.CompletePage,
		Title: "Cleaning run " + r.RunID,
	})
	return markdown.Render(doc, renderer)
}

// WriteFile saves the report to path; a .html or .htm extension selects HTML
func (r RunReport) WriteFile(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.IOError(dir, err)
		}
	}

	var content []byte
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		content = r.HTML()
	default:
		content = []byte(r.Markdown())
	}

	if err := os.WriteFile(path, content, 0644); err != nil {
		return errors.IOError(path, err)
	}
	return nil
}

func escape(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
