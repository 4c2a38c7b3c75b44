package cleaning

import (
	"fmt"
	"strings"
	"time"

	"csvclean/domain/table"
	"csvclean/internal"
	"csvclean/internal/errors"
)

// Stage names, in execution order
const (
	StageDeduplicate      = "deduplicate"
	StageIrrelevantColumn = "irrelevant_columns"
	StageOutliers         = "outliers"
	StageMissingData      = "missing_data"
)

// Config controls the pipeline. NumericColumns is processed in order.
type Config struct {
	NumericColumns []string
}

// Validate rejects blank column names
func (c Config) Validate() error {
	for i, name := range c.NumericColumns {
		if strings.TrimSpace(name) == "" {
			return errors.InvalidInput(fmt.Sprintf("numeric column %d has an empty name", i))
		}
	}
	return nil
}

// StageSummary describes the shape change one stage produced
type StageSummary struct {
	Stage          string        `json:"stage"`
	RowsBefore     int           `json:"rows_before"`
	RowsAfter      int           `json:"rows_after"`
	ColumnsBefore  int           `json:"columns_before"`
	ColumnsAfter   int           `json:"columns_after"`
	DroppedColumns []string      `json:"dropped_columns,omitempty"`
	Duration       time.Duration `json:"duration"`
}

// RowsRemoved returns how many rows the stage discarded
func (s StageSummary) RowsRemoved() int {
	return s.RowsBefore - s.RowsAfter
}

// Result is the cleaned table plus an audit of every stage
type Result struct {
	Table  table.Table     `json:"-"`
	Stages []StageSummary  `json:"stages"`
	Bounds []OutlierBounds `json:"bounds"`
}

// Pipeline runs the cleaning stages with a fixed configuration
type Pipeline struct {
	config Config
	logger *internal.Logger
}

// NewPipeline validates config and creates a pipeline
func NewPipeline(config Config, logger *internal.Logger) (*Pipeline, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}

	columns := make([]string, len(config.NumericColumns))
	copy(columns, config.NumericColumns)

	return &Pipeline{
		config: Config{NumericColumns: columns},
		logger: logger.With("Pipeline"),
	}, nil
}

// Clean applies deduplication, irrelevant-column removal, outlier removal and
// missing-data removal, in that order
func Clean(t table.Table, numericColumns []string) table.Table {
	cleaned, _ := RemoveOutliers(RemoveIrrelevantColumns(RemoveDuplicates(t)), numericColumns)
	return RemoveMissingData(cleaned)
}

// Run cleans t and records a summary of every stage
func (p *Pipeline) Run(t table.Table) *Result {
	result := &Result{}
	p.logger.Info("cleaning %q (%d rows, %d columns)", t.Name, t.Len(), t.Width())

	current := p.stage(result, StageDeduplicate, t, RemoveDuplicates)
	current = p.stage(result, StageIrrelevantColumn, current, RemoveIrrelevantColumns)
	current = p.stage(result, StageOutliers, current, func(in table.Table) table.Table {
		out, bounds := RemoveOutliers(in, p.config.NumericColumns)
		result.Bounds = bounds
		if p.logger.GetLevel() < internal.LogLevelDebug {
			return out
		}
		for _, b := range bounds {
			if b.Skipped {
				p.logger.Debug("%q: no numeric values in column %q, skipped", t.Name, b.Column)
				continue
			}
			p.logger.Debug("%q: column %q bounds [%g, %g], removed %d rows",
				t.Name, b.Column, b.Lower, b.Upper, b.Removed)
		}
		return out
	})
	current = p.stage(result, StageMissingData, current, RemoveMissingData)

	result.Table = current
	p.logger.Info("cleaned %q: %d -> %d rows, %d -> %d columns",
		t.Name, t.Len(), current.Len(), t.Width(), current.Width())
	return result
}

func (p *Pipeline) stage(result *Result, name string, in table.Table, fn func(table.Table) table.Table) table.Table {
	start := time.Now()
	out := fn(in)

	summary := StageSummary{
		Stage:          name,
		RowsBefore:     in.Len(),
		RowsAfter:      out.Len(),
		ColumnsBefore:  in.Width(),
		ColumnsAfter:   out.Width(),
		DroppedColumns: droppedColumns(in.Headers, out.Headers),
		Duration:       time.Since(start),
	}
	result.Stages = append(result.Stages, summary)

	p.logger.Trace("%s: rows %d -> %d, columns %d -> %d", name,
		summary.RowsBefore, summary.RowsAfter, summary.ColumnsBefore, summary.ColumnsAfter)
	return out
}

// NumericColumns returns the configured outlier columns
func (p *Pipeline) NumericColumns() []string {
	out := make([]string, len(p.config.NumericColumns))
	copy(out, p.config.NumericColumns)
	return out
}

func droppedColumns(before, after []string) []string {
	remaining := make(map[string]int, len(after))
	for _, h := range after {
		remaining[h]++
	}

	var dropped []string
	for _, h := range before {
		if remaining[h] > 0 {
			remaining[h]--
			continue
		}
		dropped = append(dropped, h)
	}
	return dropped
}
