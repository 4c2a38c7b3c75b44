package app

import (
	"context"
	"fmt"
	"time"

	"csvclean/adapters/excel"
	"csvclean/domain/core"
	"csvclean/domain/table"
	"csvclean/internal"
	"csvclean/internal/cleaning"
	"csvclean/internal/config"
	"csvclean/internal/errors"
	"csvclean/internal/profiling"
	"csvclean/internal/report"
	"csvclean/ports"

	"golang.org/x/sync/errgroup"
)

// JobResult is the outcome of cleaning one table
type JobResult struct {
	Job       config.Job
	RowsIn    int
	ColumnsIn int
	Cleaning  *cleaning.Result
	Written   bool
	SinkTable string
	Profiles  []profiling.ColumnProfile
}

// RunSummary collects every job result of a run, in job order
type RunSummary struct {
	RunID     core.RunID
	StartedAt time.Time
	Duration  time.Duration
	Jobs      []JobResult
}

// Report converts the summary into a renderable run report
func (s *RunSummary) Report() report.RunReport {
	r := report.RunReport{
		RunID:     s.RunID.String(),
		StartedAt: s.StartedAt,
		Duration:  s.Duration,
	}
	for _, job := range s.Jobs {
		jr := report.JobReport{
			Name:      job.Job.Name,
			Input:     job.Job.Input,
			Output:    job.Job.Output,
			Written:   job.Written,
			SinkTable: job.SinkTable,
			RowsIn:    job.RowsIn,
			ColumnsIn: job.ColumnsIn,
			Profiles:  job.Profiles,
		}
		if job.Cleaning != nil {
			jr.RowsOut = job.Cleaning.Table.Len()
			jr.ColumnsOut = job.Cleaning.Table.Width()
			jr.Stages = job.Cleaning.Stages
			jr.Bounds = job.Cleaning.Bounds
		}
		r.Jobs = append(r.Jobs, jr)
	}
	return r
}

// ServiceOptions configures a CleaningService
type ServiceOptions struct {
	NumericColumns []string
	Parallelism    int
	ReportPath     string
	Excel          excel.Config
	Sink           ports.TableSink // optional
	Logger         *internal.Logger
	RunID          core.RunID // generated when empty
}

// OptionsFromConfig maps application configuration onto service options
func OptionsFromConfig(cfg *config.Config) ServiceOptions {
	excelConfig := excel.DefaultConfig()
	excelConfig.SheetName = cfg.Output.SheetName
	return ServiceOptions{
		NumericColumns: cfg.Cleaning.NumericColumns,
		Parallelism:    cfg.Runtime.Parallelism,
		ReportPath:     cfg.Output.ReportPath,
		Excel:          excelConfig,
	}
}

// CleaningService reads, cleans and writes the tables of a batch
type CleaningService struct {
	pipeline    *cleaning.Pipeline
	analyzer    *profiling.DistributionAnalyzer
	sink        ports.TableSink
	parallelism int
	reportPath  string
	runID       core.RunID
	logger      *internal.Logger

	openReader func(path string) ports.TableReader
	openWriter func(path string) ports.TableWriter
}

// NewCleaningService creates a service from options
func NewCleaningService(opts ServiceOptions) (*CleaningService, error) {
	logger := opts.Logger
	if logger == nil {
		logger = internal.DefaultLogger
	}

	pipeline, err := cleaning.NewPipeline(cleaning.Config{NumericColumns: opts.NumericColumns}, logger)
	if err != nil {
		return nil, errors.Wrap(err, "invalid cleaning configuration")
	}

	parallelism := opts.Parallelism
	if parallelism < 1 {
		parallelism = 1
	}

	runID := opts.RunID
	if runID == "" {
		runID = core.NewRunID()
	}

	excelConfig := opts.Excel
	return &CleaningService{
		pipeline:    pipeline,
		analyzer:    profiling.NewDistributionAnalyzer(),
		sink:        opts.Sink,
		parallelism: parallelism,
		reportPath:  opts.ReportPath,
		runID:       runID,
		logger:      logger.With("CleaningService"),
		openReader: func(path string) ports.TableReader {
			return excel.NewDataReaderWithConfig(path, excelConfig, logger)
		},
		openWriter: func(path string) ports.TableWriter {
			return excel.NewDataWriterWithConfig(path, excelConfig, logger)
		},
	}, nil
}

// RunID returns the identifier of this service's run
func (s *CleaningService) RunID() core.RunID {
	return s.runID
}

// Run executes every job. Jobs are independent; with parallelism 1 they run
// strictly in order. The first failing job aborts the run.
func (s *CleaningService) Run(ctx context.Context, jobs []config.Job) (*RunSummary, error) {
	summary := &RunSummary{RunID: s.runID, StartedAt: time.Now()}
	s.logger.Info("run %s: %d job(s), parallelism %d", s.runID.Short(), len(jobs), s.parallelism)

	results := make([]JobResult, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.parallelism)

	for i, job := range jobs {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = errors.InternalError(fmt.Sprintf("job %q panicked: %v", job.Name, r))
				}
			}()
			if err := gctx.Err(); err != nil {
				return err
			}
			result, err := s.RunJob(gctx, job)
			if err != nil {
				return errors.Wrapf(err, "job %q failed", job.Name)
			}
			results[i] = *result
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		s.logger.Error("run %s aborted: %v", s.runID.Short(), err)
		return nil, err
	}

	summary.Jobs = results
	summary.Duration = time.Since(summary.StartedAt)

	if s.reportPath != "" {
		if err := summary.Report().WriteFile(s.reportPath); err != nil {
			return nil, errors.Wrap(err, "failed to write run report")
		}
		s.logger.Info("report written to %s", s.reportPath)
	}

	return summary, nil
}

// RunJob loads one table, cleans it, writes it and copies it to the sink
func (s *CleaningService) RunJob(ctx context.Context, job config.Job) (*JobResult, error) {
	t, err := s.openReader(job.Input).ReadTable()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load %s", job.Input)
	}
	if job.Name != "" {
		t.Name = job.Name
	}

	result := s.clean(job, t)

	written, err := s.openWriter(job.Output).WriteTable(result.Cleaning.Table)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to save %s", job.Output)
	}
	result.Written = written

	if s.sink != nil {
		cleaned := result.Cleaning.Table
		switch {
		case cleaned.HasData():
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			name, err := s.sink.Store(ctx, job.Name, cleaned)
			if err != nil {
				return nil, errors.Wrapf(err, "failed to store %s in database", job.Name)
			}
			result.SinkTable = name
		case !cleaned.IsEmpty():
			s.logger.Warn("%q has %d rows but no columns left, not stored in database", job.Name, cleaned.Len())
		}
	}

	return result, nil
}

// Preview loads and cleans a table without writing anything
func (s *CleaningService) Preview(path string) (*JobResult, error) {
	job := config.NewJob(path, "")
	t, err := s.openReader(path).ReadTable()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load %s", path)
	}
	return s.clean(job, t), nil
}

func (s *CleaningService) clean(job config.Job, t table.Table) *JobResult {
	res := s.pipeline.Run(t)
	return &JobResult{
		Job:       job,
		RowsIn:    t.Len(),
		ColumnsIn: t.Width(),
		Cleaning:  res,
		Profiles:  s.analyzer.ProfileTable(res.Table, s.pipeline.NumericColumns()),
	}
}
