package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"csvclean/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Jobs     []Job
	Cleaning CleaningConfig
	Output   OutputConfig
	Database DatabaseConfig
	Runtime  RuntimeConfig
}

// Job pairs one input table with the file its cleaned form is written to
type Job struct {
	Name   string
	Input  string
	Output string
}

// CleaningConfig holds pipeline settings
type CleaningConfig struct {
	NumericColumns []string
}

// OutputConfig holds file output settings
type OutputConfig struct {
	ReportPath string // optional run report, .md or .html
	SheetName  string // xlsx sheet name, empty uses the first sheet
}

// DatabaseConfig holds the optional Postgres sink settings
type DatabaseConfig struct {
	URL         string
	TablePrefix string
}

// RuntimeConfig holds process level settings
type RuntimeConfig struct {
	Parallelism int
	LogLevel    string
}

// DefaultDatasets are the tables of the reference deployment
var DefaultDatasets = []string{
	"summer-products-with-rating-and-performance_2020-08",
	"unique-categories",
	"unique-categories.sorted-by-count",
	"computed_insight_success_of_active_sellers",
}

// DefaultNumericColumns are checked for outliers, in this order
var DefaultNumericColumns = []string{
	"totalunitssold",
	"meanunitssoldperproduct",
	"rating",
	"merchantratingscount",
	"meanretailprices",
	"meanproductratingscount",
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{}

	jobs, err := loadJobs()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load job configuration")
	}
	config.Jobs = jobs

	config.Cleaning = CleaningConfig{
		NumericColumns: getEnvListOrDefault("CLEANER_NUMERIC_COLUMNS", DefaultNumericColumns),
	}

	config.Output = OutputConfig{
		ReportPath: getEnvOrDefault("CLEANER_REPORT", ""),
		SheetName:  getEnvOrDefault("CLEANER_SHEET", ""),
	}

	config.Database = DatabaseConfig{
		URL:         getEnvOrDefault("DATABASE_URL", ""),
		TablePrefix: getEnvOrDefault("CLEANER_TABLE_PREFIX", "cleaned_"),
	}

	parallelism, err := getEnvIntOrDefault("CLEANER_PARALLELISM", 1)
	if err != nil {
		return nil, err
	}
	config.Runtime = RuntimeConfig{
		Parallelism: parallelism,
		LogLevel:    getEnvOrDefault("LOG_LEVEL", "INFO"),
	}

	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

// Validate checks the invariants every entry point relies on
func (c *Config) Validate() error {
	if len(c.Jobs) == 0 {
		return errors.ConfigInvalid("at least one job is required")
	}
	for i, job := range c.Jobs {
		if job.Input == "" || job.Output == "" {
			return errors.ConfigInvalid(fmt.Sprintf("job %d needs both an input and an output path", i))
		}
		if filepath.Clean(job.Input) == filepath.Clean(job.Output) {
			return errors.ConfigInvalid(fmt.Sprintf("job %q would overwrite its own input", job.Name))
		}
	}
	for _, column := range c.Cleaning.NumericColumns {
		if strings.TrimSpace(column) == "" {
			return errors.ConfigInvalid("numeric column names must not be empty")
		}
	}
	if c.Runtime.Parallelism < 1 {
		return errors.ConfigInvalid("parallelism must be at least 1")
	}
	return nil
}

func loadJobs() ([]Job, error) {
	raw := os.Getenv("CLEANER_JOBS")
	if raw == "" {
		return DefaultJobs(getEnvOrDefault("CLEANER_DATA_DIR", "data")), nil
	}
	return ParseJobs(raw)
}

// DefaultJobs builds the reference jobs under dataDir, writing cleaned_<name>.csv
func DefaultJobs(dataDir string) []Job {
	jobs := make([]Job, len(DefaultDatasets))
	for i, name := range DefaultDatasets {
		jobs[i] = Job{
			Name:   name,
			Input:  filepath.Join(dataDir, name+".csv"),
			Output: filepath.Join(dataDir, "cleaned_"+name+".csv"),
		}
	}
	return jobs
}

// ParseJobs parses a comma separated list of input=output pairs
func ParseJobs(raw string) ([]Job, error) {
	var jobs []Job
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		input, output, ok := strings.Cut(pair, "=")
		input, output = strings.TrimSpace(input), strings.TrimSpace(output)
		if !ok || input == "" || output == "" {
			return nil, errors.ConfigInvalid(fmt.Sprintf("invalid job %q, expected input=output", pair))
		}
		jobs = append(jobs, NewJob(input, output))
	}
	if len(jobs) == 0 {
		return nil, errors.ConfigInvalid("CLEANER_JOBS contains no jobs")
	}
	return jobs, nil
}

// NewJob names a job after its input file
func NewJob(input, output string) Job {
	base := filepath.Base(input)
	return Job{
		Name:   strings.TrimSuffix(base, filepath.Ext(base)),
		Input:  input,
		Output: output,
	}
}

// SplitList splits a comma separated list, dropping blank entries
func SplitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue, nil
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		return 0, errors.WithCode(errors.CodeConfigInvalid, fmt.Errorf("%s must be an integer, got %q", key, value))
	}
	return intValue, nil
}

func getEnvListOrDefault(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		if list := SplitList(value); len(list) > 0 {
			return list
		}
	}
	out := make([]string, len(defaultValue))
	copy(out, defaultValue)
	return out
}
