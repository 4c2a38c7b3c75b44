package config

import (
	"path/filepath"
	"testing"

	"csvclean/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"CLEANER_JOBS", "CLEANER_DATA_DIR", "CLEANER_NUMERIC_COLUMNS", "CLEANER_REPORT",
		"CLEANER_SHEET", "DATABASE_URL", "CLEANER_TABLE_PREFIX", "CLEANER_PARALLELISM", "LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	require.Len(t, cfg.Jobs, 4)
	assert.Equal(t, filepath.Join("data", "unique-categories.csv"), cfg.Jobs[1].Input)
	assert.Equal(t, filepath.Join("data", "cleaned_unique-categories.csv"), cfg.Jobs[1].Output)
	assert.Equal(t, DefaultNumericColumns, cfg.Cleaning.NumericColumns)
	assert.Equal(t, 1, cfg.Runtime.Parallelism)
	assert.Equal(t, "cleaned_", cfg.Database.TablePrefix)
	assert.Empty(t, cfg.Database.URL)
}

func TestLoadFromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("CLEANER_JOBS", "in/a.csv=out/a.csv, in/b.xlsx = out/b.xlsx")
	t.Setenv("CLEANER_NUMERIC_COLUMNS", "rating, price ,")
	t.Setenv("CLEANER_PARALLELISM", "4")
	t.Setenv("CLEANER_REPORT", "out/report.html")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []Job{
		{Name: "a", Input: "in/a.csv", Output: "out/a.csv"},
		{Name: "b", Input: "in/b.xlsx", Output: "out/b.xlsx"},
	}, cfg.Jobs)
	assert.Equal(t, []string{"rating", "price"}, cfg.Cleaning.NumericColumns)
	assert.Equal(t, 4, cfg.Runtime.Parallelism)
	assert.Equal(t, "out/report.html", cfg.Output.ReportPath)
}

func TestLoadDataDir(t *testing.T) {
	clearEnv(t)
	t.Setenv("CLEANER_DATA_DIR", "/srv/wish")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/srv/wish/computed_insight_success_of_active_sellers.csv", cfg.Jobs[3].Input)
}

func TestParseJobsErrors(t *testing.T) {
	tests := []string{"a.csv", "=out.csv", "a.csv=", " , "}

	for _, raw := range tests {
		t.Run(raw, func(t *testing.T) {
			_, err := ParseJobs(raw)
			require.Error(t, err)
			assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
		})
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Jobs:     []Job{NewJob("a.csv", "b.csv")},
			Cleaning: CleaningConfig{NumericColumns: []string{"rating"}},
			Runtime:  RuntimeConfig{Parallelism: 1},
		}
	}

	assert.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no jobs", func(c *Config) { c.Jobs = nil }},
		{"overwrite input", func(c *Config) { c.Jobs[0].Output = "./a.csv" }},
		{"blank column", func(c *Config) { c.Cleaning.NumericColumns = []string{" "} }},
		{"zero parallelism", func(c *Config) { c.Runtime.Parallelism = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
		})
	}
}

func TestLoadInvalidParallelism(t *testing.T) {
	for _, value := range []string{"0", "-2", "abc", "1.5"} {
		t.Run(value, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("CLEANER_PARALLELISM", value)

			_, err := Load()

			require.Error(t, err)
			assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
		})
	}
}

func TestLoadParallelismNotANumber(t *testing.T) {
	clearEnv(t)
	t.Setenv("CLEANER_PARALLELISM", "abc")

	_, err := Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), `CLEANER_PARALLELISM must be an integer, got "abc"`)
}
