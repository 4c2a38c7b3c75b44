package cleaning

import (
	"bytes"
	"testing"

	"csvclean/domain/table"
	"csvclean/internal"
	"csvclean/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanEndToEnd(t *testing.T) {
	in := productTable()

	out := Clean(in, []string{"price"})

	expected := table.New("products", []string{"id", "product", "price"}, []table.Row{
		{"1", "shirt", "10"},
		{"3", "socks", "14"},
	})
	assert.True(t, expected.Equal(out), "got headers %v rows %v", out.Headers, out.Rows)
	assert.Equal(t, 4, in.Len(), "input must not be modified")
	assert.Equal(t, 4, in.Width())
}

func TestCleanIsIdempotentOnCleanedTable(t *testing.T) {
	once := Clean(productTable(), []string{"price"})
	twice := Clean(once, []string{"price"})

	assert.True(t, once.Equal(twice))
}

func TestCleanInvariants(t *testing.T) {
	in := table.New("sellers", []string{"merchant", "totalunitssold", "rating", "country"}, []table.Row{
		{"m1", "100", "4.1", "CN"},
		{"m2", "120", "4.0", "CN"},
		{"m3", "90", "3.9", "CN"},
		{"m4", "110", "4.2", "CN"},
		{"m5", "105", "", "CN"},
		{"m6", "95", "4.3", "CN"},
		{"m7", "5000", "4.1", "CN"},
		{"m8", "115", "1.0", "CN"},
		{"m1", "100", "4.1", "CN"},
	})

	out := Clean(in, []string{"totalunitssold", "rating"})

	assert.Equal(t, []string{"merchant", "totalunitssold", "rating"}, out.Headers)
	seen := make(map[string]bool)
	for _, row := range out.Rows {
		assert.False(t, seen[row.Key()])
		seen[row.Key()] = true
		assert.NotContains(t, row, "")
		assert.NotEqual(t, "m7", row[0], "totalunitssold outlier survived")
		assert.NotEqual(t, "m8", row[0], "rating outlier survived")
	}
	assert.Equal(t, 5, out.Len())
}

func TestPipelineRunRecordsStages(t *testing.T) {
	var buf bytes.Buffer
	logger := internal.NewLoggerWithWriter(internal.LogLevelDebug, &buf)
	pipeline, err := NewPipeline(Config{NumericColumns: []string{"price", "missing"}}, logger)
	require.NoError(t, err)

	result := pipeline.Run(productTable())

	require.Len(t, result.Stages, 4)
	assert.Equal(t, StageDeduplicate, result.Stages[0].Stage)
	assert.Equal(t, 1, result.Stages[0].RowsRemoved())
	assert.Equal(t, StageIrrelevantColumn, result.Stages[1].Stage)
	assert.Equal(t, []string{"store"}, result.Stages[1].DroppedColumns)
	assert.Equal(t, 3, result.Stages[1].ColumnsAfter)
	assert.Equal(t, StageOutliers, result.Stages[2].Stage)
	assert.Equal(t, 0, result.Stages[2].RowsRemoved())
	assert.Equal(t, StageMissingData, result.Stages[3].Stage)
	assert.Equal(t, 1, result.Stages[3].RowsRemoved())

	require.Len(t, result.Bounds, 2)
	assert.False(t, result.Bounds[0].Skipped)
	assert.True(t, result.Bounds[1].Skipped)

	assert.True(t, Clean(productTable(), []string{"price", "missing"}).Equal(result.Table))
	assert.Contains(t, buf.String(), "[Pipeline]")
	assert.Contains(t, buf.String(), `column "price" bounds`)
}

func TestPipelineRunLogsBoundsOnlyAtDebug(t *testing.T) {
	var buf bytes.Buffer
	logger := internal.NewLoggerWithWriter(internal.LogLevelInfo, &buf)
	pipeline, err := NewPipeline(Config{NumericColumns: []string{"price"}}, logger)
	require.NoError(t, err)

	result := pipeline.Run(productTable())

	require.Len(t, result.Bounds, 1)
	assert.Contains(t, buf.String(), `cleaned "products"`)
	assert.NotContains(t, buf.String(), "bounds")
}

func TestNewPipelineRejectsBlankColumn(t *testing.T) {
	_, err := NewPipeline(Config{NumericColumns: []string{"rating", " "}}, nil)

	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestPipelineCopiesColumns(t *testing.T) {
	columns := []string{"a", "b"}
	pipeline, err := NewPipeline(Config{NumericColumns: columns}, nil)
	require.NoError(t, err)

	columns[0] = "changed"

	assert.Equal(t, []string{"a", "b"}, pipeline.NumericColumns())
}
