package cleaning

import (
	"testing"

	"csvclean/domain/table"

	"github.com/stretchr/testify/assert"
)

func TestRemoveMissingData(t *testing.T) {
	in := table.New("t", []string{"a", "b"}, []table.Row{
		{"1", "x"},
		{"", "y"},
		{"3", ""},
		{"4", " "},
	})

	out := RemoveMissingData(in)

	assert.Equal(t, []table.Row{{"1", "x"}, {"4", " "}}, out.Rows)
	for _, row := range out.Rows {
		assert.NotContains(t, row, "")
	}
}

func TestRemoveMissingDataNoColumns(t *testing.T) {
	in := table.New("t", nil, []table.Row{{}, {}})

	out := RemoveMissingData(in)

	assert.Equal(t, 2, out.Len())
}
