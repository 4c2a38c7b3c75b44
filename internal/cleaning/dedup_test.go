package cleaning

import (
	"testing"

	"csvclean/domain/table"

	"github.com/stretchr/testify/assert"
)

func TestRemoveDuplicates(t *testing.T) {
	in := productTable()

	out := RemoveDuplicates(in)

	assert.Equal(t, 3, out.Len())
	assert.Equal(t, in.Headers, out.Headers)

	seen := make(map[string]bool)
	for _, row := range out.Rows {
		assert.False(t, seen[row.Key()], "duplicate row %v", row)
		seen[row.Key()] = true

		found := false
		for _, original := range in.Rows {
			if original.Equal(row) {
				found = true
				break
			}
		}
		assert.True(t, found, "row %v not present in input", row)
	}
}

func TestRemoveDuplicatesKeepsFirstOccurrenceOrder(t *testing.T) {
	in := table.New("t", []string{"a"}, []table.Row{{"x"}, {"y"}, {"x"}, {"z"}, {"y"}})

	out := RemoveDuplicates(in)

	assert.Equal(t, []table.Row{{"x"}, {"y"}, {"z"}}, out.Rows)
}

func TestRemoveDuplicatesEmpty(t *testing.T) {
	out := RemoveDuplicates(table.New("t", []string{"a"}, nil))

	assert.True(t, out.IsEmpty())
	assert.Equal(t, []string{"a"}, out.Headers)
}

func TestRemoveDuplicatesDoesNotAliasInput(t *testing.T) {
	in := table.New("t", []string{"a"}, []table.Row{{"x"}})

	out := RemoveDuplicates(in)
	out.Rows[0][0] = "changed"

	assert.Equal(t, "x", in.Rows[0][0])
}
