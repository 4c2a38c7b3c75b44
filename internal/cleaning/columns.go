package cleaning

import "csvclean/domain/table"

// columnProfile tracks what one pass over the rows learned about a column
type columnProfile struct {
	distinct map[string]struct{}
	allEmpty bool
}

// IrrelevantColumns returns the names of columns with at most one distinct
// non-empty value, in header order. A column that is empty in every row also
// qualifies.
func IrrelevantColumns(t table.Table) []string {
	var names []string
	for i, irrelevant := range flagIrrelevant(t) {
		if irrelevant {
			names = append(names, t.Headers[i])
		}
	}
	return names
}

// RemoveIrrelevantColumns drops every column reported by IrrelevantColumns.
// A table without rows is returned unchanged.
func RemoveIrrelevantColumns(t table.Table) table.Table {
	if t.IsEmpty() {
		return t.Clone()
	}

	flags := flagIrrelevant(t)
	keep := make([]int, 0, t.Width())
	for i, irrelevant := range flags {
		if !irrelevant {
			keep = append(keep, i)
		}
	}

	return t.Project(keep)
}

func flagIrrelevant(t table.Table) []bool {
	flags := make([]bool, t.Width())
	if t.IsEmpty() {
		return flags
	}

	profiles := make([]columnProfile, t.Width())
	for i := range profiles {
		profiles[i] = columnProfile{distinct: make(map[string]struct{}), allEmpty: true}
	}

	for _, row := range t.Rows {
		for i, v := range row {
			if v == "" {
				continue
			}
			profiles[i].allEmpty = false
			// two values are enough to prove the column is informative
			if len(profiles[i].distinct) < 2 {
				profiles[i].distinct[v] = struct{}{}
			}
		}
	}

	for i, p := range profiles {
		flags[i] = p.allEmpty || len(p.distinct) <= 1
	}
	return flags
}
