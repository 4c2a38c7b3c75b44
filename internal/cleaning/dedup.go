// Package cleaning implements the four-stage table cleaning pipeline:
// deduplication, irrelevant-column removal, IQR outlier removal and
// missing-data removal. Every stage is a pure function over table.Table.
package cleaning

import "csvclean/domain/table"

// RemoveDuplicates keeps the first occurrence of every distinct row
func RemoveDuplicates(t table.Table) table.Table {
	seen := make(map[string]struct{}, len(t.Rows))
	rows := make([]table.Row, 0, len(t.Rows))

	for _, row := range t.Rows {
		key := row.Key()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		rows = append(rows, cloneRow(row))
	}

	return t.WithRows(rows)
}

func cloneRow(row table.Row) table.Row {
	out := make(table.Row, len(row))
	copy(out, row)
	return out
}
