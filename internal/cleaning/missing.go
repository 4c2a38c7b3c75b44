package cleaning

import "csvclean/domain/table"

// RemoveMissingData drops every row holding an empty value in any column
func RemoveMissingData(t table.Table) table.Table {
	rows := make([]table.Row, 0, len(t.Rows))
	for _, row := range t.Rows {
		if hasMissing(row) {
			continue
		}
		rows = append(rows, cloneRow(row))
	}
	return t.WithRows(rows)
}

func hasMissing(row table.Row) bool {
	for _, v := range row {
		if v == "" {
			return true
		}
	}
	return false
}
