package cleaning

import "csvclean/domain/table"

// productTable holds one exact duplicate, a constant column ("store") and a
// row with an empty product name
func productTable() table.Table {
	return table.New("products", []string{"id", "product", "store", "price"}, []table.Row{
		{"1", "shirt", "main", "10"},
		{"1", "shirt", "main", "10"},
		{"2", "", "main", "12"},
		{"3", "socks", "main", "14"},
	})
}

func numberedTable(column string, values ...string) table.Table {
	rows := make([]table.Row, len(values))
	for i, v := range values {
		rows[i] = table.Row{string(rune('a' + i)), v}
	}
	return table.New("numbers", []string{"id", column}, rows)
}
