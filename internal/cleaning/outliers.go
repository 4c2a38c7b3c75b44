package cleaning

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"csvclean/domain/table"

	"github.com/montanaflynn/stats"
)

// IQRMultiplier scales the interquartile range into the outlier fences
const IQRMultiplier = 1.5

// OutlierBounds records the fences computed for one numeric column
type OutlierBounds struct {
	Column  string  `json:"column"`
	Q1      float64 `json:"q1"`
	Q3      float64 `json:"q3"`
	IQR     float64 `json:"iqr"`
	Lower   float64 `json:"lower"`
	Upper   float64 `json:"upper"`
	Parsed  int     `json:"parsed"`  // values that contributed to the quartiles
	Removed int     `json:"removed"` // rows dropped by this column's pass
	Skipped bool    `json:"skipped"` // column absent or without a single numeric value
}

// Contains reports whether v lies inside the closed interval [Lower, Upper].
// NaN fences, produced by infinite quartiles, exclude nothing.
func (b OutlierBounds) Contains(v float64) bool {
	return !(v < b.Lower || v > b.Upper)
}

// ParseNumeric parses a cell as a float. Empty, non-numeric and NaN cells are
// reported as not numeric. Values too large for a float64 parse as ±Inf, the
// same as an explicit "inf".
func ParseNumeric(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil && !(errors.Is(err, strconv.ErrRange) && math.IsInf(v, 0)) {
		return 0, false
	}
	if math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// ComputeBounds derives the IQR fences of values using nearest-rank quartiles
func ComputeBounds(column string, values []float64) (OutlierBounds, error) {
	b := OutlierBounds{Column: column, Parsed: len(values)}

	q1, err := stats.PercentileNearestRank(values, 25)
	if err != nil {
		return b, err
	}
	q3, err := stats.PercentileNearestRank(values, 75)
	if err != nil {
		return b, err
	}

	b.Q1 = q1
	b.Q3 = q3
	b.IQR = q3 - q1
	b.Lower = q1 - IQRMultiplier*b.IQR
	b.Upper = q3 + IQRMultiplier*b.IQR
	return b, nil
}

// RemoveOutliers filters rows column by column, in the given order. Each pass
// computes its quartiles over the rows that survived the previous passes.
// Cells that do not parse as numbers never count toward the statistics and
// never cause their row to be dropped.
func RemoveOutliers(t table.Table, columns []string) (table.Table, []OutlierBounds) {
	current := t.Clone()
	bounds := make([]OutlierBounds, 0, len(columns))

	for _, column := range columns {
		var b OutlierBounds
		current, b = removeColumnOutliers(current, column)
		bounds = append(bounds, b)
	}

	return current, bounds
}

func removeColumnOutliers(t table.Table, column string) (table.Table, OutlierBounds) {
	idx := t.ColumnIndex(column)
	if idx < 0 {
		return t, OutlierBounds{Column: column, Skipped: true}
	}

	values := make([]float64, 0, len(t.Rows))
	for _, row := range t.Rows {
		if v, ok := ParseNumeric(row[idx]); ok {
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return t, OutlierBounds{Column: column, Skipped: true}
	}

	b, err := ComputeBounds(column, values)
	if err != nil {
		// only reachable with empty input, which is handled above
		return t, OutlierBounds{Column: column, Skipped: true}
	}

	rows := make([]table.Row, 0, len(t.Rows))
	for _, row := range t.Rows {
		if v, ok := ParseNumeric(row[idx]); ok && !b.Contains(v) {
			b.Removed++
			continue
		}
		rows = append(rows, row)
	}

	return t.WithRows(rows), b
}
