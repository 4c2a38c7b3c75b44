package profiling

import (
	"math"

	"csvclean/domain/table"
	"csvclean/internal/cleaning"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
)

// ColumnProfile summarizes the numeric values of one column
type ColumnProfile struct {
	Column   string  `json:"column"`
	Count    int     `json:"count"`   // numeric values found
	Invalid  int     `json:"invalid"` // non-empty values that did not parse
	Mean     float64 `json:"mean"`
	StdDev   float64 `json:"std_dev"`
	Min      float64 `json:"min"`
	Median   float64 `json:"median"`
	Max      float64 `json:"max"`
	Skewness float64 `json:"skewness"`
}

// DistributionAnalyzer computes numeric column profiles
type DistributionAnalyzer struct{}

// NewDistributionAnalyzer creates a new distribution analyzer
func NewDistributionAnalyzer() *DistributionAnalyzer {
	return &DistributionAnalyzer{}
}

// ProfileTable profiles each named column present in t, in the given order.
// Absent columns are left out of the result.
func (da *DistributionAnalyzer) ProfileTable(t table.Table, columns []string) []ColumnProfile {
	var profiles []ColumnProfile
	for _, column := range columns {
		idx := t.ColumnIndex(column)
		if idx < 0 {
			continue
		}
		profiles = append(profiles, da.ProfileValues(column, t.Column(idx)))
	}
	return profiles
}

// ProfileValues parses raw cells and summarizes the numeric ones
func (da *DistributionAnalyzer) ProfileValues(column string, raw []string) ColumnProfile {
	profile := ColumnProfile{Column: column}

	data := make([]float64, 0, len(raw))
	for _, v := range raw {
		if f, ok := cleaning.ParseNumeric(v); ok {
			data = append(data, f)
		} else if v != "" {
			profile.Invalid++
		}
	}
	profile.Count = len(data)
	if len(data) == 0 {
		return profile
	}

	profile.Mean, profile.StdDev = stat.MeanStdDev(data, nil)
	if len(data) < 2 {
		profile.StdDev = 0
	}

	// errors only occur on empty input, excluded above
	profile.Min, _ = stats.Min(data)
	profile.Max, _ = stats.Max(data)
	profile.Median, _ = stats.Median(data)
	profile.Skewness = calculateSkewness(data, profile.Mean, profile.StdDev)

	return profile
}

// calculateSkewness computes sample skewness using the adjusted Fisher-Pearson coefficient
func calculateSkewness(data []float64, mean, stdDev float64) float64 {
	if len(data) < 3 || stdDev == 0 || math.IsNaN(stdDev) || math.IsInf(stdDev, 0) {
		return 0
	}

	n := float64(len(data))
	sumCubedDeviations := 0.0
	for _, x := range data {
		deviation := (x - mean) / stdDev
		sumCubedDeviations += deviation * deviation * deviation
	}

	skewness := sumCubedDeviations / n
	correction := math.Sqrt(n*(n-1)) / (n - 2)
	return skewness * correction
}
