// Package chartdata reshapes aggregate report rows into chart-ready series.
// Every function is pure and total: empty input yields an empty but
// structurally valid series.
package chartdata

import "time"

// Fixed display order for the policy grid
var (
	PolicyTypes      = []string{"life", "health", "auto"}
	PolicyStatuses   = []string{"active", "lapsed", "cancelled"}
	statusColors     = map[string]string{"active": "#4ADE80", "lapsed": "#FACC15", "cancelled": "#F87171"}
	piePalette       = []string{"#60A5FA", "#34D399", "#FBBF24"}
	pieBorderPalette = []string{"#3B82F6", "#10B981", "#F59E0B"}
)

// TypeStatusCount is a pre-aggregated policy count for one (type, status) pair
type TypeStatusCount struct {
	Type   string `json:"type"`
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

// MonthlyCoverage is a pre-aggregated coverage sum for one month
type MonthlyCoverage struct {
	Month         time.Time `json:"month"`
	TotalCoverage float64   `json:"total_coverage"`
}

// TypeMonthlyCoverage is a pre-aggregated coverage sum for one (type, month)
type TypeMonthlyCoverage struct {
	Type          string    `json:"type"`
	Month         time.Time `json:"month"`
	TotalCoverage float64   `json:"total_coverage"`
}

// PremiumByType is a pre-aggregated premium sum for one policy type
type PremiumByType struct {
	Type         string  `json:"type"`
	TotalPremium float64 `json:"total_premium"`
}

// BarDataset is one bar series (one status across all types)
type BarDataset struct {
	Label           string  `json:"label"`
	Data            []int64 `json:"data"`
	BackgroundColor string  `json:"backgroundColor"`
}

// BarChart is a chart.js-style stacked bar payload
type BarChart struct {
	Labels   []string     `json:"labels"`
	Datasets []BarDataset `json:"datasets"`
}

// LineDataset is one line/area series
type LineDataset struct {
	Label           string    `json:"label"`
	Data            []float64 `json:"data"`
	BorderColor     string    `json:"borderColor"`
	BackgroundColor string    `json:"backgroundColor"`
	Fill            bool      `json:"fill"`
	Tension         float64   `json:"tension"`
}

// LineChart is a chart.js-style line payload
type LineChart struct {
	Labels   []string      `json:"labels"`
	Datasets []LineDataset `json:"datasets"`
}

// PieDataset is one pie series with positional colors per slice
type PieDataset struct {
	Label           string    `json:"label"`
	Data            []float64 `json:"data"`
	BackgroundColor []string  `json:"backgroundColor"`
	BorderColor     []string  `json:"borderColor"`
	BorderWidth     int       `json:"borderWidth"`
}

// PieChart is a chart.js-style pie payload
type PieChart struct {
	Labels   []string     `json:"labels"`
	Datasets []PieDataset `json:"datasets"`
}

// StackedBar derives the policy-count-by-type-and-status grid. One dataset per
// status; each dataset value is the matching count for that type, or 0 when
// the backend omitted the zero-count combination. The grid is always
// |types| x |statuses| regardless of input.
func StackedBar(rows []TypeStatusCount, types, statuses []string) BarChart {
	datasets := make([]BarDataset, 0, len(statuses))
	for _, status := range statuses {
		data := make([]int64, len(types))
		for i, typ := range types {
			for _, row := range rows {
				if row.Type == typ && row.Status == status {
					data[i] = row.Count
					break
				}
			}
		}
		datasets = append(datasets, BarDataset{
			Label:           status,
			Data:            data,
			BackgroundColor: statusColors[status],
		})
	}
	return BarChart{Labels: types, Datasets: datasets}
}

// CoverageLine derives the monthly coverage series, labeling each point with
// the 3-letter month abbreviation and preserving the backend's row order.
func CoverageLine(rows []MonthlyCoverage) LineChart {
	labels := make([]string, 0, len(rows))
	data := make([]float64, 0, len(rows))
	for _, row := range rows {
		labels = append(labels, row.Month.Format("Jan"))
		data = append(data, row.TotalCoverage)
	}
	return LineChart{
		Labels: labels,
		Datasets: []LineDataset{{
			Label:           "Total Coverage ($)",
			Data:            data,
			BorderColor:     "#3B82F6",
			BackgroundColor: "rgba(59, 130, 246, 0.3)",
			Fill:            true,
			Tension:         0.4,
		}},
	}
}

// CoverageByTypeBar derives the monthly coverage grouped by policy type.
// Labels are the distinct months in row order; one dataset per type in the
// fixed type order, zero-filled where a type has no coverage that month.
// Months are keyed by year and month so the same month of different years
// stays a separate column; only the label uses the 3-letter abbreviation.
func CoverageByTypeBar(rows []TypeMonthlyCoverage, types []string) BarChart {
	labels := make([]string, 0)
	monthIndex := make(map[string]int)
	for _, row := range rows {
		key := row.Month.Format("2006-01")
		if _, seen := monthIndex[key]; !seen {
			monthIndex[key] = len(labels)
			labels = append(labels, row.Month.Format("Jan"))
		}
	}

	datasets := make([]BarDataset, 0, len(types))
	for i, typ := range types {
		data := make([]int64, len(labels))
		for _, row := range rows {
			if row.Type == typ {
				data[monthIndex[row.Month.Format("2006-01")]] = int64(row.TotalCoverage)
			}
		}
		datasets = append(datasets, BarDataset{
			Label:           typ,
			Data:            data,
			BackgroundColor: piePalette[i%len(piePalette)],
		})
	}
	return BarChart{Labels: labels, Datasets: datasets}
}

// PremiumPie derives the premium-by-type pie. Colors are assigned
// positionally from the palette, cycling when there are more types than
// palette entries.
func PremiumPie(rows []PremiumByType) PieChart {
	labels := make([]string, 0, len(rows))
	data := make([]float64, 0, len(rows))
	colors := make([]string, 0, len(rows))
	borders := make([]string, 0, len(rows))
	for i, row := range rows {
		labels = append(labels, row.Type)
		data = append(data, row.TotalPremium)
		colors = append(colors, piePalette[i%len(piePalette)])
		borders = append(borders, pieBorderPalette[i%len(pieBorderPalette)])
	}
	return PieChart{
		Labels: labels,
		Datasets: []PieDataset{{
			Label:           "Total Premium ($)",
			Data:            data,
			BackgroundColor: colors,
			BorderColor:     borders,
			BorderWidth:     1,
		}},
	}
}
