package llmcontext

import (
	"fmt"

	"github.com/sells-group/home-capacity-viewer/internal/model"
)

// YearFacts summarizes one year column of a raw or derived table.
type YearFacts struct {
	Year    int          `json:"year"`
	Highest model.Region `json:"highest"`
	High    float64      `json:"high"`
	Lowest  model.Region `json:"lowest"`
	Low     float64      `json:"low"`
	Average float64      `json:"average"`
	Regions int          `json:"regions"`
}

// Facts scans a year column for its extremes and mean. Ties keep the first
// region in table order. ok is false when no region has a value that year.
func Facts(t *model.Table, year int) (YearFacts, bool) {
	f := YearFacts{Year: year}
	var sum float64
	for _, r := range t.Rows {
		v, ok := r.Value(year)
		if !ok || v == model.NoData {
			continue
		}
		if f.Regions == 0 || v > f.High {
			f.Highest, f.High = r.Region, v
		}
		if f.Regions == 0 || v < f.Low {
			f.Lowest, f.Low = r.Region, v
		}
		sum += v
		f.Regions++
	}
	if f.Regions == 0 {
		return f, false
	}
	f.Average = sum / float64(f.Regions)
	return f, true
}

// Lines renders the facts as sentences about the named supply.
func (f YearFacts) Lines(supply string) []string {
	return []string{
		fmt.Sprintf("The highest %s supply in %d is in %s with a value of %.2f", supply, f.Year, f.Highest.Name, f.High),
		fmt.Sprintf("The lowest %s supply in %d is in %s with a value of %.2f", supply, f.Year, f.Lowest.Name, f.Low),
		fmt.Sprintf("The average %s supply in %d is %.2f", supply, f.Year, f.Average),
	}
}
