package analysis

import (
	"math"
	"sort"

	"github.com/turtacn/Resonance-Intelligence/internal/domain/signal"
)

// QuadrantCount is the size of one strategy quadrant.
type QuadrantCount struct {
	Strategy    signal.Strategy `json:"strategy"`
	Count       int             `json:"count"`
	Percentage  float64         `json:"percentage"`
	Description string          `json:"description"`
}

// Summary is the headline view of a table.
type Summary struct {
	Metadata       Metadata        `json:"metadata"`
	TotalLocations int             `json:"total_locations"`
	TotalColumns   int             `json:"total_columns"`
	Quadrants      []QuadrantCount `json:"quadrants"`
}

// Round1 rounds to one decimal place.
func Round1(v float64) float64 { return math.Round(v*10) / 10 }

// Round2 rounds to two decimal places.
func Round2(v float64) float64 { return math.Round(v*100) / 100 }

// Percent returns part/total*100, or 0 when total is 0.
func Percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

// Summarize counts records per strategy quadrant.
func Summarize(t *Table) Summary {
	s := Summary{TotalLocations: t.Len(), TotalColumns: len(t.Columns())}
	if t != nil {
		s.Metadata = t.Meta
	}
	counts := make(map[signal.Strategy]int)
	if t != nil {
		for _, r := range t.Records {
			counts[r.Strategy]++
		}
	}
	for _, st := range signal.Strategies {
		s.Quadrants = append(s.Quadrants, QuadrantCount{
			Strategy:    st,
			Count:       counts[st],
			Percentage:  Round1(Percent(counts[st], s.TotalLocations)),
			Description: st.Description(),
		})
	}
	return s
}

// Quadrant returns the count entry for a strategy.
func (s Summary) Quadrant(st signal.Strategy) QuadrantCount {
	for _, q := range s.Quadrants {
		if q.Strategy == st {
			return q
		}
	}
	return QuadrantCount{Strategy: st}
}

// DataStructure describes the shape of a table and the value counts of its
// categorical columns.
type DataStructure struct {
	TotalRows    int                       `json:"total_rows"`
	TotalColumns int                       `json:"total_columns"`
	Columns      []string                  `json:"columns"`
	ValueCounts  map[string]map[string]int `json:"value_counts"`
	IssueColumns []string                  `json:"issue_columns"`
}

// Structure inspects a table.
func Structure(t *Table) DataStructure {
	cols := t.Columns()
	ds := DataStructure{
		TotalRows:    t.Len(),
		TotalColumns: len(cols),
		Columns:      cols,
		ValueCounts:  make(map[string]map[string]int),
	}
	if t == nil {
		return ds
	}
	for _, issue := range t.Issues {
		ds.IssueColumns = append(ds.IssueColumns, IssueStatusColumn(issue))
	}
	for _, col := range t.StatusColumns() {
		counts := make(map[string]int)
		for _, r := range t.Records {
			v, ok := t.Value(r, col)
			if !ok {
				continue
			}
			counts[FormatValue(v)]++
		}
		ds.ValueCounts[col] = counts
	}
	return ds
}

// SortedValues returns the values of a count map ordered by descending count,
// then by name.
func SortedValues(counts map[string]int) []string {
	out := make([]string, 0, len(counts))
	for k := range counts {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool {
		if counts[out[i]] != counts[out[j]] {
			return counts[out[i]] > counts[out[j]]
		}
		return out[i] < out[j]
	})
	return out
}

//Personal.AI order the ending
