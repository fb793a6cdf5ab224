package location

import (
	"fmt"
	"strconv"

	"github.com/turtacn/Resonance-Intelligence/internal/domain/analysis"
	"github.com/turtacn/Resonance-Intelligence/pkg/errors"
)

// EmptyResultMessage is returned when the criteria eliminate every row.
const EmptyResultMessage = "No locations found matching the filter criteria"

// Step records how one criterion narrowed the table.
type Step struct {
	Filter string `json:"filter"`
	Before int    `json:"before"`
	After  int    `json:"after"`
}

// Result is the outcome of a filter run.
type Result struct {
	Status           string       `json:"status"`
	Message          string       `json:"message"`
	Tag              string       `json:"tag,omitempty"`
	Coordinates      [][2]float64 `json:"coordinates,omitempty"`
	TotalLocations   int          `json:"total_locations"`
	AppliedFilters   []string     `json:"filters_applied"`
	Skipped          []string     `json:"skipped_columns,omitempty"`
	Steps            []Step       `json:"steps,omitempty"`
	AvailableColumns []string     `json:"available_columns,omitempty"`
}

// Empty reports whether no location survived.
func (r Result) Empty() bool { return r.TotalLocations == 0 }

// Apply narrows the table one criterion at a time, in order. Unknown columns
// are skipped and listed in Skipped. An empty outcome is a warning carrying
// the available columns, never an error.
func Apply(t *analysis.Table, criteria Criteria, tag string) Result {
	rows := make([]analysis.CompositeRecord, 0, t.Len())
	if t != nil {
		rows = append(rows, t.Records...)
	}
	res := Result{Tag: tag, AppliedFilters: []string{}}

	for _, c := range criteria {
		before := len(rows)
		var label string
		switch {
		case c.IsNumeric():
			col := numericColumn(c.Column)
			if col == "" || !t.HasColumn(col) {
				res.Skipped = append(res.Skipped, c.Column)
				continue
			}
			floor := *c.Min
			rows = keep(rows, func(r analysis.CompositeRecord) bool {
				v, _ := t.Value(r, col)
				f, ok := v.(float64)
				return ok && f >= floor
			})
			label = fmt.Sprintf("%s >= %s", col, strconv.FormatFloat(floor, 'f', -1, 64))
		default:
			if !t.HasColumn(c.Column) {
				res.Skipped = append(res.Skipped, c.Column)
				continue
			}
			set := make(map[string]bool, len(c.Values))
			for _, v := range c.Values {
				set[v] = true
			}
			rows = keep(rows, func(r analysis.CompositeRecord) bool {
				v, _ := t.Value(r, c.Column)
				return set[analysis.FormatValue(v)]
			})
			label = fmt.Sprintf("%s: %v", c.Column, c.Values)
		}
		res.AppliedFilters = append(res.AppliedFilters, label)
		res.Steps = append(res.Steps, Step{Filter: label, Before: before, After: len(rows)})
	}

	if len(rows) == 0 {
		res.Status = errors.StatusWarning
		res.Message = EmptyResultMessage
		res.AvailableColumns = t.Columns()
		return res
	}

	res.Status = errors.StatusSuccess
	res.Coordinates = make([][2]float64, 0, len(rows))
	for _, r := range rows {
		res.Coordinates = append(res.Coordinates, r.Coordinate())
	}
	res.TotalLocations = len(res.Coordinates)
	res.Message = fmt.Sprintf("Successfully identified and saved %d locations with tag '%s'", res.TotalLocations, tag)
	return res
}

func numericColumn(key string) string {
	switch key {
	case KeyMinAffinity:
		return analysis.ColAffinity
	case KeyMinPopularity:
		return analysis.ColPopularity
	}
	return ""
}

func keep(rows []analysis.CompositeRecord, pred func(analysis.CompositeRecord) bool) []analysis.CompositeRecord {
	out := rows[:0:0]
	for _, r := range rows {
		if pred(r) {
			out = append(out, r)
		}
	}
	return out
}

//Personal.AI order the ending
