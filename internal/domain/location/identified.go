package location

import (
	"strings"
	"time"
)

// DefaultHistorySize is the number of history entries retained.
const DefaultHistorySize = 10

// Identified is a named, persisted set of coordinates produced by a filter
// run. Coordinates are [lat, lon] pairs.
type Identified struct {
	Tag            string       `json:"tag"`
	Description    string       `json:"description"`
	AnalysisKey    string       `json:"analysis_key,omitempty"`
	Coordinates    [][2]float64 `json:"coordinates"`
	TotalLocations int          `json:"total_locations"`
	FiltersApplied []string     `json:"filters_applied"`
	CreatedAt      time.Time    `json:"created_timestamp"`
}

// NewIdentified builds the identified set from a successful filter result.
func NewIdentified(res Result, analysisKey string, now time.Time) *Identified {
	return &Identified{
		Tag:            res.Tag,
		Description:    "Filtered locations: " + strings.Join(res.AppliedFilters, ", "),
		AnalysisKey:    analysisKey,
		Coordinates:    res.Coordinates,
		TotalLocations: len(res.Coordinates),
		FiltersApplied: res.AppliedFilters,
		CreatedAt:      now.UTC(),
	}
}

// HistoryEntry is the short record kept for every identified set.
type HistoryEntry struct {
	Tag            string    `json:"tag"`
	TotalLocations int       `json:"total_locations"`
	Created        time.Time `json:"created"`
}

// Entry returns the history record of the set.
func (i *Identified) Entry() HistoryEntry {
	return HistoryEntry{Tag: i.Tag, TotalLocations: i.TotalLocations, Created: i.CreatedAt}
}

// AppendHistory appends e and keeps only the most recent max entries.
func AppendHistory(h []HistoryEntry, e HistoryEntry, max int) []HistoryEntry {
	h = append(h, e)
	if max > 0 && len(h) > max {
		h = append([]HistoryEntry(nil), h[len(h)-max:]...)
	}
	return h
}

//Personal.AI order the ending
