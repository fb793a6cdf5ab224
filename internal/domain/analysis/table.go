package analysis

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/turtacn/Resonance-Intelligence/internal/domain/signal"
)

// Metadata describes how a table was built.
type Metadata struct {
	ID        string    `json:"id"`
	Key       string    `json:"key"`
	Version   string    `json:"version,omitempty"`
	Candidate string    `json:"candidate"`
	Opponent  string    `json:"opponent"`
	Base      string    `json:"base"`
	Location  string    `json:"location"`
	Age       string    `json:"age"`
	Gender    string    `json:"gender"`
	Tags      []string  `json:"tags"`
	Skipped   []string  `json:"skipped_sources,omitempty"`
	Rows      int       `json:"rows"`
	Columns   int       `json:"columns"`
	CreatedAt time.Time `json:"created_at"`
}

// Table is the composite analysis: ordered records plus the ordered list of
// issues every record carries.
type Table struct {
	Meta    Metadata          `json:"metadata"`
	Issues  []string          `json:"issues"`
	Records []CompositeRecord `json:"records"`
}

// Len is the row count.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Records)
}

func (t *Table) hasBaseline(issue string) bool {
	for _, r := range t.Records {
		if m, ok := r.Issues.Get(issue); ok && !math.IsNaN(m.Baseline) {
			return true
		}
	}
	return false
}

// Columns lists every column name of the table in order: the core columns,
// then per issue its popularity, optional baseline, net value and status.
func (t *Table) Columns() []string {
	cols := append([]string(nil), CoreColumns...)
	if t == nil {
		return cols
	}
	for _, issue := range t.Issues {
		cols = append(cols, IssueColumn(issue))
		if t.hasBaseline(issue) {
			cols = append(cols, IssueBaselineColumn(issue))
		}
		cols = append(cols, IssueNetColumn(issue), IssueStatusColumn(issue))
	}
	return cols
}

// HasColumn reports whether col exists.
func (t *Table) HasColumn(col string) bool {
	for _, c := range t.Columns() {
		if c == col {
			return true
		}
	}
	return false
}

// StatusColumns lists the categorical status columns.
func (t *Table) StatusColumns() []string {
	cols := []string{ColStrategy, ColPopularityStatus, ColBasePopularityStatus}
	if t == nil {
		return cols
	}
	for _, issue := range t.Issues {
		cols = append(cols, IssueStatusColumn(issue))
	}
	return cols
}

// Value returns the cell value of col in r. Numeric cells are float64 (or
// int for affinity_rank); categorical cells are strings.
func (t *Table) Value(r CompositeRecord, col string) (interface{}, bool) {
	switch col {
	case ColLatitude:
		return r.Latitude, true
	case ColLongitude:
		return r.Longitude, true
	case ColGeohash:
		return r.Geohash, true
	case ColAffinity:
		return r.Affinity, true
	case ColPopularity:
		return r.Popularity, true
	case ColAffinityRank:
		return r.AffinityRank, true
	case ColHotspotScore:
		return r.HotspotScore, true
	case ColSegment:
		return string(r.Segment), true
	case ColStrategy:
		return string(r.Strategy), true
	case ColOpponentPopularity:
		return r.OpponentPopularity, true
	case ColNetPopularity:
		return r.NetPopularity, true
	case ColPopularityStatus:
		return r.PopularityStatus, true
	case ColBasePopularity:
		return r.BasePopularity, true
	case ColNetBasePopularity:
		return r.NetBasePopularity, true
	case ColBasePopularityStatus:
		return r.BasePopularityStatus, true
	}
	if t == nil {
		return nil, false
	}
	for _, issue := range t.Issues {
		m, _ := r.Issues.Get(issue)
		switch col {
		case IssueColumn(issue):
			return m.Popularity, true
		case IssueBaselineColumn(issue):
			return m.Baseline, t.hasBaseline(issue)
		case IssueNetColumn(issue):
			return m.NetPopularity, true
		case IssueStatusColumn(issue):
			return m.Status, true
		}
	}
	return nil, false
}

// FormatValue renders a cell for categorical comparison and display.
func FormatValue(v interface{}) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		if math.IsNaN(x) {
			return "NaN"
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	default:
		return ""
	}
}

// Filter returns the records satisfying keep, in order.
func (t *Table) Filter(keep func(CompositeRecord) bool) []CompositeRecord {
	var out []CompositeRecord
	if t == nil {
		return out
	}
	for _, r := range t.Records {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

// WithStrategy returns the records classified under s.
func (t *Table) WithStrategy(s signal.Strategy) []CompositeRecord {
	return t.Filter(func(r CompositeRecord) bool { return r.Strategy == s })
}

// SafeName lower-cases a name, replaces spaces with underscores and drops
// dots so it can be used in artifact keys.
func SafeName(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, " ", "_")
	return strings.ReplaceAll(s, ".", "")
}

// ArtifactKey is the storage key of a persisted table.
func ArtifactKey(candidate, location string) string {
	return "candidate_analysis_" + SafeName(candidate) + "_" + SafeName(location) + ".json"
}

// ReportKey is the storage key of a rendered campaign report.
func ReportKey(candidate, location string) string {
	return "campaign_report_" + SafeName(candidate) + "_" + SafeName(location) + ".md"
}

//Personal.AI order the ending
