package analysis

import (
	"math"

	"github.com/turtacn/Resonance-Intelligence/internal/domain/signal"
)

// InnerJoin keeps only the keys present in both grids, in (lat, lon) order.
// The primary point provides the core fields; the comparator contributes its
// popularity as the opponent value.
func InnerJoin(primary, comparator *signal.Grid) []CompositeRecord {
	other := comparator.Index()
	keys := primary.SortedKeys()
	idx := primary.Index()

	out := make([]CompositeRecord, 0, len(keys))
	for _, k := range keys {
		o, ok := other[k]
		if !ok {
			continue
		}
		rec := NewRecord(idx[k])
		rec.OpponentPopularity = o.Popularity
		out = append(out, rec)
	}
	return out
}

// LeftJoinBase attaches the base popularity to every record. Records with no
// base point keep NaN.
func LeftJoinBase(records []CompositeRecord, base *signal.Grid) {
	idx := base.Index()
	for i := range records {
		if p, ok := idx[records[i].Key()]; ok {
			records[i].BasePopularity = p.Popularity
		}
	}
}

// IssueRow is one long-form sample of an issue grid.
type IssueRow struct {
	Key        signal.Key
	Issue      string
	Popularity float64
}

// IssueRows converts an issue grid into long-form rows named after the
// normalized issue.
func IssueRows(issue string, g *signal.Grid) []IssueRow {
	out := make([]IssueRow, 0, g.Len())
	if g == nil {
		return out
	}
	for _, p := range g.Points {
		if math.IsNaN(p.Popularity) {
			continue
		}
		out = append(out, IssueRow{Key: p.Key(), Issue: issue, Popularity: p.Popularity})
	}
	return out
}

// Pivot is the wide form of concatenated issue rows: one popularity value per
// (key, issue). Issues keep first-seen order.
type Pivot struct {
	Issues []string
	values map[signal.Key]map[string]float64
}

// PivotIssues reshapes long rows into wide form. When a key repeats for the
// same issue the first value wins.
func PivotIssues(rows []IssueRow) *Pivot {
	p := &Pivot{values: make(map[signal.Key]map[string]float64)}
	seen := make(map[string]bool)
	for _, r := range rows {
		if !seen[r.Issue] {
			seen[r.Issue] = true
			p.Issues = append(p.Issues, r.Issue)
		}
		m, ok := p.values[r.Key]
		if !ok {
			m = make(map[string]float64)
			p.values[r.Key] = m
		}
		if _, dup := m[r.Issue]; !dup {
			m[r.Issue] = r.Popularity
		}
	}
	return p
}

// Value returns the issue popularity at key, or NaN.
func (p *Pivot) Value(k signal.Key, issue string) float64 {
	if p == nil {
		return math.NaN()
	}
	if v, ok := p.values[k][issue]; ok {
		return v
	}
	return math.NaN()
}

// Len is the number of distinct keys in the pivot.
func (p *Pivot) Len() int {
	if p == nil {
		return 0
	}
	return len(p.values)
}

// LeftJoinIssues attaches every pivoted issue to every record. Keys without
// coverage get NaN and are never dropped.
func LeftJoinIssues(records []CompositeRecord, p *Pivot) {
	if p == nil {
		return
	}
	for i := range records {
		for _, issue := range p.Issues {
			records[i].Issues = records[i].Issues.Set(IssueMetrics{
				Name:          issue,
				Popularity:    p.Value(records[i].Key(), issue),
				Baseline:      math.NaN(),
				NetPopularity: math.NaN(),
				Status:        StatusUnknown,
			})
		}
	}
}

// LeftJoinIssueBaseline attaches a base-audience popularity for one issue.
func LeftJoinIssueBaseline(records []CompositeRecord, issue string, base *signal.Grid) {
	idx := base.Index()
	for i := range records {
		m, ok := records[i].Issues.Get(issue)
		if !ok {
			continue
		}
		if p, found := idx[records[i].Key()]; found {
			m.Baseline = p.Popularity
			records[i].Issues = records[i].Issues.Set(m)
		}
	}
}

//Personal.AI order the ending
