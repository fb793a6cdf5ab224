package analysis

import (
	"github.com/turtacn/Resonance-Intelligence/internal/domain/signal"
	"github.com/turtacn/Resonance-Intelligence/pkg/errors"
)

// IssueSource is the grid fetched for one issue tag. Baseline is optional.
type IssueSource struct {
	Name     string
	Grid     *signal.Grid
	Baseline *signal.Grid
}

// Sources are the grids a composite table is built from.
type Sources struct {
	Candidate *signal.Grid
	Opponent  *signal.Grid
	Base      *signal.Grid
	Issues    []IssueSource
}

// Composition is the result of joining sources.
type Composition struct {
	Records []CompositeRecord
	Issues  []string
	// Skipped names the issue sources that contributed no rows.
	Skipped []string
}

// Compose joins the sources and derives every comparison metric:
//
//  1. candidate ⋈ opponent on exact key; zero rows is ErrCodeNoOverlap
//  2. left join of the base grid; an empty base grid is ErrCodeBaseDataMissing
//  3. issue grids concatenated, pivoted wide and left joined
//  4. net values and statuses for every axis
//
// Row order is (lat, lon) ascending regardless of provider order.
func Compose(src Sources) (*Composition, error) {
	records := InnerJoin(src.Candidate, src.Opponent)
	if len(records) == 0 {
		return nil, errors.Newf(errors.ErrCodeNoOverlap,
			"candidate grid (%d points) and opponent grid (%d points) share no locations",
			src.Candidate.Len(), src.Opponent.Len())
	}
	if src.Base.IsEmpty() {
		return nil, errors.New(errors.ErrCodeBaseDataMissing, "political base grid is empty")
	}
	LeftJoinBase(records, src.Base)

	var rows []IssueRow
	comp := &Composition{}
	for _, is := range src.Issues {
		name := NormalizeIssue(is.Name)
		r := IssueRows(name, is.Grid)
		if len(r) == 0 {
			comp.Skipped = append(comp.Skipped, is.Name)
			continue
		}
		rows = append(rows, r...)
	}
	pivot := PivotIssues(rows)
	LeftJoinIssues(records, pivot)
	for _, is := range src.Issues {
		if is.Baseline.IsEmpty() {
			continue
		}
		LeftJoinIssueBaseline(records, NormalizeIssue(is.Name), is.Baseline)
	}

	DeriveOpponent(records)
	DeriveBase(records)
	DeriveIssues(records, pivot.Issues)

	comp.Records = records
	comp.Issues = pivot.Issues
	return comp, nil
}

//Personal.AI order the ending
